package domain

import "time"

// TicketReason is the topic a ticket was opened for
type TicketReason string

const (
	TicketGeneral  TicketReason = "regular"
	TicketVIP      TicketReason = "vip"
	TicketGiveaway TicketReason = "giveaway"
	TicketRules    TicketReason = "rules"
)

// Label is the human readable reason shown in the ticket intro
func (r TicketReason) Label() string {
	switch r {
	case TicketVIP:
		return "VIP purchase"
	case TicketGiveaway:
		return "Giveaway"
	case TicketRules:
		return "Rules violation"
	}
	return "General"
}

// Ticket is an open support channel owned by one user
type Ticket struct {
	UserID    string
	ChannelID string
	Reason    TicketReason
	CreatedAt time.Time
}

// Room is a member's private channel in the VIP guild
type Room struct {
	UserID    string
	ChannelID string
	VIP       bool
	CreatedAt time.Time
}

// FAQ is one question shown as a button under the FAQ message
type FAQ struct {
	ID        string
	Question  string
	Answer    string
	CreatedAt time.Time
}
