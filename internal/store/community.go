package store

import (
	"context"

	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
)

// TicketStore persists open support tickets
type TicketStore interface {
	CreateTicket(ctx context.Context, t domain.Ticket) error
	TicketByUser(ctx context.Context, userID string) (*domain.Ticket, error)
	TicketByChannel(ctx context.Context, channelID string) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, channelID string) error
}

// RoomStore persists private rooms, one per user
type RoomStore interface {
	SaveRoom(ctx context.Context, r domain.Room) error
	RoomByUser(ctx context.Context, userID string) (*domain.Room, error)
	DeleteRoom(ctx context.Context, userID string) error
	ListRooms(ctx context.Context) ([]domain.Room, error)
}

// FAQStore persists FAQ entries
type FAQStore interface {
	CreateFAQ(ctx context.Context, question, answer string) (*domain.FAQ, error)
	GetFAQ(ctx context.Context, id string) (*domain.FAQ, error)
	ListFAQs(ctx context.Context) ([]domain.FAQ, error)
}

// Store is the full persistence surface of the bot
type Store interface {
	InvestmentStore
	TrackerStore
	TicketStore
	RoomStore
	FAQStore
	Ping(ctx context.Context) error
	Close() error
}
