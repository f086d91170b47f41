package tracker

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
)

// Custom id prefixes of the buttons under a listing
const (
	AddPrefix            = "tracker_button_add_"
	RemovePrefix         = "tracker_button_remove_"
	DisabledAddPrefix    = "disabled_add_tracker_button_"
	DisabledRemovePrefix = "disabled_remove_tracker_button_"
)

const (
	addLabel    = "Track"
	removeLabel = "Stop tracking"
	linkLabel   = "Open on FUTBIN"
)

// Buttons is the action row attached to an open listing
func Buttons(inv *domain.Investment) []discordgo.MessageComponent {
	row := discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{CustomID: AddPrefix + inv.ID, Label: addLabel, Style: discordgo.SuccessButton},
		discordgo.Button{CustomID: RemovePrefix + inv.ID, Label: removeLabel, Style: discordgo.DangerButton},
	}}
	if inv.Link != "" {
		row.Components = append(row.Components, discordgo.Button{Label: linkLabel, Style: discordgo.LinkButton, URL: inv.Link})
	}
	return []discordgo.MessageComponent{row}
}

// DisabledButtons replaces Buttons once the listing closes
func DisabledButtons(investmentID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{CustomID: DisabledAddPrefix + investmentID, Label: addLabel, Style: discordgo.SecondaryButton, Disabled: true},
		discordgo.Button{CustomID: DisabledRemovePrefix + investmentID, Label: removeLabel, Style: discordgo.SecondaryButton, Disabled: true},
	}}}
}

// ParseButton extracts the investment id of a tracker button. add is false for the remove button.
func ParseButton(customID string) (add bool, investmentID string, ok bool) {
	switch {
	case strings.HasPrefix(customID, AddPrefix):
		investmentID, add = strings.TrimPrefix(customID, AddPrefix), true
	case strings.HasPrefix(customID, RemovePrefix):
		investmentID = strings.TrimPrefix(customID, RemovePrefix)
	default:
		return false, "", false
	}
	return add, investmentID, investmentID != ""
}
