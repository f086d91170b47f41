package community

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/chat"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
)

// Ticket component custom id prefixes
const (
	TicketCreatePrefix  = "ticket-create-button-"
	TicketClosePrefix   = "close-ticket-"
	TicketConfirmPrefix = "confirm-close-ticket-"
)

// TicketCategoryName groups ticket channels in the main guild
const TicketCategoryName = "📩 | tickets | 📩"

const ticketPermissions = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages

// TicketResult describes the outcome of a create request
type TicketResult struct {
	ChannelID string
	// Existing is set when the user already had an open ticket
	Existing bool
}

// ParseTicketReason extracts the reason from a panel button id
func ParseTicketReason(customID string) (domain.TicketReason, bool) {
	raw, ok := strings.CutPrefix(customID, TicketCreatePrefix)
	if !ok {
		return "", false
	}
	switch r := domain.TicketReason(raw); r {
	case domain.TicketGeneral, domain.TicketVIP, domain.TicketGiveaway, domain.TicketRules:
		return r, true
	}
	return domain.TicketGeneral, true
}

// PostTicketPanel posts the ticket panel once to the ticket channel
func (s *Service) PostTicketPanel(ctx context.Context) error {
	channelID := s.cfg.MainGuild.Channels.Ticket
	if channelID == "" {
		return nil
	}
	empty, err := s.channelEmpty(ctx, channelID)
	if err != nil || !empty {
		return err
	}
	embed := &discordgo.MessageEmbed{
		Title: "Open a new ticket!",
		Description: "Tickets are for **technical support only** regarding the Discord server.\n" +
			"Do not open a ticket to ask for investments or advice.\n\n" +
			"Press a button below to open a ticket 👇",
		Color:  colorRed,
		Author: s.createAuthor(ctx, s.cfg.MainGuild.ID),
	}
	button := func(reason domain.TicketReason, label, emoji string) discordgo.Button {
		return discordgo.Button{
			CustomID: TicketCreatePrefix + string(reason),
			Label:    label,
			Style:    discordgo.SecondaryButton,
			Emoji:    &discordgo.ComponentEmoji{Name: emoji},
		}
	}
	_, err = s.chat.Send(ctx, channelID, chat.Message{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				button(domain.TicketGeneral, "Technical support", "📨"),
				button(domain.TicketVIP, "Buying a membership", "⭐"),
				button(domain.TicketGiveaway, "Giveaways", "🎉"),
				button(domain.TicketRules, "Reporting a rules violation", "📜"),
			}},
		},
	})
	return err
}

// CreateTicket opens a private support channel for userID. A user holds at
// most one open ticket; a second request returns the existing one.
func (s *Service) CreateTicket(ctx context.Context, userID string, reason domain.TicketReason) (TicketResult, error) {
	existing, err := s.tickets.TicketByUser(ctx, userID)
	if err != nil {
		return TicketResult{}, fmt.Errorf("failed to load ticket of %s: %w", userID, err)
	}
	if existing != nil {
		return TicketResult{ChannelID: existing.ChannelID, Existing: true}, nil
	}

	guildID := s.cfg.MainGuild.ID
	channels, err := s.discord.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return TicketResult{}, fmt.Errorf("failed to list channels of %s: %w", guildID, err)
	}
	category := findCategory(channels, TicketCategoryName)
	if category == nil {
		category, err = s.discord.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
			Name: TicketCategoryName,
			Type: discordgo.ChannelTypeGuildCategory,
		}, discordgo.WithContext(ctx))
		if err != nil {
			return TicketResult{}, fmt.Errorf("failed to create tickets category: %w", err)
		}
	}

	name := "ticket-" + userID
	if m, err := s.discord.GuildMember(guildID, userID, discordgo.WithContext(ctx)); err == nil && m != nil {
		name = "ticket-" + displayName(m)
	}
	overwrites := []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{ID: userID, Type: discordgo.PermissionOverwriteTypeMember, Allow: ticketPermissions},
	}
	if support := s.cfg.MainGuild.Roles.Support; support != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID: support, Type: discordgo.PermissionOverwriteTypeRole, Allow: ticketPermissions,
		})
	}
	channel, err := s.discord.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             category.ID,
		PermissionOverwrites: overwrites,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return TicketResult{}, fmt.Errorf("failed to create ticket channel: %w", err)
	}

	if err := s.tickets.CreateTicket(ctx, domain.Ticket{UserID: userID, ChannelID: channel.ID, Reason: reason}); err != nil {
		if errors.Is(err, domain.ErrTicketExists) {
			// lost a race with a double click
			_ = s.deleteChannel(ctx, channel.ID)
			other, lookupErr := s.tickets.TicketByUser(ctx, userID)
			if lookupErr == nil && other != nil {
				return TicketResult{ChannelID: other.ChannelID, Existing: true}, nil
			}
		}
		return TicketResult{}, fmt.Errorf("failed to save ticket of %s: %w", userID, err)
	}

	if _, err := s.chat.Send(ctx, channel.ID, s.ticketIntro(ctx, userID, channel.ID, reason)); err != nil {
		logger.WarnCtx(ctx, "Failed to post ticket intro", zap.String("channel_id", channel.ID), zap.Error(err))
	}
	logger.InfoCtx(ctx, "Ticket opened",
		zap.String("user_id", userID),
		zap.String("channel_id", channel.ID),
		zap.String("reason", string(reason)))
	return TicketResult{ChannelID: channel.ID}, nil
}

func (s *Service) ticketIntro(ctx context.Context, userID, channelID string, reason domain.TicketReason) chat.Message {
	embed := &discordgo.MessageEmbed{
		Title:       "New ticket!",
		Description: "Please send the details of your request meanwhile so the team can help you best.",
		Color:       colorRed,
		Timestamp:   s.timestamp(),
		Author:      s.createAuthor(ctx, s.cfg.MainGuild.ID),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Ticket owner", Value: mention(userID)},
			{Name: "Ticket type", Value: reason.Label()},
		},
	}
	return chat.Message{
		Content: "||" + mention(userID) + "||",
		Embeds:  []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					CustomID: TicketClosePrefix + channelID,
					Label:    "Close ticket",
					Style:    discordgo.DangerButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "❌"},
				},
			}},
		},
	}
}

// ConfirmCloseMessage asks for confirmation before a ticket channel is removed
func ConfirmCloseMessage(channelID string) chat.Message {
	return chat.Message{
		Content: "Are you sure you want to close this ticket?",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					CustomID: TicketConfirmPrefix + channelID,
					Label:    "Close ticket",
					Style:    discordgo.DangerButton,
				},
			}},
		},
	}
}

// CloseTicket logs the closure, then removes the ticket record, its channel
// and the category once it is empty
func (s *Service) CloseTicket(ctx context.Context, channelID, closedBy string) error {
	channel, err := s.discord.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil && !chat.IsRESTCode(err, chat.ErrCodeUnknownChannel) {
		return fmt.Errorf("failed to get ticket channel %s: %w", channelID, err)
	}
	name := channelID
	if channel != nil {
		name = channel.Name
	}

	if logChannel := s.cfg.MainGuild.Channels.Log; logChannel != "" {
		embed := &discordgo.MessageEmbed{
			Title:     "📪 ticket closed 📪",
			Color:     colorRed,
			Timestamp: s.timestamp(),
			Footer:    s.createFooter(ctx, s.cfg.MainGuild.ID),
			Fields: []*discordgo.MessageEmbedField{
				{Name: "💬 ticket 💬", Value: name},
				{Name: "👤 closed by 👤", Value: mention(closedBy)},
			},
		}
		if _, err := s.chat.Send(ctx, logChannel, chat.Message{Embeds: []*discordgo.MessageEmbed{embed}}); err != nil {
			logger.WarnCtx(ctx, "Failed to log ticket closure", zap.Error(err))
		}
	}

	if err := s.tickets.DeleteTicket(ctx, channelID); err != nil {
		return fmt.Errorf("failed to delete ticket %s: %w", channelID, err)
	}
	if err := s.deleteChannel(ctx, channelID); err != nil {
		return err
	}
	if channel != nil && channel.ParentID != "" {
		if err := s.deleteCategoryIfEmpty(ctx, s.cfg.MainGuild.ID, channel.ParentID); err != nil {
			logger.WarnCtx(ctx, "Failed to clean up tickets category", zap.Error(err))
		}
	}
	logger.InfoCtx(ctx, "Ticket closed", zap.String("channel_id", channelID), zap.String("closed_by", closedBy))
	return nil
}
