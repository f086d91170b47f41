package community

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/NadavMozeson/typescript-discord-bot/internal/chat"
)

// OnMemberJoin gives newcomers of the main guild the member role and routes
// VIP guild joins to the membership check
func (s *Service) OnMemberJoin(ctx context.Context, m *discordgo.Member) error {
	if m == nil || m.User == nil {
		return nil
	}
	switch m.GuildID {
	case s.cfg.MainGuild.ID:
		role := s.cfg.MainGuild.Roles.Member
		if role == "" {
			return nil
		}
		if err := s.discord.GuildMemberRoleAdd(m.GuildID, m.User.ID, role, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("failed to add member role to %s: %w", m.User.ID, err)
		}
	case s.cfg.VIPGuild.ID:
		return s.OnVIPJoin(ctx, m)
	}
	return nil
}

// OnBan logs a ban (banned true) or unban in the main log channel
func (s *Service) OnBan(ctx context.Context, guildID string, user *discordgo.User, banned bool) error {
	if user == nil || user.Bot {
		return nil
	}
	title, color := "⛔ user banned ⛔", colorBan
	if !banned {
		title = "✅ user unbanned ✅"
	}
	return s.logUser(ctx, guildID, title, color, user)
}

// OnMemberUpdate logs new timeouts and opens or closes private rooms on VIP role changes
func (s *Service) OnMemberUpdate(ctx context.Context, before, after *discordgo.Member) error {
	if after == nil || after.User == nil {
		return nil
	}
	var errs []error
	if s.timedOut(before, after) {
		errs = append(errs, s.logUser(ctx, after.GuildID, "⌛ user timed out ⌛", colorMute, after.User))
	}
	errs = append(errs, s.OnRoleChange(ctx, before, after))
	return errors.Join(errs...)
}

// timedOut reports whether after carries a running timeout that before did not
func (s *Service) timedOut(before, after *discordgo.Member) bool {
	until := after.CommunicationDisabledUntil
	if until == nil || !until.After(s.clock.Now()) {
		return false
	}
	if before == nil || before.CommunicationDisabledUntil == nil {
		return true
	}
	return !before.CommunicationDisabledUntil.Equal(*until)
}

func (s *Service) logUser(ctx context.Context, guildID, title string, color int, user *discordgo.User) error {
	channel := s.cfg.MainGuild.Channels.Log
	if channel == "" {
		return nil
	}
	embed := &discordgo.MessageEmbed{
		Title:     title,
		Color:     color,
		Timestamp: s.timestamp(),
		Footer:    s.createFooter(ctx, guildID),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "👤 user 👤", Value: user.Mention()},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("128")},
	}
	_, err := s.chat.Send(ctx, channel, chat.Message{Embeds: []*discordgo.MessageEmbed{embed}})
	return err
}
