package community

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/chat"
	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
	"github.com/NadavMozeson/typescript-discord-bot/internal/workpool"
)

// RequestRoleButton is the custom id of the "give me my role" button
const RequestRoleButton = "sync-user-vip-button"

// SyncReport counts role changes made by SyncAll
type SyncReport struct {
	Members int
	Granted int
	Revoked int
}

// vipRoles lists each guild with the role paying members carry there
func (s *Service) vipRoles() map[string]string {
	roles := make(map[string]string, 2)
	if s.cfg.MainGuild.ID != "" && s.cfg.MainGuild.Roles.VIP != "" {
		roles[s.cfg.MainGuild.ID] = s.cfg.MainGuild.Roles.VIP
	}
	if s.cfg.VIPGuild.ID != "" && s.cfg.VIPGuild.Roles.VIP != "" {
		roles[s.cfg.VIPGuild.ID] = s.cfg.VIPGuild.Roles.VIP
	}
	return roles
}

// SyncAll grants the VIP role to every paying member in both guilds and takes
// it from everyone else
func (s *Service) SyncAll(ctx context.Context) (SyncReport, error) {
	ids, err := s.oracle.ListAllMembers(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("failed to list paying members: %w", err)
	}
	report := SyncReport{Members: len(ids)}
	paying := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		paying[id] = struct{}{}
	}

	roles := s.vipRoles()
	var granted, revoked atomic.Int64
	grantErr := workpool.Run(ctx, s.concurrency, ids, func(ctx context.Context, userID string) error {
		var errs []error
		for guildID, roleID := range roles {
			ok, err := s.addRole(ctx, guildID, userID, roleID)
			if err != nil {
				errs = append(errs, err)
			}
			if ok {
				granted.Add(1)
			}
		}
		return errors.Join(errs...)
	})

	var errs []error
	if grantErr != nil {
		errs = append(errs, grantErr)
	}
	for guildID, roleID := range roles {
		members, err := s.members(ctx, guildID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		var stale []string
		for _, m := range members {
			if m.User == nil || m.User.Bot || !hasRole(m, roleID) {
				continue
			}
			if _, ok := paying[m.User.ID]; !ok {
				stale = append(stale, m.User.ID)
			}
		}
		err = workpool.Run(ctx, s.concurrency, stale, func(ctx context.Context, userID string) error {
			if err := s.discord.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
				if chat.IsRESTCode(err, chat.ErrCodeUnknownMember) {
					return nil
				}
				return fmt.Errorf("failed to remove role from %s: %w", userID, err)
			}
			revoked.Add(1)
			return nil
		})
		if err != nil {
			errs = append(errs, err)
		}
	}

	report.Granted = int(granted.Load())
	report.Revoked = int(revoked.Load())
	logger.InfoCtx(ctx, "VIP roles synced",
		zap.Int("members", report.Members),
		zap.Int("granted", report.Granted),
		zap.Int("revoked", report.Revoked))
	return report, errors.Join(errs...)
}

// addRole grants roleID and reports whether the user is in the guild
func (s *Service) addRole(ctx context.Context, guildID, userID, roleID string) (bool, error) {
	if err := s.discord.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		if chat.IsRESTCode(err, chat.ErrCodeUnknownMember) {
			return false, nil
		}
		return false, fmt.Errorf("failed to add role to %s in %s: %w", userID, guildID, err)
	}
	return true, nil
}

// RequestRole grants the VIP role of guildID to userID when the membership
// database knows them. It reports whether the role was granted.
func (s *Service) RequestRole(ctx context.Context, guildID, userID string) (bool, error) {
	roleID, ok := s.vipRoles()[guildID]
	if !ok {
		roleID = s.cfg.MainGuild.Roles.VIP
		guildID = s.cfg.MainGuild.ID
	}
	member, err := s.oracle.IsMember(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check membership of %s: %w", userID, err)
	}
	if !member {
		return false, nil
	}
	return s.addRole(ctx, guildID, userID, roleID)
}

// UpdateUser reconciles the VIP role of a single user in both guilds and
// reports whether they are a paying member
func (s *Service) UpdateUser(ctx context.Context, userID string) (bool, error) {
	member, err := s.oracle.IsMember(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check membership of %s: %w", userID, err)
	}
	var errs []error
	for guildID, roleID := range s.vipRoles() {
		if member {
			if _, err := s.addRole(ctx, guildID, userID, roleID); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		err := s.discord.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
		if err != nil && !chat.IsRESTCode(err, chat.ErrCodeUnknownMember) {
			errs = append(errs, fmt.Errorf("failed to remove role from %s in %s: %w", userID, guildID, err))
		}
	}
	return member, errors.Join(errs...)
}

// OnVIPJoin greets a user joining the VIP guild and grants the role when they pay
func (s *Service) OnVIPJoin(ctx context.Context, m *discordgo.Member) error {
	if m == nil || m.User == nil || m.User.Bot {
		return nil
	}
	granted, err := s.RequestRole(ctx, s.cfg.VIPGuild.ID, m.User.ID)
	if err != nil {
		return err
	}

	embed := &discordgo.MessageEmbed{
		Title:     "Welcome to the premium server",
		Color:     colorGreen,
		Timestamp: s.timestamp(),
		Footer:    s.createFooter(ctx, s.cfg.VIPGuild.ID),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "👤 user 👤", Value: m.User.Mention()},
		},
	}
	if granted {
		embed.Description = "Your membership was found and the premium role is now yours."
	} else {
		embed.Color = colorRed
		embed.Description = "We could not find an active membership for this account. " +
			"Link your Discord account on the website and press the button in the help channel."
	}

	if channel := s.cfg.VIPGuild.Channels.Welcome; channel != "" {
		if _, err := s.chat.Send(ctx, channel, chat.Message{Content: m.User.Mention(), Embeds: []*discordgo.MessageEmbed{embed}}); err != nil {
			return err
		}
	}
	if granted {
		return s.logNewVIP(ctx, m.User)
	}
	return nil
}

func (s *Service) logNewVIP(ctx context.Context, user *discordgo.User) error {
	channel := s.cfg.VIPGuild.Channels.VIPLog
	if channel == "" {
		return nil
	}
	embed := &discordgo.MessageEmbed{
		Title:     "✨ new premium member ✨",
		Color:     colorGold,
		Timestamp: s.timestamp(),
		Footer:    s.createFooter(ctx, s.cfg.VIPGuild.ID),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "👤 user 👤", Value: user.Mention()},
		},
	}
	if avatar := user.AvatarURL("128"); avatar != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatar}
	}
	_, err := s.chat.Send(ctx, channel, chat.Message{Content: "@everyone", Embeds: []*discordgo.MessageEmbed{embed}})
	return err
}

// PostHelp posts the role request guide to channelID unless the channel
// already has messages
func (s *Service) PostHelp(ctx context.Context, channelID string) error {
	if channelID == "" {
		return nil
	}
	empty, err := s.channelEmpty(ctx, channelID)
	if err != nil || !empty {
		return err
	}
	_, err = s.chat.Send(ctx, channelID, HelpMessage())
	return err
}

// HelpMessage is the guide with the role request button
func HelpMessage() chat.Message {
	return chat.Message{
		Embeds: []*discordgo.MessageEmbed{{
			Title: "Getting your premium role",
			Description: "1. Buy a membership on the website.\n" +
				"2. Connect your Discord account from your profile page.\n" +
				"3. Press the button below. The role is also synced every hour.",
			Color: colorRed,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					CustomID: RequestRoleButton,
					Label:    "Get my role",
					Style:    discordgo.SuccessButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "⭐"},
				},
			}},
		},
	}
}
