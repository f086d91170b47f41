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
	"github.com/NadavMozeson/typescript-discord-bot/internal/workpool"
)

const (
	// RoomCategoryName groups private rooms in the VIP guild
	RoomCategoryName = "🔒 | private chats | 🔒"
	// MaxCategoryChildren is the channel limit of one category
	MaxCategoryChildren = 50
)

const roomPermissions = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages

// OpenRoom makes sure userID has a private channel in the VIP guild and
// returns its id
func (s *Service) OpenRoom(ctx context.Context, userID string, vip bool) (string, error) {
	existing, err := s.rooms.RoomByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load room of %s: %w", userID, err)
	}
	if existing != nil {
		alive, err := s.channelExists(ctx, existing.ChannelID)
		if err != nil {
			return "", err
		}
		if alive {
			return existing.ChannelID, nil
		}
		// the channel was removed by hand, the record is stale
		if err := s.rooms.DeleteRoom(ctx, userID); err != nil {
			return "", fmt.Errorf("failed to drop stale room of %s: %w", userID, err)
		}
	}

	guildID := s.cfg.VIPGuild.ID
	if guildID == "" {
		return "", errNoGuild
	}
	name := "chat-" + userID
	if m, err := s.discord.GuildMember(guildID, userID, discordgo.WithContext(ctx)); err == nil && m != nil {
		name = "chat-" + displayName(m)
	}

	// category capacity is read and consumed under one lock
	s.roomMu.Lock()
	defer s.roomMu.Unlock()
	channels, err := s.discord.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to list channels of %s: %w", guildID, err)
	}
	parentID, err := s.roomCategory(ctx, guildID, channels)
	if err != nil {
		return "", err
	}
	created, err := s.discord.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: parentID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
			{ID: userID, Type: discordgo.PermissionOverwriteTypeMember, Allow: roomPermissions},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create room for %s: %w", userID, err)
	}

	if err := s.rooms.SaveRoom(ctx, domain.Room{UserID: userID, ChannelID: created.ID, VIP: vip}); err != nil {
		return "", fmt.Errorf("failed to save room of %s: %w", userID, err)
	}
	if _, err := s.chat.Send(ctx, created.ID, chat.Message{Content: roomGreeting(userID)}); err != nil {
		logger.WarnCtx(ctx, "Failed to greet in private room", zap.String("channel_id", created.ID), zap.Error(err))
	}
	logger.InfoCtx(ctx, "Private room opened", zap.String("user_id", userID), zap.String("channel_id", created.ID))
	return created.ID, nil
}

func roomGreeting(userID string) string {
	return mention(userID) + " welcome to your private chat!\n" +
		"Only you and the team can see this channel. Ask us anything here."
}

// roomCategory returns a rooms category with space left, creating one when all are full
func (s *Service) roomCategory(ctx context.Context, guildID string, channels []*discordgo.Channel) (string, error) {
	children := make(map[string]int)
	for _, c := range channels {
		if c.ParentID != "" {
			children[c.ParentID]++
		}
	}
	for _, c := range channels {
		if c.Type == discordgo.ChannelTypeGuildCategory && c.Name == RoomCategoryName && children[c.ID] < MaxCategoryChildren {
			return c.ID, nil
		}
	}
	category, err := s.discord.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name: RoomCategoryName,
		Type: discordgo.ChannelTypeGuildCategory,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create rooms category: %w", err)
	}
	return category.ID, nil
}

// CloseRoom deletes the private channel of userID. It reports whether a room existed.
func (s *Service) CloseRoom(ctx context.Context, userID string) (bool, error) {
	room, err := s.rooms.RoomByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load room of %s: %w", userID, err)
	}
	if room == nil {
		return false, nil
	}

	channel, err := s.discord.Channel(room.ChannelID, discordgo.WithContext(ctx))
	if err != nil && !chat.IsRESTCode(err, chat.ErrCodeUnknownChannel) {
		return false, fmt.Errorf("failed to get room channel %s: %w", room.ChannelID, err)
	}
	if channel != nil {
		if err := s.deleteChannel(ctx, channel.ID); err != nil {
			return false, err
		}
	}
	if err := s.rooms.DeleteRoom(ctx, userID); err != nil {
		return false, fmt.Errorf("failed to delete room of %s: %w", userID, err)
	}
	if channel != nil && channel.ParentID != "" {
		if err := s.deleteCategoryIfEmpty(ctx, s.cfg.VIPGuild.ID, channel.ParentID); err != nil {
			logger.WarnCtx(ctx, "Failed to clean up rooms category", zap.Error(err))
		}
	}
	logger.InfoCtx(ctx, "Private room closed", zap.String("user_id", userID))
	return true, nil
}

// OnRoleChange opens a room when a VIP role was gained and closes it when lost
func (s *Service) OnRoleChange(ctx context.Context, before, after *discordgo.Member) error {
	if after == nil || after.User == nil || after.GuildID != s.cfg.VIPGuild.ID {
		return nil
	}
	roles := []string{s.cfg.VIPGuild.Roles.VIP, s.cfg.VIPGuild.Roles.VIP2}
	for _, role := range roles {
		if !hasRole(before, role) && hasRole(after, role) {
			_, err := s.OpenRoom(ctx, after.User.ID, true)
			return err
		}
	}
	// an unknown previous state cannot prove the role was lost
	if before == nil {
		return nil
	}
	hadAny := hasRole(before, roles[0]) || hasRole(before, roles[1])
	hasAny := hasRole(after, roles[0]) || hasRole(after, roles[1])
	if hadAny && !hasAny {
		_, err := s.CloseRoom(ctx, after.User.ID)
		return err
	}
	return nil
}

// SyncRooms gives every VIP role holder a working room
func (s *Service) SyncRooms(ctx context.Context) error {
	members, err := s.members(ctx, s.cfg.VIPGuild.ID)
	if err != nil {
		return err
	}
	var holders []string
	for _, m := range members {
		if m.User == nil || m.User.Bot {
			continue
		}
		if hasRole(m, s.cfg.VIPGuild.Roles.VIP) || hasRole(m, s.cfg.VIPGuild.Roles.VIP2) {
			holders = append(holders, m.User.ID)
		}
	}
	err = workpool.Run(ctx, s.concurrency, holders, func(ctx context.Context, userID string) error {
		_, err := s.OpenRoom(ctx, userID, true)
		return err
	})
	logger.InfoCtx(ctx, "Private rooms synced", zap.Int("holders", len(holders)))
	return err
}

func (s *Service) channelExists(ctx context.Context, channelID string) (bool, error) {
	_, err := s.discord.Channel(channelID, discordgo.WithContext(ctx))
	if err == nil {
		return true, nil
	}
	if chat.IsRESTCode(err, chat.ErrCodeUnknownChannel) {
		return false, nil
	}
	return false, fmt.Errorf("failed to get channel %s: %w", channelID, err)
}

func (s *Service) deleteChannel(ctx context.Context, channelID string) error {
	if _, err := s.discord.ChannelDelete(channelID, discordgo.WithContext(ctx)); err != nil {
		if chat.IsRESTCode(err, chat.ErrCodeUnknownChannel) {
			return nil
		}
		return fmt.Errorf("failed to delete channel %s: %w", channelID, err)
	}
	return nil
}

// deleteCategoryIfEmpty removes categoryID once no channel points at it
func (s *Service) deleteCategoryIfEmpty(ctx context.Context, guildID, categoryID string) error {
	channels, err := s.discord.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to list channels of %s: %w", guildID, err)
	}
	for _, c := range channels {
		if c.ParentID == categoryID {
			return nil
		}
	}
	return s.deleteChannel(ctx, categoryID)
}

// findCategory returns the first category called name
func findCategory(channels []*discordgo.Channel, name string) *discordgo.Channel {
	for _, c := range channels {
		if c.Type == discordgo.ChannelTypeGuildCategory && strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

var errNoGuild = errors.New("guild is not configured")
