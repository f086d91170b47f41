package community

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
)

// youtubeChannels is the part of the Data API v3 channels response we read
type youtubeChannels struct {
	Items []struct {
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// FormatThousands renders n as whole thousands with one truncated decimal, e.g. 12345 -> 12.3K
func FormatThousands(n int) string {
	if n < 0 {
		n = 0
	}
	return fmt.Sprintf("%d.%dK", n/1000, (n%1000)/100)
}

// UpdateStats refreshes every counter channel. A failing counter does not stop the others.
func (s *Service) UpdateStats(ctx context.Context) error {
	return errors.Join(
		s.updateMemberStats(ctx),
		s.updateYouTubeStats(ctx),
		s.updateVIPStats(ctx),
	)
}

func (s *Service) updateMemberStats(ctx context.Context) error {
	members, err := s.members(ctx, s.cfg.MainGuild.ID)
	if err != nil {
		return err
	}
	text := FormatThousands(len(members)) + " : members"
	if s.status != nil {
		s.status.SetStatus(text)
	}
	return s.renameChannel(ctx, s.cfg.MainGuild.Channels.StatsDiscord, text)
}

func (s *Service) updateYouTubeStats(ctx context.Context) error {
	yt := s.cfg.YouTube
	if yt.APIKey == "" || yt.ChannelID == "" || s.http == nil {
		return nil
	}
	query := url.Values{}
	query.Set("part", "statistics")
	query.Set("id", yt.ChannelID)
	query.Set("key", yt.APIKey)

	var resp youtubeChannels
	if err := s.http.Get(ctx, yt.APIURL+"?"+query.Encode(), &resp); err != nil {
		return fmt.Errorf("failed to fetch youtube statistics: %w", err)
	}
	if len(resp.Items) == 0 {
		return fmt.Errorf("youtube channel %s not found", yt.ChannelID)
	}
	subs, err := strconv.Atoi(resp.Items[0].Statistics.SubscriberCount)
	if err != nil {
		return fmt.Errorf("failed to parse subscriber count: %w", err)
	}
	return s.renameChannel(ctx, s.cfg.MainGuild.Channels.StatsYouTube, FormatThousands(subs)+" : YouTube subscribers")
}

func (s *Service) updateVIPStats(ctx context.Context) error {
	guildID, roleID := s.cfg.VIPGuild.ID, s.cfg.VIPGuild.Roles.VIP
	if guildID == "" || roleID == "" {
		return nil
	}
	members, err := s.members(ctx, guildID)
	if err != nil {
		return err
	}
	count := 0
	for _, m := range members {
		if hasRole(m, roleID) {
			count++
		}
	}
	return s.renameChannel(ctx, s.cfg.VIPGuild.Channels.StatsVIP, fmt.Sprintf("premium members: %d", count))
}

func (s *Service) renameChannel(ctx context.Context, channelID, name string) error {
	if channelID == "" {
		return nil
	}
	if _, err := s.discord.ChannelEdit(channelID, &discordgo.ChannelEdit{Name: name}, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to rename channel %s: %w", channelID, err)
	}
	logger.DebugCtx(ctx, "Stats channel updated", zap.String("channel_id", channelID), zap.String("name", name))
	return nil
}
