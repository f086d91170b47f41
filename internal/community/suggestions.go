package community

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/NadavMozeson/typescript-discord-bot/internal/chat"
)

// OnMessage reposts suggestions under the author's mention and adds vote
// reactions in voting channels
func (s *Service) OnMessage(ctx context.Context, m *discordgo.Message) error {
	if m == nil || m.Author == nil || m.Author.Bot {
		return nil
	}
	channels := s.cfg.MainGuild.Channels

	if channels.Suggest != "" && m.ChannelID == channels.Suggest && !s.cfg.MainGuild.IsOwner(m.Author.ID) {
		if strings.TrimSpace(m.Content) == "" {
			return nil
		}
		if _, err := s.chat.Send(ctx, m.ChannelID, chat.Message{Content: Suggestion(m.Author.ID, m.Content)}); err != nil {
			return err
		}
		return s.chat.Delete(ctx, m.ChannelID, m.ID)
	}

	if slices.Contains(channels.Voting, m.ChannelID) {
		for _, emoji := range []string{s.cfg.Emoji.Like, s.cfg.Emoji.Dislike} {
			if emoji == "" {
				continue
			}
			if err := s.discord.MessageReactionAdd(m.ChannelID, m.ID, reactionID(emoji), discordgo.WithContext(ctx)); err != nil {
				return fmt.Errorf("failed to react to %s: %w", m.ID, err)
			}
		}
	}
	return nil
}

// Suggestion is the repost text of a suggestion
func Suggestion(userID, content string) string {
	return mention(userID) + ":\n" + content
}

// reactionID turns custom emoji markup <:name:id> into the name:id form the API expects
func reactionID(emoji string) string {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(emoji, "<"), ">")
	if trimmed == emoji {
		return emoji
	}
	trimmed = strings.TrimPrefix(trimmed, "a:")
	return strings.TrimPrefix(trimmed, ":")
}
