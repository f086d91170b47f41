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

// FAQClickPrefix prefixes the custom id of every FAQ button
const FAQClickPrefix = "faq-click-"

const (
	// MaxFAQButtons is what fits in the single row under the FAQ message
	MaxFAQButtons = 5
	// maxButtonLabel is the platform limit on button labels
	maxButtonLabel = 80
	faqLookback    = 50
)

// ErrUnknownFAQ is returned when a button points at a removed entry
var ErrUnknownFAQ = errors.New("faq entry not found")

// AddFAQ stores a question and rebuilds the FAQ buttons
func (s *Service) AddFAQ(ctx context.Context, question, answer string) (*domain.FAQ, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return nil, errors.New("question and answer are required")
	}
	faq, err := s.faqs.CreateFAQ(ctx, question, answer)
	if err != nil {
		return nil, fmt.Errorf("failed to save faq: %w", err)
	}
	if err := s.RefreshFAQ(ctx); err != nil {
		return faq, err
	}
	return faq, nil
}

// RefreshFAQ makes sure the FAQ message exists and carries one button per entry
func (s *Service) RefreshFAQ(ctx context.Context) error {
	channelID := s.cfg.MainGuild.Channels.FAQ
	if channelID == "" {
		return nil
	}
	messageID, err := s.faqMessage(ctx, channelID)
	if err != nil {
		return err
	}
	entries, err := s.faqs.ListFAQs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list faqs: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}
	if len(entries) > MaxFAQButtons {
		logger.WarnCtx(ctx, "Too many FAQ entries for one row, extra entries are hidden", zap.Int("entries", len(entries)))
	}
	return s.chat.Edit(ctx, channelID, messageID, FAQButtons(entries))
}

// faqMessage returns the bot's oldest message in channelID, posting the intro when there is none
func (s *Service) faqMessage(ctx context.Context, channelID string) (string, error) {
	recent, err := s.chat.RecentMessages(ctx, channelID, faqLookback)
	if err != nil {
		return "", err
	}
	bot := s.chat.BotUserID()
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].AuthorID == bot {
			return recent[i].ID, nil
		}
	}
	return s.chat.Send(ctx, channelID, chat.Message{
		Embeds: []*discordgo.MessageEmbed{{
			Title: "Frequently asked questions",
			Description: "We get many questions that repeat themselves.\n" +
				"This channel answers them fast. Press the question you want answered 👇",
			Color:  colorRed,
			Author: s.createAuthor(ctx, s.cfg.MainGuild.ID),
		}},
	})
}

// FAQButtons renders up to MaxFAQButtons entries as one row
func FAQButtons(entries []domain.FAQ) []discordgo.MessageComponent {
	if len(entries) > MaxFAQButtons {
		entries = entries[:MaxFAQButtons]
	}
	buttons := make([]discordgo.MessageComponent, 0, len(entries))
	for _, e := range entries {
		buttons = append(buttons, discordgo.Button{
			CustomID: FAQClickPrefix + e.ID,
			Label:    truncateLabel(e.Question, maxButtonLabel),
			Style:    discordgo.SecondaryButton,
		})
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

// Answer returns the reply for a FAQ button
func (s *Service) Answer(ctx context.Context, customID string) (string, error) {
	id, ok := strings.CutPrefix(customID, FAQClickPrefix)
	if !ok || id == "" {
		return "", ErrUnknownFAQ
	}
	faq, err := s.faqs.GetFAQ(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to load faq %s: %w", id, err)
	}
	if faq == nil {
		return "", ErrUnknownFAQ
	}
	return "## " + faq.Question + "\n" + faq.Answer, nil
}

func truncateLabel(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
