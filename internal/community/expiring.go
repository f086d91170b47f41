package community

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/chat"
	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
)

const defaultExpiringAhead = 7 * 24 * time.Hour

// RemindExpiring posts a goodbye note with the survey link in the private room
// of every member whose membership ends soon. It returns how many were sent.
func (s *Service) RemindExpiring(ctx context.Context) (int, error) {
	within := defaultExpiringAhead
	if days := s.cfg.Assets.ExpiringAhead; days > 0 {
		within = time.Duration(days) * 24 * time.Hour
	}
	ids, err := s.oracle.ListExpiring(ctx, within)
	if err != nil {
		return 0, fmt.Errorf("failed to list expiring members: %w", err)
	}

	sent := 0
	var errs []error
	for _, userID := range ids {
		room, err := s.rooms.RoomByUser(ctx, userID)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to load room of %s: %w", userID, err))
			continue
		}
		if room == nil {
			continue
		}
		if _, err := s.chat.Send(ctx, room.ChannelID, chat.Message{Content: ExpiringMessage(userID, s.cfg.Assets.SurveyURL)}); err != nil {
			errs = append(errs, err)
			continue
		}
		sent++
	}
	logger.InfoCtx(ctx, "Expiring membership reminders sent", zap.Int("expiring", len(ids)), zap.Int("sent", sent))
	return sent, errors.Join(errs...)
}

// ExpiringMessage is the reminder text for one member
func ExpiringMessage(userID, surveyURL string) string {
	msg := mention(userID) + " hi!\n\n" +
		"We noticed your membership is about to expire. We are sorry to see you go " +
		"and thank you for all your support of the community! ❤️\n\n"
	if surveyURL != "" {
		msg += "We would love it if you filled in our experience survey so we can keep improving:\n" +
			surveyURL + "\n\n"
	}
	return msg + "Thanks for your time,\nthe team"
}
