package tracker

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/chat"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
	"github.com/NadavMozeson/typescript-discord-bot/internal/store"
	"github.com/NadavMozeson/typescript-discord-bot/internal/workpool"
)

// Report summarises one fan-out
type Report struct {
	Attempted int
	Delivered int
	Failed    int
}

// Fanout delivers closing announcements to every subscriber by direct message
type Fanout struct {
	subscriptions store.TrackerStore
	chat          chat.Surface
	limit         int
}

// NewFanout creates a fan-out delivering at most limit messages at once
func NewFanout(subscriptions store.TrackerStore, surface chat.Surface, limit int) *Fanout {
	if limit < 1 {
		limit = workpool.DefaultLimit
	}
	return &Fanout{subscriptions: subscriptions, chat: surface, limit: limit}
}

// Notify sends msg to every subscriber of investmentID. A failed recipient is
// logged and skipped; Notify itself never fails.
func (f *Fanout) Notify(ctx context.Context, msg chat.Message, investmentID string) Report {
	subs, err := f.subscriptions.SubscriptionsFor(ctx, investmentID)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to load trackers: %w", err), zap.String("investment_id", investmentID))
		return Report{}
	}

	var delivered, failed atomic.Int64
	_ = workpool.Run(ctx, f.limit, subs, func(ctx context.Context, sub domain.Subscription) error {
		if _, err := f.chat.SendDirect(ctx, sub.UserID, msg); err != nil {
			failed.Add(1)
			logger.WarnCtx(ctx, "Failed to notify tracker",
				zap.String("investment_id", investmentID),
				zap.String("user_id", sub.UserID),
				zap.Error(err))
			return err
		}
		delivered.Add(1)
		return nil
	})

	report := Report{
		Attempted: len(subs),
		Delivered: int(delivered.Load()),
		Failed:    int(failed.Load()),
	}
	logger.InfoCtx(ctx, "Trackers notified",
		zap.String("investment_id", investmentID),
		zap.Int("attempted", report.Attempted),
		zap.Int("delivered", report.Delivered),
		zap.Int("failed", report.Failed))
	return report
}
