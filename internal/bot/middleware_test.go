package bot_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/NadavMozeson/typescript-discord-bot/internal/bot"
	"github.com/NadavMozeson/typescript-discord-bot/internal/chat"
	"github.com/NadavMozeson/typescript-discord-bot/internal/fetcher"
	"github.com/NadavMozeson/typescript-discord-bot/internal/mocks"
)

func TestRecover_PanicIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	surface := mocks.NewMockSurface(ctrl)
	var report string
	surface.EXPECT().SendDirect(gomock.Any(), "dev", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msg chat.Message) (string, error) {
			report = msg.Content
			return "dm1", nil
		})

	b := bot.NewBoundary(context.Background(), "dev", surface)
	handler := bot.Recover(b, "message_create", func(context.Context, *discordgo.MessageCreate) error {
		panic("nil map")
	})

	assert.NotPanics(t, func() { handler(nil, &discordgo.MessageCreate{}) })
	assert.Contains(t, report, "**message_create** failed")
	assert.Contains(t, report, "nil map")
}

func TestReport_SkipsNavigationTimeouts(t *testing.T) {
	ctrl := gomock.NewController(t)
	surface := mocks.NewMockSurface(ctrl)
	surface.EXPECT().SendDirect(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	b := bot.NewBoundary(context.Background(), "dev", surface)
	b.Run("interaction", func(context.Context) error {
		return fmt.Errorf("open listing: %w", fetcher.ErrNavigationTimeout)
	})
	b.Run("interaction", func(context.Context) error {
		return errors.New("Navigation timeout of 60000 ms exceeded")
	})
}

func TestReport_DeliveryFailureIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	surface := mocks.NewMockSurface(ctrl)
	surface.EXPECT().SendDirect(gomock.Any(), "dev", gomock.Any()).Return("", errors.New("dm closed"))

	b := bot.NewBoundary(context.Background(), "dev", surface)
	assert.NotPanics(t, func() {
		b.Run("interaction", func(context.Context) error { return errors.New("boom") })
	})
}

func TestReport_LongErrorsAreTruncated(t *testing.T) {
	ctrl := gomock.NewController(t)
	surface := mocks.NewMockSurface(ctrl)
	var report string
	surface.EXPECT().SendDirect(gomock.Any(), "dev", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msg chat.Message) (string, error) {
			report = msg.Content
			return "dm1", nil
		})

	b := bot.NewBoundary(context.Background(), "dev", surface)
	b.Run("stats", func(context.Context) error { return errors.New(strings.Repeat("x", 5000)) })
	assert.Less(t, len([]rune(report)), 2000)
}

func TestIsNavigationTimeout(t *testing.T) {
	assert.True(t, bot.IsNavigationTimeout(fetcher.ErrNavigationTimeout))
	assert.True(t, bot.IsNavigationTimeout(errors.New("navigation timeout exceeded")))
	assert.False(t, bot.IsNavigationTimeout(errors.New("connection refused")))
}
