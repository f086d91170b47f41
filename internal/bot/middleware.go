package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/chat"
	"github.com/NadavMozeson/typescript-discord-bot/internal/fetcher"
	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
)

// maxReportLength keeps developer DMs under the message limit
const maxReportLength = 1900

// HandlerFunc handles one gateway event of type E
type HandlerFunc[E any] func(ctx context.Context, event E) error

// Boundary catches what event handlers return or throw and reports it
type Boundary struct {
	ctx         context.Context
	developerID string
	chat        chat.Surface
}

// NewBoundary reports failures to developerID through surface. ctx is the
// parent of every handler context and ends with the process.
func NewBoundary(ctx context.Context, developerID string, surface chat.Surface) *Boundary {
	return &Boundary{ctx: ctx, developerID: developerID, chat: surface}
}

// Recover adapts h to a discordgo handler. Errors and panics are logged under
// name and sent to the developer; the event itself gets no further answer.
func Recover[E any](b *Boundary, name string, h HandlerFunc[E]) func(*discordgo.Session, E) {
	return func(_ *discordgo.Session, event E) {
		b.Run(name, func(ctx context.Context) error {
			return h(ctx, event)
		})
	}
}

// Run calls fn inside the boundary
func (b *Boundary) Run(name string, fn func(ctx context.Context) error) {
	ctx := b.ctx
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
			}
		}()
		err = fn(ctx)
	}()
	if err != nil {
		b.Report(ctx, name, err)
	}
}

// Report logs err with a fresh incident id and DMs the developer unless it is a fetcher timeout
func (b *Boundary) Report(ctx context.Context, name string, err error) {
	incident := uuid.NewString()
	logger.ErrorCtx(ctx, err, zap.String("handler", name), zap.String("incident_id", incident))

	if IsNavigationTimeout(err) || b.developerID == "" || b.chat == nil {
		return
	}
	msg := fmt.Sprintf("**%s** failed (incident `%s`)\n```%s```", name, incident, truncate(err.Error(), maxReportLength))
	if _, sendErr := b.chat.SendDirect(ctx, b.developerID, chat.Message{Content: msg}); sendErr != nil {
		logger.WarnCtx(ctx, "Failed to report error to developer",
			zap.String("incident_id", incident),
			zap.Error(sendErr))
	}
}

// IsNavigationTimeout reports whether err comes from the fetcher giving up on a page
func IsNavigationTimeout(err error) bool {
	if errors.Is(err, fetcher.ErrNavigationTimeout) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "navigation timeout")
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
