package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/chat"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
	"github.com/NadavMozeson/typescript-discord-bot/internal/store"
)

const (
	// MaxMessageLength is the Discord content limit
	MaxMessageLength = 2000
	// RedactedLine stands in for a premium listing on the public board
	RedactedLine = "### ████████████ ██ :pirate_flag:"

	boardTitle  = "# Investment tracker"
	boardFooter = "\n\n *Hidden investments are available to club members only*"
	// boardScan is how far back previous board messages are looked for
	boardScan = 50
)

// FlagResolver renders a nation as an emoji
type FlagResolver interface {
	Flag(ctx context.Context, nation string) string
}

// BoardConfig says where the board lives
type BoardConfig struct {
	MainGuildID   string
	VIPGuildID    string
	PublicChannel string
	VIPChannel    string
}

// Board is the pinned list of open investments
type Board struct {
	mu          sync.Mutex
	investments store.InvestmentStore
	chat        chat.Surface
	flags       FlagResolver
	cfg         BoardConfig
}

func NewBoard(investments store.InvestmentStore, surface chat.Surface, flags FlagResolver, cfg BoardConfig) *Board {
	return &Board{investments: investments, chat: surface, flags: flags, cfg: cfg}
}

// Refresh replaces the board in both tracker channels
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	invs, err := b.investments.ListInvestments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list investments: %w", err)
	}
	public, vip := b.Render(ctx, invs)

	var errs []error
	if b.cfg.PublicChannel != "" {
		errs = append(errs, b.repost(ctx, b.cfg.PublicChannel, public))
	}
	if b.cfg.VIPChannel != "" {
		errs = append(errs, b.repost(ctx, b.cfg.VIPChannel, vip))
	}
	return errors.Join(errs...)
}

// Render builds the public and premium board texts. Public entries come first.
func (b *Board) Render(ctx context.Context, invs []*domain.Investment) (public, vip string) {
	sorted := make([]*domain.Investment, len(invs))
	copy(sorted, invs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return !sorted[i].VIP && sorted[j].VIP
	})

	var pub, prem strings.Builder
	pub.WriteString(boardTitle)
	prem.WriteString(boardTitle)
	for _, inv := range sorted {
		entry := b.entry(ctx, inv)
		if inv.VIP {
			pub.WriteString("\n" + RedactedLine)
		} else {
			pub.WriteString(entry)
		}
		prem.WriteString(entry)
	}
	pub.WriteString(boardFooter)
	return pub.String(), prem.String()
}

func (b *Board) entry(ctx context.Context, inv *domain.Investment) string {
	guild := b.cfg.MainGuildID
	if inv.VIP && b.cfg.VIPGuildID != "" {
		guild = b.cfg.VIPGuildID
	}
	title := strings.TrimSpace(inv.Name + " " + inv.Rating)
	return fmt.Sprintf("\n### %s %s\n%s", title, b.flags.Flag(ctx, inv.Nation), inv.MessageURL(guild))
}

func (b *Board) repost(ctx context.Context, channelID, text string) error {
	recent, err := b.chat.RecentMessages(ctx, channelID, boardScan)
	if err != nil {
		return fmt.Errorf("failed to read board channel %s: %w", channelID, err)
	}
	self := b.chat.BotUserID()
	for _, m := range recent {
		if m.AuthorID != self {
			continue
		}
		if err := b.chat.Delete(ctx, channelID, m.ID); err != nil {
			logger.WarnCtx(ctx, "Failed to delete old board message",
				zap.String("channel_id", channelID), zap.String("message_id", m.ID), zap.Error(err))
		}
	}

	for _, chunk := range Chunk(text, MaxMessageLength) {
		if _, err := b.chat.Send(ctx, channelID, chat.Message{Content: chunk}); err != nil {
			return fmt.Errorf("failed to post board to %s: %w", channelID, err)
		}
	}
	return nil
}

// Chunk splits text into pieces of at most limit bytes, cutting at the last
// newline inside the limit when there is one and never inside a rune.
func Chunk(text string, limit int) []string {
	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
