package investment

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/adapter"
	"github.com/NadavMozeson/typescript-discord-bot/internal/chat"
	"github.com/NadavMozeson/typescript-discord-bot/internal/config"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
	"github.com/NadavMozeson/typescript-discord-bot/internal/events"
	"github.com/NadavMozeson/typescript-discord-bot/internal/fetcher"
	"github.com/NadavMozeson/typescript-discord-bot/internal/imaging"
	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
	"github.com/NadavMozeson/typescript-discord-bot/internal/pricing"
	"github.com/NadavMozeson/typescript-discord-bot/internal/retry"
	"github.com/NadavMozeson/typescript-discord-bot/internal/store"
	"github.com/NadavMozeson/typescript-discord-bot/internal/tracker"
)

// Config holds the guild and channel layout the manager posts into
type Config struct {
	MainGuildID       string
	VIPGuildID        string
	MainProfitChannel string
	VIPProfitChannel  string
	MainExitChannel   string
	VIPExitChannel    string
	// MemberRoles maps a guild id to the role that may use trackers there
	MemberRoles    map[string]string
	PremiumInfoURL string
	Emoji          config.EmojiConfig
}

// NewConfig derives the manager layout from the bot configuration
func NewConfig(cfg *config.BotConfig) Config {
	c := Config{
		MainGuildID:       cfg.MainGuild.ID,
		VIPGuildID:        cfg.VIPGuild.ID,
		MainProfitChannel: cfg.MainGuild.Channels.Profit,
		VIPProfitChannel:  cfg.VIPGuild.Channels.Profit,
		MainExitChannel:   cfg.MainGuild.Channels.FirstExit,
		VIPExitChannel:    cfg.VIPGuild.Channels.FirstExit,
		MemberRoles: map[string]string{
			cfg.MainGuild.ID: cfg.MainGuild.Roles.VIP,
			cfg.VIPGuild.ID:  cfg.VIPGuild.Roles.VIP,
		},
		Emoji: cfg.Emoji,
	}
	if cfg.MainGuild.Channels.VIPHelp != "" {
		c.PremiumInfoURL = fmt.Sprintf("https://discord.com/channels/%s/%s", cfg.MainGuild.ID, cfg.MainGuild.Channels.VIPHelp)
	}
	return c
}

// Notifier delivers a closing announcement to the trackers of an investment
type Notifier interface {
	Notify(ctx context.Context, msg chat.Message, investmentID string) tracker.Report
}

// BoardRefresher reposts the tracker board
type BoardRefresher interface {
	Refresh(ctx context.Context) error
}

// Deps are the collaborators of a Manager. Board, Events and Images are optional.
type Deps struct {
	Fetcher     fetcher.Fetcher
	Investments store.InvestmentStore
	Trackers    store.TrackerStore
	Chat        chat.Surface
	Flags       tracker.FlagResolver
	Notifier    Notifier
	Board       BoardRefresher
	Events      events.Publisher
	Images      *ImageCache
	Clock       adapter.Clock
	Policy      retry.Policy
}

// Manager drives investments from creation to their terminal outcome
type Manager struct {
	cfg         Config
	fetcher     fetcher.Fetcher
	investments store.InvestmentStore
	trackers    store.TrackerStore
	chat        chat.Surface
	flags       tracker.FlagResolver
	notifier    Notifier
	board       BoardRefresher
	events      events.Publisher
	images      *ImageCache
	clock       adapter.Clock
	policy      retry.Policy
	compose     composer
}

func NewManager(cfg Config, deps Deps) *Manager {
	m := &Manager{
		cfg:         cfg,
		fetcher:     deps.Fetcher,
		investments: deps.Investments,
		trackers:    deps.Trackers,
		chat:        deps.Chat,
		flags:       deps.Flags,
		notifier:    deps.Notifier,
		board:       deps.Board,
		events:      deps.Events,
		images:      deps.Images,
		clock:       deps.Clock,
		policy:      deps.Policy,
		compose:     composer{emoji: cfg.Emoji, premiumURL: cfg.PremiumInfoURL},
	}
	if m.events == nil {
		m.events = events.Nop{}
	}
	if m.clock == nil {
		m.clock = adapter.NewClock()
	}
	if m.policy.MaxAttempts == 0 {
		m.policy = retry.DefaultPolicy
	}
	return m
}

// Source says where a snapshot comes from: a player page, or the cheapest
// listing of a rating when URL is empty.
type Source struct {
	URL    string
	Rating int
	Kind   domain.VersionKind
}

func sourceOf(inv *domain.Investment) Source {
	if inv.IsRatingListing() {
		if rating, kind, ok := fetcher.RatingSource(inv.Name); ok {
			return Source{Rating: rating, Kind: kind}
		}
	}
	return Source{URL: inv.Link}
}

// OpenRequest creates a listing
type OpenRequest struct {
	Source    Source
	Risk      string
	Discount  decimal.Decimal
	GuildID   string
	ChannelID string
	UserID    string
}

// CloseRequest ends a listing with an announced outcome
type CloseRequest struct {
	InvestmentID string
	Outcome      domain.Outcome
	// Annotation is the operator's free text appended to the announcement
	Annotation string
}

// TrackRequest subscribes or unsubscribes the acting user
type TrackRequest struct {
	GuildID      string
	UserID       string
	InvestmentID string
}

// TrackResult is the outcome of a tracker button press
type TrackResult int

const (
	TrackAdded TrackResult = iota + 1
	TrackAlreadyTracking
	TrackRemoved
	TrackNotTracking
)

// Message is the ephemeral reply for r
func (r TrackResult) Message() string {
	switch r {
	case TrackAdded:
		return "✅ The investment was added to your tracking list ✅"
	case TrackAlreadyTracking:
		return "❕ You are already tracking this investment ❕"
	case TrackRemoved:
		return "❌ The investment was removed from your tracking list ❌"
	case TrackNotTracking:
		return "❕ You are not tracking this investment ❕"
	}
	return ""
}

// Search lists products matching query
func (m *Manager) Search(ctx context.Context, query string) ([]fetcher.SearchResult, error) {
	var results []fetcher.SearchResult
	err := retry.Do(ctx, m.policy, "search", func(ctx context.Context) error {
		var err error
		results, err = m.fetcher.Search(ctx, query)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(results) > MaxMenus*MaxOptions {
		results = results[:MaxMenus*MaxOptions]
	}
	return results, nil
}

type offers struct {
	console decimal.Decimal
	pc      decimal.Decimal
}

func offersFrom(snap *domain.Snapshot, discount decimal.Decimal) (offers, error) {
	console, err := pricing.OfferFromText(snap.PriceConsole, snap.MinConsolePrice, discount)
	if err != nil {
		return offers{}, fmt.Errorf("console price: %w", err)
	}
	pc, err := pricing.OfferFromText(snap.PricePC, snap.MinPCPrice, discount)
	if err != nil {
		return offers{}, fmt.Errorf("pc price: %w", err)
	}
	return offers{console: console, pc: pc}, nil
}

// Open fetches a complete snapshot, posts the listing and records it.
// Nothing is posted or stored when the snapshot stays incomplete.
func (m *Manager) Open(ctx context.Context, req OpenRequest) (*domain.Investment, error) {
	snap, ok, err := m.fetch(ctx, req.Source, func(s *domain.Snapshot) bool {
		if !s.Has(domain.OpenFields) {
			return false
		}
		_, err := offersFrom(s, req.Discount)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrIncompleteSnapshot
	}
	prices, _ := offersFrom(snap, req.Discount)

	inv := &domain.Investment{
		Name:         snap.Name,
		Nation:       snap.Country,
		Rating:       snap.Rating,
		Card:         snap.Card,
		Link:         req.Source.URL,
		Risk:         req.Risk,
		ChannelID:    req.ChannelID,
		PublisherID:  req.UserID,
		ConsolePrice: prices.console,
		PCPrice:      prices.pc,
		VIP:          req.GuildID != "" && req.GuildID == m.cfg.VIPGuildID,
	}
	if req.Source.URL == "" {
		inv.Link = domain.CheapestLink
	}

	flag := m.flags.Flag(ctx, inv.Nation)
	msg := chat.Message{Content: m.compose.opening(inv, flag, pricing.FormatCoins(prices.console), pricing.FormatCoins(prices.pc))}
	image := m.watermark(ctx, req.GuildID, snap.Image)
	if len(image) > 0 {
		msg.Attachments = []chat.Attachment{attachment("investment", image)}
	}

	messageID, err := m.chat.Send(ctx, req.ChannelID, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to post investment: %w", err)
	}
	inv.MessageID = messageID

	created, err := m.investments.CreateInvestment(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("failed to save investment: %w", err)
	}

	if len(image) > 0 && m.images != nil {
		if err := m.images.Save(messageID, image); err != nil {
			logger.WarnCtx(ctx, "Failed to cache investment image", zap.String("message_id", messageID), zap.Error(err))
		}
	}
	if err := m.chat.Edit(ctx, req.ChannelID, messageID, tracker.Buttons(created)); err != nil {
		logger.WarnCtx(ctx, "Failed to attach tracker buttons", zap.String("investment_id", created.ID), zap.Error(err))
	}

	logger.InfoCtx(ctx, "Investment opened",
		zap.String("investment_id", created.ID),
		zap.String("name", created.Name),
		zap.Bool("vip", created.VIP))
	m.publish(ctx, events.TypeOpened, created, "")
	m.refreshBoard(ctx)
	return created, nil
}

// Close announces the outcome of an open investment, notifies its trackers
// and deletes it. Every outcome deletes the record.
func (m *Manager) Close(ctx context.Context, req CloseRequest) error {
	if !req.Outcome.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownAction, req.Outcome)
	}
	inv, err := m.get(ctx, req.InvestmentID)
	if err != nil {
		return err
	}

	var (
		msg      chat.Message
		channels []string
	)
	if req.Outcome == domain.OutcomeProfit {
		msg, err = m.profitAnnouncement(ctx, inv, req.Annotation)
		if err != nil {
			return err
		}
		if inv.VIP {
			channels = append(channels, m.cfg.VIPProfitChannel)
		}
		channels = append(channels, m.cfg.MainProfitChannel)
	} else {
		msg, err = m.exitAnnouncement(ctx, inv, req.Outcome, req.Annotation)
		if err != nil {
			return err
		}
		if inv.VIP {
			channels = append(channels, m.cfg.VIPExitChannel)
		} else {
			channels = append(channels, m.cfg.MainExitChannel)
		}
	}

	for _, channelID := range channels {
		if channelID == "" {
			continue
		}
		if _, err := m.chat.Send(ctx, channelID, msg); err != nil {
			return fmt.Errorf("failed to post %s: %w", req.Outcome, err)
		}
	}

	m.notifier.Notify(ctx, msg, inv.ID)
	return m.finish(ctx, inv, req.Outcome)
}

func (m *Manager) profitAnnouncement(ctx context.Context, inv *domain.Investment, annotation string) (chat.Message, error) {
	snap, ok, err := m.fetch(ctx, sourceOf(inv), func(s *domain.Snapshot) bool {
		if !s.Has(domain.ProfitFields) {
			return false
		}
		_, cerr := pricing.ParseCoins(s.PriceConsole)
		_, perr := pricing.ParseCoins(s.PricePC)
		return cerr == nil && perr == nil
	})
	if err != nil {
		return chat.Message{}, err
	}
	if !ok {
		return chat.Message{}, domain.ErrIncompleteSnapshot
	}

	freshConsole, _ := pricing.ParseCoins(snap.PriceConsole)
	freshPC, _ := pricing.ParseCoins(snap.PricePC)
	console := pricing.ProfitLabel(pricing.Profit(freshConsole, inv.ConsolePrice))
	pc := pricing.ProfitLabel(pricing.Profit(freshPC, inv.PCPrice))

	flag := m.flags.Flag(ctx, inv.Nation)
	msg := chat.Message{Content: m.compose.profit(inv, flag, console, pc, annotation)}
	fresh := m.watermark(ctx, m.guildOf(inv), snap.Image)
	if image := m.profitImage(ctx, inv, fresh); len(image) > 0 {
		msg.Attachments = []chat.Attachment{attachment("profit", image)}
	}
	return msg, nil
}

// exitAnnouncement needs only the fresh screenshot. Without it nothing is
// posted and the investment stays open.
func (m *Manager) exitAnnouncement(ctx context.Context, inv *domain.Investment, outcome domain.Outcome, annotation string) (chat.Message, error) {
	snap, ok, err := m.fetch(ctx, sourceOf(inv), func(s *domain.Snapshot) bool {
		return s.Has(domain.ExitFields)
	})
	if err != nil {
		return chat.Message{}, err
	}
	if !ok {
		return chat.Message{}, domain.ErrIncompleteSnapshot
	}

	flag := m.flags.Flag(ctx, inv.Nation)
	msg := chat.Message{Content: m.compose.exit(outcome, inv, flag, annotation)}
	if image := m.watermark(ctx, m.guildOf(inv), snap.Image); len(image) > 0 {
		msg.Attachments = []chat.Attachment{attachment("exit", image)}
	}
	return msg, nil
}

// ConfirmDelete renders the confirmation prompt for deleting an investment
func (m *Manager) ConfirmDelete(ctx context.Context, id string) (chat.Message, error) {
	inv, err := m.get(ctx, id)
	if err != nil {
		return chat.Message{}, err
	}
	return chat.Message{
		Content:    "## Confirm deletion\nMessage: " + inv.MessageURL(m.guildOf(inv)),
		Components: confirmDeleteButtons(inv.ID),
	}, nil
}

// Delete removes an investment without announcing an outcome
func (m *Manager) Delete(ctx context.Context, id string) error {
	inv, err := m.get(ctx, id)
	if err != nil {
		return err
	}
	return m.finish(ctx, inv, "")
}

// finish runs the shared tail of every terminal transition
func (m *Manager) finish(ctx context.Context, inv *domain.Investment, outcome domain.Outcome) error {
	if err := m.chat.Edit(ctx, inv.ChannelID, inv.MessageID, tracker.DisabledButtons(inv.ID)); err != nil {
		logger.WarnCtx(ctx, "Failed to disable tracker buttons", zap.String("investment_id", inv.ID), zap.Error(err))
	}
	if err := m.investments.DeleteInvestment(ctx, inv.ID); err != nil {
		return fmt.Errorf("failed to delete investment: %w", err)
	}
	if m.images != nil {
		if err := m.images.Remove(inv.MessageID); err != nil {
			logger.WarnCtx(ctx, "Failed to remove cached image", zap.String("message_id", inv.MessageID), zap.Error(err))
		}
	}

	logger.InfoCtx(ctx, "Investment closed",
		zap.String("investment_id", inv.ID),
		zap.String("outcome", string(outcome)))
	m.publish(ctx, events.TypeClosed, inv, outcome)
	m.refreshBoard(ctx)
	return nil
}

// Track subscribes the acting member to an investment
func (m *Manager) Track(ctx context.Context, req TrackRequest) (TrackResult, error) {
	if err := m.requireMember(ctx, req); err != nil {
		return 0, err
	}
	if _, err := m.get(ctx, req.InvestmentID); err != nil {
		return 0, err
	}

	exists, err := m.trackers.SubscriptionExists(ctx, req.UserID, req.InvestmentID)
	if err != nil {
		return 0, fmt.Errorf("failed to check tracker: %w", err)
	}
	if exists {
		return TrackAlreadyTracking, nil
	}
	if err := m.trackers.CreateSubscription(ctx, req.UserID, req.InvestmentID); err != nil {
		if errors.Is(err, domain.ErrAlreadyTracking) {
			return TrackAlreadyTracking, nil
		}
		return 0, fmt.Errorf("failed to add tracker: %w", err)
	}
	return TrackAdded, nil
}

// Untrack removes the acting member's subscription
func (m *Manager) Untrack(ctx context.Context, req TrackRequest) (TrackResult, error) {
	if err := m.requireMember(ctx, req); err != nil {
		return 0, err
	}

	exists, err := m.trackers.SubscriptionExists(ctx, req.UserID, req.InvestmentID)
	if err != nil {
		return 0, fmt.Errorf("failed to check tracker: %w", err)
	}
	if !exists {
		return TrackNotTracking, nil
	}
	if err := m.trackers.DeleteSubscription(ctx, req.UserID, req.InvestmentID); err != nil {
		if errors.Is(err, domain.ErrNotTracking) {
			return TrackNotTracking, nil
		}
		return 0, fmt.Errorf("failed to remove tracker: %w", err)
	}
	return TrackRemoved, nil
}

// List returns open investments, oldest first
func (m *Manager) List(ctx context.Context) ([]*domain.Investment, error) {
	invs, err := m.investments.ListInvestments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	sort.SliceStable(invs, func(i, j int) bool {
		return invs[i].CreatedAt.Before(invs[j].CreatedAt)
	})
	return invs, nil
}

func (m *Manager) requireMember(ctx context.Context, req TrackRequest) error {
	role := m.cfg.MemberRoles[req.GuildID]
	if role == "" {
		return domain.ErrNotMember
	}
	ok, err := m.chat.HasRole(ctx, req.GuildID, req.UserID, role)
	if err != nil {
		return fmt.Errorf("failed to check member role: %w", err)
	}
	if !ok {
		return domain.ErrNotMember
	}
	return nil
}

func (m *Manager) get(ctx context.Context, id string) (*domain.Investment, error) {
	inv, err := m.investments.GetInvestment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load investment: %w", err)
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvestmentNotFound, id)
	}
	return inv, nil
}

func (m *Manager) fetch(ctx context.Context, src Source, complete func(*domain.Snapshot) bool) (*domain.Snapshot, bool, error) {
	return retry.Until(ctx, m.policy, "fetch snapshot",
		func(ctx context.Context) (*domain.Snapshot, error) {
			if src.URL != "" {
				return m.fetcher.FetchByURL(ctx, src.URL)
			}
			return m.fetcher.FetchByRatingAndVersion(ctx, src.Rating, src.Kind)
		},
		complete,
	)
}

func (m *Manager) watermark(ctx context.Context, guildID string, image []byte) []byte {
	if len(image) == 0 {
		return nil
	}
	icon, err := m.chat.GuildIcon(ctx, guildID)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to load guild icon", zap.String("guild_id", guildID), zap.Error(err))
		return image
	}
	out, err := imaging.Watermark(image, icon)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to watermark image", zap.Error(err))
		return image
	}
	return out
}

// profitImage stacks the fresh screenshot above the one posted at opening
func (m *Manager) profitImage(ctx context.Context, inv *domain.Investment, fresh []byte) []byte {
	if m.images == nil {
		return fresh
	}
	opening, err := m.images.Load(inv.MessageID)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to load cached image", zap.String("message_id", inv.MessageID), zap.Error(err))
	}
	if len(opening) == 0 {
		return fresh
	}
	stacked, err := imaging.Stack(fresh, opening)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to build profit image", zap.Error(err))
		return fresh
	}
	return stacked
}

func (m *Manager) guildOf(inv *domain.Investment) string {
	if inv.VIP && m.cfg.VIPGuildID != "" {
		return m.cfg.VIPGuildID
	}
	return m.cfg.MainGuildID
}

func (m *Manager) publish(ctx context.Context, t events.Type, inv *domain.Investment, outcome domain.Outcome) {
	if err := m.events.Publish(ctx, events.NewEvent(t, inv, outcome, m.clock.Now())); err != nil {
		logger.WarnCtx(ctx, "Failed to publish investment event", zap.String("investment_id", inv.ID), zap.Error(err))
	}
}

func (m *Manager) refreshBoard(ctx context.Context) {
	if m.board == nil {
		return
	}
	if err := m.board.Refresh(ctx); err != nil {
		logger.WarnCtx(ctx, "Failed to refresh tracker board", zap.Error(err))
	}
}

func attachment(name string, data []byte) chat.Attachment {
	return chat.Attachment{
		Name:        name + imaging.Extension(data),
		ContentType: imaging.ContentType(data),
		Data:        data,
	}
}
