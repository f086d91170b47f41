package investment_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NadavMozeson/typescript-discord-bot/internal/chat"
	"github.com/NadavMozeson/typescript-discord-bot/internal/config"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
	"github.com/NadavMozeson/typescript-discord-bot/internal/events"
	"github.com/NadavMozeson/typescript-discord-bot/internal/investment"
	"github.com/NadavMozeson/typescript-discord-bot/internal/mocks"
	"github.com/NadavMozeson/typescript-discord-bot/internal/retry"
	"github.com/NadavMozeson/typescript-discord-bot/internal/tracker"
)

var fastPolicy = retry.Policy{MaxAttempts: 5, PerAttemptTimeout: time.Second, Interval: time.Millisecond}

type staticFlags struct{}

func (staticFlags) Flag(context.Context, string) string { return "🇫🇷" }

type recordingNotifier struct {
	mu    sync.Mutex
	calls []chat.Message
}

func (n *recordingNotifier) Notify(_ context.Context, msg chat.Message, _ string) tracker.Report {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, msg)
	return tracker.Report{}
}

type fixture struct {
	t           *testing.T
	manager     *investment.Manager
	fetcher     *mocks.MockFetcher
	investments *mocks.MockInvestmentStore
	trackers    *mocks.MockTrackerStore
	chat        *mocks.MockSurface
	events      *mocks.MockPublisher
	notifier    *recordingNotifier
	images      *investment.ImageCache
}

const (
	mainGuild = "main-guild"
	vipGuild  = "vip-guild"
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	images, err := investment.NewImageCache(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		t:           t,
		fetcher:     mocks.NewMockFetcher(ctrl),
		investments: mocks.NewMockInvestmentStore(ctrl),
		trackers:    mocks.NewMockTrackerStore(ctrl),
		chat:        mocks.NewMockSurface(ctrl),
		events:      mocks.NewMockPublisher(ctrl),
		notifier:    &recordingNotifier{},
		images:      images,
	}
	cfg := investment.Config{
		MainGuildID:       mainGuild,
		VIPGuildID:        vipGuild,
		MainProfitChannel: "main-profit",
		VIPProfitChannel:  "vip-profit",
		MainExitChannel:   "main-exit",
		VIPExitChannel:    "vip-exit",
		MemberRoles:       map[string]string{mainGuild: "vip-role"},
		Emoji:             config.EmojiConfig{XBox: "X", PS: "P", PC: "C", Coins: "$"},
	}
	f.manager = investment.NewManager(cfg, investment.Deps{
		Fetcher:     f.fetcher,
		Investments: f.investments,
		Trackers:    f.trackers,
		Chat:        f.chat,
		Flags:       staticFlags{},
		Notifier:    f.notifier,
		Events:      f.events,
		Images:      images,
		Policy:      fastPolicy,
	})
	return f
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func openSnapshot(t *testing.T) *domain.Snapshot {
	return &domain.Snapshot{
		Name:            "Mbappe",
		Country:         "France",
		Rating:          "91",
		Card:            "TOTW",
		PriceConsole:    "12,000",
		MinConsolePrice: "11,400",
		PricePC:         "12,000",
		MinPCPrice:      "11,900",
		Image:           pngBytes(t, 10, 10),
	}
}

func TestOpen_AppliesDiscountAboveFloor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	url := "https://www.futbin.com/25/player/1/mbappe"

	f.fetcher.EXPECT().FetchByURL(gomock.Any(), url).Return(openSnapshot(t), nil)
	f.chat.EXPECT().GuildIcon(gomock.Any(), mainGuild).Return(nil, nil)
	f.chat.EXPECT().Send(gomock.Any(), "listing-channel", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msg chat.Message) (string, error) {
			assert.Contains(t, msg.Content, "## 🇫🇷 MBAPPE 91 🇫🇷")
			assert.Contains(t, msg.Content, "XP **:** 11,500 $")
			assert.Contains(t, msg.Content, "C **:** 11,900 $")
			assert.Contains(t, msg.Content, "||<@owner> **investment publisher** ||")
			require.Len(t, msg.Attachments, 1)
			assert.Equal(t, "image/png", msg.Attachments[0].ContentType)
			return "msg-1", nil
		})
	f.investments.EXPECT().CreateInvestment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv *domain.Investment) (*domain.Investment, error) {
			assert.True(t, decimal.NewFromInt(11500).Equal(inv.ConsolePrice))
			assert.True(t, decimal.NewFromInt(11900).Equal(inv.PCPrice))
			assert.Equal(t, "msg-1", inv.MessageID)
			assert.False(t, inv.VIP)
			out := *inv
			out.ID = "inv-1"
			return &out, nil
		})
	f.chat.EXPECT().Edit(gomock.Any(), "listing-channel", "msg-1", gomock.Any()).Return(nil)
	f.events.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e events.Event) error {
			assert.Equal(t, events.TypeOpened, e.Type)
			assert.Equal(t, "inv-1", e.InvestmentID)
			return nil
		})

	inv, err := f.manager.Open(ctx, investment.OpenRequest{
		Source:    investment.Source{URL: url},
		Risk:      "🟢 low",
		Discount:  decimal.NewFromInt(500),
		GuildID:   mainGuild,
		ChannelID: "listing-channel",
		UserID:    "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, "inv-1", inv.ID)

	cached, err := f.images.Load("msg-1")
	require.NoError(t, err)
	assert.NotEmpty(t, cached)
}

func TestOpen_IncompleteSnapshotsPostNothing(t *testing.T) {
	f := newFixture(t)
	partial := openSnapshot(t)
	partial.MinPCPrice = ""

	f.fetcher.EXPECT().FetchByRatingAndVersion(gomock.Any(), 84, domain.VersionTOTW).Return(partial, nil).Times(5)

	_, err := f.manager.Open(context.Background(), investment.OpenRequest{
		Source:    investment.Source{Rating: 84, Kind: domain.VersionTOTW},
		Discount:  decimal.NewFromInt(500),
		GuildID:   mainGuild,
		ChannelID: "listing-channel",
	})
	assert.ErrorIs(t, err, domain.ErrIncompleteSnapshot)
}

func TestOpen_VIPGuildMarksInvestment(t *testing.T) {
	f := newFixture(t)
	snap := openSnapshot(t)
	snap.Image = nil

	f.fetcher.EXPECT().FetchByURL(gomock.Any(), gomock.Any()).Return(snap, nil)
	f.chat.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return("msg-2", nil)
	f.investments.EXPECT().CreateInvestment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv *domain.Investment) (*domain.Investment, error) {
			assert.True(t, inv.VIP)
			inv.ID = "inv-2"
			return inv, nil
		})
	f.chat.EXPECT().Edit(gomock.Any(), gomock.Any(), "msg-2", gomock.Any()).Return(nil)
	f.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	_, err := f.manager.Open(context.Background(), investment.OpenRequest{
		Source:    investment.Source{URL: "https://www.futbin.com/25/player/2"},
		Discount:  decimal.Zero,
		GuildID:   vipGuild,
		ChannelID: "vip-listing",
	})
	require.NoError(t, err)
}

func openInvestment(vip bool) *domain.Investment {
	return &domain.Investment{
		ID:           "inv-1",
		Name:         "Mbappe",
		Nation:       "France",
		Rating:       "91",
		Card:         "TOTW",
		Link:         "https://www.futbin.com/25/player/1/mbappe",
		ChannelID:    "listing-channel",
		MessageID:    "msg-1",
		ConsolePrice: decimal.NewFromInt(10000),
		PCPrice:      decimal.NewFromInt(10000),
		VIP:          vip,
	}
}

func expectTerminal(f *fixture, outcome domain.Outcome) {
	f.chat.EXPECT().Edit(gomock.Any(), "listing-channel", "msg-1", tracker.DisabledButtons("inv-1")).Return(nil)
	f.investments.EXPECT().DeleteInvestment(gomock.Any(), "inv-1").Return(nil)
	f.events.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e events.Event) error {
			assert.Equal(f.t, events.TypeClosed, e.Type)
			assert.Equal(f.t, outcome, e.Outcome)
			assert.Equal(f.t, "inv-1", e.InvestmentID)
			return nil
		})
}

func TestClose_ProfitShowsLossGlyph(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.images.Save("msg-1", pngBytes(t, 8, 4)))

	f.investments.EXPECT().GetInvestment(gomock.Any(), "inv-1").Return(openInvestment(false), nil)
	f.fetcher.EXPECT().FetchByURL(gomock.Any(), gomock.Any()).Return(&domain.Snapshot{
		PriceConsole: "9,500",
		PricePC:      "10,500",
		Image:        pngBytes(t, 8, 4),
	}, nil)
	f.chat.EXPECT().GuildIcon(gomock.Any(), mainGuild).Return(nil, nil)
	f.chat.EXPECT().Send(gomock.Any(), "main-profit", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msg chat.Message) (string, error) {
			assert.Contains(t, msg.Content, "XP **:** ❌ $")
			assert.Contains(t, msg.Content, "C **:** +500 $")
			assert.Contains(t, msg.Content, "sell now")
			assert.NotContains(t, msg.Content, "premium")
			require.Len(t, msg.Attachments, 1)
			stacked, _, err := image.Decode(bytes.NewReader(msg.Attachments[0].Data))
			require.NoError(t, err)
			assert.Equal(t, 8, stacked.Bounds().Dy())
			return "profit-1", nil
		})
	expectTerminal(f, domain.OutcomeProfit)

	err := f.manager.Close(ctx, investment.CloseRequest{InvestmentID: "inv-1", Outcome: domain.OutcomeProfit, Annotation: "sell now"})
	require.NoError(t, err)

	require.Len(t, f.notifier.calls, 1)
	cached, err := f.images.Load("msg-1")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestClose_VIPProfitPostsToBothChannels(t *testing.T) {
	f := newFixture(t)

	f.investments.EXPECT().GetInvestment(gomock.Any(), "inv-1").Return(openInvestment(true), nil)
	f.fetcher.EXPECT().FetchByURL(gomock.Any(), gomock.Any()).Return(&domain.Snapshot{
		PriceConsole: "12,000",
		PricePC:      "12,000",
		Image:        pngBytes(t, 4, 4),
	}, nil)
	f.chat.EXPECT().GuildIcon(gomock.Any(), vipGuild).Return(nil, nil)
	gomock.InOrder(
		f.chat.EXPECT().Send(gomock.Any(), "vip-profit", gomock.Any()).Return("p1", nil),
		f.chat.EXPECT().Send(gomock.Any(), "main-profit", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, msg chat.Message) (string, error) {
				assert.Contains(t, msg.Content, "premium members only")
				return "p2", nil
			}),
	)
	expectTerminal(f, domain.OutcomeProfit)

	require.NoError(t, f.manager.Close(context.Background(), investment.CloseRequest{InvestmentID: "inv-1", Outcome: domain.OutcomeProfit}))
}

func TestClose_ProfitIncompleteHasNoSideEffects(t *testing.T) {
	f := newFixture(t)

	f.investments.EXPECT().GetInvestment(gomock.Any(), "inv-1").Return(openInvestment(false), nil)
	f.fetcher.EXPECT().FetchByURL(gomock.Any(), gomock.Any()).Return(&domain.Snapshot{PriceConsole: "9,500"}, nil).Times(5)

	err := f.manager.Close(context.Background(), investment.CloseRequest{InvestmentID: "inv-1", Outcome: domain.OutcomeProfit})
	assert.ErrorIs(t, err, domain.ErrIncompleteSnapshot)
	assert.Empty(t, f.notifier.calls)
}

func TestClose_FirstExitWithoutImageHasNoSideEffects(t *testing.T) {
	f := newFixture(t)

	f.investments.EXPECT().GetInvestment(gomock.Any(), "inv-1").Return(openInvestment(false), nil).Times(2)
	f.fetcher.EXPECT().FetchByURL(gomock.Any(), gomock.Any()).Return(&domain.Snapshot{PricePC: "1"}, nil).Times(10)

	for _, outcome := range []domain.Outcome{domain.OutcomeFirstExit, domain.OutcomeEarlyExit} {
		err := f.manager.Close(context.Background(), investment.CloseRequest{InvestmentID: "inv-1", Outcome: outcome})
		assert.ErrorIs(t, err, domain.ErrIncompleteSnapshot, outcome)
	}
	assert.Empty(t, f.notifier.calls)
}

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestClose_FirstExitWatermarksImage(t *testing.T) {
	f := newFixture(t)
	red := color.RGBA{R: 255, A: 255}

	f.investments.EXPECT().GetInvestment(gomock.Any(), "inv-1").Return(openInvestment(false), nil)
	f.fetcher.EXPECT().FetchByURL(gomock.Any(), gomock.Any()).
		Return(&domain.Snapshot{Image: solidPNG(t, 700, 300, color.White)}, nil)
	f.chat.EXPECT().GuildIcon(gomock.Any(), mainGuild).Return(solidPNG(t, 10, 10, red), nil)
	f.chat.EXPECT().Send(gomock.Any(), "main-exit", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msg chat.Message) (string, error) {
			assert.True(t, strings.HasPrefix(msg.Content, "## ✅ first exit ✅\n### 🇫🇷 MBAPPE 91 🇫🇷"))
			require.Len(t, msg.Attachments, 1)
			img, _, err := image.Decode(bytes.NewReader(msg.Attachments[0].Data))
			require.NoError(t, err)
			assert.Equal(t, color.RGBAModel.Convert(red), color.RGBAModel.Convert(img.At(420, 150)))
			assert.Equal(t, color.RGBAModel.Convert(color.White), color.RGBAModel.Convert(img.At(0, 0)))
			return "exit-1", nil
		})
	expectTerminal(f, domain.OutcomeFirstExit)

	require.NoError(t, f.manager.Close(context.Background(), investment.CloseRequest{InvestmentID: "inv-1", Outcome: domain.OutcomeFirstExit}))
	assert.Len(t, f.notifier.calls, 1)
}

func TestClose_EarlyExitOnRatingListingUsesVIPChannel(t *testing.T) {
	f := newFixture(t)
	inv := openInvestment(true)
	inv.Name = "84 Rated TOTW Players"
	inv.Card = domain.FoderCard
	inv.Rating = ""

	f.investments.EXPECT().GetInvestment(gomock.Any(), "inv-1").Return(inv, nil)
	f.fetcher.EXPECT().FetchByRatingAndVersion(gomock.Any(), 84, domain.VersionTOTW).
		Return(&domain.Snapshot{Image: pngBytes(t, 2, 2)}, nil)
	f.chat.EXPECT().GuildIcon(gomock.Any(), vipGuild).Return(nil, nil)
	f.chat.EXPECT().Send(gomock.Any(), "vip-exit", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msg chat.Message) (string, error) {
			assert.True(t, strings.HasPrefix(msg.Content, "## time to sell\n### 🇫🇷 84 RATED TOTW PLAYERS 🇫🇷"))
			assert.Len(t, msg.Attachments, 1)
			return "exit-2", nil
		})
	expectTerminal(f, domain.OutcomeEarlyExit)

	require.NoError(t, f.manager.Close(context.Background(), investment.CloseRequest{InvestmentID: "inv-1", Outcome: domain.OutcomeEarlyExit}))
}

func TestClose_UnknownInvestment(t *testing.T) {
	f := newFixture(t)
	f.investments.EXPECT().GetInvestment(gomock.Any(), "gone").Return(nil, nil)

	err := f.manager.Close(context.Background(), investment.CloseRequest{InvestmentID: "gone", Outcome: domain.OutcomeProfit})
	assert.ErrorIs(t, err, domain.ErrInvestmentNotFound)

	err = f.manager.Close(context.Background(), investment.CloseRequest{InvestmentID: "gone", Outcome: "refund"})
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
}

func TestConfirmDeleteAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.investments.EXPECT().GetInvestment(gomock.Any(), "inv-1").Return(openInvestment(false), nil).Times(2)

	msg, err := f.manager.ConfirmDelete(ctx, "inv-1")
	require.NoError(t, err)
	assert.Contains(t, msg.Content, "https://discord.com/channels/main-guild/listing-channel/msg-1")
	row := msg.Components[0].(discordgo.ActionsRow)
	button := row.Components[0].(discordgo.Button)
	assert.Equal(t, investment.ConfirmDeletePrefix+"inv-1", button.CustomID)
	assert.Equal(t, discordgo.DangerButton, button.Style)

	expectTerminal(f, "")
	require.NoError(t, f.manager.Delete(ctx, "inv-1"))
	assert.Empty(t, f.notifier.calls)
}

func TestTrack(t *testing.T) {
	ctx := context.Background()
	req := investment.TrackRequest{GuildID: mainGuild, UserID: "u1", InvestmentID: "inv-1"}

	t.Run("not a member", func(t *testing.T) {
		f := newFixture(t)
		f.chat.EXPECT().HasRole(gomock.Any(), mainGuild, "u1", "vip-role").Return(false, nil)

		_, err := f.manager.Track(ctx, req)
		assert.ErrorIs(t, err, domain.ErrNotMember)
	})

	t.Run("guild without tracker role", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.manager.Track(ctx, investment.TrackRequest{GuildID: "elsewhere", UserID: "u1", InvestmentID: "inv-1"})
		assert.ErrorIs(t, err, domain.ErrNotMember)
	})

	t.Run("added then already tracking", func(t *testing.T) {
		f := newFixture(t)
		f.chat.EXPECT().HasRole(gomock.Any(), mainGuild, "u1", "vip-role").Return(true, nil).Times(2)
		f.investments.EXPECT().GetInvestment(gomock.Any(), "inv-1").Return(openInvestment(false), nil).Times(2)
		gomock.InOrder(
			f.trackers.EXPECT().SubscriptionExists(gomock.Any(), "u1", "inv-1").Return(false, nil),
			f.trackers.EXPECT().CreateSubscription(gomock.Any(), "u1", "inv-1").Return(nil),
			f.trackers.EXPECT().SubscriptionExists(gomock.Any(), "u1", "inv-1").Return(true, nil),
		)

		res, err := f.manager.Track(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, investment.TrackAdded, res)

		res, err = f.manager.Track(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, investment.TrackAlreadyTracking, res)
	})

	t.Run("untrack", func(t *testing.T) {
		f := newFixture(t)
		f.chat.EXPECT().HasRole(gomock.Any(), mainGuild, "u1", "vip-role").Return(true, nil).Times(2)
		gomock.InOrder(
			f.trackers.EXPECT().SubscriptionExists(gomock.Any(), "u1", "inv-1").Return(true, nil),
			f.trackers.EXPECT().DeleteSubscription(gomock.Any(), "u1", "inv-1").Return(nil),
			f.trackers.EXPECT().SubscriptionExists(gomock.Any(), "u1", "inv-1").Return(false, nil),
		)

		res, err := f.manager.Untrack(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, investment.TrackRemoved, res)

		res, err = f.manager.Untrack(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, investment.TrackNotTracking, res)
	})
}

func TestList_OldestFirst(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.investments.EXPECT().ListInvestments(gomock.Any()).Return([]*domain.Investment{
		{ID: "new", CreatedAt: now},
		{ID: "old", CreatedAt: now.Add(-time.Hour)},
	}, nil)

	invs, err := f.manager.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "old", invs[0].ID)
	assert.Equal(t, "new", invs[1].ID)
}
