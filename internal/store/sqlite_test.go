package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NadavMozeson/typescript-discord-bot/internal/adapter"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:", adapter.NewClock())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleInvestment(messageID string) *domain.Investment {
	return &domain.Investment{
		Name:         "Mbappe",
		Nation:       "France",
		Rating:       "91",
		Card:         "TOTW",
		Link:         "https://www.futbin.com/25/player/1/mbappe",
		Risk:         "🟢 low",
		ChannelID:    "chan-1",
		MessageID:    messageID,
		PublisherID:  "owner-1",
		ConsolePrice: decimal.NewFromInt(11500),
		PCPrice:      decimal.NewFromInt(11900),
	}
}

func TestInvestment_CreateGetList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateInvestment(ctx, sampleInvestment("m1"))
	require.NoError(t, err)
	assert.Len(t, created.ID, 26)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetInvestment(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Mbappe", got.Name)
	assert.True(t, decimal.NewFromInt(11500).Equal(got.ConsolePrice))
	assert.True(t, decimal.NewFromInt(11900).Equal(got.PCPrice))
	assert.False(t, got.VIP)

	vip := sampleInvestment("m2")
	vip.VIP = true
	_, err = s.CreateInvestment(ctx, vip)
	require.NoError(t, err)

	all, err := s.ListInvestments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInvestment_GetUnknown(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetInvestment(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestInvestment_UniqueMessage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateInvestment(ctx, sampleInvestment("m1"))
	require.NoError(t, err)
	_, err = s.CreateInvestment(ctx, sampleInvestment("m1"))
	assert.Error(t, err)
}

func TestDeleteInvestment_CascadesOnlyItsSubscriptions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.CreateInvestment(ctx, sampleInvestment("m1"))
	require.NoError(t, err)
	b, err := s.CreateInvestment(ctx, sampleInvestment("m2"))
	require.NoError(t, err)

	for _, user := range []string{"u1", "u2", "u3"} {
		require.NoError(t, s.CreateSubscription(ctx, user, a.ID))
	}
	require.NoError(t, s.CreateSubscription(ctx, "u1", b.ID))

	require.NoError(t, s.DeleteInvestment(ctx, a.ID))

	got, err := s.GetInvestment(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	subs, err := s.SubscriptionsFor(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	subs, err = s.SubscriptionsFor(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "u1", subs[0].UserID)
}

func TestSubscriptions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	exists, err := s.SubscriptionExists(ctx, "u1", "inv")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.CreateSubscription(ctx, "u1", "inv"))
	assert.ErrorIs(t, s.CreateSubscription(ctx, "u1", "inv"), domain.ErrAlreadyTracking)

	exists, err = s.SubscriptionExists(ctx, "u1", "inv")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.DeleteSubscription(ctx, "u1", "inv"))
	assert.ErrorIs(t, s.DeleteSubscription(ctx, "u1", "inv"), domain.ErrNotTracking)

	require.NoError(t, s.CreateSubscription(ctx, "u1", "inv"))
	require.NoError(t, s.CreateSubscription(ctx, "u2", "inv"))
	require.NoError(t, s.DeleteSubscriptionsFor(ctx, "inv"))
	subs, err := s.SubscriptionsFor(ctx, "inv")
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestTickets(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateTicket(ctx, domain.Ticket{UserID: "u1", ChannelID: "c1", Reason: domain.TicketVIP}))
	assert.ErrorIs(t, s.CreateTicket(ctx, domain.Ticket{UserID: "u1", ChannelID: "c2", Reason: domain.TicketGeneral}), domain.ErrTicketExists)

	byUser, err := s.TicketByUser(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, byUser)
	assert.Equal(t, "c1", byUser.ChannelID)
	assert.Equal(t, domain.TicketVIP, byUser.Reason)

	byChannel, err := s.TicketByChannel(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, byChannel)
	assert.Equal(t, "u1", byChannel.UserID)

	require.NoError(t, s.DeleteTicket(ctx, "c1"))
	byUser, err = s.TicketByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, byUser)
}

func TestRooms(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveRoom(ctx, domain.Room{UserID: "u1", ChannelID: "c1", VIP: true}))
	require.NoError(t, s.SaveRoom(ctx, domain.Room{UserID: "u1", ChannelID: "c2", VIP: true}))
	require.NoError(t, s.SaveRoom(ctx, domain.Room{UserID: "u2", ChannelID: "c3"}))

	room, err := s.RoomByUser(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, "c2", room.ChannelID)
	assert.True(t, room.VIP)

	rooms, err := s.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)

	require.NoError(t, s.DeleteRoom(ctx, "u1"))
	room, err = s.RoomByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, room)
}

func TestFAQs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	faq, err := s.CreateFAQ(ctx, "How do I join VIP?", "Through the website.")
	require.NoError(t, err)
	assert.Len(t, faq.ID, 26)

	got, err := s.GetFAQ(ctx, faq.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Through the website.", got.Answer)

	missing, err := s.GetFAQ(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := s.ListFAQs(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
