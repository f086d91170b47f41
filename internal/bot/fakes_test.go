package bot_test

import (
	"context"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/NadavMozeson/typescript-discord-bot/internal/adapter"
	"github.com/NadavMozeson/typescript-discord-bot/internal/bot"
	"github.com/NadavMozeson/typescript-discord-bot/internal/chat"
	"github.com/NadavMozeson/typescript-discord-bot/internal/community"
	"github.com/NadavMozeson/typescript-discord-bot/internal/config"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
	"github.com/NadavMozeson/typescript-discord-bot/internal/fetcher"
	"github.com/NadavMozeson/typescript-discord-bot/internal/investment"
	"github.com/NadavMozeson/typescript-discord-bot/internal/selection"
)

const (
	owner   = "owner"
	guildID = "main-guild"
)

// fakeSession records interaction answers
type fakeSession struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
	synced    []string
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) ApplicationCommandBulkOverwrite(_ string, guildID string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synced = append(f.synced, guildID)
	return commands, nil
}

// lastReply is the content of the last immediate answer
func (f *fakeSession) lastReply() *discordgo.InteractionResponseData {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		return nil
	}
	return f.responses[len(f.responses)-1].Data
}

// lastEdit is the content of the last deferred answer
func (f *fakeSession) lastEdit() *discordgo.WebhookEdit {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.edits) == 0 {
		return nil
	}
	return f.edits[len(f.edits)-1]
}

// fakeInvestments records lifecycle calls and returns canned answers
type fakeInvestments struct {
	results  []fetcher.SearchResult
	open     []*domain.Investment
	openErr  error
	closeErr error
	trackErr error

	opened  []investment.OpenRequest
	closed  []investment.CloseRequest
	deleted []string
	tracked []investment.TrackRequest
}

func (f *fakeInvestments) Search(context.Context, string) ([]fetcher.SearchResult, error) {
	return f.results, nil
}

func (f *fakeInvestments) Open(_ context.Context, req investment.OpenRequest) (*domain.Investment, error) {
	f.opened = append(f.opened, req)
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &domain.Investment{ID: "inv-new"}, nil
}

func (f *fakeInvestments) Close(_ context.Context, req investment.CloseRequest) error {
	f.closed = append(f.closed, req)
	return f.closeErr
}

func (f *fakeInvestments) ConfirmDelete(_ context.Context, id string) (chat.Message, error) {
	for _, inv := range f.open {
		if inv.ID == id {
			return chat.Message{Content: "Delete " + inv.Name + "?"}, nil
		}
	}
	return chat.Message{}, domain.ErrInvestmentNotFound
}

func (f *fakeInvestments) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeInvestments) Track(_ context.Context, req investment.TrackRequest) (investment.TrackResult, error) {
	f.tracked = append(f.tracked, req)
	return investment.TrackAdded, f.trackErr
}

func (f *fakeInvestments) Untrack(_ context.Context, req investment.TrackRequest) (investment.TrackResult, error) {
	f.tracked = append(f.tracked, req)
	return investment.TrackRemoved, f.trackErr
}

func (f *fakeInvestments) List(context.Context) ([]*domain.Investment, error) {
	return f.open, nil
}

// fakeCommunity records the feature calls the router makes
type fakeCommunity struct {
	calls   []string
	granted bool
	ticket  community.TicketResult
}

func (f *fakeCommunity) RequestRole(_ context.Context, _, userID string) (bool, error) {
	f.calls = append(f.calls, "role:"+userID)
	return f.granted, nil
}

func (f *fakeCommunity) SyncAll(context.Context) (community.SyncReport, error) {
	f.calls = append(f.calls, "sync-all")
	return community.SyncReport{Members: 3, Granted: 2, Revoked: 1}, nil
}

func (f *fakeCommunity) UpdateUser(_ context.Context, userID string) (bool, error) {
	f.calls = append(f.calls, "update:"+userID)
	return true, nil
}

func (f *fakeCommunity) OpenRoom(_ context.Context, userID string, _ bool) (string, error) {
	f.calls = append(f.calls, "open-room:"+userID)
	return "room-" + userID, nil
}

func (f *fakeCommunity) CloseRoom(_ context.Context, userID string) (bool, error) {
	f.calls = append(f.calls, "close-room:"+userID)
	return true, nil
}

func (f *fakeCommunity) CreateTicket(_ context.Context, userID string, reason domain.TicketReason) (community.TicketResult, error) {
	f.calls = append(f.calls, "ticket:"+userID+":"+string(reason))
	return f.ticket, nil
}

func (f *fakeCommunity) CloseTicket(_ context.Context, channelID, closedBy string) error {
	f.calls = append(f.calls, "close-ticket:"+channelID+":"+closedBy)
	return nil
}

func (f *fakeCommunity) AddFAQ(_ context.Context, question, _ string) (*domain.FAQ, error) {
	f.calls = append(f.calls, "faq:"+question)
	return &domain.FAQ{ID: "1", Question: question}, nil
}

func (f *fakeCommunity) Answer(_ context.Context, customID string) (string, error) {
	if customID == community.FAQClickPrefix+"1" {
		return "## q\na", nil
	}
	return "", community.ErrUnknownFAQ
}

func (f *fakeCommunity) OnMemberJoin(context.Context, *discordgo.Member) error { return nil }
func (f *fakeCommunity) OnMemberUpdate(context.Context, *discordgo.Member, *discordgo.Member) error { return nil }
func (f *fakeCommunity) OnBan(context.Context, string, *discordgo.User, bool) error { return nil }
func (f *fakeCommunity) OnMessage(context.Context, *discordgo.Message) error { return nil }

type fixture struct {
	session     *fakeSession
	investments *fakeInvestments
	community   *fakeCommunity
	selections  *selection.Store
	bot         *bot.Bot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.BotConfig{
		MainGuild: config.GuildConfig{ID: guildID, Owners: []string{owner}},
		VIPGuild:  config.GuildConfig{ID: "vip-guild"},
	}
	f := &fixture{
		session:     &fakeSession{},
		investments: &fakeInvestments{},
		community:   &fakeCommunity{},
		selections:  selection.NewStore(0, adapter.NewClock()),
	}
	f.bot = bot.New(cfg, f.session, nil, f.investments, f.community, f.selections)
	return f
}

func command(userID, name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   guildID,
		ChannelID: "invest",
		Member:    &discordgo.Member{User: &discordgo.User{ID: userID}},
		Data:      discordgo.ApplicationCommandInteractionData{Name: name, Options: opts},
	}}
}

func component(userID, customID string, values ...string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		GuildID:   guildID,
		ChannelID: "invest",
		Member:    &discordgo.Member{User: &discordgo.User{ID: userID}},
		Data:      discordgo.MessageComponentInteractionData{CustomID: customID, Values: values},
	}}
}

func opt(name string, value interface{}) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Value: value}
}

// pickerID returns the custom id of the first select menu in components
func pickerID(components []discordgo.MessageComponent) string {
	for _, c := range components {
		row, ok := c.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if menu, ok := inner.(discordgo.SelectMenu); ok {
				return menu.CustomID
			}
		}
	}
	return ""
}
