package community_test

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/NadavMozeson/typescript-discord-bot/internal/adapter"
	"github.com/NadavMozeson/typescript-discord-bot/internal/chat"
	"github.com/NadavMozeson/typescript-discord-bot/internal/community"
	"github.com/NadavMozeson/typescript-discord-bot/internal/config"
	"github.com/NadavMozeson/typescript-discord-bot/internal/mocks"
	"github.com/NadavMozeson/typescript-discord-bot/internal/store"
)

const (
	mainGuild = "main-guild"
	vipGuild  = "vip-guild"
	botID     = "bot"
)

func unknown(code int) error {
	return &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: code}}
}

// fakeDiscord keeps guild members and channels in memory
type fakeDiscord struct {
	mu       sync.Mutex
	members  map[string]map[string]*discordgo.Member
	channels map[string]*discordgo.Channel
	nextID   int
	removed  []string
	reacted  []string
	renamed  map[string]string
}

func newFakeDiscord() *fakeDiscord {
	return &fakeDiscord{
		members:  map[string]map[string]*discordgo.Member{mainGuild: {}, vipGuild: {}},
		channels: map[string]*discordgo.Channel{},
		renamed:  map[string]string{},
	}
}

func (f *fakeDiscord) addMember(guildID, userID string, roles ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[guildID][userID] = &discordgo.Member{
		GuildID: guildID,
		User:    &discordgo.User{ID: userID, Username: "user" + userID},
		Roles:   roles,
	}
}

func (f *fakeDiscord) addChannel(c *discordgo.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[c.ID] = c
}

func (f *fakeDiscord) roles(guildID, userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[guildID][userID]
	if !ok {
		return nil
	}
	return slices.Clone(m.Roles)
}

func (f *fakeDiscord) channelsOf(guildID string, kind discordgo.ChannelType) []*discordgo.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*discordgo.Channel
	for _, c := range f.channels {
		if c.GuildID == guildID && c.Type == kind {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeDiscord) Guild(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	return &discordgo.Guild{ID: guildID, Name: "Guild " + guildID}, nil
}

func (f *fakeDiscord) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[guildID][userID]
	if !ok {
		return nil, unknown(discordgo.ErrCodeUnknownMember)
	}
	return m, nil
}

func (f *fakeDiscord) GuildMembers(guildID string, after string, limit int, _ ...discordgo.RequestOption) ([]*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.members[guildID]))
	for id := range f.members[guildID] {
		if id > after {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]*discordgo.Member, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.members[guildID][id])
	}
	return out, nil
}

func (f *fakeDiscord) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[guildID][userID]
	if !ok {
		return unknown(discordgo.ErrCodeUnknownMember)
	}
	if !slices.Contains(m.Roles, roleID) {
		m.Roles = append(m.Roles, roleID)
	}
	return nil
}

func (f *fakeDiscord) GuildMemberRoleRemove(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[guildID][userID]
	if !ok {
		return unknown(discordgo.ErrCodeUnknownMember)
	}
	m.Roles = slices.DeleteFunc(m.Roles, func(r string) bool { return r == roleID })
	f.removed = append(f.removed, guildID+"/"+userID+"/"+roleID)
	return nil
}

func (f *fakeDiscord) GuildChannels(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*discordgo.Channel
	for _, c := range f.channels {
		if c.GuildID == guildID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDiscord) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := &discordgo.Channel{
		ID:                   fmt.Sprintf("ch%04d", f.nextID),
		GuildID:              guildID,
		Name:                 data.Name,
		Type:                 data.Type,
		ParentID:             data.ParentID,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	f.channels[c.ID] = c
	return c, nil
}

func (f *fakeDiscord) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.channels[channelID]
	if !ok {
		return nil, unknown(discordgo.ErrCodeUnknownChannel)
	}
	return c, nil
}

func (f *fakeDiscord) ChannelEdit(channelID string, data *discordgo.ChannelEdit, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renamed[channelID] = data.Name
	return &discordgo.Channel{ID: channelID, Name: data.Name}, nil
}

func (f *fakeDiscord) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.channels[channelID]
	if !ok {
		return nil, unknown(discordgo.ErrCodeUnknownChannel)
	}
	delete(f.channels, channelID)
	return c, nil
}

func (f *fakeDiscord) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reacted = append(f.reacted, messageID+"/"+emojiID)
	return nil
}

type sentMessage struct {
	ChannelID string
	Message   chat.Message
}

// fakeSurface records posted messages per channel
type fakeSurface struct {
	mu      sync.Mutex
	nextID  int
	sent    []sentMessage
	posted  map[string][]chat.Posted
	edits   map[string][]discordgo.MessageComponent
	deleted []string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{posted: map[string][]chat.Posted{}, edits: map[string][]discordgo.MessageComponent{}}
}

func (f *fakeSurface) Send(_ context.Context, channelID string, msg chat.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("msg%d", f.nextID)
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Message: msg})
	// newest first, like the platform returns them
	f.posted[channelID] = append([]chat.Posted{{ID: id, ChannelID: channelID, AuthorID: botID, Content: msg.Content}}, f.posted[channelID]...)
	return id, nil
}

func (f *fakeSurface) Edit(_ context.Context, _, messageID string, components []discordgo.MessageComponent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits[messageID] = components
	return nil
}

func (f *fakeSurface) Delete(_ context.Context, _, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeSurface) SendDirect(ctx context.Context, userID string, msg chat.Message) (string, error) {
	return f.Send(ctx, "dm-"+userID, msg)
}

func (f *fakeSurface) RecentMessages(_ context.Context, channelID string, limit int) ([]chat.Posted, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.posted[channelID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return slices.Clone(msgs), nil
}

func (f *fakeSurface) HasRole(context.Context, string, string, string) (bool, error) {
	return false, nil
}

func (f *fakeSurface) GuildIcon(context.Context, string) ([]byte, error) {
	return nil, nil
}

func (f *fakeSurface) BotUserID() string {
	return botID
}

func (f *fakeSurface) sentTo(channelID string) []chat.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []chat.Message
	for _, s := range f.sent {
		if s.ChannelID == channelID {
			out = append(out, s.Message)
		}
	}
	return out
}

// jsonHTTP answers every Get with a canned JSON body
type jsonHTTP struct {
	body string
	urls []string
}

func (h *jsonHTTP) Get(_ context.Context, url string, result any) error {
	h.urls = append(h.urls, url)
	return json.Unmarshal([]byte(h.body), result)
}

func (h *jsonHTTP) GetBytes(context.Context, string) ([]byte, error) {
	return []byte(h.body), nil
}

type recordingStatus struct{ last string }

func (r *recordingStatus) SetStatus(text string) { r.last = text }

type fixture struct {
	cfg     *config.BotConfig
	discord *fakeDiscord
	chat    *fakeSurface
	oracle  *mocks.MockOracle
	store   *store.SQLiteStore
	http    *jsonHTTP
	status  *recordingStatus
	svc     *community.Service
}

func testConfig() *config.BotConfig {
	return &config.BotConfig{
		Worker: config.WorkerConfig{Concurrency: 5},
		Emoji:  config.EmojiConfig{Like: "<:like:111>", Dislike: "👎"},
		MainGuild: config.GuildConfig{
			ID:     mainGuild,
			Owners: []string{"owner"},
			Roles:  config.RolesConfig{Member: "role-member", VIP: "role-main-vip", Support: "role-support"},
			Channels: config.ChannelsConfig{
				Log:          "log",
				Ticket:       "tickets",
				Suggest:      "suggest",
				FAQ:          "faq",
				Voting:       []string{"vote-a", "vote-b"},
				StatsDiscord: "stats-discord",
				StatsYouTube: "stats-youtube",
			},
		},
		VIPGuild: config.GuildConfig{
			ID:    vipGuild,
			Roles: config.RolesConfig{VIP: "role-vip", VIP2: "role-vip2"},
			Channels: config.ChannelsConfig{
				Welcome:  "welcome",
				VIPLog:   "vip-log",
				StatsVIP: "stats-vip",
			},
		},
		YouTube: config.YouTubeConfig{ChannelID: "yt", APIKey: "key", APIURL: "https://youtube.test/channels"},
		Assets:  config.AssetsConfig{SurveyURL: "https://survey.test", ExpiringAhead: 7},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	s, err := store.NewSQLiteStore(":memory:", adapter.NewClock())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	f := &fixture{
		cfg:     testConfig(),
		discord: newFakeDiscord(),
		chat:    newFakeSurface(),
		oracle:  mocks.NewMockOracle(ctrl),
		store:   s,
		http:    &jsonHTTP{},
		status:  &recordingStatus{},
	}
	f.svc = community.New(f.cfg, community.Deps{
		Discord: f.discord,
		Chat:    f.chat,
		Oracle:  f.oracle,
		Tickets: s,
		Rooms:   s,
		FAQs:    s,
		HTTP:    f.http,
		Status:  f.status,
		Clock:   fixedClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
	})
	return f
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time                         { return c.now }
func (c fixedClock) Since(t time.Time) time.Duration        { return c.now.Sub(t) }
func (c fixedClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
