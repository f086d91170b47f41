package community

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/NadavMozeson/typescript-discord-bot/internal/adapter"
	"github.com/NadavMozeson/typescript-discord-bot/internal/chat"
	"github.com/NadavMozeson/typescript-discord-bot/internal/config"
	"github.com/NadavMozeson/typescript-discord-bot/internal/membership"
	"github.com/NadavMozeson/typescript-discord-bot/internal/store"
	"github.com/NadavMozeson/typescript-discord-bot/internal/workpool"
)

// membersPage is the largest page the members endpoint returns
const membersPage = 1000

// Embed colors
const (
	colorRed    = 0xff5252
	colorGreen  = 0x4caf50
	colorBan    = 0xfe4848
	colorMute   = 0xfb7979
	colorGold   = 0xffd700
)

// Discord is the guild administration slice of *discordgo.Session
type Discord interface {
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMembers(guildID string, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelEdit(channelID string, data *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
}

// StatusSetter receives the member count line shown as bot presence
type StatusSetter interface {
	SetStatus(text string)
}

// Deps are the collaborators of the community services
type Deps struct {
	Discord Discord
	Chat    chat.Surface
	Oracle  membership.Oracle
	Tickets store.TicketStore
	Rooms   store.RoomStore
	FAQs    store.FAQStore
	HTTP    adapter.HTTPClient
	Status  StatusSetter
	Clock   adapter.Clock
}

// Service runs the non-investment features of both guilds
type Service struct {
	cfg         *config.BotConfig
	discord     Discord
	chat        chat.Surface
	oracle      membership.Oracle
	tickets     store.TicketStore
	rooms       store.RoomStore
	faqs        store.FAQStore
	http        adapter.HTTPClient
	status      StatusSetter
	clock       adapter.Clock
	concurrency int

	roomMu sync.Mutex
}

// New creates the community service
func New(cfg *config.BotConfig, deps Deps) *Service {
	if deps.Clock == nil {
		deps.Clock = adapter.NewClock()
	}
	concurrency := cfg.Worker.Concurrency
	if concurrency < 1 {
		concurrency = workpool.DefaultLimit
	}
	return &Service{
		cfg:         cfg,
		discord:     deps.Discord,
		chat:        deps.Chat,
		oracle:      deps.Oracle,
		tickets:     deps.Tickets,
		rooms:       deps.Rooms,
		faqs:        deps.FAQs,
		http:        deps.HTTP,
		status:      deps.Status,
		clock:       deps.Clock,
		concurrency: concurrency,
	}
}

// members pages through every member of guildID
func (s *Service) members(ctx context.Context, guildID string) ([]*discordgo.Member, error) {
	var all []*discordgo.Member
	after := ""
	for {
		page, err := s.discord.GuildMembers(guildID, after, membersPage, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list members of %s: %w", guildID, err)
		}
		all = append(all, page...)
		if len(page) < membersPage {
			return all, nil
		}
		last := page[len(page)-1]
		if last.User == nil {
			return all, nil
		}
		after = last.User.ID
	}
}

// createFooter builds an embed footer carrying the guild name and icon
func (s *Service) createFooter(ctx context.Context, guildID string) *discordgo.MessageEmbedFooter {
	guild, err := s.discord.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil || guild == nil {
		return nil
	}
	return &discordgo.MessageEmbedFooter{
		Text:    guild.Name,
		IconURL: guild.IconURL("128"),
	}
}

// createAuthor is the guild header used on panels
func (s *Service) createAuthor(ctx context.Context, guildID string) *discordgo.MessageEmbedAuthor {
	guild, err := s.discord.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil || guild == nil {
		return nil
	}
	return &discordgo.MessageEmbedAuthor{
		Name:    guild.Name,
		IconURL: guild.IconURL("128"),
	}
}

func (s *Service) timestamp() string {
	return s.clock.Now().UTC().Format(time.RFC3339)
}

// channelEmpty reports whether channelID has no messages yet
func (s *Service) channelEmpty(ctx context.Context, channelID string) (bool, error) {
	recent, err := s.chat.RecentMessages(ctx, channelID, 1)
	if err != nil {
		return false, err
	}
	return len(recent) == 0, nil
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

func displayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User == nil {
		return ""
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}

func hasRole(m *discordgo.Member, roleID string) bool {
	if m == nil || roleID == "" {
		return false
	}
	for _, r := range m.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}
