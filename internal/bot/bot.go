package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/chat"
	"github.com/NadavMozeson/typescript-discord-bot/internal/community"
	"github.com/NadavMozeson/typescript-discord-bot/internal/config"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
	"github.com/NadavMozeson/typescript-discord-bot/internal/fetcher"
	"github.com/NadavMozeson/typescript-discord-bot/internal/investment"
	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
	"github.com/NadavMozeson/typescript-discord-bot/internal/selection"
)

// ephemeral marks a reply only the acting user sees
const ephemeral = discordgo.MessageFlagsEphemeral

// Session is the slice of *discordgo.Session the bot answers through
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Investments is the investment lifecycle as the commands drive it
type Investments interface {
	Search(ctx context.Context, query string) ([]fetcher.SearchResult, error)
	Open(ctx context.Context, req investment.OpenRequest) (*domain.Investment, error)
	Close(ctx context.Context, req investment.CloseRequest) error
	ConfirmDelete(ctx context.Context, id string) (chat.Message, error)
	Delete(ctx context.Context, id string) error
	Track(ctx context.Context, req investment.TrackRequest) (investment.TrackResult, error)
	Untrack(ctx context.Context, req investment.TrackRequest) (investment.TrackResult, error)
	List(ctx context.Context) ([]*domain.Investment, error)
}

// Community is the set of guild features behind buttons, commands and member events
type Community interface {
	RequestRole(ctx context.Context, guildID, userID string) (bool, error)
	SyncAll(ctx context.Context) (community.SyncReport, error)
	UpdateUser(ctx context.Context, userID string) (bool, error)
	OpenRoom(ctx context.Context, userID string, vip bool) (string, error)
	CloseRoom(ctx context.Context, userID string) (bool, error)
	CreateTicket(ctx context.Context, userID string, reason domain.TicketReason) (community.TicketResult, error)
	CloseTicket(ctx context.Context, channelID, closedBy string) error
	AddFAQ(ctx context.Context, question, answer string) (*domain.FAQ, error)
	Answer(ctx context.Context, customID string) (string, error)
	OnMemberJoin(ctx context.Context, m *discordgo.Member) error
	OnMemberUpdate(ctx context.Context, before, after *discordgo.Member) error
	OnBan(ctx context.Context, guildID string, user *discordgo.User, banned bool) error
	OnMessage(ctx context.Context, m *discordgo.Message) error
}

// Bot routes gateway events to the feature services
type Bot struct {
	cfg         *config.BotConfig
	session     Session
	chat        chat.Surface
	investments Investments
	community   Community
	selections  *selection.Store
}

// New creates the event router
func New(cfg *config.BotConfig, session Session, surface chat.Surface, investments Investments, comm Community, selections *selection.Store) *Bot {
	return &Bot{
		cfg:         cfg,
		session:     session,
		chat:        surface,
		investments: investments,
		community:   comm,
		selections:  selections,
	}
}

// RegisterCommands replaces the commands of every guild with Commands()
func (b *Bot) RegisterCommands(ctx context.Context, appID string, guildIDs []string) int {
	commands := Commands()
	synced := 0
	for _, guildID := range guildIDs {
		if _, err := b.session.ApplicationCommandBulkOverwrite(appID, guildID, commands, discordgo.WithContext(ctx)); err != nil {
			logger.WarnCtx(ctx, "Failed to sync commands", zap.String("guild_id", guildID), zap.Error(err))
			continue
		}
		synced++
	}
	logger.InfoCtx(ctx, "Synchronized commands", zap.Int("guilds", synced))
	return synced
}

func (b *Bot) OnMessageCreate(ctx context.Context, m *discordgo.MessageCreate) error {
	return b.community.OnMessage(ctx, m.Message)
}

func (b *Bot) OnMemberAdd(ctx context.Context, e *discordgo.GuildMemberAdd) error {
	return b.community.OnMemberJoin(ctx, e.Member)
}

func (b *Bot) OnMemberUpdate(ctx context.Context, e *discordgo.GuildMemberUpdate) error {
	return b.community.OnMemberUpdate(ctx, e.BeforeUpdate, e.Member)
}

func (b *Bot) OnBanAdd(ctx context.Context, e *discordgo.GuildBanAdd) error {
	return b.community.OnBan(ctx, e.GuildID, e.User, true)
}

func (b *Bot) OnBanRemove(ctx context.Context, e *discordgo.GuildBanRemove) error {
	return b.community.OnBan(ctx, e.GuildID, e.User, false)
}

// isOwner reports whether userID operates either guild
func (b *Bot) isOwner(userID string) bool {
	return userID != "" && (b.cfg.MainGuild.IsOwner(userID) || b.cfg.VIPGuild.IsOwner(userID))
}

func interactionUser(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// reply answers i with a message only the acting user sees
func (b *Bot) reply(ctx context.Context, i *discordgo.Interaction, content string, components ...discordgo.MessageComponent) error {
	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: components,
			Flags:      ephemeral,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to respond to interaction: %w", err)
	}
	return nil
}

// deferReply acknowledges i so slow work can answer later through edit
func (b *Bot) deferReply(ctx context.Context, i *discordgo.Interaction) error {
	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: ephemeral},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to defer interaction: %w", err)
	}
	return nil
}

// edit replaces the deferred answer of i
func (b *Bot) edit(ctx context.Context, i *discordgo.Interaction, content string, components ...discordgo.MessageComponent) error {
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	_, err := b.session.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to edit interaction response: %w", err)
	}
	return nil
}
