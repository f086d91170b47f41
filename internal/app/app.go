package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/adapter"
	"github.com/NadavMozeson/typescript-discord-bot/internal/api"
	"github.com/NadavMozeson/typescript-discord-bot/internal/bot"
	"github.com/NadavMozeson/typescript-discord-bot/internal/cache"
	"github.com/NadavMozeson/typescript-discord-bot/internal/chat"
	"github.com/NadavMozeson/typescript-discord-bot/internal/community"
	"github.com/NadavMozeson/typescript-discord-bot/internal/config"
	"github.com/NadavMozeson/typescript-discord-bot/internal/events"
	"github.com/NadavMozeson/typescript-discord-bot/internal/fetcher"
	"github.com/NadavMozeson/typescript-discord-bot/internal/flags"
	"github.com/NadavMozeson/typescript-discord-bot/internal/investment"
	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
	"github.com/NadavMozeson/typescript-discord-bot/internal/membership"
	"github.com/NadavMozeson/typescript-discord-bot/internal/retry"
	"github.com/NadavMozeson/typescript-discord-bot/internal/scheduler"
	"github.com/NadavMozeson/typescript-discord-bot/internal/selection"
	"github.com/NadavMozeson/typescript-discord-bot/internal/store"
	"github.com/NadavMozeson/typescript-discord-bot/internal/store/postgres"
	"github.com/NadavMozeson/typescript-discord-bot/internal/tracker"
)

// Intents the bot subscribes to
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildBans |
	discordgo.IntentsGuildMessageReactions

// restTimeout bounds calls to restcountries and YouTube
const restTimeout = 30 * time.Second

// App holds every long lived component. It is built once in main.
type App struct {
	Config      *config.BotConfig
	Session     *discordgo.Session
	Chat        *chat.Discord
	Store       store.Store
	Oracle      *membership.MySQLOracle
	Cache       cache.Store
	Events      events.Publisher
	Selections  *selection.Store
	Sweeper     *selection.Sweeper
	Board       *tracker.Board
	Investments *investment.Manager
	Community   *community.Service
	Status      *bot.StatusRotator
	Boundary    *bot.Boundary
	Bot         *bot.Bot
	Scheduler   *scheduler.Runner
	API         *api.Server

	startup      sync.Once
	startupTasks []startupTask
	closers      []func() error
}

type startupTask struct {
	name string
	fn   func(ctx context.Context) error
}

// New connects the stores and builds the component graph. ctx is the process
// context; handlers and jobs derive theirs from it.
func New(ctx context.Context, cfg *config.BotConfig) (*App, error) {
	a := &App{Config: cfg}
	clock := adapter.NewClock()

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = Intents
	a.Session = session

	restClient := adapter.NewHTTPClient(restTimeout)
	a.Chat = chat.NewDiscord(session, restClient)

	if a.Store, err = OpenStore(cfg, clock); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.Store.Close)

	if a.Oracle, err = membership.Open(cfg.Membership); err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, a.Oracle.Close)

	if a.Cache, err = openCache(ctx, cfg, clock); err != nil {
		a.Close()
		return nil, err
	}
	if closer, ok := a.Cache.(interface{ Close() error }); ok {
		a.closers = append(a.closers, closer.Close)
	}

	if a.Events, err = openEvents(cfg); err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, func() error {
		a.Events.Close()
		return nil
	})

	a.Selections = selection.NewStore(cfg.Selection.TTL, clock)
	a.Sweeper = selection.NewSweeper(a.Selections, cfg.Selection.SweepInterval, clock)

	flagResolver := flags.NewResolver(restClient, a.Cache, cfg.Assets.CountriesURL, cfg.Redis.FlagTTL, cfg.Emoji.TOTW)
	a.Board = tracker.NewBoard(a.Store, a.Chat, flagResolver, tracker.BoardConfig{
		MainGuildID:   cfg.MainGuild.ID,
		VIPGuildID:    cfg.VIPGuild.ID,
		PublicChannel: cfg.MainGuild.Channels.Tracker,
		VIPChannel:    cfg.VIPGuild.Channels.Tracker,
	})

	images, err := investment.NewImageCache(filepath.Join(cfg.Assets.ImageDir, "investments"))
	if err != nil {
		a.Close()
		return nil, err
	}

	// deadlines come from the retry policy, one per attempt
	fetcherClient := adapter.NewHTTPClient(0)
	a.Investments = investment.NewManager(investment.NewConfig(cfg), investment.Deps{
		Fetcher:     fetcher.NewHTTPFetcher(cfg.Fetcher.BaseURL, fetcherClient),
		Investments: a.Store,
		Trackers:    a.Store,
		Chat:        a.Chat,
		Flags:       flagResolver,
		Notifier:    tracker.NewFanout(a.Store, a.Chat, cfg.Worker.Concurrency),
		Board:       a.Board,
		Events:      a.Events,
		Images:      images,
		Clock:       clock,
		Policy: retry.Policy{
			MaxAttempts:       cfg.Fetcher.MaxAttempts,
			PerAttemptTimeout: cfg.Fetcher.PerAttemptTimeout,
			Interval:          cfg.Fetcher.RetryInterval,
		},
	})

	a.Status = bot.NewStatusRotator(session, cfg.Discord.Statuses, cfg.Discord.StatusInterval)
	a.Community = community.New(cfg, community.Deps{
		Discord: session,
		Chat:    a.Chat,
		Oracle:  a.Oracle,
		Tickets: a.Store,
		Rooms:   a.Store,
		FAQs:    a.Store,
		HTTP:    restClient,
		Status:  a.Status,
		Clock:   clock,
	})

	a.Boundary = bot.NewBoundary(ctx, cfg.Discord.DeveloperID, a.Chat)
	a.Bot = bot.New(cfg, session, a.Chat, a.Investments, a.Community, a.Selections)

	a.Scheduler = scheduler.New(ctx)
	if err := a.scheduleJobs(); err != nil {
		a.Close()
		return nil, err
	}

	a.startupTasks = a.buildStartupTasks()

	if cfg.Server.Enabled {
		a.API = api.NewServer(api.Config{
			Debug: cfg.Debug,
			Host:  cfg.Server.Host,
			Port:  cfg.Server.Port,
		}, api.NewHandler(a.Store))
	}

	return a, nil
}

// OpenStore opens the record store selected by database.driver
func OpenStore(cfg *config.BotConfig, clock adapter.Clock) (store.Store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.Open(&cfg.Database, cfg.Debug)
		if err != nil {
			return nil, err
		}
		return postgres.New(db, clock), nil
	default:
		return store.NewSQLiteStore(cfg.Database.Path, clock)
	}
}

func openCache(ctx context.Context, cfg *config.BotConfig, clock adapter.Clock) (cache.Store, error) {
	if cfg.Redis.Addr == "" {
		return cache.NewMemoryStore(clock), nil
	}
	return cache.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
}

func openEvents(cfg *config.BotConfig) (events.Publisher, error) {
	if cfg.NATS.URL == "" {
		return events.Nop{}, nil
	}
	return events.NewNATSPublisher(cfg.NATS)
}

// scheduleJobs registers the periodic community jobs
func (a *App) scheduleJobs() error {
	jobs := []struct {
		name string
		spec string
		job  scheduler.Job
	}{
		{"vip-sync", a.Config.Schedule.VIPSync, func(ctx context.Context) error {
			report, err := a.Community.SyncAll(ctx)
			if err == nil {
				logger.InfoCtx(ctx, "VIP sync finished",
					zap.Int("members", report.Members),
					zap.Int("granted", report.Granted),
					zap.Int("revoked", report.Revoked))
			}
			return err
		}},
		{"stats", a.Config.Schedule.Stats, a.Community.UpdateStats},
		{"expiring", a.Config.Schedule.Expiring, func(ctx context.Context) error {
			sent, err := a.Community.RemindExpiring(ctx)
			if err == nil {
				logger.InfoCtx(ctx, "Sent expiring reminders", zap.Int("sent", sent))
			}
			return err
		}},
	}
	for _, j := range jobs {
		if err := a.Scheduler.Add(j.name, j.spec, j.job); err != nil {
			return err
		}
	}
	return nil
}

// Start launches the background loops. The Discord session is opened by the caller.
func (a *App) Start(ctx context.Context) {
	go func() {
		if err := a.Sweeper.Start(ctx); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("component", a.Sweeper.Name()))
		}
	}()
	a.Status.Start()
	a.Scheduler.Start()

	if a.API != nil {
		go func() {
			if err := a.API.Start(); err != nil {
				logger.ErrorCtx(ctx, err, zap.String("component", "api"))
			}
		}()
	}
}

// Startup runs the one-off tasks that follow the first gateway Ready. Later
// Ready events after a re-identify are ignored. Each task is independent; a
// failure is reported and the rest still run.
func (a *App) Startup() {
	a.startup.Do(func() {
		for _, t := range a.startupTasks {
			a.Boundary.Run(t.name, t.fn)
		}
	})
}

func (a *App) buildStartupTasks() []startupTask {
	cfg := a.Config
	return []startupTask{
		{"startup:vip-sync", func(ctx context.Context) error {
			_, err := a.Community.SyncAll(ctx)
			return err
		}},
		{"startup:rooms", a.Community.SyncRooms},
		{"startup:vip-help", func(ctx context.Context) error {
			return a.Community.PostHelp(ctx, cfg.MainGuild.Channels.VIPHelp)
		}},
		{"startup:tickets", a.Community.PostTicketPanel},
		{"startup:faq", a.Community.RefreshFAQ},
		{"startup:stats", a.Community.UpdateStats},
		{"startup:board", a.Board.Refresh},
	}
}

// GuildIDs are the guilds commands are registered in
func (a *App) GuildIDs() []string {
	var ids []string
	for _, id := range []string{a.Config.MainGuild.ID, a.Config.VIPGuild.ID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Shutdown stops the background loops and releases every connection
func (a *App) Shutdown(ctx context.Context) {
	if a.API != nil {
		if err := a.API.Shutdown(ctx); err != nil {
			logger.WarnCtx(ctx, "API shutdown failed", zap.Error(err))
		}
	}
	a.Scheduler.Stop()
	a.Status.Stop()
	if err := a.Sweeper.Stop(ctx); err != nil {
		logger.WarnCtx(ctx, "Sweeper shutdown failed", zap.Error(err))
	}
	if err := a.Close(); err != nil {
		logger.WarnCtx(ctx, "Failed to close resources", zap.Error(err))
	}
}

// Close releases connections in reverse order of opening
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
