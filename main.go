package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/NadavMozeson/typescript-discord-bot/internal/app"
	"github.com/NadavMozeson/typescript-discord-bot/internal/bot"
	"github.com/NadavMozeson/typescript-discord-bot/internal/config"
	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

const shutdownTimeout = 15 * time.Second

func main() {
	flag.Parse()

	config.ChdirRepoRoot()
	cfg, err := config.LoadBotConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": config.ServiceName,
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	if cfg.Discord.Token == "" {
		logger.Fatal("discord.token is not set")
	}
	if cfg.Discord.DeveloperID == "" {
		logger.Warn("discord.developer_id is not set; error reports stay in the logs")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to build application", zap.Error(err))
	}

	registerHandlers(a)

	if err := a.Session.Open(); err != nil {
		logger.Fatal("Cannot open the session", zap.Error(err))
	}

	a.Start(ctx)

	logger.Info("Bot is now running. Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.Info("Shutting down")
	cancel()
	if err := a.Session.Close(); err != nil {
		logger.Warn("Failed to close the session", zap.Error(err))
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	a.Shutdown(shutdownCtx)
}

// registerHandlers wires every gateway event through the error boundary
func registerHandlers(a *app.App) {
	b, s := a.Bot, a.Session

	s.AddHandler(bot.Recover(a.Boundary, "ready", func(ctx context.Context, r *discordgo.Ready) error {
		logger.InfoCtx(ctx, "Logged in", zap.String("user", r.User.Username))
		b.RegisterCommands(ctx, r.User.ID, a.GuildIDs())
		go a.Startup()
		return nil
	}))
	s.AddHandler(bot.Recover(a.Boundary, "interaction_create", b.OnInteraction))
	s.AddHandler(bot.Recover(a.Boundary, "message_create", b.OnMessageCreate))
	s.AddHandler(bot.Recover(a.Boundary, "guild_member_add", b.OnMemberAdd))
	s.AddHandler(bot.Recover(a.Boundary, "guild_member_update", b.OnMemberUpdate))
	s.AddHandler(bot.Recover(a.Boundary, "guild_ban_add", b.OnBanAdd))
	s.AddHandler(bot.Recover(a.Boundary, "guild_ban_remove", b.OnBanRemove))
}
