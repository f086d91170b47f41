package app_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NadavMozeson/typescript-discord-bot/internal/adapter"
	"github.com/NadavMozeson/typescript-discord-bot/internal/app"
	"github.com/NadavMozeson/typescript-discord-bot/internal/config"
)

func TestOpenStore_SQLite(t *testing.T) {
	cfg := &config.BotConfig{Database: config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}}

	s, err := app.OpenStore(cfg, adapter.NewClock())
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.Ping(context.Background()))
}

func TestNew_BuildsWithoutOptionalBackends(t *testing.T) {
	cfg := &config.BotConfig{
		Discord:   config.DiscordConfig{Token: "token", Statuses: []string{"investments"}},
		MainGuild: config.GuildConfig{ID: "main"},
		Database:  config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
		Assets:    config.AssetsConfig{ImageDir: t.TempDir()},
		Schedule:  config.ScheduleConfig{VIPSync: "0 0 * * * *", Stats: "0 0 */3 * * *"},
	}

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.API)
	assert.Equal(t, 2, a.Scheduler.Len())
	assert.Equal(t, []string{"main"}, a.GuildIDs())
	assert.Equal(t, app.Intents, a.Session.Identify.Intents)
	assert.NotZero(t, app.Intents&discordgo.IntentsGuildBans)
}

func TestNew_RejectsBadCronSpec(t *testing.T) {
	cfg := &config.BotConfig{
		Database: config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
		Assets:   config.AssetsConfig{ImageDir: t.TempDir()},
		Schedule: config.ScheduleConfig{Stats: "not a spec"},
	}

	_, err := app.New(context.Background(), cfg)
	assert.Error(t, err)
}
