package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServiceName is used for the per-service env file and logger tags
const ServiceName = "community-bot"

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DiscordConfig holds the bot account settings
type DiscordConfig struct {
	Token          string        `mapstructure:"token"`
	DeveloperID    string        `mapstructure:"developer_id"`
	Statuses       []string      `mapstructure:"statuses"`
	StatusInterval time.Duration `mapstructure:"status_interval"`
}

// EmojiConfig holds the custom emoji markup used in composed messages
type EmojiConfig struct {
	XBox    string `mapstructure:"xbox"`
	PS      string `mapstructure:"ps"`
	PC      string `mapstructure:"pc"`
	Coins   string `mapstructure:"coins"`
	TOTW    string `mapstructure:"totw"`
	Like    string `mapstructure:"like"`
	Dislike string `mapstructure:"dislike"`
}

// RolesConfig holds role ids of one guild
type RolesConfig struct {
	Member  string `mapstructure:"member"`
	VIP     string `mapstructure:"vip"`
	VIP2    string `mapstructure:"vip2"`
	Support string `mapstructure:"support"`
	Manager string `mapstructure:"manager"`
}

// ChannelsConfig holds channel ids of one guild. Unused entries stay empty.
type ChannelsConfig struct {
	Log          string   `mapstructure:"log"`
	VIPLog       string   `mapstructure:"vip_log"`
	Ticket       string   `mapstructure:"ticket"`
	Suggest      string   `mapstructure:"suggest"`
	FAQ          string   `mapstructure:"faq"`
	Voting       []string `mapstructure:"voting"`
	Profit       string   `mapstructure:"profit"`
	FirstExit    string   `mapstructure:"first_exit"`
	Tracker      string   `mapstructure:"tracker"`
	VIPTracker   string   `mapstructure:"vip_tracker"`
	Welcome      string   `mapstructure:"welcome"`
	VIPHelp      string   `mapstructure:"vip_help"`
	StatsDiscord string   `mapstructure:"stats_discord"`
	StatsYouTube string   `mapstructure:"stats_youtube"`
	StatsVIP     string   `mapstructure:"stats_vip"`
}

// GuildConfig describes one community server
type GuildConfig struct {
	ID       string         `mapstructure:"id"`
	Owners   []string       `mapstructure:"owners"`
	Roles    RolesConfig    `mapstructure:"roles"`
	Channels ChannelsConfig `mapstructure:"channels"`
}

// IsOwner reports whether userID is one of the guild operators
func (g GuildConfig) IsOwner(userID string) bool {
	for _, id := range g.Owners {
		if id == userID {
			return true
		}
	}
	return false
}

// DatabaseConfig holds record store configuration
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite or postgres
	Path            string        `mapstructure:"path"`   // sqlite file
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// MembershipConfig holds the WordPress membership database settings
type MembershipConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	DBName       string        `mapstructure:"dbname"`
	LevelIDs     []int         `mapstructure:"level_ids"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

// FetcherConfig holds page data fetcher settings
type FetcherConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	PerAttemptTimeout time.Duration `mapstructure:"per_attempt_timeout"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	RetryInterval     time.Duration `mapstructure:"retry_interval"`
}

// SelectionConfig holds ephemeral selection store settings
type SelectionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// ScheduleConfig holds cron specs (with seconds) of periodic jobs
type ScheduleConfig struct {
	VIPSync  string `mapstructure:"vip_sync"`
	Stats    string `mapstructure:"stats"`
	Expiring string `mapstructure:"expiring"`
}

// RedisConfig holds the optional cache configuration
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	FlagTTL  time.Duration `mapstructure:"flag_ttl"`
}

// NATSConfig holds the optional lifecycle event publisher configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// ServerConfig holds the health/read API configuration
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// YouTubeConfig holds the channel statistics source
type YouTubeConfig struct {
	ChannelID string `mapstructure:"channel_id"`
	APIKey    string `mapstructure:"api_key"`
	APIURL    string `mapstructure:"api_url"`
}

// AssetsConfig holds local file locations and external links
type AssetsConfig struct {
	ImageDir      string `mapstructure:"image_dir"`
	SurveyURL     string `mapstructure:"survey_url"`
	CountriesURL  string `mapstructure:"countries_url"`
	ExpiringAhead int    `mapstructure:"expiring_ahead_days"`
}

// BotConfig holds configuration for the community bot
type BotConfig struct {
	BaseConfig `mapstructure:",squash"`
	Discord    DiscordConfig    `mapstructure:"discord"`
	Emoji      EmojiConfig      `mapstructure:"emoji"`
	MainGuild  GuildConfig      `mapstructure:"main_guild"`
	VIPGuild   GuildConfig      `mapstructure:"vip_guild"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Membership MembershipConfig `mapstructure:"membership"`
	Fetcher    FetcherConfig    `mapstructure:"fetcher"`
	Selection  SelectionConfig  `mapstructure:"selection"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Redis      RedisConfig      `mapstructure:"redis"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Server     ServerConfig     `mapstructure:"server"`
	YouTube    YouTubeConfig    `mapstructure:"youtube"`
	Assets     AssetsConfig     `mapstructure:"assets"`
}

// LoadBotConfig loads configuration for the community bot
func LoadBotConfig(configFile string, envPath string) (*BotConfig, error) {
	v := configureViper(ServiceName, configFile, envPath)

	v.SetDefault("debug", false)
	v.SetDefault("discord.status_interval", "60s")
	v.SetDefault("discord.statuses", []string{"investments", "the market", "your trackers"})
	v.SetDefault("emoji.xbox", "🎮")
	v.SetDefault("emoji.ps", "🕹️")
	v.SetDefault("emoji.pc", "💻")
	v.SetDefault("emoji.coins", "🪙")
	v.SetDefault("emoji.totw", "⭐")
	v.SetDefault("emoji.like", "👍")
	v.SetDefault("emoji.dislike", "👎")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "bot_data.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("membership.port", 3306)
	v.SetDefault("membership.level_ids", []int{4, 5, 6})
	v.SetDefault("membership.query_timeout", "10s")
	v.SetDefault("fetcher.base_url", "http://localhost:3000")
	v.SetDefault("fetcher.per_attempt_timeout", "60s")
	v.SetDefault("fetcher.max_attempts", 5)
	v.SetDefault("fetcher.retry_interval", "2s")
	v.SetDefault("selection.ttl", "10m")
	v.SetDefault("selection.sweep_interval", "60s")
	v.SetDefault("worker.concurrency", 5)
	v.SetDefault("schedule.vip_sync", "0 0 * * * *")
	v.SetDefault("schedule.stats", "0 0 */3 * * *")
	v.SetDefault("schedule.expiring", "0 0 12 * * *")
	v.SetDefault("redis.flag_ttl", "720h")
	v.SetDefault("nats.subject_prefix", "investments")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", ServiceName)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("youtube.api_url", "https://www.googleapis.com/youtube/v3/channels")
	v.SetDefault("assets.image_dir", "images")
	v.SetDefault("assets.countries_url", "https://restcountries.com/v3.1/name")
	v.SetDefault("assets.expiring_ahead_days", 7)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config BotConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Database.Driver != "sqlite" && config.Database.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	return &config, nil
}

func configureViper(service string, configFile string, envPath string) *viper.Viper {
	loadEnv(envPath, service)

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("config/")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindAllEnvVars(v)

	return v
}

// bindAllEnvVars binds every key so env-only deployments unmarshal fully
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		"discord.token",
		"discord.developer_id",
		"discord.statuses",
		"discord.status_interval",
		"emoji.xbox",
		"emoji.ps",
		"emoji.pc",
		"emoji.coins",
		"emoji.totw",
		"emoji.like",
		"emoji.dislike",
		"main_guild.id",
		"main_guild.owners",
		"main_guild.roles.member",
		"main_guild.roles.vip",
		"main_guild.roles.support",
		"main_guild.roles.manager",
		"main_guild.channels.log",
		"main_guild.channels.ticket",
		"main_guild.channels.suggest",
		"main_guild.channels.faq",
		"main_guild.channels.voting",
		"main_guild.channels.profit",
		"main_guild.channels.first_exit",
		"main_guild.channels.tracker",
		"main_guild.channels.vip_tracker",
		"main_guild.channels.vip_help",
		"main_guild.channels.stats_discord",
		"main_guild.channels.stats_youtube",
		"vip_guild.id",
		"vip_guild.owners",
		"vip_guild.roles.vip",
		"vip_guild.roles.vip2",
		"vip_guild.channels.vip_log",
		"vip_guild.channels.welcome",
		"vip_guild.channels.profit",
		"vip_guild.channels.first_exit",
		"vip_guild.channels.tracker",
		"vip_guild.channels.stats_vip",
		"database.driver",
		"database.path",
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"membership.host",
		"membership.port",
		"membership.user",
		"membership.password",
		"membership.dbname",
		"membership.level_ids",
		"membership.query_timeout",
		"fetcher.base_url",
		"fetcher.per_attempt_timeout",
		"fetcher.max_attempts",
		"fetcher.retry_interval",
		"selection.ttl",
		"selection.sweep_interval",
		"worker.concurrency",
		"schedule.vip_sync",
		"schedule.stats",
		"schedule.expiring",
		"redis.addr",
		"redis.password",
		"redis.db",
		"redis.flag_ttl",
		"nats.url",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"server.enabled",
		"server.host",
		"server.port",
		"youtube.channel_id",
		"youtube.api_key",
		"youtube.api_url",
		"assets.image_dir",
		"assets.survey_url",
		"assets.countries_url",
		"assets.expiring_ahead_days",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		// later files override earlier ones
		_ = godotenv.Overload(filepath.Join(envPath, envFile))
	}
}

// ChdirRepoRoot changes the working directory to the closest parent holding config/
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the postgres connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
