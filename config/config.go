package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spdm-lab/rewards/pkg/enum"
)

type Configs struct {
	Env string `toml:"env" env:"ENV"`

	Database         DatabaseConfigs  `toml:"database"`
	ApiServer        APIServerConfigs `toml:"api_server"`
	RealtimeServer   ServerConfigs    `toml:"realtime_server" envPrefix:"REALTIME_"`
	PrometheusServer ServerConfigs    `toml:"prometheus_server" envPrefix:"PROMETHEUS_"`
	Auth             AuthConfigs      `toml:"auth"`
	Session          SessionConfigs   `toml:"session"`
	Redis            RedisConfigs     `toml:"redis"`
	Kafka            KafkaConfigs     `toml:"kafka"`
	Logger           LoggerConfigs    `toml:"logger"`

	Reward      RewardConfigs      `toml:"reward"`
	Spin        SpinConfigs        `toml:"spin"`
	Afk         AfkConfigs         `toml:"afk"`
	Leaderboard LeaderboardConfigs `toml:"leaderboard"`
	Presence    PresenceConfigs    `toml:"presence"`
	Shop        ShopConfigs        `toml:"shop"`
	Admin       AdminConfigs       `toml:"admin"`
}

type DatabaseConfigs struct {
	Host     string `toml:"host" env:"DB_HOST"`
	Port     string `toml:"port" env:"DB_PORT"`
	Database string `toml:"database" env:"DB_DATABASE"`
	User     string `toml:"user" env:"DB_USER"`
	Password string `toml:"password" env:"DB_PASSWORD"`
	LogSQL   bool   `toml:"log_sql" env:"DB_LOG_SQL"`
}

func (d DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string `toml:"host" env:"HOST"`
	Port string `toml:"port" env:"PORT"`
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type APIServerConfigs struct {
	ServerConfigs  `toml:"server" envPrefix:"API_"`
	AllowedOrigins []string `toml:"allowed_origins" env:"API_ALLOWED_ORIGINS" envSeparator:","`
}

type AuthConfigs struct {
	TokenSecret string       `toml:"token_secret" env:"AUTH_TOKEN_SECRET"`
	AccessToken TokenConfigs `toml:"access_token"`
}

type TokenConfigs struct {
	Name       string        `toml:"name" env:"AUTH_ACCESS_TOKEN_NAME"`
	Expiration time.Duration `toml:"expiration" env:"AUTH_ACCESS_TOKEN_EXPIRATION"`
}

type SessionConfigs struct {
	Secret string `toml:"secret" env:"SESSION_SECRET"`
	Name   string `toml:"name" env:"SESSION_NAME"`
}

type RedisConfigs struct {
	Addr string `toml:"addr" env:"REDIS_ADDR"`
}

type KafkaConfigs struct {
	Addr     string `toml:"addr" env:"KAFKA_ADDR"`
	ClientID string `toml:"client_id" env:"KAFKA_CLIENT_ID"`
	GroupID  string `toml:"group_id" env:"KAFKA_GROUP_ID"`
}

type LoggerConfigs struct {
	Level string `toml:"level" env:"LOG_LEVEL"`
}

// CooldownScope decides who owns the cooldown and daily ledger state.
type CooldownScope string

var (
	ScopeAccount = enum.New(CooldownScope("account"), "account")
	ScopeDevice  = enum.New(CooldownScope("device"), "device")
)

type RewardOffer struct {
	ID    string `toml:"id"`
	Name  string `toml:"name"`
	URL   string `toml:"url"`
	Coins int    `toml:"coins"`
}

type RewardConfigs struct {
	Offers        []RewardOffer `toml:"offers"`
	DailyCap      int           `toml:"daily_cap" env:"REWARD_DAILY_CAP"`
	DwellTime     time.Duration `toml:"dwell_time" env:"REWARD_DWELL_TIME"`
	ResetInterval time.Duration `toml:"reset_interval" env:"REWARD_RESET_INTERVAL"`
	Timezone      string        `toml:"timezone" env:"REWARD_TIMEZONE"`
	Scope         CooldownScope `toml:"scope" env:"REWARD_SCOPE"`
}

// Location returns the timezone whose midnight resets the daily ledgers.
func (c RewardConfigs) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}

	return loc
}

type SpinOutcome struct {
	Value       int     `toml:"value"`
	Probability float64 `toml:"probability"`
	Color       string  `toml:"color"`
}

type SpinConfigs struct {
	Outcomes          []SpinOutcome `toml:"outcomes"`
	Cooldown          time.Duration `toml:"cooldown" env:"SPIN_COOLDOWN"`
	PresentationDelay time.Duration `toml:"presentation_delay" env:"SPIN_PRESENTATION_DELAY"`
}

type AfkConfigs struct {
	Interval         time.Duration `toml:"interval" env:"AFK_INTERVAL"`
	Grace            time.Duration `toml:"grace" env:"AFK_GRACE"`
	CoinsPerInterval int           `toml:"coins_per_interval" env:"AFK_COINS_PER_INTERVAL"`
	DailyCap         int           `toml:"daily_cap" env:"AFK_DAILY_CAP"`
}

type LeaderboardConfigs struct {
	MinPoints   int           `toml:"min_points" env:"LEADERBOARD_MIN_POINTS"`
	Limit       int           `toml:"limit" env:"LEADERBOARD_LIMIT"`
	CacheTTL    time.Duration `toml:"cache_ttl" env:"LEADERBOARD_CACHE_TTL"`
	TopRewarded int           `toml:"top_rewarded" env:"LEADERBOARD_TOP_REWARDED"`
}

type PresenceConfigs struct {
	OfflineAfter time.Duration `toml:"offline_after" env:"PRESENCE_OFFLINE_AFTER"`
}

type ShopItem struct {
	ID    string `toml:"id"`
	Name  string `toml:"name"`
	Price int    `toml:"price"`
}

type ShopConfigs struct {
	Items []ShopItem `toml:"items"`
}

type AdminConfigs struct {
	PageSize           int `toml:"page_size" env:"ADMIN_PAGE_SIZE"`
	PromoCodeMinLength int `toml:"promo_code_min_length" env:"ADMIN_PROMO_CODE_MIN_LENGTH"`
}

// Default returns the configuration with the values the web client was built
// around.
func Default() Configs {
	return Configs{
		Env: "local",
		ApiServer: APIServerConfigs{
			ServerConfigs:  ServerConfigs{Port: "8080"},
			AllowedOrigins: []string{"*"},
		},
		RealtimeServer:   ServerConfigs{Port: "8081"},
		PrometheusServer: ServerConfigs{Port: "9090"},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{Name: "access_token", Expiration: 24 * time.Hour},
		},
		Session: SessionConfigs{Name: "spdm_device"},
		Redis:   RedisConfigs{Addr: "localhost:6379"},
		Kafka:   KafkaConfigs{ClientID: "spdm", GroupID: "spdm-realtime"},
		Logger:  LoggerConfigs{Level: "info"},
		Reward: RewardConfigs{
			Offers: []RewardOffer{
				{ID: "1", Name: "Reward 1", URL: "https://direct-link.net/1351367/reward-1", Coins: 5},
				{ID: "2", Name: "Reward 2", URL: "https://link-hub.net/1351367/reward-2", Coins: 5},
				{ID: "3", Name: "Reward 3", URL: "https://link-center.net/1351367/reward-3", Coins: 5},
			},
			DailyCap:      15,
			DwellTime:     30 * time.Second,
			ResetInterval: time.Hour,
			Scope:         ScopeAccount,
		},
		Spin: SpinConfigs{
			Outcomes: []SpinOutcome{
				{Value: 1, Probability: 0.5, Color: "#4CAF50"},
				{Value: 10, Probability: 0.25, Color: "#2196F3"},
				{Value: 50, Probability: 0.15, Color: "#FF9800"},
				{Value: 100, Probability: 0.1, Color: "#F44336"},
			},
			Cooldown:          6 * time.Hour,
			PresentationDelay: 5 * time.Second,
		},
		Afk: AfkConfigs{
			Interval:         5 * time.Minute,
			Grace:            time.Minute,
			CoinsPerInterval: 1,
			DailyCap:         50,
		},
		Leaderboard: LeaderboardConfigs{
			MinPoints:   10,
			Limit:       100,
			CacheTTL:    time.Minute,
			TopRewarded: 3,
		},
		Presence: PresenceConfigs{OfflineAfter: time.Minute},
		Shop: ShopConfigs{
			Items: []ShopItem{
				{ID: "key-1d", Name: "1 Day Key", Price: 100},
				{ID: "key-7d", Name: "7 Day Key", Price: 500},
				{ID: "key-30d", Name: "30 Day Key", Price: 1500},
			},
		},
		Admin: AdminConfigs{PageSize: 10, PromoCodeMinLength: 3},
	}
}

// Load reads the configuration on top of the defaults. The toml file is
// optional when path is empty, then .env and the process environment override
// whatever was read.
func Load(path string) (Configs, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Configs{}, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Configs{}, fmt.Errorf("load .env: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Configs{}, fmt.Errorf("parse env: %w", err)
	}

	if _, err := enum.ToEnum[CooldownScope](string(cfg.Reward.Scope)); err != nil {
		return Configs{}, fmt.Errorf("reward scope: %w", err)
	}

	return cfg, nil
}
