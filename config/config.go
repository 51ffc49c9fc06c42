package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Digital-Creators-Team/lotto-ledger/logging"
)

// Kafka topic keys under kafka.topics.
const (
	TopicTicketIssued   = "ticket_issued"
	TopicTicketRedeemed = "ticket_redeemed"
	TopicDrawConducted  = "draw_conducted"
)

// Config holds all application configuration
type Config struct {
	Environment      string                 `mapstructure:"environment"`
	Server           ServerConfig           `mapstructure:"server"`
	Redis            RedisConfig            `mapstructure:"redis"`
	Kafka            KafkaConfig            `mapstructure:"kafka"`
	JWT              JWTConfig              `mapstructure:"jwt"`
	Logging          logging.Config         `mapstructure:"logging"`
	ExternalServices ExternalServicesConfig `mapstructure:"external_services"`
	Lottery          LotteryConfig          `mapstructure:"lottery"`
	Simulation       SimulationConfig       `mapstructure:"simulation"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	EnableCORS   bool          `mapstructure:"enable_cors"`
}

// RedisConfig holds Redis connection configuration. An empty Addr disables
// the draw report store.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	ReportTTL    time.Duration `mapstructure:"report_ttl"`
}

// KafkaConfig holds Kafka configuration. No brokers disables event streaming.
type KafkaConfig struct {
	Brokers       []string          `mapstructure:"brokers"`
	ConsumerGroup string            `mapstructure:"consumer_group"`
	Topics        map[string]string `mapstructure:"topics"`
}

// Topic returns the configured topic name for key, falling back to
// "lotto.<key>".
func (k KafkaConfig) Topic(key string) string {
	if name := k.Topics[key]; name != "" {
		return name
	}
	return "lotto." + key
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// ExternalServicesConfig holds external service configurations
type ExternalServicesConfig struct {
	TaxService ServiceConfig `mapstructure:"tax_service"`
}

// ServiceConfig holds external service configuration. An empty BaseURL
// keeps the service in-process.
type ServiceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// APIKey is sent as a bearer token when set.
	APIKey string `mapstructure:"api_key"`
}

// LotteryConfig configures the ledger itself.
type LotteryConfig struct {
	Offices int   `mapstructure:"offices"`
	Seed    int64 `mapstructure:"seed"`
	// DrawSchedule is a cron spec; empty means draws are only triggered over HTTP.
	DrawSchedule string `mapstructure:"draw_schedule"`
	// InitialFunds is in major units, e.g. "1000.00".
	InitialFunds string `mapstructure:"initial_funds"`
	// PlayerBalance is the opening wallet of a player seen for the first time.
	PlayerBalance string `mapstructure:"player_balance"`
}

// InitialFundsMinor converts InitialFunds to minor units.
func (c LotteryConfig) InitialFundsMinor() (int64, error) {
	if strings.TrimSpace(c.InitialFunds) == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(c.InitialFunds)
	if err != nil {
		return 0, fmt.Errorf("invalid lottery.initial_funds %q: %w", c.InitialFunds, err)
	}
	return d.Shift(2).Truncate(0).IntPart(), nil
}

// PlayerBalanceMinor converts PlayerBalance to minor units.
func (c LotteryConfig) PlayerBalanceMinor() (int64, error) {
	d, err := decimal.NewFromString(c.PlayerBalance)
	if err != nil {
		return 0, fmt.Errorf("invalid lottery.player_balance %q: %w", c.PlayerBalance, err)
	}
	return d.Shift(2).Truncate(0).IntPart(), nil
}

// SimulationConfig drives the `simulate` command.
type SimulationConfig struct {
	Players        int    `mapstructure:"players"`
	Draws          int    `mapstructure:"draws"`
	InitialBalance string `mapstructure:"initial_balance"`
}

// InitialBalanceMinor converts InitialBalance to minor units.
func (c SimulationConfig) InitialBalanceMinor() (int64, error) {
	d, err := decimal.NewFromString(c.InitialBalance)
	if err != nil {
		return 0, fmt.Errorf("invalid simulation.initial_balance %q: %w", c.InitialBalance, err)
	}
	return d.Shift(2).Truncate(0).IntPart(), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.setDefaults()
	return &config, nil
}

// Load loads configuration from YAML file using Viper
func Load(filename string) (*Config, error) {
	config, _, err := LoadWithViper(filename)
	return config, err
}

// LoadByEnv loads config-<env>.yaml from configDir, env taken from ENV or
// APP_ENV and defaulting to development.
func LoadByEnv(configDir string) (*Config, error) {
	v := newViper()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	env := os.Getenv("ENV")
	if env == "" {
		env = os.Getenv("APP_ENV")
	}
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config-%s", env))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return decode(v)
}

// LoadWithViper loads configuration and returns the viper instance for custom usage
func LoadWithViper(filename string) (*Config, *viper.Viper, error) {
	v := newViper()
	v.SetConfigFile(filename)

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	config, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return config, v, nil
}

// LoadDir merges every YAML file in configDir in alphabetical order, later
// files overriding earlier ones.
func LoadDir(configDir string) (*Config, error) {
	entries, err := os.ReadDir(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		name := strings.ToLower(entry.Name())
		if !entry.IsDir() && (strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no YAML files found in config directory: %s", configDir)
	}
	sort.Strings(files)

	v := newViper()
	for _, name := range files {
		v.SetConfigFile(filepath.Join(configDir, name))
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to merge config from %s: %w", name, err)
		}
	}
	return decode(v)
}

// LoadPath loads a single file or merges a directory.
func LoadPath(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config path: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return Load(path)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{Environment: "development"}
	c.setDefaults()
	return c
}

// setDefaults sets default values for missing configuration
func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.MinIdleConns == 0 {
		c.Redis.MinIdleConns = 5
	}
	if c.Redis.ReportTTL == 0 {
		c.Redis.ReportTTL = 7 * 24 * time.Hour
	}
	if c.Kafka.ConsumerGroup == "" {
		c.Kafka.ConsumerGroup = "lotto-ledger"
	}
	if c.JWT.Expiration == 0 {
		c.JWT.Expiration = 24 * time.Hour
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.ExternalServices.TaxService.Timeout == 0 {
		c.ExternalServices.TaxService.Timeout = 10 * time.Second
	}
	if c.Lottery.Offices == 0 {
		c.Lottery.Offices = 1
	}
	if c.Lottery.PlayerBalance == "" {
		c.Lottery.PlayerBalance = "100.00"
	}
	if c.Simulation.Players == 0 {
		c.Simulation.Players = 100
	}
	if c.Simulation.Draws == 0 {
		c.Simulation.Draws = 10
	}
	if c.Simulation.InitialBalance == "" {
		c.Simulation.InitialBalance = "100.00"
	}
}

// IsDevelopment returns true if environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// IsProduction returns true if environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
