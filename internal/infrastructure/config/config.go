package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"zipper.com/internal/domain/entity"
)

// Storage drivers
const (
	DriverMemory = "memory"
	DriverBolt   = "bolt"
)

const defaultMaxBundleAccounts = 64

// Config holds the application configuration
type Config struct {
	Server   Server   `mapstructure:"server"`
	Bundle   Bundle   `mapstructure:"bundle"`
	Programs Programs `mapstructure:"programs"`
	Ledger   Ledger   `mapstructure:"ledger"`
	Log      Log      `mapstructure:"log"`
}

// Server configuration
type Server struct {
	Port string `mapstructure:"port"`
}

// Bundle submission configuration
type Bundle struct {
	HMACSecret         string        `mapstructure:"hmacSecret"`
	TimestampTolerance time.Duration `mapstructure:"timestampTolerance"`
}

// Programs holds the base58 identities of the well-known programs
type Programs struct {
	System string `mapstructure:"system"`
	Token  string `mapstructure:"token"`
	Zipper string `mapstructure:"zipper"`
}

// Ledger configuration
type Ledger struct {
	Driver            string           `mapstructure:"driver"`
	Path              string           `mapstructure:"path"`
	MaxBundleAccounts int              `mapstructure:"maxBundleAccounts"`
	Genesis           []GenesisAccount `mapstructure:"genesis"`
}

// GenesisAccount is the config form of entity.GenesisAccount
type GenesisAccount struct {
	Address  string        `mapstructure:"address"`
	Lamports uint64        `mapstructure:"lamports"`
	Token    *GenesisToken `mapstructure:"token"`
}

// GenesisToken is the config form of entity.GenesisToken
type GenesisToken struct {
	Mint      string `mapstructure:"mint"`
	Authority string `mapstructure:"authority"`
	Amount    uint64 `mapstructure:"amount"`
}

// Log configuration. An empty File logs to stdout only.
type Log struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"maxSizeMB"`
	MaxAgeDays int    `mapstructure:"maxAgeDays"`
}

// LoadConfig loads configuration from YAML file
// Uses CONFIG_ENV environment variable to determine which config file to load
func LoadConfig(configDir string) (*Config, error) {
	configEnv := os.Getenv("CONFIG_ENV")
	if configEnv == "" {
		configEnv = "local"
	}

	v := viper.New()

	// Load base app-config.yaml as template/defaults (if it exists)
	baseConfigPath := fmt.Sprintf("%s/app-config.yaml", configDir)
	baseConfigExists := false
	if _, err := os.Stat(baseConfigPath); err == nil {
		v.SetConfigFile(baseConfigPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read base config file: %w", err)
		}
		baseConfigExists = true
	}

	// Merge environment-specific config (e.g., local.yaml when CONFIG_ENV=local)
	envConfigPath := fmt.Sprintf("%s/%s.yaml", configDir, configEnv)
	if _, err := os.Stat(envConfigPath); err == nil {
		v.SetConfigFile(envConfigPath)
		if baseConfigExists {
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("failed to merge env config file: %w", err)
			}
		} else if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read env config file: %w", err)
		}
	}

	v.SetEnvPrefix("ZIPPER")
	v.AutomaticEnv()

	v.BindEnv("server.port", "ZIPPER_SERVER_PORT", "PORT")
	v.BindEnv("bundle.hmacSecret", "ZIPPER_BUNDLE_HMAC_SECRET", "HMAC_SECRET")
	v.BindEnv("bundle.timestampTolerance", "ZIPPER_BUNDLE_TIMESTAMP_TOLERANCE")
	v.BindEnv("ledger.driver", "ZIPPER_LEDGER_DRIVER")
	v.BindEnv("ledger.path", "ZIPPER_LEDGER_PATH")
	v.BindEnv("log.file", "ZIPPER_LOG_FILE", "LOGFILE")

	// 0 means unbounded; the default applies only when the key is unset
	v.SetDefault("ledger.maxBundleAccounts", defaultMaxBundleAccounts)

	// A plain integer tolerance (e.g. "5") means minutes
	if raw := v.GetString("bundle.timestampTolerance"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			v.Set("bundle.timestampTolerance", time.Duration(minutes)*time.Minute)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Bundle.HMACSecret == "" {
		cfg.Bundle.HMACSecret = "default-secret-key-change-in-production"
	}
	if cfg.Bundle.TimestampTolerance == 0 {
		cfg.Bundle.TimestampTolerance = 5 * time.Minute
	}
	if cfg.Programs.System == "" {
		cfg.Programs.System = entity.DefaultSystemProgram
	}
	if cfg.Programs.Token == "" {
		cfg.Programs.Token = entity.DefaultTokenProgram
	}
	if cfg.Programs.Zipper == "" {
		cfg.Programs.Zipper = entity.DefaultZipperProgram
	}
	if cfg.Ledger.Driver == "" {
		cfg.Ledger.Driver = DriverMemory
	}
	if cfg.Ledger.Path == "" {
		cfg.Ledger.Path = "./data/ledger.db"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 100
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 7
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	switch c.Ledger.Driver {
	case DriverMemory, DriverBolt:
	default:
		return fmt.Errorf("unknown ledger driver %q", c.Ledger.Driver)
	}
	if c.Ledger.MaxBundleAccounts < 0 {
		return fmt.Errorf("ledger.maxBundleAccounts must not be negative")
	}
	if _, err := c.ProgramIDs(); err != nil {
		return err
	}
	return nil
}

// ProgramIDs resolves the configured program identities
func (c *Config) ProgramIDs() (entity.ProgramIDs, error) {
	var ids entity.ProgramIDs
	var err error
	if ids.System, err = entity.ParseAddress(c.Programs.System); err != nil {
		return ids, fmt.Errorf("programs.system: %w", err)
	}
	if ids.Token, err = entity.ParseAddress(c.Programs.Token); err != nil {
		return ids, fmt.Errorf("programs.token: %w", err)
	}
	if ids.Zipper, err = entity.ParseAddress(c.Programs.Zipper); err != nil {
		return ids, fmt.Errorf("programs.zipper: %w", err)
	}
	return ids, nil
}

// GenesisAccounts parses the configured genesis accounts
func (c *Config) GenesisAccounts() ([]entity.GenesisAccount, error) {
	accounts := make([]entity.GenesisAccount, 0, len(c.Ledger.Genesis))
	for i, g := range c.Ledger.Genesis {
		addr, err := entity.ParseAddress(g.Address)
		if err != nil {
			return nil, fmt.Errorf("ledger.genesis[%d].address: %w", i, err)
		}
		account := entity.GenesisAccount{Address: addr, Lamports: g.Lamports}
		if g.Token != nil {
			mint, err := entity.ParseAddress(g.Token.Mint)
			if err != nil {
				return nil, fmt.Errorf("ledger.genesis[%d].token.mint: %w", i, err)
			}
			authority, err := entity.ParseAddress(g.Token.Authority)
			if err != nil {
				return nil, fmt.Errorf("ledger.genesis[%d].token.authority: %w", i, err)
			}
			account.Token = &entity.GenesisToken{Mint: mint, Authority: authority, Amount: g.Token.Amount}
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}
