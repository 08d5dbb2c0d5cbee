package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "WRCHECK"
	defaultConfigPath = "configs" // configs/config.yml
	defaultConfigName = "config"
)

// Config is the merged view of defaults, config file, environment and flags.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Scan   ScanConfig   `mapstructure:"scan"`
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Relay  RelayConfig  `mapstructure:"relay"`
	Watch  WatchConfig  `mapstructure:"watch"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ScanConfig holds defaults for the stat dump checks.
type ScanConfig struct {
	ExpectedState string `mapstructure:"expected_state"`
	TempRange     string `mapstructure:"temp_range"` // "min,max"; empty disables
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// Operator is a bench operator allowed to drive relays over HTTP.
type Operator struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"` // bcrypt
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	Operators  []Operator    `mapstructure:"operators"`
	// AllowSignUp opens /auth/sign-up to anonymous callers.
	AllowSignUp bool `mapstructure:"allow_sign_up"`
}

// RelayConfig lists the GPIO (BCM numbering) pins wired to the WR-LEN relays.
type RelayConfig struct {
	Enabled bool  `mapstructure:"enabled"`
	Pins    []int `mapstructure:"pins"`
}

// WatchConfig drives the periodic rescan of a live stat log.
type WatchConfig struct {
	Path      string        `mapstructure:"path"`
	Interval  time.Duration `mapstructure:"interval"`
	Sync      bool          `mapstructure:"sync"`
	TempRange string        `mapstructure:"temp_range"`
}

var errNoSigningKey = errors.New("auth.signing_key is required")

// DefaultRelayPins are the WR-LEN relay pins on the reference bench.
var DefaultRelayPins = []int{17, 27, 22}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("scan.expected_state", "TRACK_PHASE")
	v.SetDefault("scan.temp_range", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.allow_sign_up", false)
	v.SetDefault("relay.enabled", false)
	v.SetDefault("relay.pins", DefaultRelayPins)
	v.SetDefault("watch.interval", 30*time.Second)
	v.SetDefault("watch.sync", true)
}

// Load reads configuration. When file is empty, configs/config.yml is used
// if present; a missing default file is not an error. Flags bound through
// flagKeys override file and environment values when they were set.
func Load(file string, flags *pflag.FlagSet, flagKeys map[string]string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(defaultConfigPath)
		v.SetConfigName(defaultConfigName)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	for key, name := range flagKeys {
		if flags == nil {
			break
		}
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %q: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// ValidateServer checks the settings the daemon cannot run without.
func (c Config) ValidateServer() error {
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return errNoSigningKey
	}
	return nil
}
