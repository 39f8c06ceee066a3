// Package config loads settings from flags, MEMORIZE_* environment variables
// and an optional YAML file. Flags win over the environment, which wins over the file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"memorize/internal/engine"
)

const envPrefix = "MEMORIZE_"

var ErrNotEnoughContent = errors.New("fewer content values than pairs")

// DefaultContent is the card faces dealt when none are configured.
var DefaultContent = []string{"👻", "🎃", "🕷", "🦇", "🍬", "🧙", "🕸", "💀", "🌕", "🐈‍⬛", "🧛", "🪦"}

// Config holds every setting the binary reads at start-up.
type Config struct {
	Port        int           `koanf:"port" validate:"gt=0,lt=65536"`
	Pairs       int           `koanf:"pairs" validate:"gte=0"`
	BonusTime   time.Duration `koanf:"bonus-time" validate:"gte=0"`
	Seed        uint64        `koanf:"seed"`
	Content     []string      `koanf:"content" validate:"required,min=1,dive,required"`
	LogLevel    string        `koanf:"log-level" validate:"oneof=debug info warn error"`
	QRSize      int           `koanf:"qr-size" validate:"gte=64,lte=1024"`
	IdleTimeout time.Duration `koanf:"idle-timeout" validate:"gt=0"`
	TUI         bool          `koanf:"tui"`
}

func flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("memorize", pflag.ContinueOnError)
	fs.Int("port", 8080, "server port")
	fs.Int("pairs", 8, "number of pairs dealt per game")
	fs.Duration("bonus-time", engine.DefaultBonusTimeLimit, "face-up time a card may spend before its bonus is gone (0 disables)")
	fs.Uint64("seed", 0, "shuffle seed; 0 deals a different table every time")
	fs.StringSlice("content", DefaultContent, "card faces, one per pair")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.Int("qr-size", 256, "QR code edge in pixels")
	fs.Duration("idle-timeout", 2*time.Minute, "close a table after this long with no players connected")
	fs.Bool("tui", false, "play in the terminal instead of serving the web table")
	fs.String("config", "", "optional YAML config file")
	return fs
}

// Load parses args (without the program name) and layers the other sources under them.
func Load(args []string) (*Config, error) {
	fs := flagSet()
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	k := koanf.New(".")
	if path, _ := fs.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	// Unchanged flags only fill keys no other source set.
	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envValue maps MEMORIZE_BONUS_TIME to bonus-time and splits list values.
func envValue(key, value string) (string, interface{}) {
	key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, envPrefix)), "_", "-")
	if key == "content" {
		return key, strings.Split(value, ",")
	}
	return key, value
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Pairs > len(c.Content) {
		return fmt.Errorf("invalid config: %d pairs, %d content values: %w", c.Pairs, len(c.Content), ErrNotEnoughContent)
	}
	return nil
}
