// Package config loads settings for the mage-rules tools from an optional
// YAML file and MAGE_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/magefree/mage-rules-go/internal/game"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// EnvPrefix is prepended to every environment override, e.g.
// MAGE_LOGGING_LEVEL or MAGE_MATCH_STARTING_LIFE.
const EnvPrefix = "MAGE"

// Config is the complete configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Match      MatchConfig      `mapstructure:"match"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Tournament TournamentConfig `mapstructure:"tournament"`
	// Seed drives library shuffling.
	Seed uint64 `mapstructure:"seed"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MatchConfig describes the match to set up.
type MatchConfig struct {
	Players      []string         `mapstructure:"players"`
	StartingLife int              `mapstructure:"starting_life"`
	MaxHandSize  int              `mapstructure:"max_hand_size"`
	Deck         []game.DeckEntry `mapstructure:"deck"`
}

// CatalogConfig points at a card catalog file. An empty path selects the
// embedded catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// TournamentConfig lists the entrants of a simulated Swiss event.
type TournamentConfig struct {
	Rounds   int       `mapstructure:"rounds"`
	Entrants []Entrant `mapstructure:"entrants"`
}

// Entrant is a named deck.
type Entrant struct {
	Name string           `mapstructure:"name"`
	Deck []game.DeckEntry `mapstructure:"deck"`
}

var (
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats = map[string]bool{"console": true, "json": true}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("match.players", []string{"Alice", "Bob"})
	v.SetDefault("match.starting_life", game.DefaultStartingLife)
	v.SetDefault("match.max_hand_size", game.DefaultMaxHandSize)
	v.SetDefault("catalog.path", "")
	v.SetDefault("tournament.rounds", 3)
	v.SetDefault("seed", 1)
}

// Load reads the file at path, if any, over the defaults and then applies
// environment overrides. A missing deck falls back to game.SampleDeck.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if len(cfg.Match.Deck) == 0 {
		cfg.Match.Deck = game.SampleDeck()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs error
	if !validLevels[c.Logging.Level] {
		errs = multierr.Append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	if !validFormats[c.Logging.Format] {
		errs = multierr.Append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}
	if len(c.Match.Players) < 2 {
		errs = multierr.Append(errs, fmt.Errorf("match.players: need at least 2, got %d", len(c.Match.Players)))
	}
	if c.Match.StartingLife <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("match.starting_life: must be positive, got %d", c.Match.StartingLife))
	}
	if c.Match.MaxHandSize <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("match.max_hand_size: must be positive, got %d", c.Match.MaxHandSize))
	}
	errs = multierr.Append(errs, validateDeck("match.deck", c.Match.Deck))

	if c.Tournament.Rounds <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("tournament.rounds: must be positive, got %d", c.Tournament.Rounds))
	}
	seen := make(map[string]bool, len(c.Tournament.Entrants))
	for i, e := range c.Tournament.Entrants {
		key := fmt.Sprintf("tournament.entrants[%d]", i)
		if e.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("%s: name is empty", key))
		} else if seen[e.Name] {
			errs = multierr.Append(errs, fmt.Errorf("%s: duplicate name %q", key, e.Name))
		}
		seen[e.Name] = true
		if len(e.Deck) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s: deck is empty", key))
		}
		errs = multierr.Append(errs, validateDeck(key+".deck", e.Deck))
	}
	return errs
}

func validateDeck(key string, deck []game.DeckEntry) error {
	var errs error
	for i, entry := range deck {
		if entry.Card == "" {
			errs = multierr.Append(errs, fmt.Errorf("%s[%d]: card name is empty", key, i))
		}
		if entry.Count <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s[%d]: count must be positive, got %d", key, i, entry.Count))
		}
	}
	return errs
}

// GameOptions converts the match settings into options for game.New. The
// catalog and logger are supplied by the caller.
func (c *Config) GameOptions() game.Options {
	return game.Options{
		Players:      c.Match.Players,
		StartingLife: c.Match.StartingLife,
		MaxHandSize:  c.Match.MaxHandSize,
		Seed:         c.Seed,
	}
}
