package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jask/malla/internal/curriculum"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Interaction modes.
const (
	ModeToggle = "toggle"
	ModeSelect = "select"
)

// Config holds application configuration.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Storage StorageConfig `mapstructure:"storage"`
	UI      UIConfig      `mapstructure:"ui"`
	Terms   []TermRank    `mapstructure:"terms"`
	Log     LogConfig     `mapstructure:"log"`
}

// CatalogConfig points at the course list.
type CatalogConfig struct {
	Source string `mapstructure:"source"` // file path or http(s) URL
}

// StorageConfig selects where progress is kept.
type StorageConfig struct {
	Backend    string `mapstructure:"backend"`
	Path       string `mapstructure:"path"`
	Key        string `mapstructure:"key"` // empty = derived from catalog source
	Migrations string `mapstructure:"migrations"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	InteractionMode string `mapstructure:"interaction_mode"`
	NoneLabel       string `mapstructure:"none_label"`
	HistoryLimit    int    `mapstructure:"history_limit"`
}

// TermRank is one row of the term precedence table.
type TermRank struct {
	Label string `mapstructure:"label"`
	Rank  int    `mapstructure:"rank"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Path   string `mapstructure:"path"`
	Pretty bool   `mapstructure:"pretty"`
}

// DefaultTerms puts full-year courses first, then the two semesters.
func DefaultTerms() []TermRank {
	return []TermRank{
		{Label: "Anual", Rank: 0},
		{Label: "1er Cuatrimestre", Rank: 1},
		{Label: "2do Cuatrimestre", Rank: 2},
	}
}

func termsToMaps(terms []TermRank) []map[string]any {
	out := make([]map[string]any, len(terms))
	for i, t := range terms {
		out[i] = map[string]any{"label": t.Label, "rank": t.Rank}
	}
	return out
}

// TermOrder converts the precedence table for the registry.
func (c Config) TermOrder() curriculum.TermOrder {
	if len(c.Terms) == 0 {
		return curriculum.DefaultTermOrder()
	}
	ranks := make(map[string]int, len(c.Terms))
	for _, t := range c.Terms {
		ranks[t.Label] = t.Rank
	}
	return curriculum.NewTermOrder(ranks)
}

// Validate rejects values the app cannot run with.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendSQLite, BackendFile, c.Storage.Backend)
	}
	switch c.UI.InteractionMode {
	case ModeToggle, ModeSelect:
	default:
		return fmt.Errorf("ui.interaction_mode must be %q or %q, got %q", ModeToggle, ModeSelect, c.UI.InteractionMode)
	}
	for _, t := range c.Terms {
		if strings.TrimSpace(t.Label) == "" {
			return fmt.Errorf("terms: empty label")
		}
	}
	return nil
}

func configPath() string {
	if p := os.Getenv("MALLA_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "malla", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix MALLA_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("catalog.source", "materias.json")
	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "malla", "malla.db"))
	v.SetDefault("storage.key", "")
	v.SetDefault("storage.migrations", "") // empty = migrations built into the binary
	v.SetDefault("ui.interaction_mode", ModeToggle)
	v.SetDefault("ui.none_label", curriculum.DefaultNoneLabel)
	v.SetDefault("ui.history_limit", 20)
	v.SetDefault("terms", termsToMaps(DefaultTerms()))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(os.Getenv("HOME"), ".local", "state", "malla", "malla.log"))
	v.SetDefault("log.pretty", false)

	v.SetConfigType("toml")
	v.SetConfigFile(configPath())

	v.SetEnvPrefix("MALLA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.UI.InteractionMode = strings.ToLower(strings.TrimSpace(c.UI.InteractionMode))
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// The TUI uses it to remember the interaction mode.
func Save(cfg Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("catalog.source", cfg.Catalog.Source)
	v.Set("storage.backend", cfg.Storage.Backend)
	v.Set("storage.path", cfg.Storage.Path)
	v.Set("storage.key", cfg.Storage.Key)
	v.Set("storage.migrations", cfg.Storage.Migrations)
	v.Set("ui.interaction_mode", cfg.UI.InteractionMode)
	v.Set("ui.none_label", cfg.UI.NoneLabel)
	v.Set("ui.history_limit", cfg.UI.HistoryLimit)
	v.Set("terms", termsToMaps(cfg.Terms))
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.pretty", cfg.Log.Pretty)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
