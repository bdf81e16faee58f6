package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/deckdown/deckdown/internal/deck"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Library LibraryConfig     `yaml:"library"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Deck    DeckConfig        `yaml:"deck"`
	Export  ExportConfig      `yaml:"export"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Library.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Deck.Validate(); err != nil {
		return err
	}
	if err := c.Export.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// LibraryConfig holds the path to the deck library directory.
type LibraryConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the library configuration.
func (c *LibraryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// DeckConfig holds the global directive defaults. Each field can be
// overridden per document by a <!-- deck --> block and per slide by a
// <!-- slide --> block.
type DeckConfig struct {
	Theme            string `yaml:"theme"`
	ImageMode        string `yaml:"image_mode"`
	ShowClock        bool   `yaml:"show_clock"`
	ShowElapsed      bool   `yaml:"show_elapsed"`
	CountdownMinutes int    `yaml:"countdown_minutes"`
	IncrementalLists bool   `yaml:"incremental_lists"`
}

// Validate validates the deck defaults.
func (c *DeckConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ImageMode, validation.In(
			imgModeAuto, imgModeASCII, imgModeBlocks, imgModeNone, "",
		)),
		validation.Field(&c.CountdownMinutes, validation.Min(0)),
	)
}

// Image mode names accepted in configuration and directives.
const (
	imgModeAuto   = "auto"
	imgModeASCII  = "ascii"
	imgModeBlocks = "blocks"
	imgModeNone   = "none"
)

// Settings converts the deck defaults into the resolved settings type used
// by the parser and renderers.
func (c *DeckConfig) Settings() deck.Settings {
	return deck.Settings{
		Theme:            c.Theme,
		ImageMode:        c.ImageMode,
		ShowClock:        c.ShowClock,
		ShowElapsed:      c.ShowElapsed,
		CountdownMinutes: c.CountdownMinutes,
		IncrementalLists: c.IncrementalLists,
	}
}

// ExportConfig holds the default render surface in character cells.
type ExportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Validate validates the export configuration.
func (c *ExportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Width, validation.Required, validation.Min(20), validation.Max(500)),
		validation.Field(&c.Height, validation.Required, validation.Min(5), validation.Max(200)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Library: LibraryConfig{
			Path: "./decks",
		},
		SQLite: SQLiteConfig{
			Path: "./deckdown.db",
		},
		Deck: DeckConfig{
			Theme:     "dark",
			ImageMode: imgModeAuto,
		},
		Export: ExportConfig{
			Width:  80,
			Height: 24,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
