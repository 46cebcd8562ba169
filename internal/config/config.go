// Package config loads the application configuration from
// ~/.config/mindweave/config.toml with environment overrides. Every
// field has a usable default so a missing file is not an error.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/llm"
	"github.com/mindweave/mindweave/pkg/theme"
)

const fileName = "config.toml"

// LLM configures the model provider.
type LLM struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// Cloud configures the remote map store client.
type Cloud struct {
	BaseURL string `toml:"base_url"`
}

// Server configures the bundled API server.
type Server struct {
	Addr      string `toml:"addr"`
	MongoURI  string `toml:"mongo_uri"`
	Database  string `toml:"database"`
	RedisAddr string `toml:"redis_addr"`
	JWTSecret string `toml:"jwt_secret"`
}

// UI holds display preferences the CLI persists between runs.
type UI struct {
	Theme string `toml:"theme"`
}

// Config is the full application configuration.
type Config struct {
	LLM    LLM    `toml:"llm"`
	Cloud  Cloud  `toml:"cloud"`
	Server Server `toml:"server"`
	UI     UI     `toml:"ui"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LLM: LLM{
			BaseURL: llm.DefaultBaseURL,
			Model:   llm.DefaultModel,
		},
		Cloud: Cloud{
			BaseURL: "http://localhost:8080",
		},
		Server: Server{
			Addr:      ":8080",
			MongoURI:  "mongodb://localhost:27017",
			Database:  "mindweave",
			RedisAddr: "localhost:6379",
		},
		UI: UI{Theme: string(theme.Dark)},
	}
}

// Dir returns the configuration directory, honoring MINDWEAVE_CONFIG_DIR.
func Dir() (string, error) {
	if dir := os.Getenv("MINDWEAVE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mindweave"), nil
}

// Load reads the config file, layering environment overrides on top of
// the defaults. A missing file yields the defaults.
func Load() (Config, error) {
	cfg := Default()

	dir, err := Dir()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(filepath.Join(dir, fileName))
	switch {
	case os.IsNotExist(err):
		// Defaults plus env only.
	case err != nil:
		return cfg, err
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", fileName)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Save writes cfg to the config file, creating the directory if needed.
func Save(cfg Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, fileName), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// applyEnv overlays environment variables onto cfg. Env always wins
// over the file so CI and one-off runs need no config edits.
func applyEnv(cfg *Config) {
	for env, dst := range map[string]*string{
		"MINDWEAVE_LLM_BASE_URL":   &cfg.LLM.BaseURL,
		"MINDWEAVE_LLM_API_KEY":    &cfg.LLM.APIKey,
		"MINDWEAVE_LLM_MODEL":      &cfg.LLM.Model,
		"MINDWEAVE_CLOUD_BASE_URL": &cfg.Cloud.BaseURL,
		"MINDWEAVE_SERVER_ADDR":    &cfg.Server.Addr,
		"MINDWEAVE_MONGO_URI":      &cfg.Server.MongoURI,
		"MINDWEAVE_REDIS_ADDR":     &cfg.Server.RedisAddr,
		"MINDWEAVE_JWT_SECRET":     &cfg.Server.JWTSecret,
		"MINDWEAVE_THEME":          &cfg.UI.Theme,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	// GROQ_API_KEY is a common fallback for the model key.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GROQ_API_KEY")
	}
}

// ThemeMode parses the configured theme name, defaulting to dark.
func (c Config) ThemeMode() theme.Mode {
	if theme.Mode(c.UI.Theme) == theme.Light {
		return theme.Light
	}
	return theme.Dark
}
