// Package config loads neurocat settings from YAML, a .env file and
// NEUROCAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/MereWhiplash/neurocat/internal/colorizer"
	"github.com/MereWhiplash/neurocat/internal/intensity"
	"github.com/MereWhiplash/neurocat/internal/spectrum"
	"github.com/MereWhiplash/neurocat/internal/storage"
)

// FileName is the config file looked up in the working directory.
const FileName = "neurocat.yaml"

// PaletteConfig locates the color vector resource.
type PaletteConfig struct {
	Path string `yaml:"path"`
	// Subtract removes the abstract direction from every color vector.
	Subtract *bool `yaml:"subtract,omitempty"`
}

// StorageConfig selects and configures the word store.
type StorageConfig struct {
	Driver          string `yaml:"driver"`
	SQLitePath      string `yaml:"sqlite_path"`
	PostgresDSN     string `yaml:"postgres_dsn,omitempty"`
	MongoDBURI      string `yaml:"mongodb_uri,omitempty"`
	MongoDBDatabase string `yaml:"mongodb_database,omitempty"`
}

// EmbedderConfig configures the Ollama embedder used by import.
type EmbedderConfig struct {
	OllamaURL string `yaml:"ollama_url"`
	Model     string `yaml:"model"`
}

// ColorizerConfig controls word coloring.
type ColorizerConfig struct {
	Multicolor       *bool    `yaml:"multicolor,omitempty"`
	BoostDark        *bool    `yaml:"boost_dark,omitempty"`
	Fallback         *bool    `yaml:"fallback,omitempty"`
	HighlightUnknown bool     `yaml:"highlight_unknown"`
	MinColorfulness  *float64 `yaml:"min_colorfulness,omitempty"`
	MinWordLength    int      `yaml:"min_word_length"`
	IgnoreWordsFile  string   `yaml:"ignore_words_file,omitempty"`
}

// SpectrumConfig controls spectrum rendering.
type SpectrumConfig struct {
	Mapping    string `yaml:"mapping"`
	Blocks     bool   `yaml:"blocks"`
	Normalize  bool   `yaml:"normalize"`
	Monochrome bool   `yaml:"monochrome"`
	// Cutoff and Power tune the polynomial mapping, Threshold the binary one.
	Cutoff    *float64 `yaml:"cutoff,omitempty"`
	Power     *float64 `yaml:"power,omitempty"`
	Threshold float64  `yaml:"threshold"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the root configuration.
type Config struct {
	Palette   PaletteConfig   `yaml:"palette"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Colorizer ColorizerConfig `yaml:"colorizer"`
	Spectrum  SpectrumConfig  `yaml:"spectrum"`
	API       APIConfig       `yaml:"api"`
}

// Load reads a config from path. A missing file yields the defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnv(cfg)
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid config: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./neurocat.yaml first, then ~/.config/neurocat/config.yaml.
// If neither exists the defaults are returned along with the user path,
// without writing anything; see Save.
func LoadDefault() (*Config, string, error) {
	if _, err := os.Stat(FileName); err == nil {
		cfg, err := Load(FileName)
		return cfg, FileName, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in configuration without environment overrides.
func Default() *Config {
	return defaultConfig()
}

// DefaultUserConfigPath returns ~/.config/neurocat/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "neurocat", "config.yaml"), nil
}

// LoadDotEnv loads ./.env and ~/.config/neurocat/.env into the process
// environment. Variables already set are kept and missing files are ignored.
func LoadDotEnv() error {
	paths := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "neurocat", ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "neurocat")
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

func defaultConfig() *Config {
	dir := dataDir()
	params := intensity.DefaultParams(true)
	return &Config{
		Palette: PaletteConfig{
			Path:     filepath.Join(dir, "colors.npy"),
			Subtract: boolPtr(true),
		},
		Storage: StorageConfig{
			Driver:     "sqlite",
			SQLitePath: filepath.Join(dir, "word-embeddings.db"),
		},
		Embedder: EmbedderConfig{
			OllamaURL: "http://localhost:11434",
			Model:     "nomic-embed-text",
		},
		Colorizer: ColorizerConfig{
			Multicolor: boolPtr(true),
			BoostDark:  boolPtr(true),
			Fallback:   boolPtr(true),
		},
		Spectrum: SpectrumConfig{
			Mapping:   string(intensity.Default),
			Cutoff:    floatPtr(params.Cutoff),
			Power:     floatPtr(params.Power),
			Threshold: params.Threshold,
		},
		API: APIConfig{Addr: ":8080"},
	}
}

func applyConfigDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.Palette.Path == "" {
		cfg.Palette.Path = def.Palette.Path
	}
	if cfg.Palette.Subtract == nil {
		cfg.Palette.Subtract = def.Palette.Subtract
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = def.Storage.Driver
	}
	if cfg.Storage.Driver == "sqlite" && cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = def.Storage.SQLitePath
	}
	if cfg.Storage.Driver == "mongodb" && cfg.Storage.MongoDBDatabase == "" {
		cfg.Storage.MongoDBDatabase = "neurocat"
	}
	if cfg.Embedder.OllamaURL == "" {
		cfg.Embedder.OllamaURL = def.Embedder.OllamaURL
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = def.Embedder.Model
	}
	if cfg.Colorizer.Multicolor == nil {
		cfg.Colorizer.Multicolor = def.Colorizer.Multicolor
	}
	if cfg.Colorizer.BoostDark == nil {
		cfg.Colorizer.BoostDark = def.Colorizer.BoostDark
	}
	if cfg.Colorizer.Fallback == nil {
		cfg.Colorizer.Fallback = def.Colorizer.Fallback
	}
	if cfg.Spectrum.Mapping == "" {
		cfg.Spectrum.Mapping = def.Spectrum.Mapping
	}
	if cfg.Spectrum.Cutoff == nil {
		cfg.Spectrum.Cutoff = def.Spectrum.Cutoff
	}
	if cfg.Spectrum.Power == nil {
		cfg.Spectrum.Power = def.Spectrum.Power
	}
	if cfg.API.Addr == "" {
		cfg.API.Addr = def.API.Addr
	}
}

// applyEnv overrides cfg with NEUROCAT_* variables that are set.
func applyEnv(cfg *Config) {
	for name, dst := range map[string]*string{
		"NEUROCAT_PALETTE":          &cfg.Palette.Path,
		"NEUROCAT_STORAGE_DRIVER":   &cfg.Storage.Driver,
		"NEUROCAT_DB_PATH":          &cfg.Storage.SQLitePath,
		"NEUROCAT_POSTGRES_DSN":     &cfg.Storage.PostgresDSN,
		"NEUROCAT_MONGODB_URI":      &cfg.Storage.MongoDBURI,
		"NEUROCAT_MONGODB_DATABASE": &cfg.Storage.MongoDBDatabase,
		"NEUROCAT_OLLAMA_URL":       &cfg.Embedder.OllamaURL,
		"NEUROCAT_EMBEDDING_MODEL":  &cfg.Embedder.Model,
		"NEUROCAT_MAPPING":          &cfg.Spectrum.Mapping,
		"NEUROCAT_API_ADDR":         &cfg.API.Addr,
	} {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
}

// StorageConfig converts the storage section for storage.New.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Driver:          c.Storage.Driver,
		SQLitePath:      c.Storage.SQLitePath,
		PostgresDSN:     c.Storage.PostgresDSN,
		MongoDBURI:      c.Storage.MongoDBURI,
		MongoDBDatabase: c.Storage.MongoDBDatabase,
	}
}

// Subtract reports whether the palette's abstract direction is removed.
func (c *Config) Subtract() bool {
	return c.Palette.Subtract == nil || *c.Palette.Subtract
}

// ColorizerOptions builds colorizer options, reading the ignore-words file
// if one is configured.
func (c *Config) ColorizerOptions() (colorizer.Options, error) {
	cc := c.Colorizer
	opts := colorizer.DefaultOptions()
	if cc.Multicolor != nil {
		opts.Multicolor = *cc.Multicolor
	}
	if cc.BoostDark != nil {
		opts.BoostDark = *cc.BoostDark
	}
	if cc.Fallback != nil {
		opts.Fallback = *cc.Fallback
	}
	opts.HighlightUnknown = cc.HighlightUnknown
	opts.MinColorfulness = cc.MinColorfulness
	opts.MinWordLength = cc.MinWordLength

	if cc.IgnoreWordsFile != "" {
		f, err := os.Open(cc.IgnoreWordsFile)
		if err != nil {
			return opts, fmt.Errorf("failed to open ignore words file: %w", err)
		}
		defer f.Close()
		words, err := colorizer.ParseWordList(f)
		if err != nil {
			return opts, fmt.Errorf("failed to read ignore words file: %w", err)
		}
		opts.IgnoreWords = words
	}
	return opts, nil
}

// SpectrumOptions builds spectrum rendering options.
func (c *Config) SpectrumOptions() spectrum.Options {
	opts := spectrum.DefaultOptions(c.Subtract())
	opts.ColorBars = !c.Spectrum.Blocks
	opts.NormalizeColors = c.Spectrum.Normalize
	opts.Monochrome = c.Spectrum.Monochrome
	if c.Spectrum.Cutoff != nil {
		opts.Params.Cutoff = *c.Spectrum.Cutoff
	}
	if c.Spectrum.Power != nil {
		opts.Params.Power = *c.Spectrum.Power
	}
	opts.Params.Threshold = c.Spectrum.Threshold
	return opts
}

// Validate checks the spectrum mapping and its tuning.
func (c *Config) Validate() error {
	if _, err := c.Mapping(); err != nil {
		return err
	}
	if err := c.SpectrumOptions().Params.Validate(); err != nil {
		return fmt.Errorf("spectrum: %w", err)
	}
	return nil
}

// Mapping parses the configured spectrum intensity mapping.
func (c *Config) Mapping() (intensity.Strategy, error) {
	return intensity.ParseStrategy(c.Spectrum.Mapping)
}
