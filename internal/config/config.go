package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/inecosys/utilitytool/pkg/cropper"
	"github.com/inecosys/utilitytool/pkg/processing"
	"github.com/inecosys/utilitytool/pkg/watermark"
)

// Config holds the application configuration
type Config struct {
	Watermark WatermarkConfig `yaml:"watermark"`
	Batch     BatchConfig     `yaml:"batch"`
	Output    OutputConfig    `yaml:"output"`
	API       APIConfig       `yaml:"api"`
	Drafting  DraftingConfig  `yaml:"drafting"`
	Watch     WatchConfig     `yaml:"watch"`
}

// WatermarkConfig holds caption text, band geometry and encoding
type WatermarkConfig struct {
	CenterText  string `yaml:"center_text" env:"UTILITYTOOL_CENTER_TEXT"`
	RightText   string `yaml:"right_text" env:"UTILITYTOOL_RIGHT_TEXT"`
	FontSize    int    `yaml:"font_size"`
	PaddingX    int    `yaml:"padding_x"`
	PaddingY    int    `yaml:"padding_y"`
	LeftInset   int    `yaml:"left_inset"`
	AspectRatio string `yaml:"aspect_ratio"`
	Format      string `yaml:"format"`
	Quality     int    `yaml:"quality"`
	MaxPixels   int    `yaml:"max_pixels"`
	FontFile    string `yaml:"font_file,omitempty" env:"UTILITYTOOL_FONT_FILE"`
}

// BatchConfig holds settings for multi-file runs
type BatchConfig struct {
	Workers    int  `yaml:"workers" env:"UTILITYTOOL_WORKERS"`
	SkipFailed bool `yaml:"skip_failed"`
}

// OutputConfig holds where results are written
type OutputConfig struct {
	Dir     string `yaml:"dir"`
	ZipName string `yaml:"zip_name"`
	Suffix  string `yaml:"suffix"`
}

// APIConfig points at the post backend
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"UTILITYTOOL_API_URL"`
	Timeout time.Duration `yaml:"timeout"`
}

// DraftingConfig selects the text model used for post drafts
type DraftingConfig struct {
	Backend string `yaml:"backend" env:"UTILITYTOOL_DRAFTING_BACKEND"`
	URL     string `yaml:"url" env:"UTILITYTOOL_DRAFTING_URL"`
	Model   string `yaml:"model" env:"UTILITYTOOL_DRAFTING_MODEL"`
}

// WatchConfig holds the folder watcher settings
type WatchConfig struct {
	Inbox    string        `yaml:"inbox" env:"UTILITYTOOL_INBOX"`
	Outbox   string        `yaml:"outbox" env:"UTILITYTOOL_OUTBOX"`
	Debounce time.Duration `yaml:"debounce"`
}

// Drafting backends
const (
	BackendOllama   = "ollama"
	BackendLlamaCpp = "llamacpp"
)

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Watermark: WatermarkConfig{
			CenterText:  watermark.DefaultCenterText,
			RightText:   watermark.DefaultRightText,
			FontSize:    watermark.DefaultFontSize,
			PaddingX:    watermark.DefaultPaddingX,
			PaddingY:    watermark.DefaultPaddingY,
			LeftInset:   watermark.DefaultLeftInset,
			AspectRatio: "16:9",
			Format:      processing.FormatJPEG,
			Quality:     processing.DefaultQuality,
			MaxPixels:   watermark.DefaultMaxPixels,
		},
		Batch: BatchConfig{
			Workers: 0,
		},
		Output: OutputConfig{
			Dir:     "./output",
			ZipName: "watermarked-images.zip",
			Suffix:  "_captioned",
		},
		API: APIConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 30 * time.Second,
		},
		Drafting: DraftingConfig{
			Backend: BackendOllama,
			URL:     "http://localhost:11434",
			Model:   "llama3.2",
		},
		Watch: WatchConfig{
			Inbox:    "./inbox",
			Outbox:   "./outbox",
			Debounce: 500 * time.Millisecond,
		},
	}
}

// LoadFromFile reads an optional .env file, then the YAML file at filename on top of
// the defaults, then environment overrides. A missing file is not an error.
func LoadFromFile(filename string) (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	cfg := Default()
	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			if err := cleanenv.ReadConfig(filename, cfg); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			return cfg, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.YAML()
	if err != nil {
		return err
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// YAML renders the configuration as it would be saved
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	w := c.Watermark
	if w.FontSize < 1 {
		return fmt.Errorf("watermark.font_size must be positive")
	}
	if w.PaddingX < 0 || w.PaddingY < 0 || w.LeftInset < 0 {
		return fmt.Errorf("watermark padding and left_inset cannot be negative")
	}
	if w.Quality < 1 || w.Quality > 100 {
		return fmt.Errorf("watermark.quality must be between 1 and 100")
	}
	if w.MaxPixels < 1 {
		return fmt.Errorf("watermark.max_pixels must be positive")
	}
	if _, err := cropper.ParseAspectRatio(w.AspectRatio); err != nil {
		return fmt.Errorf("watermark.aspect_ratio: %w", err)
	}
	if _, err := processing.NormalizeFormat(w.Format); err != nil {
		return fmt.Errorf("watermark.format: %w", err)
	}

	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers cannot be negative")
	}

	if strings.TrimSpace(c.Output.ZipName) == "" {
		return fmt.Errorf("output.zip_name cannot be empty")
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}

	switch c.Drafting.Backend {
	case BackendOllama, BackendLlamaCpp:
	default:
		return fmt.Errorf("drafting.backend must be %q or %q", BackendOllama, BackendLlamaCpp)
	}

	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce cannot be negative")
	}

	return nil
}

// WatermarkOptions converts the watermark section into captioner options
func (c *Config) WatermarkOptions() (watermark.Options, error) {
	w := c.Watermark

	ratio, err := cropper.ParseAspectRatio(w.AspectRatio)
	if err != nil {
		return watermark.Options{}, err
	}
	format, err := processing.NormalizeFormat(w.Format)
	if err != nil {
		return watermark.Options{}, err
	}

	opts := watermark.DefaultOptions()
	opts.AspectRatio = ratio
	opts.FontSize = w.FontSize
	opts.PaddingX = w.PaddingX
	opts.PaddingY = w.PaddingY
	opts.LeftInset = w.LeftInset
	opts.Format = format
	opts.Quality = w.Quality
	opts.MaxPixels = w.MaxPixels

	if w.FontFile != "" {
		opts.FontData, err = os.ReadFile(w.FontFile)
		if err != nil {
			return watermark.Options{}, fmt.Errorf("failed to read font file: %w", err)
		}
	}
	return opts, nil
}

// Caption returns the configured caption texts
func (c *Config) Caption() watermark.Caption {
	return watermark.Caption{Center: c.Watermark.CenterText, Right: c.Watermark.RightText}
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}
	return filepath.Join(home, ".config", "utilitytool", "config.yaml")
}
