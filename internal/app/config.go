package app

import (
	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/stock-keeper/internal/domain/catalog"
	"github.com/xenking/stock-keeper/pkg/zaplog"
)

// Config holds the complete application configuration, loadable from
// environment variables (STOCK_ prefix), flags, or YAML config files.
type Config struct {
	File            string    `default:"estoque.json" usage:"Stock document path; a .gz suffix enables compression" yaml:"file"`
	LowStock        int       `default:"10" usage:"Quantity below which a product is reported as low on stock" flag:"low-stock" env:"LOW_STOCK" yaml:"low_stock"`
	ClearWord       string    `default:"CLEAR" usage:"Word that must be typed to clear the stock" flag:"clear-word" env:"CLEAR_WORD" yaml:"clear_word"`
	DefaultCategory string    `default:"uncategorized" usage:"Category given to products registered without one" flag:"default-category" env:"DEFAULT_CATEGORY" yaml:"default_category"`
	MonotonicIDs    bool      `default:"false" usage:"Never reuse product ids after removals" flag:"monotonic-ids" env:"MONOTONIC_IDS" yaml:"monotonic_ids"`
	Log             LogConfig `yaml:"log"`
}

// LogConfig controls the optional rotating log file. Without a file, logs go
// to stderr.
type LogConfig struct {
	File       string `default:"" usage:"Log file path (empty logs to stderr)" yaml:"file"`
	MaxSize    int    `default:"10" usage:"Log file size in megabytes before rotation" flag:"max-size" env:"MAX_SIZE" yaml:"max_size"`
	MaxBackups int    `default:"3" usage:"Rotated log files to keep" flag:"max-backups" env:"MAX_BACKUPS" yaml:"max_backups"`
	MaxAge     int    `default:"28" usage:"Days to keep rotated log files" flag:"max-age" env:"MAX_AGE" yaml:"max_age"`
}

// LoadConfig loads configuration from YAML config files, environment
// variables and the command line arguments in args, in increasing priority.
func LoadConfig(args []string) (*Config, error) {
	if args == nil {
		args = []string{}
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOCK",
		Files:     []string{"stock.yaml", "/etc/stock-keeper/stock.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
		Args: args,
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.File == "":
		return errors.New("stock file path is required: set -file or STOCK_FILE")
	case c.LowStock < 0:
		return errors.Errorf("low-stock must not be negative, got %d", c.LowStock)
	case c.Log.MaxSize < 0, c.Log.MaxBackups < 0, c.Log.MaxAge < 0:
		return errors.New("log rotation limits must not be negative")
	default:
		return nil
	}
}

// CatalogOptions returns the catalog settings derived from the config.
func (c *Config) CatalogOptions() []catalog.Option {
	return []catalog.Option{
		catalog.WithDefaultCategory(c.DefaultCategory),
		catalog.WithLowStockThreshold(c.LowStock),
		catalog.WithClearWord(c.ClearWord),
		catalog.WithMonotonicIDs(c.MonotonicIDs),
	}
}

// Rotation returns the log file settings.
func (c *Config) Rotation() zaplog.Rotation {
	return zaplog.Rotation{
		Filename:   c.Log.File,
		MaxSizeMB:  c.Log.MaxSize,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAge,
	}
}
