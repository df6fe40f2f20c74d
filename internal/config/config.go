// Package config loads awsinv settings from an optional YAML file and
// AWSINV_* environment variables. Command-line flags override both and are
// applied by the CLI layer.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "awsinv.yaml"

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "AWSINV"

// Output formats accepted in Formats.
const (
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatXLSX  = "xlsx"
	FormatTable = "table"
)

// Cost Explorer granularities accepted in Cost.Granularity.
const (
	GranularityDaily   = "DAILY"
	GranularityMonthly = "MONTHLY"
)

// MaxConcurrency caps the number of regions collected in parallel.
const MaxConcurrency = 64

// Config is the application configuration.
type Config struct {
	// Profile is the AWS shared-config profile. Empty means the SDK default chain.
	Profile string `mapstructure:"profile" yaml:"profile"`

	// Regions restricts collection to these regions. Empty means every
	// enabled region of the account.
	Regions []string `mapstructure:"regions" yaml:"regions"`

	// IncludeIdentity enables the IAM collector.
	IncludeIdentity bool `mapstructure:"include_identity" yaml:"include_identity"`

	// Concurrency is the number of regions collected at once.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`

	OutDir  string   `mapstructure:"out_dir" yaml:"out_dir"`
	Formats []string `mapstructure:"formats" yaml:"formats"`
	Pretty  bool     `mapstructure:"pretty" yaml:"pretty"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// MetricsFile, when set, receives the run metrics in Prometheus text format.
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`

	Cost CostConfig `mapstructure:"cost" yaml:"cost"`
}

// CostConfig configures `awsinv cost`.
type CostConfig struct {
	Granularity string `mapstructure:"granularity" yaml:"granularity"`
	Days        int    `mapstructure:"days" yaml:"days"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Concurrency: 5,
		OutDir:      ".",
		Formats:     []string{FormatJSON},
		Pretty:      true,
		LogLevel:    "info",
		Cost: CostConfig{
			Granularity: GranularityDaily,
			Days:        30,
		},
	}
}

// keys lists every configuration key. Each is bound to AWSINV_<KEY> with
// dots replaced by underscores.
var keys = []string{
	"profile",
	"regions",
	"include_identity",
	"concurrency",
	"out_dir",
	"formats",
	"pretty",
	"log_level",
	"metrics_file",
	"cost.granularity",
	"cost.days",
}

// Load builds the configuration.
//
// Precedence (highest to lowest):
//  1. Environment variables (AWSINV_* prefix, e.g. AWSINV_COST_DAYS)
//  2. The configuration file
//  3. Default values
//
// path may be empty, in which case ./awsinv.yaml is used if it exists and
// defaults apply otherwise. A path that is given but missing is an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("concurrency", def.Concurrency)
	v.SetDefault("out_dir", def.OutDir)
	v.SetDefault("formats", def.Formats)
	v.SetDefault("pretty", def.Pretty)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("cost.granularity", def.Cost.Granularity)
	v.SetDefault("cost.days", def.Cost.Days)

	v.SetEnvPrefix(EnvPrefix)
	for _, k := range keys {
		_ = v.BindEnv(k, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(k, ".", "_")))
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Cost.Granularity = strings.ToUpper(cfg.Cost.Granularity)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Concurrency < 1 || c.Concurrency > MaxConcurrency {
		return fmt.Errorf("concurrency %d out of range, must be between 1 and %d", c.Concurrency, MaxConcurrency)
	}

	if len(c.Formats) == 0 {
		return errors.New("at least one output format must be configured")
	}
	for _, f := range c.Formats {
		switch f {
		case FormatJSON, FormatCSV, FormatXLSX, FormatTable:
		default:
			return fmt.Errorf("invalid format %q, must be one of: json, csv, xlsx, table", f)
		}
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	if c.Cost.Granularity != GranularityDaily && c.Cost.Granularity != GranularityMonthly {
		return fmt.Errorf("invalid cost granularity %q, must be DAILY or MONTHLY", c.Cost.Granularity)
	}
	if c.Cost.Days <= 0 {
		return fmt.Errorf("cost days must be positive, got %d", c.Cost.Days)
	}
	return nil
}

// exampleComments are written above the matching keys by WriteExample.
var exampleComments = map[string]string{
	"profile":          "AWS shared-config profile; empty uses the default credential chain.",
	"regions":          "Regions to collect; empty collects every enabled region.",
	"include_identity": "Collect IAM users and roles.",
	"concurrency":      "Regions collected in parallel (1-64).",
	"formats":          "Output formats: json, csv, xlsx, table.",
	"log_level":        "debug, info, warn or error.",
	"metrics_file":     "Write run metrics here in Prometheus text format.",
	"cost":             "Settings for `awsinv cost`. granularity is DAILY or MONTHLY.",
}

// WriteExample writes the default configuration as commented YAML.
func WriteExample(w io.Writer) error {
	var body yaml.Node
	if err := body.Encode(Default()); err != nil {
		return fmt.Errorf("encode example config: %w", err)
	}
	for i := 0; i+1 < len(body.Content); i += 2 {
		key := body.Content[i]
		if c, ok := exampleComments[key.Value]; ok {
			key.HeadComment = c
		}
	}

	doc := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: "awsinv configuration. Every key can be overridden with AWSINV_<KEY>.",
		Content:     []*yaml.Node{&body},
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write example config: %w", err)
	}
	return enc.Close()
}
