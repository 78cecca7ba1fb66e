package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/salescube"
	"github.com/hupe1980/salescube/dates"
	"github.com/hupe1980/salescube/index"
	"github.com/hupe1980/salescube/model"
)

// fileConfig is the optional --config file. Flags given on the command line
// win over the file.
type fileConfig struct {
	Source        string   `toml:"source" yaml:"source"`
	Codec         string   `toml:"codec" yaml:"codec"`
	IndexedTables []string `toml:"indexed_tables" yaml:"indexed_tables"`
	NegativeCache *int     `toml:"negative_cache" yaml:"negative_cache"`

	Holidays             []string        `toml:"holidays" yaml:"holidays"`
	ExcludedSellerLabels []string        `toml:"excluded_seller_labels" yaml:"excluded_seller_labels"`
	ExcludedSellerCodes  []string        `toml:"excluded_seller_codes" yaml:"excluded_seller_codes"`
	Pasta                *pastaConfig    `toml:"pasta" yaml:"pasta"`
	Rewrites             []rewriteConfig `toml:"rewrites" yaml:"rewrites"`
}

type pastaConfig struct {
	Rules    []keywordConfig `toml:"rules" yaml:"rules"`
	Fallback string          `toml:"fallback" yaml:"fallback"`
	Missing  []string        `toml:"missing" yaml:"missing"`
}

type keywordConfig struct {
	Keyword string `toml:"keyword" yaml:"keyword"`
	Value   string `toml:"value" yaml:"value"`
}

type rewriteConfig struct {
	When map[string]string `toml:"when" yaml:"when"`
	Set  map[string]string `toml:"set" yaml:"set"`
}

// loadConfig reads a TOML or YAML file, chosen by extension.
func loadConfig(path string) (*fileConfig, error) {
	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config %s: unsupported format (use .toml, .yaml or .yml)", path)
	}
	return &fc, nil
}

// indexConfig overlays the file settings on index.DefaultConfig.
func (fc *fileConfig) indexConfig() (index.Config, error) {
	cfg := index.DefaultConfig()
	if len(fc.Holidays) > 0 {
		days := make([]time.Time, 0, len(fc.Holidays))
		for _, raw := range fc.Holidays {
			d, err := time.Parse(time.DateOnly, strings.TrimSpace(raw))
			if err != nil {
				return cfg, fmt.Errorf("holiday %q: want YYYY-MM-DD", raw)
			}
			days = append(days, d)
		}
		cfg.Holidays = dates.NewHolidays(days...)
	}
	if fc.ExcludedSellerLabels != nil {
		cfg.ExcludedSellerLabels = fc.ExcludedSellerLabels
	}
	if fc.ExcludedSellerCodes != nil {
		cfg.ExcludedSellerCodes = fc.ExcludedSellerCodes
	}
	if p := fc.Pasta; p != nil {
		if p.Rules != nil {
			cfg.Pasta.Rules = make([]index.KeywordRule, len(p.Rules))
			for i, r := range p.Rules {
				cfg.Pasta.Rules[i] = index.KeywordRule{Keyword: r.Keyword, Value: r.Value}
			}
		}
		if p.Fallback != "" {
			cfg.Pasta.Fallback = p.Fallback
		}
		if p.Missing != nil {
			cfg.Pasta.Missing = p.Missing
		}
	}
	for _, rw := range fc.Rewrites {
		cfg.Rewrites = append(cfg.Rewrites, index.Rewrite{When: rw.When, Set: rw.Set})
	}
	return cfg, nil
}

// options returns the engine options the file contributes.
func (fc *fileConfig) options() ([]salescube.Option, error) {
	cfg, err := fc.indexConfig()
	if err != nil {
		return nil, err
	}
	opts := []salescube.Option{salescube.WithIndexConfig(cfg)}
	if len(fc.IndexedTables) > 0 {
		names := make([]model.TableName, len(fc.IndexedTables))
		for i, n := range fc.IndexedTables {
			names[i] = model.TableName(n)
		}
		opts = append(opts, salescube.WithIndexedTables(names...))
	}
	if fc.NegativeCache != nil {
		opts = append(opts, salescube.WithNegativeCache(*fc.NegativeCache))
	}
	return opts, nil
}
