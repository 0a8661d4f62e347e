// Package server exposes game tables over WebSocket: it owns the table
// sessions, relays redacted state and events to each player, and enforces
// per-action deadlines.
package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokervariants/internal/rules"
)

// Config is the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// TableConfig defines one table
type TableConfig struct {
	Name      string `hcl:"name,label"`
	Variant   string `hcl:"variant"`
	Structure string `hcl:"structure,optional"`
	RulesFile string `hcl:"rules_file,optional"` // overrides the builtin library

	SmallBlind int `hcl:"small_blind,optional"`
	BigBlind   int `hcl:"big_blind,optional"`
	Ante       int `hcl:"ante,optional"`
	BringIn    int `hcl:"bring_in,optional"`
	SmallBet   int `hcl:"small_bet,optional"`
	BigBet     int `hcl:"big_bet,optional"`

	BuyInMin int `hcl:"buy_in_min,optional"`
	BuyInMax int `hcl:"buy_in_max,optional"`

	ActionTimeout string `hcl:"action_timeout,optional"`
	AutoStart     bool   `hcl:"auto_start,optional"`
	Seed          int64  `hcl:"seed,optional"`
}

// Timeout parses the table's action deadline, defaulting to 30s
func (t TableConfig) Timeout() time.Duration {
	if t.ActionTimeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(t.ActionTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Tables: []TableConfig{
			{
				Name:       "main",
				Variant:    "texas_holdem",
				Structure:  string(rules.NoLimit),
				SmallBlind: 1,
				BigBlind:   2,
				AutoStart:  true,
			},
		},
	}
}

// LoadConfig loads HCL configuration, falling back to defaults when the file
// does not exist
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %s", filename, diags.Error())
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %s", filename, diags.Error())
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	for i := range cfg.Tables {
		tc := &cfg.Tables[i]
		if tc.Structure == "" {
			tc.Structure = string(rules.NoLimit)
		}
		if tc.BuyInMin == 0 {
			tc.BuyInMin = tc.BigBlind * 50
		}
		if tc.BuyInMax == 0 {
			tc.BuyInMax = tc.BigBlind * 500
		}
		if err := validateTable(tc); err != nil {
			return nil, fmt.Errorf("table %q: %w", tc.Name, err)
		}
	}
	if len(cfg.Tables) == 0 {
		return nil, fmt.Errorf("no tables configured")
	}
	return &cfg, nil
}

func validateTable(tc *TableConfig) error {
	switch rules.Structure(tc.Structure) {
	case rules.Limit, rules.NoLimit, rules.PotLimit:
	default:
		return fmt.Errorf("unknown structure %q", tc.Structure)
	}
	if tc.BigBlind <= 0 && tc.Ante <= 0 && tc.BringIn <= 0 {
		return fmt.Errorf("stakes required")
	}
	return nil
}
