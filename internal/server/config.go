package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete server configuration
type Config struct {
	Server Settings      `hcl:"server,block"`
	Tables []TableConfig `hcl:"table,block"`
}

// Settings contains server-level configuration
type Settings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// TableConfig defines a svara table
type TableConfig struct {
	Name          string `hcl:"name,label"`
	BaseBet       int    `hcl:"base_bet,optional"`
	MaxBet        int    `hcl:"max_bet,optional"`
	StartingChips int    `hcl:"starting_chips,optional"`
	MaxPlayers    int    `hcl:"max_players,optional"`
	Bots          int    `hcl:"bots,optional"`
	BotDelayMs    int    `hcl:"bot_delay_ms,optional"`
	SwaraWindowMs int    `hcl:"swara_window_ms,optional"`
}

// DefaultConfig returns the configuration used when no file is given,
// matching the original mini-app's table: ante 10, 1000 chips, up to 7
// seats, bots paced at 1.5s.
func DefaultConfig() *Config {
	return &Config{
		Server: Settings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Tables: []TableConfig{
			{
				Name:          "main",
				BaseBet:       10,
				MaxBet:        200,
				StartingChips: 1000,
				MaxPlayers:    7,
				Bots:          2,
				BotDelayMs:    1500,
				SwaraWindowMs: 5000,
			},
		},
	}
}

// LoadConfig loads server configuration from an HCL file, falling back
// to defaults when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}

	for i := range config.Tables {
		applyTableDefaults(&config.Tables[i])
	}
	return &config, nil
}

func applyTableDefaults(t *TableConfig) {
	if t.BaseBet == 0 {
		t.BaseBet = 10
	}
	if t.MaxBet == 0 {
		t.MaxBet = t.BaseBet * 20
	}
	if t.StartingChips == 0 {
		t.StartingChips = 1000
	}
	if t.MaxPlayers == 0 {
		t.MaxPlayers = 7
	}
	if t.BotDelayMs == 0 {
		t.BotDelayMs = 1500
	}
	if t.SwaraWindowMs == 0 {
		t.SwaraWindowMs = 5000
	}
}
