// Package config loads runtime settings from a YAML file, falling back to
// defaults when the file is absent.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is everything tunable from outside the binary.
type Config struct {
	// Addr is the HTTP listen address for the API and websocket stream.
	Addr string `yaml:"addr"`
	// DBPath is the SQLite save file.
	DBPath string `yaml:"db_path"`
	// AdminKey guards the write endpoints. Empty disables them.
	AdminKey string `yaml:"admin_key"`

	// Seed drives every random draw in a run. Same seed, same shop.
	Seed int64 `yaml:"seed"`

	// DayDurationS and NightDurationS set the phase lengths in simulated
	// seconds. OrderLeadS is the wholesale delivery delay.
	DayDurationS   float64 `yaml:"day_duration_s"`
	NightDurationS float64 `yaml:"night_duration_s"`
	OrderLeadS     float64 `yaml:"order_lead_s"`

	// SaveEveryS is the autosave cadence in wall seconds. Zero disables.
	SaveEveryS int `yaml:"save_every_s"`
}

// Default is the configuration used when no file overrides it.
func Default() Config {
	return Config{
		Addr:           ":8080",
		DBPath:         "shopfloor.db",
		Seed:           1,
		DayDurationS:   300.0,
		NightDurationS: 60.0,
		OrderLeadS:     30.0,
		SaveEveryS:     30,
	}
}

// Load reads a config file over the defaults. A missing file is not an
// error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	d := Default()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.DayDurationS <= 0 {
		c.DayDurationS = d.DayDurationS
	}
	if c.NightDurationS <= 0 {
		c.NightDurationS = d.NightDurationS
	}
	if c.OrderLeadS <= 0 {
		c.OrderLeadS = d.OrderLeadS
	}
	if c.SaveEveryS < 0 {
		c.SaveEveryS = 0
	}
}
