package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

// DefaultConfigSearchPaths are checked in order; the first existing file wins.
var DefaultConfigSearchPaths = []string{
	filepath.Join(os.Getenv("HOME"), ".bag-of-code.toml"),
	filepath.Join(os.Getenv("HOME"), ".config", "bag-of-code.toml"),
}

// Config is the TOML configuration struct.  When a ~/.bag-of-code.toml or
// ~/.config/bag-of-code.toml file exists, the values contained therein will
// override the compiled-in defaults.
type Config struct {
	Driver      string `toml:"driver"`
	DB          string `toml:"db"`
	Quiet       bool   `toml:"quiet"`
	Verbose     bool   `toml:"verbose"`
	Model       string `toml:"model"`
	MaxFeatures int    `toml:"max_features"`
	Projection  string `toml:"projection"`

	File        string   `toml:"-"` // Configuration file which was applied, if any.
	SearchPaths []string `toml:"-"`
}

func NewConfig() *Config {
	cfg := &Config{
		SearchPaths: DefaultConfigSearchPaths,
	}
	return cfg
}

// Do locates, parses and applies the first configuration file found.  A
// missing configuration file is not an error.
func (cfg *Config) Do() error {
	file, err := cfg.find()
	if err != nil {
		return err
	}
	if len(file) == 0 {
		return nil
	}

	if _, err := toml.DecodeFile(file, cfg); err != nil {
		return err
	}
	cfg.File = file
	log.WithField("file", file).Debug("Applying configuration file")

	cfg.Apply()
	return nil
}

// Apply overrides the package-level defaults with every value set in the
// configuration.
func (cfg *Config) Apply() {
	if len(cfg.Driver) > 0 {
		DBDriver = cfg.Driver
	}
	if len(cfg.DB) > 0 {
		DBFile = cfg.DB
	}
	if cfg.Quiet {
		Quiet = true
	}
	if cfg.Verbose {
		Verbose = true
	}
	if len(cfg.Model) > 0 {
		ModelName = cfg.Model
	}
	if cfg.MaxFeatures > 0 {
		MaxFeatures = cfg.MaxFeatures
	}
	if len(cfg.Projection) > 0 {
		ProjectionName = cfg.Projection
	}
}

func (cfg *Config) find() (string, error) {
	for _, path := range cfg.SearchPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if os.IsNotExist(err) {
			continue
		} else if err != nil {
			return "", err
		}
	}
	return "", nil
}
