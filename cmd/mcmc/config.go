package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the mcmc configuration file
// (~/.config/mcmc/config.yaml). Fields are pointers so "not set" is
// distinguishable from zero values; CLI flags always win over the file.
type Config struct {
	NumWarmup        *int64   `yaml:"num_warmup"`
	NumChains        *int64   `yaml:"num_chains"`
	NumLeapfrogSteps *int64   `yaml:"num_leapfrog_steps"`
	InitialStepSize  *float64 `yaml:"initial_step_size"`
	TargetAcceptRate *float64 `yaml:"target_accept_rate"`
	Seed             *int64   `yaml:"seed"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mcmc", "config.yaml")
}

// applySampleConfig applies config file defaults to sample command variables
// when the corresponding CLI flag was not explicitly set.
func applySampleConfig(c *cli.Command, cfg Config,
	warmup, chains, leapfrog *int64, step, target *float64, seed *int64,
) {
	if cfg.NumWarmup != nil && !c.IsSet("warmup") {
		*warmup = *cfg.NumWarmup
	}
	if cfg.NumChains != nil && !c.IsSet("chains") {
		*chains = *cfg.NumChains
	}
	if cfg.NumLeapfrogSteps != nil && !c.IsSet("leapfrog-steps") {
		*leapfrog = *cfg.NumLeapfrogSteps
	}
	if cfg.InitialStepSize != nil && !c.IsSet("step-size") {
		*step = *cfg.InitialStepSize
	}
	if cfg.TargetAcceptRate != nil && !c.IsSet("target-accept") {
		*target = *cfg.TargetAcceptRate
	}
	if cfg.Seed != nil && !c.IsSet("seed") {
		*seed = *cfg.Seed
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file does
// not exist or cannot be parsed.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}
