package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the tokenbridge configuration file
// (~/.config/tokenbridge/config.yaml). File values fill in only where the
// corresponding CLI flag was not explicitly set.
type Config struct {
	VocabPath       string `yaml:"vocab_path"`
	TokenizerConfig string `yaml:"tokenizer_config"`

	// Server
	ServerAddress string `yaml:"server_address"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tokenbridge", "config.yaml")
}

// applyVocabConfig applies config file defaults to the shared vocab flags.
func applyVocabConfig(c *cli.Command, cfg Config) {
	if cfg.VocabPath != "" && !c.IsSet("vocab") {
		vocabPath = cfg.VocabPath
	}
	if cfg.TokenizerConfig != "" && !c.IsSet("tokenizer-config") {
		tokenizerConfig = cfg.TokenizerConfig
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
	applyVocabConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	return loadConfigFrom(configPath())
}

func loadConfigFrom(path string) Config {
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
