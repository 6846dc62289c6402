package main

import "github.com/urfave/cli/v3"

var (
	vocabPath       string
	tokenizerConfig string
	logLevel        string
	logFormat       string
)

func commonVocabFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "vocab",
			Aliases:     []string{"v"},
			Usage:       "path to a .tvf container or HuggingFace tokenizer.json",
			Destination: &vocabPath,
		},
		&cli.StringFlag{
			Name:        "tokenizer-config",
			Usage:       "optional path to tokenizer_config.json (HuggingFace vocabularies)",
			Destination: &tokenizerConfig,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
	}
}
