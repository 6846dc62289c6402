package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tokenbridge/internal/logger"
	"github.com/samcharles93/tokenbridge/internal/vocab"
	"github.com/samcharles93/tokenbridge/pkg/tvf"
)

func packCmd() *cli.Command {
	var outPath string

	return &cli.Command{
		Name:      "pack",
		Usage:     "Convert a HuggingFace tokenizer.json into a TVF container",
		ArgsUsage: "tokenizer.json",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output path (default: input with .tvf extension)",
				Destination: &outPath,
			},
			&cli.StringFlag{
				Name:        "tokenizer-config",
				Usage:       "optional path to tokenizer_config.json",
				Destination: &tokenizerConfig,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			in := cmd.Args().First()
			if in == "" {
				return fmt.Errorf("missing tokenizer.json argument")
			}
			table, err := vocab.LoadHF(in, tokenizerConfig)
			if err != nil {
				return fmt.Errorf("load %s: %w", in, err)
			}

			out := resolvePackOut(in, outPath)
			if err := tvf.WriteFile(out, vocab.ToTVF(table)); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			log.Info("packed vocabulary",
				"input", in,
				"output", out,
				"tokens", table.Size(),
				"merges", len(table.Merges()),
			)
			return nil
		},
	}
}
