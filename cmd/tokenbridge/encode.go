package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

func encodeCmd() *cli.Command {
	var (
		withSpans  bool
		jsonOutput bool
	)

	return &cli.Command{
		Name:      "encode",
		Usage:     "Tokenize text into identifiers",
		ArgsUsage: "[text|-]",
		Flags: append(commonVocabFlags(),
			&cli.BoolFlag{
				Name:        "spans",
				Usage:       "include byte spans in the output (implies --json)",
				Destination: &withSpans,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit JSON instead of space-separated ids",
				Destination: &jsonOutput,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyVocabConfig(cmd, LoadConfig())

			enc, _, err := loadEncoder()
			if err != nil {
				return err
			}
			text, err := readInput(cmd.Args().First(), os.Stdin)
			if err != nil {
				return err
			}

			if withSpans || jsonOutput {
				toks, err := enc.EncodeTokens(text)
				if err != nil {
					return err
				}
				type span struct {
					ID    uint32 `json:"id"`
					Start int    `json:"start,omitempty"`
					End   int    `json:"end,omitempty"`
				}
				out := struct {
					IDs   []uint32 `json:"ids"`
					Count int      `json:"count"`
					Spans []span   `json:"spans,omitempty"`
				}{IDs: make([]uint32, len(toks)), Count: len(toks)}
				for i, t := range toks {
					out.IDs[i] = t.ID
				}
				if withSpans {
					out.Spans = make([]span, len(toks))
					for i, t := range toks {
						out.Spans[i] = span{ID: t.ID, Start: t.Start, End: t.End}
					}
				}
				encJSON := json.NewEncoder(os.Stdout)
				return encJSON.Encode(out)
			}

			ids, err := enc.Encode(text)
			if err != nil {
				return err
			}
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = fmt.Sprint(id)
			}
			fmt.Println(strings.Join(parts, " "))
			return nil
		},
	}
}
