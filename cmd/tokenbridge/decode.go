package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func decodeCmd() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Turn token identifiers back into text",
		ArgsUsage: "id [id...]",
		Flags:     commonVocabFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyVocabConfig(cmd, LoadConfig())

			ids, err := parseIDs(cmd.Args().Slice())
			if err != nil {
				return err
			}
			enc, _, err := loadEncoder()
			if err != nil {
				return err
			}
			text, err := enc.Decode(ids)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
}

func countCmd() *cli.Command {
	return &cli.Command{
		Name:      "count",
		Usage:     "Count the tokens a text encodes to",
		ArgsUsage: "[text|-]",
		Flags:     commonVocabFlags(),
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
			n, err := enc.Count(text)
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}
}
