package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tokenbridge/internal/vocab"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Show vocabulary statistics",
		ArgsUsage: "vocab-file",
		Flags:     commonVocabFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyVocabConfig(cmd, LoadConfig())

			path := cmd.Args().First()
			if path == "" {
				var err error
				path, err = resolveVocabPath(vocabPath)
				if err != nil {
					return err
				}
			}

			table, err := vocab.Load(path, tokenizerConfig)
			if err != nil {
				return fmt.Errorf("load vocabulary %s: %w", path, err)
			}

			fmt.Printf("source:        %s\n", path)
			fmt.Printf("tokens:        %d\n", table.Size())
			fmt.Printf("merges:        %d\n", len(table.Merges()))
			fmt.Printf("special:       %d\n", len(table.SpecialTokens()))
			printSpecialID("bos", table.BOSID(), table)
			printSpecialID("eos", table.EOSID(), table)
			printSpecialID("unk", table.UNKID(), table)
			return nil
		},
	}
}

func printSpecialID(name string, id int, table *vocab.Table) {
	if id < 0 {
		fmt.Printf("%s:           (none)\n", name)
		return
	}
	frag, err := table.Fragment(uint32(id))
	if err != nil {
		frag = "?"
	}
	fmt.Printf("%s:           %d %q\n", name, id, frag)
}
