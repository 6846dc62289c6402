package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/samcharles93/tokenbridge/internal/bpe"
	"github.com/samcharles93/tokenbridge/internal/vocab"
)

const envVocabPath = "TOKENBRIDGE_VOCAB"

// resolveVocabPath picks the vocabulary source: flag, then environment.
func resolveVocabPath(flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue, nil
	}
	if env := strings.TrimSpace(os.Getenv(envVocabPath)); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("no vocabulary given: pass --vocab or set %s", envVocabPath)
}

func loadEncoder() (*bpe.Encoder, *vocab.Table, error) {
	path, err := resolveVocabPath(vocabPath)
	if err != nil {
		return nil, nil, err
	}
	var table *vocab.Table
	if tokenizerConfig != "" {
		table, err = vocab.LoadHF(path, tokenizerConfig)
	} else {
		table, err = vocab.Load(path, "")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load vocabulary %s: %w", path, err)
	}
	return bpe.NewEncoder(table), table, nil
}

// readInput returns the text argument, or stdin when the argument is
// missing or "-".
func readInput(arg string, stdin io.Reader) (string, error) {
	if arg != "" && arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(bufio.NewReader(stdin))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// parseIDs accepts whitespace- or comma-separated token identifiers.
func parseIDs(args []string) ([]uint32, error) {
	var ids []uint32
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		}) {
			v, err := strconv.ParseUint(field, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid token id %q", field)
			}
			ids = append(ids, uint32(v))
		}
	}
	return ids, nil
}
