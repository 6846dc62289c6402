package vocab

import (
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
)

type hfTokenizerJSON struct {
	Model struct {
		Type     string         `json:"type"`
		Vocab    map[string]int `json:"vocab"`
		Merges   []any          `json:"merges"`
		UnkToken string         `json:"unk_token"`
	} `json:"model"`
	PostProcessor struct {
		Type       string `json:"type"`
		Processors []struct {
			Type          string `json:"type"`
			SpecialTokens map[string]struct {
				IDs []int `json:"ids"`
			} `json:"special_tokens"`
		} `json:"processors"`
	} `json:"post_processor"`
	AddedTokens []struct {
		ID      int    `json:"id"`
		Content string `json:"content"`
		Special bool   `json:"special"`
	} `json:"added_tokens"`
}

type hfTokenizerConfig struct {
	BOS string `json:"bos_token"`
	EOS string `json:"eos_token"`
}

// LoadHF reads a HuggingFace tokenizer.json (and optional
// tokenizer_config.json) into a Table. Only BPE models are supported.
func LoadHF(tokJSONPath, tokConfigPath string) (*Table, error) {
	data, err := os.ReadFile(tokJSONPath)
	if err != nil {
		return nil, err
	}
	var cfg []byte
	if tokConfigPath != "" {
		if raw, err := os.ReadFile(tokConfigPath); err == nil {
			cfg = raw
		}
	}
	return ParseHF(data, cfg)
}

// ParseHF builds a Table from raw tokenizer.json bytes.
func ParseHF(tokJSON []byte, tokConfig []byte) (*Table, error) {
	var tj hfTokenizerJSON
	if err := json.Unmarshal(tokJSON, &tj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptVocabulary, err)
	}
	if strings.ToUpper(tj.Model.Type) != "BPE" {
		return nil, fmt.Errorf("%w: unsupported tokenizer model %q", ErrCorruptVocabulary, tj.Model.Type)
	}
	if len(tj.Model.Vocab) == 0 {
		return nil, fmt.Errorf("%w: empty vocab", ErrCorruptVocabulary)
	}

	maxID := -1
	for _, id := range tj.Model.Vocab {
		if id < 0 {
			return nil, fmt.Errorf("%w: negative token id %d", ErrCorruptVocabulary, id)
		}
		if id > maxID {
			maxID = id
		}
	}
	for _, at := range tj.AddedTokens {
		if at.ID < 0 {
			return nil, fmt.Errorf("%w: negative token id %d", ErrCorruptVocabulary, at.ID)
		}
		if at.ID > maxID {
			maxID = at.ID
		}
	}

	fragments := make([]string, maxID+1)
	seen := make([]bool, maxID+1)
	for tok, id := range tj.Model.Vocab {
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate token id %d", ErrCorruptVocabulary, id)
		}
		fragments[id] = tok
		seen[id] = true
	}
	for _, at := range tj.AddedTokens {
		if seen[at.ID] && fragments[at.ID] != at.Content {
			return nil, fmt.Errorf("%w: added token id %d conflicts with vocab", ErrCorruptVocabulary, at.ID)
		}
		fragments[at.ID] = at.Content
		seen[at.ID] = true
	}
	for id, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%w: identifier gap at %d", ErrCorruptVocabulary, id)
		}
	}

	merges, err := decodeMerges(tj.Model.Merges)
	if err != nil {
		return nil, err
	}

	var cfg hfTokenizerConfig
	if len(tokConfig) > 0 {
		_ = json.Unmarshal(tokConfig, &cfg)
	}

	special := Special{BOS: -1, EOS: -1, UNK: -1}
	lookup := func(frag string) int {
		if frag == "" {
			return -1
		}
		for id, f := range fragments {
			if f == frag {
				return id
			}
		}
		return -1
	}
	special.BOS = lookup(cfg.BOS)
	special.EOS = lookup(cfg.EOS)
	special.UNK = lookup(tj.Model.UnkToken)

	// If TemplateProcessing defines a BOS token, use it.
	for _, proc := range tj.PostProcessor.Processors {
		if proc.Type == "TemplateProcessing" {
			for _, st := range proc.SpecialTokens {
				if len(st.IDs) > 0 {
					special.BOS = st.IDs[0]
					break
				}
			}
		}
	}

	return New(fragments, merges, special)
}

// decodeMerges accepts both merge encodings found in tokenizer.json files:
// "a b" strings and ["a","b"] pairs.
func decodeMerges(raw []any) ([]Pair, error) {
	merges := make([]Pair, 0, len(raw))
	for i, item := range raw {
		line := ""
		switch v := item.(type) {
		case string:
			line = v
		case []any:
			if len(v) == 2 {
				a, aok := v[0].(string)
				b, bok := v[1].(string)
				if aok && bok {
					line = a + " " + b
				}
			}
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, " ")
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: malformed merge entry %d", ErrCorruptVocabulary, i)
		}
		merges = append(merges, Pair{A: parts[0], B: parts[1]})
	}
	return merges, nil
}
