package vocab

import (
	"errors"
	"testing"
)

func TestParseHF(t *testing.T) {
	t.Parallel()

	tokJSON := []byte(`{
		"model":{
			"type":"BPE",
			"vocab":{"<s>":0,"</s>":1,"<unk>":2,"a":3,"b":4,"ab":5},
			"merges":["a b"],
			"unk_token":"<unk>"
		}
	}`)
	tokConfig := []byte(`{
		"bos_token":"<s>",
		"eos_token":"</s>"
	}`)

	tbl, err := ParseHF(tokJSON, tokConfig)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.Size() != 6 {
		t.Fatalf("size: got %d want 6", tbl.Size())
	}
	if tbl.BOSID() != 0 || tbl.EOSID() != 1 || tbl.UNKID() != 2 {
		t.Fatalf("special ids: got bos=%d eos=%d unk=%d", tbl.BOSID(), tbl.EOSID(), tbl.UNKID())
	}
	if rank, ok := tbl.Rank(Pair{A: "a", B: "b"}); !ok || rank != 0 {
		t.Fatalf("merge rank: got %d,%v", rank, ok)
	}
}

func TestParseHFPairMergesAndAddedTokens(t *testing.T) {
	t.Parallel()

	tokJSON := []byte(`{
		"model":{
			"type":"BPE",
			"vocab":{"a":0,"b":1,"ab":2},
			"merges":[["a","b"]]
		},
		"added_tokens":[{"id":3,"content":"<|pad|>","special":true}]
	}`)

	tbl, err := ParseHF(tokJSON, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.Size() != 4 {
		t.Fatalf("size: got %d want 4", tbl.Size())
	}
	frag, err := tbl.Fragment(3)
	if err != nil || frag != "<|pad|>" {
		t.Fatalf("added token: got %q, %v", frag, err)
	}
	if rank, ok := tbl.Rank(Pair{A: "a", B: "b"}); !ok || rank != 0 {
		t.Fatalf("pair-form merge not decoded: got %d,%v", rank, ok)
	}
}

func TestParseHFTemplateProcessingBOS(t *testing.T) {
	t.Parallel()

	tokJSON := []byte(`{
		"model":{
			"type":"BPE",
			"vocab":{"<s>":0,"a":1},
			"merges":[]
		},
		"post_processor":{
			"processors":[
				{"type":"TemplateProcessing","special_tokens":{"bos":{"ids":[0]}}}
			]
		}
	}`)

	tbl, err := ParseHF(tokJSON, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.BOSID() != 0 {
		t.Fatalf("bos id: got %d want 0", tbl.BOSID())
	}
}

func TestParseHFRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	tokJSON := []byte(`{
		"model":{
			"type":"BPE",
			"vocab":{"a":0,"b":0},
			"merges":[]
		}
	}`)

	if _, err := ParseHF(tokJSON, nil); !errors.Is(err, ErrCorruptVocabulary) {
		t.Fatalf("expected ErrCorruptVocabulary, got %v", err)
	}
}

func TestParseHFRejectsUnsupportedModel(t *testing.T) {
	t.Parallel()

	tokJSON := []byte(`{"model":{"type":"WordPiece","vocab":{"a":0},"merges":[]}}`)
	if _, err := ParseHF(tokJSON, nil); !errors.Is(err, ErrCorruptVocabulary) {
		t.Fatalf("expected ErrCorruptVocabulary, got %v", err)
	}
}

func TestParseHFRejectsIdentifierGap(t *testing.T) {
	t.Parallel()

	tokJSON := []byte(`{
		"model":{
			"type":"BPE",
			"vocab":{"a":0,"b":2},
			"merges":[]
		}
	}`)

	if _, err := ParseHF(tokJSON, nil); !errors.Is(err, ErrCorruptVocabulary) {
		t.Fatalf("expected ErrCorruptVocabulary, got %v", err)
	}
}

func TestParseHFRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	if _, err := ParseHF([]byte(`{"model":`), nil); !errors.Is(err, ErrCorruptVocabulary) {
		t.Fatalf("expected ErrCorruptVocabulary, got %v", err)
	}
}
