package bpe

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samcharles93/tokenbridge/internal/vocab"
)

var (
	// ErrInvalidEncoding is returned for input that is not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid utf-8 input")

	// ErrUnknownFragment is returned when a BPE fragment has no identifier
	// and the vocabulary defines no UNK token.
	ErrUnknownFragment = errors.New("unknown token fragment")
)

// gpt2Pattern is the GPT-2 pre-tokenizer split. Go regexp has no lookahead,
// so the trailing-whitespace branch collapses into a plain \s+ match.
var gpt2Pattern = regexp.MustCompile(`'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+`)

// Encode results are cached per pre-tokenized piece. The cap keeps memory
// proportional to distinct piece content rather than total input volume.
const maxCacheEntries = 1 << 16

// Encoder is a byte-level BPE tokenizer over an immutable vocabulary table.
//
// Given the same table and input, Encode always produces the same sequence.
// An Encoder is not safe for concurrent use: the merge cache is mutable.
// Callers that share one Encoder across goroutines must serialize access;
// independently built Encoders share nothing mutable.
type Encoder struct {
	table       *vocab.Table
	byteEncoder [256]string
	byteDecoder map[rune]byte
	pattern     *regexp.Regexp
	cache       map[string][]string
}

// NewEncoder builds an Encoder over the given table.
// The Encoder borrows the table; lifetime is managed by the caller.
func NewEncoder(table *vocab.Table) *Encoder {
	byteEncoder, byteDecoder := bytesToUnicode()
	return &Encoder{
		table:       table,
		byteEncoder: byteEncoder,
		byteDecoder: byteDecoder,
		pattern:     gpt2Pattern,
		cache:       make(map[string][]string),
	}
}

// Table returns the vocabulary table backing this encoder.
func (e *Encoder) Table() *vocab.Table { return e.table }

// Encode tokenizes text into vocabulary identifiers.
// Empty input yields an empty sequence and no error.
func (e *Encoder) Encode(text string) ([]uint32, error) {
	toks, err := e.EncodeTokens(text)
	if err != nil {
		return nil, err
	}
	ids := make([]uint32, len(toks))
	for i, t := range toks {
		ids[i] = t.ID
	}
	return ids, nil
}

// EncodeTokens tokenizes text into tokens carrying byte spans. Spans tile
// the input: each token covers the contiguous byte range it was produced
// from, special tokens cover their literal text.
func (e *Encoder) EncodeTokens(text string) ([]Token, error) {
	if text == "" {
		return []Token{}, nil
	}
	if !utf8.ValidString(text) {
		return nil, ErrInvalidEncoding
	}

	out := []Token{}
	for _, part := range splitSpecials(text, e.table.SpecialTokens()) {
		if part.isSpecial {
			id, ok := e.table.ID(part.text)
			if !ok {
				return nil, fmt.Errorf("%w: special token %q", ErrUnknownFragment, part.text)
			}
			out = append(out, Token{ID: id, Start: part.start, End: part.start + len(part.text)})
			continue
		}
		for _, m := range e.pattern.FindAllStringIndex(part.text, -1) {
			piece := part.text[m[0]:m[1]]
			base := part.start + m[0]
			consumed := 0
			for _, frag := range e.bpe(e.byteEncode(piece)) {
				// Each rune of a fragment stands for exactly one input byte.
				width := utf8.RuneCountInString(frag)
				tok := Token{Start: base + consumed, End: base + consumed + width}
				consumed += width

				id, ok := e.table.ID(frag)
				if !ok {
					unk := e.table.UNKID()
					if unk < 0 {
						return nil, fmt.Errorf("%w: %q", ErrUnknownFragment, frag)
					}
					id = uint32(unk)
				}
				tok.ID = id
				out = append(out, tok)
			}
		}
	}
	return out, nil
}

// Count returns the number of tokens Encode would produce.
func (e *Encoder) Count(text string) (int, error) {
	toks, err := e.EncodeTokens(text)
	if err != nil {
		return 0, err
	}
	return len(toks), nil
}

// Decode maps identifiers back to text. Every identifier must resolve in
// the vocabulary table; special tokens decode to their literal fragment.
func (e *Encoder) Decode(ids []uint32) (string, error) {
	var b []byte
	for _, id := range ids {
		frag, err := e.table.Fragment(id)
		if err != nil {
			return "", err
		}
		if vocab.IsSpecialToken(frag) {
			b = append(b, frag...)
			continue
		}
		for _, r := range frag {
			if by, ok := e.byteDecoder[r]; ok {
				b = append(b, by)
			} else {
				b = append(b, string(r)...)
			}
		}
	}
	return string(b), nil
}

func (e *Encoder) byteEncode(s string) string {
	var b strings.Builder
	for _, by := range []byte(s) {
		b.WriteString(e.byteEncoder[by])
	}
	return b.String()
}

// bpe merges a byte-encoded piece into vocabulary fragments, best rank first.
func (e *Encoder) bpe(piece string) []string {
	if v, ok := e.cache[piece]; ok {
		return v
	}
	word := splitRunes(piece)
	pairs := getPairs(word)
	for len(pairs) > 0 {
		bestRank := int(^uint(0) >> 1)
		bestPair := vocab.Pair{}
		found := false
		for p := range pairs {
			if rank, ok := e.table.Rank(p); ok {
				if rank < bestRank {
					bestRank = rank
					bestPair = p
					found = true
				}
			}
		}
		if !found {
			break
		}
		word = mergePair(word, bestPair)
		if len(word) == 1 {
			break
		}
		pairs = getPairs(word)
	}
	if len(e.cache) < maxCacheEntries {
		e.cache[piece] = word
	}
	return word
}

func getPairs(word []string) map[vocab.Pair]struct{} {
	pairs := make(map[vocab.Pair]struct{})
	if len(word) < 2 {
		return pairs
	}
	prev := word[0]
	for _, w := range word[1:] {
		pairs[vocab.Pair{A: prev, B: w}] = struct{}{}
		prev = w
	}
	return pairs
}

func mergePair(word []string, pair vocab.Pair) []string {
	var out []string
	for i := 0; i < len(word); i++ {
		if i < len(word)-1 && word[i] == pair.A && word[i+1] == pair.B {
			out = append(out, word[i]+word[i+1])
			i++
			continue
		}
		out = append(out, word[i])
	}
	return out
}

type textPart struct {
	text      string
	start     int
	isSpecial bool
}

// splitSpecials carves literal special-token occurrences out of text,
// longest match first, tracking byte offsets for span assembly.
func splitSpecials(text string, specials []string) []textPart {
	if len(specials) == 0 || !strings.Contains(text, "<|") {
		return []textPart{{text: text, start: 0, isSpecial: false}}
	}
	var parts []textPart
	runStart := 0
	for i := 0; i < len(text); {
		match := ""
		for _, sp := range specials {
			if len(sp) == 0 || i+len(sp) > len(text) {
				continue
			}
			if text[i:i+len(sp)] == sp {
				match = sp
				break
			}
		}
		if match != "" {
			if i > runStart {
				parts = append(parts, textPart{text: text[runStart:i], start: runStart})
			}
			parts = append(parts, textPart{text: match, start: i, isSpecial: true})
			i += len(match)
			runStart = i
			continue
		}
		i++
	}
	if runStart < len(text) {
		parts = append(parts, textPart{text: text[runStart:], start: runStart})
	}
	return parts
}
