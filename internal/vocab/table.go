package vocab

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
)

var (
	ErrCorruptVocabulary = errors.New("corrupt vocabulary")
	ErrUnknownIdentifier = errors.New("unknown token identifier")
	ErrUnknownFragment   = errors.New("unknown token fragment")
)

// Pair is an ordered pair of merge fragments.
type Pair struct {
	A string
	B string
}

// Special carries the optional special-token identifiers of a vocabulary.
// -1 means "absent".
type Special struct {
	BOS int
	EOS int
	UNK int
}

// Table is an immutable bidirectional mapping between token identifiers and
// byte-string fragments, plus the ordered merge ranks used during encoding.
//
// Tables are reference counted so that multiple tokenizer handles can share
// one loaded vocabulary. A freshly built table is owned by its creator
// (reference count 1); every additional owner calls Retain, and each owner
// calls Release exactly once.
type Table struct {
	fragments []string
	ids       map[string]uint32
	ranks     map[Pair]int
	merges    []Pair
	specials  []string
	special   Special

	refs atomic.Int64
}

// New builds a table from an identifier-ordered fragment list and an ordered
// merge list. Duplicate fragments and out-of-range special ids are rejected
// as corrupt: both would break the bidirectional mapping contract.
func New(fragments []string, merges []Pair, special Special) (*Table, error) {
	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: empty token list", ErrCorruptVocabulary)
	}
	ids := make(map[string]uint32, len(fragments))
	for i, frag := range fragments {
		if _, ok := ids[frag]; ok {
			return nil, fmt.Errorf("%w: duplicate fragment %q", ErrCorruptVocabulary, frag)
		}
		ids[frag] = uint32(i)
	}
	for _, id := range []int{special.BOS, special.EOS, special.UNK} {
		if id >= len(fragments) {
			return nil, fmt.Errorf("%w: special token id %d out of range", ErrCorruptVocabulary, id)
		}
	}

	ranks := make(map[Pair]int, len(merges))
	kept := make([]Pair, 0, len(merges))
	for _, p := range merges {
		if _, ok := ranks[p]; ok {
			continue
		}
		ranks[p] = len(kept)
		kept = append(kept, p)
	}

	t := &Table{
		fragments: append([]string(nil), fragments...),
		ids:       ids,
		ranks:     ranks,
		merges:    kept,
		specials:  collectSpecials(fragments),
		special:   special,
	}
	t.refs.Store(1)
	return t, nil
}

// Size returns the number of identifiers in the table.
func (t *Table) Size() int { return len(t.fragments) }

// Fragment resolves an identifier to its fragment.
func (t *Table) Fragment(id uint32) (string, error) {
	if int(id) >= len(t.fragments) {
		return "", fmt.Errorf("%w: %d", ErrUnknownIdentifier, id)
	}
	return t.fragments[id], nil
}

// ID resolves a fragment to its identifier.
func (t *Table) ID(fragment string) (uint32, bool) {
	id, ok := t.ids[fragment]
	return id, ok
}

// Rank returns the merge rank for a fragment pair, lower merging earlier.
func (t *Table) Rank(p Pair) (int, bool) {
	r, ok := t.ranks[p]
	return r, ok
}

// Merges returns the ordered merge list. Callers must not mutate it.
func (t *Table) Merges() []Pair { return t.merges }

// SpecialTokens returns the special-token fragments, longest first.
// Callers must not mutate the returned slice.
func (t *Table) SpecialTokens() []string { return t.specials }

func (t *Table) BOSID() int { return t.special.BOS }
func (t *Table) EOSID() int { return t.special.EOS }
func (t *Table) UNKID() int { return t.special.UNK }

// Retain adds an owner to the table.
func (t *Table) Retain() *Table {
	t.refs.Add(1)
	return t
}

// Release drops one owner. It reports whether this was the final release.
func (t *Table) Release() bool {
	n := t.refs.Add(-1)
	if n < 0 {
		panic("vocab: release of already-freed table")
	}
	return n == 0
}

// IsSpecialToken reports whether a fragment uses the <|...|> special marker.
func IsSpecialToken(s string) bool {
	if len(s) < 4 {
		return false
	}
	return strings.HasPrefix(s, "<|") && strings.HasSuffix(s, "|>")
}

func collectSpecials(fragments []string) []string {
	out := make([]string, 0, 32)
	for _, f := range fragments {
		if IsSpecialToken(f) {
			out = append(out, f)
		}
	}
	// longest-match first
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && len(out[j]) > len(out[j-1]) {
			out[j], out[j-1] = out[j-1], out[j]
			j--
		}
	}
	return out
}
