package vocab

import (
	"fmt"

	"github.com/samcharles93/tokenbridge/pkg/tvf"
)

// LoadTVF reads a TVF container into a Table.
func LoadTVF(path string) (*Table, error) {
	f, err := tvf.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return FromTVF(f)
}

// FromTVF builds a Table from a decoded TVF file.
func FromTVF(f *tvf.File) (*Table, error) {
	merges := make([]Pair, len(f.Merges))
	for i, m := range f.Merges {
		merges[i] = Pair{A: m[0], B: m[1]}
	}
	t, err := New(f.Tokens, merges, Special{BOS: f.BOS(), EOS: f.EOS(), UNK: f.UNK()})
	if err != nil {
		return nil, fmt.Errorf("load tvf: %w", err)
	}
	return t, nil
}

// ToTVF converts a Table into a writable TVF payload.
func ToTVF(t *Table) *tvf.Payload {
	merges := make([][2]string, len(t.merges))
	for i, m := range t.merges {
		merges[i] = [2]string{m.A, m.B}
	}
	return &tvf.Payload{
		Tokens: t.fragments,
		Merges: merges,
		BOS:    t.special.BOS,
		EOS:    t.special.EOS,
		UNK:    t.special.UNK,
	}
}
