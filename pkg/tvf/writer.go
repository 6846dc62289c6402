package tvf

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// Payload is the material a TVF file is built from.
// BOS/EOS/UNK use -1 for "absent".
type Payload struct {
	Tokens []string
	Merges [][2]string
	BOS    int
	EOS    int
	UNK    int
}

// Write encodes the payload as a TVF v1 file.
func Write(w io.Writer, p *Payload) error {
	if p == nil {
		return errors.New("tvf: nil payload")
	}
	if len(p.Tokens) == 0 {
		return errors.New("tvf: empty token list")
	}
	if len(p.Tokens) > int(NoToken) {
		return errors.New("tvf: token count exceeds format limit")
	}
	for _, id := range []int{p.BOS, p.EOS, p.UNK} {
		if id >= len(p.Tokens) {
			return errors.New("tvf: special token id out of range")
		}
	}

	size := uint64(tvfHeaderSize)
	for _, t := range p.Tokens {
		size += 4 + uint64(len(t))
	}
	for _, m := range p.Merges {
		size += 4 + uint64(len(m[0])) + 4 + uint64(len(m[1]))
	}

	hdr := Header{
		Major:      CurrentMajor,
		Minor:      CurrentMinor,
		HeaderSize: tvfHeaderSize,
		TokenCount: uint32(len(p.Tokens)),
		MergeCount: uint32(len(p.Merges)),
		BOS:        encodeSpecialID(p.BOS),
		EOS:        encodeSpecialID(p.EOS),
		UNK:        encodeSpecialID(p.UNK),
		FileSize:   size,
	}
	copy(hdr.Magic[:], MagicTVF)

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(encodeHeader(&hdr)); err != nil {
		return err
	}
	for _, t := range p.Tokens {
		if err := writeString(bw, t); err != nil {
			return err
		}
	}
	for _, m := range p.Merges {
		if err := writeString(bw, m[0]); err != nil {
			return err
		}
		if err := writeString(bw, m[1]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes the payload to path, replacing any existing file.
func WriteFile(path string, p *Payload) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, p); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeString(w io.Writer, s string) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func encodeSpecialID(id int) uint32 {
	if id < 0 {
		return NoToken
	}
	return uint32(id)
}
