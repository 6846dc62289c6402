package tvf

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// File is a decoded TVF vocabulary.
//
// Token strings and merge pairs are copied out of the backing data during
// parsing, so the file may be closed as soon as decoding finishes.
type File struct {
	Header *Header

	// Tokens maps identifier -> fragment. The index is the identifier.
	Tokens []string

	// Merges is the ordered merge list; rank is the slice index.
	Merges [][2]string

	data    []byte
	mmapped bool
}

// Open maps a TVF file read-only and decodes it.
// If mmap is unavailable, it falls back to ReadAt-based loading.
// The returned file must be closed to release any mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size64 := stat.Size()
	if size64 < 0 {
		return nil, ErrCorruptFile
	}
	if size64 > int64(int(^uint(0)>>1)) {
		// cannot index this file safely as []byte on this architecture.
		return nil, ErrCorruptFile
	}
	size := int(size64)
	if size < tvfHeaderSize {
		return nil, ErrCorruptFile
	}

	// Prefer mmap where available so large vocabularies decode without a
	// second full-size allocation.
	data, err := unix.Mmap(
		int(f.Fd()),
		0,
		size,
		unix.PROT_READ,
		unix.MAP_SHARED,
	)
	if err == nil {
		tf, parseErr := parseFileData(data, true)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return tf, nil
	}

	// Fallback path that does not require mmap support.
	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

// Parse decodes a TVF vocabulary from an in-memory buffer.
func Parse(data []byte) (*File, error) {
	return parseFileData(data, false)
}

// OpenReaderAt loads and decodes a TVF from a random-access reader without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, ErrCorruptFile
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrCorruptFile
	}
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func parseFileData(data []byte, mmapped bool) (*File, error) {
	if len(data) < tvfHeaderSize {
		return nil, ErrCorruptFile
	}
	hdr, ok := decodeHeader(data[:tvfHeaderSize])
	if !ok {
		return nil, ErrCorruptFile
	}
	if !hdr.Valid() {
		return nil, ErrInvalidMagic
	}
	if !hdr.Compatible() {
		return nil, fmt.Errorf("%w: file is v%d, reader supports v%d", ErrUnsupportedMajor, hdr.Major, CurrentMajor)
	}
	if hdr.FileSize != uint64(len(data)) {
		return nil, ErrCorruptFile
	}
	if uint64(hdr.HeaderSize) > uint64(len(data)) {
		return nil, ErrCorruptFile
	}

	off := int(hdr.HeaderSize)

	tokens := make([]string, hdr.TokenCount)
	for i := range tokens {
		s, next, err := decodeString(data, off)
		if err != nil {
			return nil, fmt.Errorf("%w: token %d: %v", ErrCorruptFile, i, err)
		}
		tokens[i] = s
		off = next
	}

	merges := make([][2]string, hdr.MergeCount)
	for i := range merges {
		left, next, err := decodeString(data, off)
		if err != nil {
			return nil, fmt.Errorf("%w: merge %d left: %v", ErrCorruptFile, i, err)
		}
		right, next2, err := decodeString(data, next)
		if err != nil {
			return nil, fmt.Errorf("%w: merge %d right: %v", ErrCorruptFile, i, err)
		}
		merges[i] = [2]string{left, right}
		off = next2
	}

	if off != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptFile, len(data)-off)
	}

	for _, slot := range []uint32{hdr.BOS, hdr.EOS, hdr.UNK} {
		if slot != NoToken && slot >= hdr.TokenCount {
			return nil, fmt.Errorf("%w: special token id %d out of range", ErrCorruptFile, slot)
		}
	}

	return &File{
		Header:  &hdr,
		Tokens:  tokens,
		Merges:  merges,
		data:    data,
		mmapped: mmapped,
	}, nil
}

// decodeString reads a u32-length-prefixed string at off.
// String contents are copied, so the result does not alias data.
func decodeString(data []byte, off int) (string, int, error) {
	if off < 0 || off+4 > len(data) {
		return "", 0, io.ErrUnexpectedEOF
	}
	n := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4
	if n < 0 || off+n > len(data) {
		return "", 0, io.ErrUnexpectedEOF
	}
	return string(data[off : off+n]), off + n, nil
}

// BOS returns the beginning-of-sequence id, or -1 when absent.
func (f *File) BOS() int { return specialID(f.Header.BOS) }

// EOS returns the end-of-sequence id, or -1 when absent.
func (f *File) EOS() int { return specialID(f.Header.EOS) }

// UNK returns the unknown-token id, or -1 when absent.
func (f *File) UNK() int { return specialID(f.Header.UNK) }

func specialID(v uint32) int {
	if v == NoToken {
		return -1
	}
	return int(v)
}

// Close releases the mmap backing, if any.
func (f *File) Close() error {
	if f == nil {
		return nil
	}
	if f.data != nil && f.mmapped {
		data := f.data
		f.data = nil
		f.mmapped = false
		return unix.Munmap(data)
	}
	f.data = nil
	return nil
}
