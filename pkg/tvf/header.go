package tvf

import "encoding/binary"

const (
	MagicTVF = "TVF\x00"

	// Current Major Version: 1 (Breaking changes only)
	CurrentMajor uint16 = 1

	// Current Minor Version
	CurrentMinor uint16 = 0

	// NoToken marks an absent special-token slot in the header.
	NoToken uint32 = 0xFFFFFFFF

	tvfHeaderSize = 40
)

// Header is the fixed-size preamble of a TVF vocabulary file.
// All integers are little-endian.
type Header struct {
	Magic      [4]byte
	Major      uint16
	Minor      uint16
	HeaderSize uint32
	TokenCount uint32
	MergeCount uint32
	BOS        uint32
	EOS        uint32
	UNK        uint32
	FileSize   uint64
}

func (h *Header) Valid() bool {
	if string(h.Magic[:]) != MagicTVF {
		return false
	}
	if h.HeaderSize < tvfHeaderSize {
		return false
	}
	if h.TokenCount == 0 {
		return false
	}
	return true
}

func (h *Header) Compatible() bool {
	return h.Major == CurrentMajor
}

func decodeHeader(b []byte) (Header, bool) {
	if len(b) < tvfHeaderSize {
		return Header{}, false
	}
	var h Header
	copy(h.Magic[:], b[0:4])
	h.Major = binary.LittleEndian.Uint16(b[4:6])
	h.Minor = binary.LittleEndian.Uint16(b[6:8])
	h.HeaderSize = binary.LittleEndian.Uint32(b[8:12])
	h.TokenCount = binary.LittleEndian.Uint32(b[12:16])
	h.MergeCount = binary.LittleEndian.Uint32(b[16:20])
	h.BOS = binary.LittleEndian.Uint32(b[20:24])
	h.EOS = binary.LittleEndian.Uint32(b[24:28])
	h.UNK = binary.LittleEndian.Uint32(b[28:32])
	h.FileSize = binary.LittleEndian.Uint64(b[32:40])
	return h, true
}

func encodeHeader(h *Header) []byte {
	b := make([]byte, tvfHeaderSize)
	copy(b[0:4], h.Magic[:])
	binary.LittleEndian.PutUint16(b[4:6], h.Major)
	binary.LittleEndian.PutUint16(b[6:8], h.Minor)
	binary.LittleEndian.PutUint32(b[8:12], h.HeaderSize)
	binary.LittleEndian.PutUint32(b[12:16], h.TokenCount)
	binary.LittleEndian.PutUint32(b[16:20], h.MergeCount)
	binary.LittleEndian.PutUint32(b[20:24], h.BOS)
	binary.LittleEndian.PutUint32(b[24:28], h.EOS)
	binary.LittleEndian.PutUint32(b[28:32], h.UNK)
	binary.LittleEndian.PutUint64(b[32:40], h.FileSize)
	return b
}
