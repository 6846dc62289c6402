package bridge

import (
	"errors"

	"github.com/samcharles93/tokenbridge/internal/bpe"
	"github.com/samcharles93/tokenbridge/internal/vocab"
	"github.com/samcharles93/tokenbridge/pkg/tvf"
)

// Status is the integer result code every boundary operation returns.
// 0 is success; nonzero values enumerate the failure taxonomy. Codes are
// part of the C ABI and must never be renumbered.
type Status int32

const (
	StatusOK Status = iota
	StatusInvalidHandle
	StatusEncodingError
	StatusCorruptVocabulary
	StatusBufferTooSmall
	StatusOutOfMemory
	StatusInternalError
)

var statusMessages = map[Status]string{
	StatusOK:                "ok",
	StatusInvalidHandle:     "invalid or destroyed tokenizer handle",
	StatusEncodingError:     "input is not valid for this tokenizer",
	StatusCorruptVocabulary: "vocabulary could not be loaded",
	StatusBufferTooSmall:    "output buffer too small",
	StatusOutOfMemory:       "allocation failed",
	StatusInternalError:     "internal tokenizer error",
}

// Message returns a static human-readable description of the status.
func (s Status) Message() string {
	if msg, ok := statusMessages[s]; ok {
		return msg
	}
	return "unknown status"
}

func (s Status) String() string { return s.Message() }

// statusFromError maps library errors onto the boundary taxonomy.
// Nothing may escape unclassified: the fallback is StatusInternalError.
func statusFromError(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, bpe.ErrInvalidEncoding),
		errors.Is(err, bpe.ErrUnknownFragment),
		errors.Is(err, vocab.ErrUnknownIdentifier):
		return StatusEncodingError
	case errors.Is(err, vocab.ErrCorruptVocabulary),
		errors.Is(err, tvf.ErrInvalidMagic),
		errors.Is(err, tvf.ErrUnsupportedMajor),
		errors.Is(err, tvf.ErrCorruptFile):
		return StatusCorruptVocabulary
	default:
		return StatusInternalError
	}
}
