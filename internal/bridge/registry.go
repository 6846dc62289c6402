// Package bridge is the runtime behind the C boundary: an arena of opaque
// integer handles mapping to tokenizer state. All contract logic lives here,
// in plain Go, so it can be tested without cgo; the exported C shim only
// converts representations.
//
// Every entry point returns a Status instead of an error and contains
// panics: no Go failure may unwind into a foreign caller's runtime.
package bridge

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"sync"

	"github.com/samcharles93/tokenbridge/internal/bpe"
	"github.com/samcharles93/tokenbridge/internal/vocab"
)

// Registry owns all live tokenizer handles. Handles are opaque uint64 keys:
// never 0, never reused within a process. Vocabulary tables are shared
// between handles created from the same source and released with the last
// handle that uses them.
type Registry struct {
	mu      sync.Mutex
	next    uint64
	handles map[uint64]*handleState
	shared  map[string]*sharedTable
}

type sharedTable struct {
	key   string
	table *vocab.Table
	refs  int
}

// handleState serializes all boundary calls on one handle, so a single
// handle is safe to use from multiple foreign threads.
type handleState struct {
	mu     sync.Mutex
	enc    *bpe.Encoder
	shared *sharedTable
}

func NewRegistry() *Registry {
	return &Registry{
		next:    1,
		handles: make(map[uint64]*handleState),
		shared:  make(map[string]*sharedTable),
	}
}

// Default is the process-wide registry the C API operates on.
var Default = NewRegistry()

// CreateHandle loads a vocabulary from path (TVF container or HuggingFace
// tokenizer.json, sniffed by magic) and returns a new handle for it.
func (r *Registry) CreateHandle(path string) (h uint64, st Status) {
	defer contain(&st)

	key := pathKey(path)
	return r.create(key, func() (*vocab.Table, error) {
		return vocab.Load(path, "")
	})
}

// CreateHandleBytes builds a handle from in-memory vocabulary bytes.
// Identical content shares one loaded table.
func (r *Registry) CreateHandleBytes(data []byte) (h uint64, st Status) {
	defer contain(&st)

	sum := sha256.Sum256(data)
	key := "bytes:" + hex.EncodeToString(sum[:])
	return r.create(key, func() (*vocab.Table, error) {
		return vocab.ParseBytes(data)
	})
}

func (r *Registry) create(key string, load func() (*vocab.Table, error)) (uint64, Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	shared, ok := r.shared[key]
	if !ok {
		table, err := load()
		if err != nil {
			if st := statusFromError(err); st != StatusInternalError {
				return 0, st
			}
			// Creation-time failures are configuration failures.
			return 0, StatusCorruptVocabulary
		}
		shared = &sharedTable{key: key, table: table, refs: 0}
		r.shared[key] = shared
	}
	shared.refs++
	if shared.refs > 1 {
		shared.table.Retain()
	}

	h := r.next
	r.next++
	r.handles[h] = &handleState{
		enc:    bpe.NewEncoder(shared.table),
		shared: shared,
	}
	return h, StatusOK
}

// DestroyHandle releases a handle and, with it, its vocabulary reference.
// Destroying an unknown or already-destroyed handle is a no-op.
func (r *Registry) DestroyHandle(h uint64) (st Status) {
	defer contain(&st)

	r.mu.Lock()
	hs, ok := r.handles[h]
	if !ok {
		r.mu.Unlock()
		return StatusOK
	}
	delete(r.handles, h)
	hs.shared.refs--
	last := hs.shared.refs == 0
	if last {
		delete(r.shared, hs.shared.key)
	}
	r.mu.Unlock()

	// Wait out any in-flight call on this handle before dropping the table.
	hs.mu.Lock()
	hs.shared.table.Release()
	hs.enc = nil
	hs.mu.Unlock()
	return StatusOK
}

// Ready reports whether h refers to a live handle.
func (r *Registry) Ready(h uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handles[h]
	return ok
}

// Tokenize encodes input and returns a new identifier slice.
// The caller owns the result.
func (r *Registry) Tokenize(h uint64, input string) (ids []uint32, st Status) {
	defer contain(&st)

	hs, ok := r.get(h)
	if !ok {
		return nil, StatusInvalidHandle
	}
	hs.mu.Lock()
	defer hs.mu.Unlock()
	if hs.enc == nil {
		return nil, StatusInvalidHandle
	}
	ids, err := hs.enc.Encode(input)
	if err != nil {
		return nil, statusFromError(err)
	}
	return ids, StatusOK
}

// Encode is the caller-buffer variant of Tokenize. required always reports
// the full token count; when buf is too small nothing is written and the
// status is StatusBufferTooSmall.
func (r *Registry) Encode(h uint64, input string, buf []uint32) (n int, required int, st Status) {
	defer contain(&st)

	hs, ok := r.get(h)
	if !ok {
		return 0, 0, StatusInvalidHandle
	}
	hs.mu.Lock()
	defer hs.mu.Unlock()
	if hs.enc == nil {
		return 0, 0, StatusInvalidHandle
	}
	ids, err := hs.enc.Encode(input)
	if err != nil {
		return 0, 0, statusFromError(err)
	}
	if len(buf) < len(ids) {
		return 0, len(ids), StatusBufferTooSmall
	}
	copy(buf, ids)
	return len(ids), len(ids), StatusOK
}

// Count returns the number of tokens input encodes to.
func (r *Registry) Count(h uint64, input string) (n int, st Status) {
	defer contain(&st)

	hs, ok := r.get(h)
	if !ok {
		return 0, StatusInvalidHandle
	}
	hs.mu.Lock()
	defer hs.mu.Unlock()
	if hs.enc == nil {
		return 0, StatusInvalidHandle
	}
	n, err := hs.enc.Count(input)
	if err != nil {
		return 0, statusFromError(err)
	}
	return n, StatusOK
}

// Decode maps identifiers back to text.
func (r *Registry) Decode(h uint64, ids []uint32) (text string, st Status) {
	defer contain(&st)

	hs, ok := r.get(h)
	if !ok {
		return "", StatusInvalidHandle
	}
	hs.mu.Lock()
	defer hs.mu.Unlock()
	if hs.enc == nil {
		return "", StatusInvalidHandle
	}
	text, err := hs.enc.Decode(ids)
	if err != nil {
		return "", statusFromError(err)
	}
	return text, StatusOK
}

func (r *Registry) get(h uint64) (*handleState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hs, ok := r.handles[h]
	return hs, ok
}

// contain converts a panic into StatusInternalError. It is the outermost
// guard of every boundary operation.
func contain(st *Status) {
	if recover() != nil {
		*st = StatusInternalError
	}
}

func pathKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "path:" + path
	}
	return "path:" + abs
}
