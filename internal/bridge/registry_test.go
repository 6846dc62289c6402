package bridge

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/samcharles93/tokenbridge/pkg/tvf"
)

// testVocabJSON covers "hello world" with bos/eos markers.
const testVocabJSON = `{
	"model":{
		"type":"BPE",
		"vocab":{
			"<|bos|>":0,"<|eos|>":1,
			"h":2,"e":3,"l":4,"o":5,"w":6,"r":7,"d":8,"Ġ":9,
			"he":10,"hel":11,"hell":12,"hello":13,
			"Ġw":14,"Ġwo":15,"Ġwor":16,"Ġworl":17,"Ġworld":18
		},
		"merges":[
			"h e","he l","hel l","hell o",
			"Ġ w","Ġw o","Ġwo r","Ġwor l","Ġworl d"
		]
	}
}`

func newTestHandle(t *testing.T, r *Registry) uint64 {
	t.Helper()
	h, st := r.CreateHandleBytes([]byte(testVocabJSON))
	if st != StatusOK {
		t.Fatalf("create handle: %v", st)
	}
	return h
}

func TestCreateTokenizeDestroy(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	h := newTestHandle(t, r)
	if !r.Ready(h) {
		t.Fatalf("handle not ready")
	}

	ids, st := r.Tokenize(h, "hello world")
	if st != StatusOK {
		t.Fatalf("tokenize: %v", st)
	}
	if len(ids) != 2 {
		t.Fatalf("token count: got %d want 2 (ids=%v)", len(ids), ids)
	}

	if st := r.DestroyHandle(h); st != StatusOK {
		t.Fatalf("destroy: %v", st)
	}
	if r.Ready(h) {
		t.Fatalf("handle still ready after destroy")
	}
}

func TestTokenizeEmptyInput(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	h := newTestHandle(t, r)
	defer r.DestroyHandle(h)

	ids, st := r.Tokenize(h, "")
	if st != StatusOK {
		t.Fatalf("tokenize empty: %v", st)
	}
	if len(ids) != 0 {
		t.Fatalf("expected zero-length sequence, got %v", ids)
	}
}

func TestDoubleDestroyIsNoOp(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	h := newTestHandle(t, r)
	if st := r.DestroyHandle(h); st != StatusOK {
		t.Fatalf("first destroy: %v", st)
	}
	if st := r.DestroyHandle(h); st != StatusOK {
		t.Fatalf("second destroy must be a no-op, got %v", st)
	}
}

func TestInvalidHandleStatus(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if _, st := r.Tokenize(42, "hello"); st != StatusInvalidHandle {
		t.Fatalf("tokenize: got %v want StatusInvalidHandle", st)
	}
	if _, st := r.Decode(42, []uint32{1}); st != StatusInvalidHandle {
		t.Fatalf("decode: got %v want StatusInvalidHandle", st)
	}
	if _, st := r.Count(42, "hello"); st != StatusInvalidHandle {
		t.Fatalf("count: got %v want StatusInvalidHandle", st)
	}
	if r.Ready(0) {
		t.Fatalf("handle 0 must never be ready")
	}
}

func TestEncodeBufferTooSmall(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	h := newTestHandle(t, r)
	defer r.DestroyHandle(h)

	buf := make([]uint32, 1)
	n, required, st := r.Encode(h, "hello world", buf)
	if st != StatusBufferTooSmall {
		t.Fatalf("status: got %v want StatusBufferTooSmall", st)
	}
	if n != 0 {
		t.Fatalf("nothing should be written on BufferTooSmall, n=%d", n)
	}
	if required != 2 {
		t.Fatalf("required: got %d want 2", required)
	}

	buf = make([]uint32, required)
	n, _, st = r.Encode(h, "hello world", buf)
	if st != StatusOK || n != 2 {
		t.Fatalf("resized encode: n=%d st=%v", n, st)
	}
}

func TestEncodingErrorLeavesHandleUsable(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	h := newTestHandle(t, r)
	defer r.DestroyHandle(h)

	if _, st := r.Tokenize(h, "bad\xff\xfe"); st != StatusEncodingError {
		t.Fatalf("invalid utf-8: got %v want StatusEncodingError", st)
	}
	if _, st := r.Tokenize(h, "hello"); st != StatusOK {
		t.Fatalf("handle poisoned by input error: %v", st)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	h := newTestHandle(t, r)
	defer r.DestroyHandle(h)

	ids, st := r.Tokenize(h, "hello world")
	if st != StatusOK {
		t.Fatalf("tokenize: %v", st)
	}
	text, st := r.Decode(h, ids)
	if st != StatusOK {
		t.Fatalf("decode: %v", st)
	}
	if text != "hello world" {
		t.Fatalf("round trip: got %q", text)
	}
}

func TestDecodeUnknownIdentifier(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	h := newTestHandle(t, r)
	defer r.DestroyHandle(h)

	if _, st := r.Decode(h, []uint32{60000}); st != StatusEncodingError {
		t.Fatalf("got %v want StatusEncodingError", st)
	}
}

func TestCreateHandleCorruptVocabulary(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if _, st := r.CreateHandleBytes([]byte(`{"model":{"type":"BPE","vocab":{"a":0,"b":0},"merges":[]}}`)); st != StatusCorruptVocabulary {
		t.Fatalf("duplicate ids: got %v want StatusCorruptVocabulary", st)
	}
	if _, st := r.CreateHandle(filepath.Join(t.TempDir(), "missing.json")); st != StatusCorruptVocabulary {
		t.Fatalf("missing file: got %v want StatusCorruptVocabulary", st)
	}
}

func TestCreateHandleRejectsFutureTVF(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vocab.tvf")
	if err := tvf.WriteFile(path, &tvf.Payload{
		Tokens: []string{"a"},
		BOS:    -1, EOS: -1, UNK: -1,
	}); err != nil {
		t.Fatalf("write tvf: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	// Bump the major version; loads must fail closed.
	data[4] = byte(tvf.CurrentMajor + 1)
	data[5] = 0
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	r := NewRegistry()
	if _, st := r.CreateHandle(path); st != StatusCorruptVocabulary {
		t.Fatalf("got %v want StatusCorruptVocabulary", st)
	}
}

func TestCreateHandleFromTVFPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vocab.tvf")
	if err := tvf.WriteFile(path, &tvf.Payload{
		Tokens: []string{"h", "e", "l", "o", "he", "hel", "hell", "hello"},
		Merges: [][2]string{{"h", "e"}, {"he", "l"}, {"hel", "l"}, {"hell", "o"}},
		BOS:    -1, EOS: -1, UNK: -1,
	}); err != nil {
		t.Fatalf("write tvf: %v", err)
	}

	r := NewRegistry()
	h, st := r.CreateHandle(path)
	if st != StatusOK {
		t.Fatalf("create from tvf: %v", st)
	}
	defer r.DestroyHandle(h)

	ids, st := r.Tokenize(h, "hello")
	if st != StatusOK {
		t.Fatalf("tokenize: %v", st)
	}
	if len(ids) != 1 {
		t.Fatalf("token count: got %d want 1", len(ids))
	}
	text, st := r.Decode(h, ids)
	if st != StatusOK || text != "hello" {
		t.Fatalf("decode: %q %v", text, st)
	}
}

func TestHandlesShareOneVocabularyLoad(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	h1 := newTestHandle(t, r)
	h2 := newTestHandle(t, r)
	if h1 == h2 {
		t.Fatalf("handles must be distinct")
	}

	r.mu.Lock()
	if len(r.shared) != 1 {
		r.mu.Unlock()
		t.Fatalf("expected one shared table, got %d", len(r.shared))
	}
	r.mu.Unlock()

	r.DestroyHandle(h1)
	if _, st := r.Tokenize(h2, "hello"); st != StatusOK {
		t.Fatalf("shared table released too early: %v", st)
	}
	r.DestroyHandle(h2)

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.shared) != 0 {
		t.Fatalf("shared table leaked after last destroy")
	}
}

func TestHandleSafeForConcurrentCalls(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	h := newTestHandle(t, r)
	defer r.DestroyHandle(h)

	want, st := r.Tokenize(h, "hello world hello")
	if st != StatusOK {
		t.Fatalf("tokenize: %v", st)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, st := r.Tokenize(h, "hello world hello")
				if st != StatusOK {
					t.Errorf("tokenize: %v", st)
					return
				}
				if len(got) != len(want) {
					t.Errorf("nondeterministic result: %v vs %v", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestStatusMessagesAreStatic(t *testing.T) {
	t.Parallel()

	for _, st := range []Status{
		StatusOK, StatusInvalidHandle, StatusEncodingError,
		StatusCorruptVocabulary, StatusBufferTooSmall,
		StatusOutOfMemory, StatusInternalError,
	} {
		if st.Message() == "" || st.Message() == "unknown status" {
			t.Fatalf("status %d has no message", st)
		}
	}
}
