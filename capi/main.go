// Package main exports the tokenizer bridge as a C ABI.
//
// Build with:
//
//	go build -buildmode=c-shared -o libtokenbridge.so ./capi
//
// Every function returns an int status (see internal/bridge.Status); 0 is
// success. Buffers returned by tokenbridge_tokenize and tokenbridge_decode
// are C-allocated and must be released with tokenbridge_free_ids and
// tokenbridge_free_string respectively. All other pointers remain owned by
// the caller. Handles are opaque uint64 values; one handle may be used from
// multiple threads (calls are serialized internally), and destroying a
// handle twice is a harmless no-op.
package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/samcharles93/tokenbridge/internal/bridge"
)

//export tokenbridge_create_handle
func tokenbridge_create_handle(path *C.char, out *C.uint64_t) C.int {
	if path == nil || out == nil {
		return C.int(bridge.StatusInternalError)
	}
	h, st := bridge.Default.CreateHandle(C.GoString(path))
	if st != bridge.StatusOK {
		return C.int(st)
	}
	*out = C.uint64_t(h)
	return C.int(bridge.StatusOK)
}

//export tokenbridge_create_handle_bytes
func tokenbridge_create_handle_bytes(data *C.uint8_t, n C.size_t, out *C.uint64_t) C.int {
	if data == nil || out == nil {
		return C.int(bridge.StatusInternalError)
	}
	buf := C.GoBytes(unsafe.Pointer(data), C.int(n))
	h, st := bridge.Default.CreateHandleBytes(buf)
	if st != bridge.StatusOK {
		return C.int(st)
	}
	*out = C.uint64_t(h)
	return C.int(bridge.StatusOK)
}

//export tokenbridge_destroy_handle
func tokenbridge_destroy_handle(h C.uint64_t) C.int {
	return C.int(bridge.Default.DestroyHandle(uint64(h)))
}

//export tokenbridge_is_ready
func tokenbridge_is_ready(h C.uint64_t) C.int {
	if bridge.Default.Ready(uint64(h)) {
		return 1
	}
	return 0
}

// tokenbridge_tokenize encodes text and hands ownership of a C-allocated
// identifier buffer to the caller. On any failure *out_ids is NULL and
// *out_len is 0. Empty input succeeds with a NULL, zero-length result.
//
//export tokenbridge_tokenize
func tokenbridge_tokenize(h C.uint64_t, text *C.char, textLen C.size_t, outIDs **C.uint32_t, outLen *C.size_t) C.int {
	if outIDs == nil || outLen == nil {
		return C.int(bridge.StatusInternalError)
	}
	*outIDs = nil
	*outLen = 0

	ids, st := bridge.Default.Tokenize(uint64(h), goInput(text, textLen))
	if st != bridge.StatusOK {
		return C.int(st)
	}
	if len(ids) == 0 {
		return C.int(bridge.StatusOK)
	}

	p := C.malloc(C.size_t(len(ids)) * C.size_t(unsafe.Sizeof(C.uint32_t(0))))
	if p == nil {
		return C.int(bridge.StatusOutOfMemory)
	}
	dst := unsafe.Slice((*uint32)(p), len(ids))
	copy(dst, ids)
	*outIDs = (*C.uint32_t)(p)
	*outLen = C.size_t(len(ids))
	return C.int(bridge.StatusOK)
}

// tokenbridge_encode is the caller-buffer variant: it writes into buf
// (capacity bufCap identifiers) and reports the full token count through
// required. When the buffer is too small nothing is written and the status
// is BufferTooSmall; the caller can retry with *required slots.
//
//export tokenbridge_encode
func tokenbridge_encode(h C.uint64_t, text *C.char, textLen C.size_t, buf *C.uint32_t, bufCap C.size_t, required *C.size_t) C.int {
	if required == nil {
		return C.int(bridge.StatusInternalError)
	}
	*required = 0

	var dst []uint32
	if buf != nil && bufCap > 0 {
		dst = unsafe.Slice((*uint32)(unsafe.Pointer(buf)), int(bufCap))
	}
	_, need, st := bridge.Default.Encode(uint64(h), goInput(text, textLen), dst)
	*required = C.size_t(need)
	return C.int(st)
}

//export tokenbridge_count
func tokenbridge_count(h C.uint64_t, text *C.char, textLen C.size_t, out *C.size_t) C.int {
	if out == nil {
		return C.int(bridge.StatusInternalError)
	}
	*out = 0
	n, st := bridge.Default.Count(uint64(h), goInput(text, textLen))
	if st != bridge.StatusOK {
		return C.int(st)
	}
	*out = C.size_t(n)
	return C.int(bridge.StatusOK)
}

// tokenbridge_decode returns a NUL-terminated, C-allocated string owned by
// the caller (release with tokenbridge_free_string), or NULL on failure.
//
//export tokenbridge_decode
func tokenbridge_decode(h C.uint64_t, ids *C.uint32_t, n C.size_t) *C.char {
	if ids == nil && n != 0 {
		return nil
	}
	var goIDs []uint32
	if n > 0 {
		src := unsafe.Slice((*uint32)(unsafe.Pointer(ids)), int(n))
		goIDs = append(goIDs, src...)
	}
	text, st := bridge.Default.Decode(uint64(h), goIDs)
	if st != bridge.StatusOK {
		return nil
	}
	return C.CString(text)
}

//export tokenbridge_free_ids
func tokenbridge_free_ids(p *C.uint32_t) {
	if p != nil {
		C.free(unsafe.Pointer(p))
	}
}

//export tokenbridge_free_string
func tokenbridge_free_string(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

var (
	statusStringsOnce sync.Once
	statusStrings     map[bridge.Status]*C.char
)

// tokenbridge_status_message returns a static description of a status code.
// The returned pointer is owned by the library and must not be freed.
//
//export tokenbridge_status_message
func tokenbridge_status_message(code C.int) *C.char {
	statusStringsOnce.Do(func() {
		statusStrings = make(map[bridge.Status]*C.char)
		for _, st := range []bridge.Status{
			bridge.StatusOK,
			bridge.StatusInvalidHandle,
			bridge.StatusEncodingError,
			bridge.StatusCorruptVocabulary,
			bridge.StatusBufferTooSmall,
			bridge.StatusOutOfMemory,
			bridge.StatusInternalError,
		} {
			statusStrings[st] = C.CString(st.Message())
		}
	})
	if msg, ok := statusStrings[bridge.Status(code)]; ok {
		return msg
	}
	return statusStrings[bridge.StatusInternalError]
}

// goInput converts a foreign (pointer, length) pair into a Go string.
// NULL means empty input, which tokenizes to an empty sequence.
func goInput(text *C.char, n C.size_t) string {
	if text == nil || n == 0 {
		return ""
	}
	return C.GoStringN(text, C.int(n))
}

func main() {}
