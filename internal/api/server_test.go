package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/tokenbridge/internal/bpe"
	"github.com/samcharles93/tokenbridge/internal/vocab"
)

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	tbl, err := vocab.New(
		[]string{"<|bos|>", "<|eos|>", "h", "e", "l", "o", "he", "hel", "hell", "hello"},
		[]vocab.Pair{{A: "h", B: "e"}, {A: "he", B: "l"}, {A: "hel", B: "l"}, {A: "hell", B: "o"}},
		vocab.Special{BOS: 0, EOS: 1, UNK: -1},
	)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	server := NewServer(bpe.NewEncoder(tbl), InfoFromTable(tbl))
	e := echo.New()
	server.Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenizeEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/tokenize", `{"text":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}

	var resp TokenizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.ID, "tok-") {
		t.Fatalf("expected tok- response id, got %q", resp.ID)
	}
	if resp.Object != "tokenization" {
		t.Fatalf("object: got %q", resp.Object)
	}
	if resp.Count != 1 || len(resp.IDs) != 1 || resp.IDs[0] != 9 {
		t.Fatalf("unexpected tokenization: %+v", resp)
	}
	if resp.Spans != nil {
		t.Fatalf("spans should be omitted unless requested")
	}
}

func TestTokenizeEndpointWithSpans(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/tokenize", `{"text":"hello","with_spans":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}

	var resp TokenizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Spans) != 1 {
		t.Fatalf("spans: got %d want 1", len(resp.Spans))
	}
	if resp.Spans[0].Start != 0 || resp.Spans[0].End != len("hello") {
		t.Fatalf("span: got %d..%d", resp.Spans[0].Start, resp.Spans[0].End)
	}
}

func TestTokenizeEndpointEmptyText(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/tokenize", `{"text":""}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp TokenizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 0 || len(resp.IDs) != 0 {
		t.Fatalf("empty text must yield empty ids: %+v", resp)
	}
}

func TestTokenizeEndpointRejectsBadJSON(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/tokenize", `{"text":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_request_error") {
		t.Fatalf("missing error type: %s", rec.Body.String())
	}
}

func TestTokenizeEndpointEncodingError(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	// "z" is not representable and the test table has no UNK token.
	rec := doJSON(t, e, http.MethodPost, "/v1/tokenize", `{"text":"z"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d want 422 body=%s", rec.Code, rec.Body.String())
	}
}

func TestDetokenizeRoundTrip(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/detokenize", `{"ids":[9]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp DetokenizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Text != "hello" {
		t.Fatalf("text: got %q want %q", resp.Text, "hello")
	}
}

func TestDetokenizeUnknownIdentifier(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/detokenize", `{"ids":[9999]}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d want 422", rec.Code)
	}
}

func TestCountEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/count", `{"text":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp CountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("count: got %d want 1", resp.Count)
	}
}

func TestVocabularyEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodGet, "/v1/vocabulary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp VocabularyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Size != 10 {
		t.Fatalf("size: got %d want 10", resp.Size)
	}
	if resp.BOSID != 0 || resp.EOSID != 1 || resp.UNKID != -1 {
		t.Fatalf("special ids: %+v", resp)
	}
	if resp.FormatVersion == 0 {
		t.Fatalf("format version missing")
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
}
