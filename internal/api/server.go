// Package api serves the tokenizer over HTTP for sidecar deployments where
// linking the C library is impractical. The surface mirrors the boundary
// contract: tokenize, detokenize, count, and vocabulary metadata.
package api

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/tokenbridge/internal/bpe"
	"github.com/samcharles93/tokenbridge/internal/vocab"
	"github.com/samcharles93/tokenbridge/pkg/tvf"
)

// Engine is the tokenizer surface the server needs.
type Engine interface {
	EncodeTokens(text string) ([]bpe.Token, error)
	Decode(ids []uint32) (string, error)
}

// VocabularyInfo describes the loaded table for the metadata endpoint.
type VocabularyInfo struct {
	Size  int
	BOSID int
	EOSID int
	UNKID int
}

// Server wraps one shared Engine. The underlying BPE encoder is not safe
// for concurrent use, so requests serialize on the server mutex.
type Server struct {
	mu     sync.Mutex
	engine Engine
	info   VocabularyInfo
}

func NewServer(engine Engine, info VocabularyInfo) *Server {
	return &Server{engine: engine, info: info}
}

// InfoFromTable derives endpoint metadata from a vocabulary table.
func InfoFromTable(t *vocab.Table) VocabularyInfo {
	return VocabularyInfo{
		Size:  t.Size(),
		BOSID: t.BOSID(),
		EOSID: t.EOSID(),
		UNKID: t.UNKID(),
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/tokenize", s.handleTokenize)
	e.POST("/v1/detokenize", s.handleDetokenize)
	e.POST("/v1/count", s.handleCount)
	e.GET("/v1/vocabulary", s.handleVocabulary)
	e.GET("/healthz", s.handleHealth)
}

func (s *Server) handleTokenize(c *echo.Context) error {
	req, err := decodeJSON[TokenizeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	s.mu.Lock()
	toks, err := s.engine.EncodeTokens(req.Text)
	s.mu.Unlock()
	if err != nil {
		return writeUnprocessable(c, err.Error())
	}

	resp := TokenizeResponse{
		ID:     "tok-" + uuid.NewString(),
		Object: "tokenization",
		IDs:    make([]uint32, len(toks)),
		Count:  len(toks),
	}
	for i, t := range toks {
		resp.IDs[i] = t.ID
	}
	if req.WithSpans {
		resp.Spans = make([]TokenSpan, len(toks))
		for i, t := range toks {
			resp.Spans[i] = TokenSpan{ID: t.ID, Start: t.Start, End: t.End}
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDetokenize(c *echo.Context) error {
	req, err := decodeJSON[DetokenizeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	s.mu.Lock()
	text, err := s.engine.Decode(req.IDs)
	s.mu.Unlock()
	if err != nil {
		return writeUnprocessable(c, err.Error())
	}

	return c.JSON(http.StatusOK, DetokenizeResponse{
		ID:     "tok-" + uuid.NewString(),
		Object: "detokenization",
		Text:   text,
	})
}

func (s *Server) handleCount(c *echo.Context) error {
	req, err := decodeJSON[CountRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	s.mu.Lock()
	toks, err := s.engine.EncodeTokens(req.Text)
	s.mu.Unlock()
	if err != nil {
		return writeUnprocessable(c, err.Error())
	}

	return c.JSON(http.StatusOK, CountResponse{
		ID:     "tok-" + uuid.NewString(),
		Object: "count",
		Count:  len(toks),
	})
}

func (s *Server) handleVocabulary(c *echo.Context) error {
	return c.JSON(http.StatusOK, VocabularyResponse{
		Object:        "vocabulary",
		Size:          s.info.Size,
		BOSID:         s.info.BOSID,
		EOSID:         s.info.EOSID,
		UNKID:         s.info.UNKID,
		FormatVersion: tvf.CurrentMajor,
	})
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
