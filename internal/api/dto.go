package api

type TokenizeRequest struct {
	Text      string `json:"text"`
	WithSpans bool   `json:"with_spans,omitempty"`
}

type TokenSpan struct {
	ID    uint32 `json:"id"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

type TokenizeResponse struct {
	ID     string      `json:"id"`
	Object string      `json:"object"`
	IDs    []uint32    `json:"ids"`
	Count  int         `json:"count"`
	Spans  []TokenSpan `json:"spans,omitempty"`
}

type DetokenizeRequest struct {
	IDs []uint32 `json:"ids"`
}

type DetokenizeResponse struct {
	ID     string `json:"id"`
	Object string `json:"object"`
	Text   string `json:"text"`
}

type CountRequest struct {
	Text string `json:"text"`
}

type CountResponse struct {
	ID     string `json:"id"`
	Object string `json:"object"`
	Count  int    `json:"count"`
}

type VocabularyResponse struct {
	Object        string `json:"object"`
	Size          int    `json:"size"`
	BOSID         int    `json:"bos_id"`
	EOSID         int    `json:"eos_id"`
	UNKID         int    `json:"unk_id"`
	FormatVersion uint16 `json:"format_version"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}
