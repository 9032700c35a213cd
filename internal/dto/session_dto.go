package dto

import "llm-taskbench/internal/session"

type SessionStateResponse struct {
	State       session.State `json:"state"`
	CurrentStep int           `json:"current_step"`
	AutoStep    int           `json:"auto_step"`
}

type AddDocumentsRequest struct {
	Tags []string `json:"tags" validate:"required,min=1"`
}

type AddDocumentsResponse struct {
	Added int `json:"added"`
}

type SetExtractorRequest struct {
	ExtractorID string `json:"extractor_id" validate:"required"`
}

type SetSplitsRequest struct {
	// Tag -> proportion; proportions must sum to 1. Empty clears.
	Splits map[string]float64 `json:"splits"`
}

type SetStepRequest struct {
	Step int `json:"step" validate:"required"`
}

type GenerateRequest struct {
	Target session.Target            `json:"target" validate:"required"`
	Config *session.GenerationConfig `json:"config,omitempty"`
}

type PreviewChunksRequest struct {
	Text string `json:"text" validate:"required"`
}

type PreviewChunksResponse struct {
	Chunks []string `json:"chunks"`
}

type ExtractionRequest struct {
	DocumentIDs []string `json:"document_ids"`
}
