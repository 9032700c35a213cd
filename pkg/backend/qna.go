package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

type GenerateQnARequest struct {
	PartText            string              `json:"part_text"`
	NumPairs            int                 `json:"num_pairs"`
	Guidance            string              `json:"guidance,omitempty"`
	RunConfigProperties RunConfigProperties `json:"run_config_properties"`
}

// GeneratedPair is one question/answer pair from the generation
// endpoint. Models occasionally emit structured values instead of
// strings; those are kept as their JSON string form rather than
// rejected.
type GeneratedPair struct {
	Question string
	Answer   string
}

func (p *GeneratedPair) UnmarshalJSON(data []byte) error {
	var raw struct {
		Question json.RawMessage `json:"question"`
		Answer   json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Question = coerceString(raw.Question)
	p.Answer = coerceString(raw.Answer)
	return nil
}

func coerceString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

type generateQnAResponse struct {
	GeneratedQnAPairs []GeneratedPair `json:"generated_qna_pairs"`
}

// GenerateQnAPairs asks the backend to produce question/answer pairs
// for one part's text.
func (c *Client) GenerateQnAPairs(ctx context.Context, projectID, taskID string, req GenerateQnARequest) ([]GeneratedPair, error) {
	if err := req.RunConfigProperties.Validate(); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/api/projects/%s/tasks/%s/generate_qna",
		url.PathEscape(projectID), url.PathEscape(taskID))
	var out generateQnAResponse
	if err := c.post(ctx, path, req, &out); err != nil {
		return nil, err
	}
	return out.GeneratedQnAPairs, nil
}

type SavePairRequest struct {
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	SplitTag      string `json:"split_tag"`
	ModelName     string `json:"model_name,omitempty"`
	ModelProvider string `json:"model_provider,omitempty"`
}

type savePairResponse struct {
	ID string `json:"id"`
}

// SavePair persists one generated pair into the task dataset and
// returns the backend-assigned id.
func (c *Client) SavePair(ctx context.Context, projectID, taskID string, req SavePairRequest) (string, error) {
	path := fmt.Sprintf("/api/projects/%s/tasks/%s/saved_qna_pairs",
		url.PathEscape(projectID), url.PathEscape(taskID))
	var out savePairResponse
	if err := c.post(ctx, path, req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}
