package backend

import (
	"encoding/json"
	"fmt"
)

type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Task struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Instruction string `json:"instruction"`
}

type Document struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Tags      []string `json:"tags"`
	Extracted bool     `json:"extracted"`
}

type Extractor struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ModelName     string `json:"model_name"`
	ModelProvider string `json:"model_provider"`
	OutputFormat  string `json:"output_format"`
}

type Chunk struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type RAGConfig struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ExtractorID   string `json:"extractor_config_id"`
	ChunkerID     string `json:"chunker_config_id"`
	EmbeddingID   string `json:"embedding_config_id"`
	VectorStoreID string `json:"vector_store_config_id"`
}

type Eval struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	CurrentConfigID string `json:"current_config_id"`
}

// RunConfigProperties is the frozen parameter set a task executes
// with. Type discriminates the provider-specific shape; unknown types
// are rejected up front so new backend variants fail loudly instead of
// being silently misread.
type RunConfigProperties struct {
	Type          string          `json:"type"`
	ModelName     string          `json:"model_name"`
	ModelProvider string          `json:"model_provider"`
	PromptID      string          `json:"prompt_id,omitempty"`
	Temperature   *float64        `json:"temperature,omitempty"`
	TopP          *float64        `json:"top_p,omitempty"`
	ToolsConfig   json.RawMessage `json:"tools_config,omitempty"`
}

const (
	RunConfigTypeLLM       = "llm"
	RunConfigTypeReference = "reference"
)

func (p RunConfigProperties) Validate() error {
	switch p.Type {
	case RunConfigTypeLLM:
		if p.ModelName == "" || p.ModelProvider == "" {
			return fmt.Errorf("llm run config requires model_name and model_provider")
		}
		return nil
	case RunConfigTypeReference:
		if p.PromptID == "" {
			return fmt.Errorf("reference run config requires prompt_id")
		}
		return nil
	default:
		return fmt.Errorf("unknown run config type: %q", p.Type)
	}
}

type RunConfig struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Properties RunConfigProperties `json:"run_config_properties"`
}

type ProviderModels struct {
	ProviderID   string   `json:"provider_id"`
	ProviderName string   `json:"provider_name"`
	Models       []string `json:"models"`
}
