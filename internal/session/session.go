// Package session implements the Q&A generation wizard: durable
// per-project/task state, step derivation, chunking fan-out, best
// effort pair generation and bulk dataset save. A Store is constructed
// per wizard instance and owns its persistence; there are no package
// level singletons.
package session

import "time"

// Pair is one generated question/answer pair. SavedID is nil until the
// pair has been persisted into the backend dataset; once set it never
// reverts.
type Pair struct {
	ID            string  `json:"id"`
	Question      string  `json:"question"`
	Answer        string  `json:"answer"`
	Generated     bool    `json:"generated"`
	ModelName     string  `json:"model_name"`
	ModelProvider string  `json:"model_provider"`
	SavedID       *string `json:"saved_id"`
}

// DocPart is a bounded slice of extracted document text used as a
// generation unit. Pairs only exist after extraction and chunking.
type DocPart struct {
	ID          string  `json:"id"`
	PreviewText string  `json:"preview_text"`
	QAPairs     []*Pair `json:"qa_pairs"`
}

type DocumentNode struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Tags      []string   `json:"tags"`
	Extracted bool       `json:"extracted"`
	Parts     []*DocPart `json:"parts"`
}

// GenerationConfig are the run parameters the wizard carries between
// steps.
type GenerationConfig struct {
	PairsPerPart  int      `json:"pairs_per_part"`
	Guidance      string   `json:"guidance"`
	ChunkSize     int      `json:"chunk_size"`
	ChunkOverlap  int      `json:"chunk_overlap"`
	ModelName     string   `json:"model_name"`
	ModelProvider string   `json:"model_provider"`
	Temperature   *float64 `json:"temperature,omitempty"`
}

// State is the persisted wizard state. It is mirrored to the session
// repository on every mutation so a restart resumes mid-workflow.
type State struct {
	ProjectID          string             `json:"project_id"`
	TaskID             string             `json:"task_id"`
	SelectedTags       []string           `json:"selected_tags"`
	ExtractorID        string             `json:"extractor_id"`
	ExtractionComplete bool               `json:"extraction_complete"`
	Config             GenerationConfig   `json:"config"`
	Documents          []*DocumentNode    `json:"documents"`
	Splits             map[string]float64 `json:"splits"`
	CurrentStep        int                `json:"current_step"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

const (
	StepSelectDocuments = 1
	StepExtract         = 2
	StepGenerate        = 3
	StepSave            = 4

	DefaultChunkSize    = 512
	DefaultChunkOverlap = 64
	DefaultPairsPerPart = 3
)

func newState(projectID, taskID string) *State {
	return &State{
		ProjectID:   projectID,
		TaskID:      taskID,
		Documents:   []*DocumentNode{},
		Splits:      map[string]float64{},
		CurrentStep: StepSelectDocuments,
		Config: GenerationConfig{
			PairsPerPart: DefaultPairsPerPart,
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
	}
}

// autoStep derives the furthest reachable step from the data alone.
func (s *State) autoStep() int {
	for _, doc := range s.Documents {
		for _, part := range doc.Parts {
			if len(part.QAPairs) > 0 {
				return StepSave
			}
		}
	}
	if s.ExtractionComplete {
		return StepGenerate
	}
	if len(s.Documents) > 0 {
		return StepExtract
	}
	return StepSelectDocuments
}

func (s *State) document(id string) *DocumentNode {
	for _, doc := range s.Documents {
		if doc.ID == id {
			return doc
		}
	}
	return nil
}
