package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"llm-taskbench/pkg/apperror"
	"llm-taskbench/pkg/backend"
)

type TargetType string

const (
	TargetAll      TargetType = "all"
	TargetDocument TargetType = "document"
	TargetPart     TargetType = "part"
)

// Target selects which parts a generation run covers.
type Target struct {
	Type       TargetType `json:"type"`
	DocumentID string     `json:"document_id,omitempty"`
	PartIndex  int        `json:"part_index,omitempty"`
}

// ItemError records a single part's failure during a best-effort run,
// keyed the way the progress dialog displays it.
type ItemError struct {
	Document  string `json:"document"`
	PartIndex int    `json:"part_index"`
	Message   string `json:"message"`
}

// GenerationProgress is the derived state a progress dialog renders.
// Total counts requested pairs (parts × pairs per part), not parts.
type GenerationProgress struct {
	Running   bool        `json:"running"`
	Generated int         `json:"generated"`
	Total     int         `json:"total"`
	Errors    []ItemError `json:"errors"`
}

type partRef struct {
	documentID   string
	documentName string
	partIndex    int
	text         string
}

// GenerationState returns the progress of the current or last run.
func (s *Store) GenerationState() GenerationProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Generate runs Q&A pair generation over the target parts. For the
// "all" target every document is (re)chunked first; a chunking failure
// aborts the run. Per-part generation failures are collected and the
// remaining parts still run. onProgress, when non-nil, observes every
// progress change.
func (s *Store) Generate(ctx context.Context, target Target, onProgress func(GenerationProgress)) (GenerationProgress, error) {
	if target.Type == TargetAll {
		s.mu.Lock()
		ids := make([]string, 0, len(s.state.Documents))
		for _, doc := range s.state.Documents {
			ids = append(ids, doc.ID)
		}
		s.mu.Unlock()
		if err := s.chunkAll(ctx, ids); err != nil {
			return s.GenerationState(), err
		}
	}

	parts, err := s.targetParts(target)
	if err != nil {
		return s.GenerationState(), err
	}

	s.mu.Lock()
	cfg := s.state.Config
	projectID, taskID := s.state.ProjectID, s.state.TaskID
	s.generation = GenerationProgress{
		Running: true,
		Total:   len(parts) * cfg.PairsPerPart,
		Errors:  []ItemError{},
	}
	progress := s.generation
	s.mu.Unlock()
	if onProgress != nil {
		onProgress(progress)
	}

	props := backend.RunConfigProperties{
		Type:          backend.RunConfigTypeLLM,
		ModelName:     cfg.ModelName,
		ModelProvider: cfg.ModelProvider,
		Temperature:   cfg.Temperature,
	}

	for _, ref := range parts {
		generated, err := s.api.GenerateQnAPairs(ctx, projectID, taskID, backend.GenerateQnARequest{
			PartText:            ref.text,
			NumPairs:            cfg.PairsPerPart,
			Guidance:            cfg.Guidance,
			RunConfigProperties: props,
		})
		if err != nil {
			itemErr := ItemError{
				Document:  ref.documentName,
				PartIndex: ref.partIndex,
				Message:   apperror.FromError(err).Message(),
			}
			s.mu.Lock()
			s.generation.Errors = append(s.generation.Errors, itemErr)
			progress = s.generation
			s.mu.Unlock()
			if onProgress != nil {
				onProgress(progress)
			}
			continue
		}

		pairs := make([]*Pair, 0, len(generated))
		for _, g := range generated {
			pairs = append(pairs, &Pair{
				ID:            uuid.NewString(),
				Question:      g.Question,
				Answer:        g.Answer,
				Generated:     true,
				ModelName:     cfg.ModelName,
				ModelProvider: cfg.ModelProvider,
			})
		}
		s.appendPairs(ctx, ref.documentID, ref.partIndex, pairs)

		s.mu.Lock()
		s.generation.Generated += len(pairs)
		progress = s.generation
		s.mu.Unlock()
		if onProgress != nil {
			onProgress(progress)
		}
	}

	s.mu.Lock()
	s.generation.Running = false
	progress = s.generation
	s.mu.Unlock()
	if onProgress != nil {
		onProgress(progress)
	}
	return progress, nil
}

func (s *Store) targetParts(target Target) ([]partRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	collect := func(doc *DocumentNode) []partRef {
		refs := make([]partRef, 0, len(doc.Parts))
		for i, part := range doc.Parts {
			refs = append(refs, partRef{
				documentID:   doc.ID,
				documentName: doc.Name,
				partIndex:    i,
				text:         part.PreviewText,
			})
		}
		return refs
	}

	switch target.Type {
	case TargetAll:
		var refs []partRef
		for _, doc := range s.state.Documents {
			refs = append(refs, collect(doc)...)
		}
		return refs, nil
	case TargetDocument:
		doc := s.state.document(target.DocumentID)
		if doc == nil {
			return nil, apperror.ErrDocumentNotFound
		}
		return collect(doc), nil
	case TargetPart:
		doc := s.state.document(target.DocumentID)
		if doc == nil {
			return nil, apperror.ErrDocumentNotFound
		}
		if target.PartIndex < 0 || target.PartIndex >= len(doc.Parts) {
			return nil, apperror.ErrPartNotFound
		}
		part := doc.Parts[target.PartIndex]
		return []partRef{{
			documentID:   doc.ID,
			documentName: doc.Name,
			partIndex:    target.PartIndex,
			text:         part.PreviewText,
		}}, nil
	default:
		return nil, fmt.Errorf("unknown generation target type: %q", target.Type)
	}
}

func (s *Store) appendPairs(ctx context.Context, documentID string, partIndex int, pairs []*Pair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.state.document(documentID)
	if doc == nil || partIndex < 0 || partIndex >= len(doc.Parts) {
		return
	}
	part := doc.Parts[partIndex]
	part.QAPairs = append(part.QAPairs, pairs...)
	_ = s.persistLocked(ctx)
}
