package session

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"time"

	"llm-taskbench/internal/pkg/logger"
	"llm-taskbench/pkg/apperror"
	"llm-taskbench/pkg/backend"
	"llm-taskbench/pkg/utils"
)

// API is the slice of the backend client the wizard needs.
type API interface {
	ChunkDocument(ctx context.Context, projectID, documentID string, chunkSize, chunkOverlap int) ([]backend.Chunk, error)
	GenerateQnAPairs(ctx context.Context, projectID, taskID string, req backend.GenerateQnARequest) ([]backend.GeneratedPair, error)
	SavePair(ctx context.Context, projectID, taskID string, req backend.SavePairRequest) (string, error)
}

// Store owns one wizard's state. All mutations go through it and are
// mirrored to the repository; reads get detached snapshots.
type Store struct {
	mu     sync.Mutex
	state  *State
	repo   Repository
	api    API
	logger logger.ILogger

	// chunking fan-out width
	workers int

	generation GenerationProgress
	save       SaveProgress
}

// NewStore hydrates an existing wizard for the project/task pair or
// starts a fresh one.
func NewStore(ctx context.Context, repo Repository, api API, log logger.ILogger, projectID, taskID string) (*Store, error) {
	state, found, err := repo.Load(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}
	if !found {
		state = newState(projectID, taskID)
		if err := repo.Save(ctx, state); err != nil {
			return nil, err
		}
	}
	return &Store{
		state:   state,
		repo:    repo,
		api:     api,
		logger:  log,
		workers: defaultChunkWorkers,
	}, nil
}

// SetChunkWorkers overrides the chunking fan-out width (default 5).
func (s *Store) SetChunkWorkers(n int) {
	if n > 0 {
		s.workers = n
	}
}

func (s *Store) persistLocked(ctx context.Context) error {
	s.state.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, s.state); err != nil {
		s.logger.Error("Session", "Failed to persist wizard state", map[string]interface{}{
			"project_id": s.state.ProjectID,
			"task_id":    s.state.TaskID,
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

// Snapshot returns a detached copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, _ := json.Marshal(s.state)
	var copy State
	_ = json.Unmarshal(data, &copy)
	return copy
}

// AutoStep is the furthest step the data supports.
func (s *Store) AutoStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.autoStep()
}

// CurrentStep is the user-selected step, never beyond AutoStep.
func (s *Store) CurrentStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentStepLocked()
}

func (s *Store) currentStepLocked() int {
	auto := s.state.autoStep()
	if s.state.CurrentStep > auto {
		return auto
	}
	if s.state.CurrentStep < StepSelectDocuments {
		return StepSelectDocuments
	}
	return s.state.CurrentStep
}

// SetCurrentStep moves the wizard manually. The step is clamped so the
// user can never advance beyond what the data supports.
func (s *Store) SetCurrentStep(ctx context.Context, step int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step < StepSelectDocuments {
		step = StepSelectDocuments
	}
	if auto := s.state.autoStep(); step > auto {
		step = auto
	}
	s.state.CurrentStep = step
	return s.persistLocked(ctx)
}

// AddDocuments appends documents selected for the session, skipping
// ids already present.
func (s *Store) AddDocuments(ctx context.Context, docs []*DocumentNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		if s.state.document(doc.ID) != nil {
			continue
		}
		if doc.Parts == nil {
			doc.Parts = []*DocPart{}
		}
		s.state.Documents = append(s.state.Documents, doc)
	}
	return s.persistLocked(ctx)
}

func (s *Store) SetSelectedTags(ctx context.Context, tags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if utils.SetsEqual(s.state.SelectedTags, tags) {
		return nil
	}
	s.state.SelectedTags = tags
	return s.persistLocked(ctx)
}

func (s *Store) SetExtractor(ctx context.Context, extractorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ExtractorID = extractorID
	return s.persistLocked(ctx)
}

// MarkExtractionComplete records that every selected document has been
// extracted, unlocking the generate step.
func (s *Store) MarkExtractionComplete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ExtractionComplete = true
	for _, doc := range s.state.Documents {
		doc.Extracted = true
	}
	return s.persistLocked(ctx)
}

func (s *Store) SetConfig(ctx context.Context, cfg GenerationConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Config = cfg
	return s.persistLocked(ctx)
}

// SetSplits replaces the dataset splits map. Proportions must sum to 1
// (within 0.001); an empty map clears the splits.
func (s *Store) SetSplits(ctx context.Context, splits map[string]float64) error {
	if len(splits) > 0 {
		sum := 0.0
		for _, p := range splits {
			if p < 0 || p > 1 {
				return apperror.ErrInvalidSplits
			}
			sum += p
		}
		if math.Abs(sum-1) > 0.001 {
			return apperror.ErrInvalidSplits
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if splits == nil {
		splits = map[string]float64{}
	}
	s.state.Splits = splits
	return s.persistLocked(ctx)
}

func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, doc := range s.state.Documents {
		if doc.ID == documentID {
			s.state.Documents = append(s.state.Documents[:i], s.state.Documents[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	return apperror.ErrDocumentNotFound
}

func (s *Store) RemovePart(ctx context.Context, documentID string, partIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.state.document(documentID)
	if doc == nil {
		return apperror.ErrDocumentNotFound
	}
	if partIndex < 0 || partIndex >= len(doc.Parts) {
		return apperror.ErrPartNotFound
	}
	doc.Parts = append(doc.Parts[:partIndex], doc.Parts[partIndex+1:]...)
	return s.persistLocked(ctx)
}

func (s *Store) RemovePair(ctx context.Context, documentID string, partIndex int, pairID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.state.document(documentID)
	if doc == nil {
		return apperror.ErrDocumentNotFound
	}
	if partIndex < 0 || partIndex >= len(doc.Parts) {
		return apperror.ErrPartNotFound
	}
	part := doc.Parts[partIndex]
	for i, pair := range part.QAPairs {
		if pair.ID == pairID {
			part.QAPairs = append(part.QAPairs[:i], part.QAPairs[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	return apperror.ErrPairNotFound
}

// ClearAll resets the wizard and removes the persisted entry.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	projectID, taskID := s.state.ProjectID, s.state.TaskID
	s.state = newState(projectID, taskID)
	s.generation = GenerationProgress{}
	s.save = SaveProgress{}
	return s.repo.Delete(ctx, projectID, taskID)
}

// PreviewChunks shows how the current chunk settings would slice a
// piece of text, without a backend round trip.
func (s *Store) PreviewChunks(text string) []string {
	s.mu.Lock()
	cfg := s.state.Config
	s.mu.Unlock()
	return utils.SplitText(text, cfg.ChunkSize, cfg.ChunkOverlap)
}
