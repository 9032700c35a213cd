package service

import (
	"context"
	"fmt"
	"sync"

	"llm-taskbench/internal/dto"
	"llm-taskbench/internal/pkg/logger"
	"llm-taskbench/internal/session"
	"llm-taskbench/internal/websocket"
	"llm-taskbench/pkg/apperror"
	"llm-taskbench/pkg/backend"
	"llm-taskbench/pkg/events"
	pktNats "llm-taskbench/pkg/nats"
	"llm-taskbench/pkg/syncutil"
	"llm-taskbench/pkg/validation"
)

// BackendAPI is the slice of the backend client the wizard service
// orchestrates.
type BackendAPI interface {
	session.API
	ListDocuments(ctx context.Context, projectID string, tags []string) ([]backend.Document, error)
	RunExtractor(ctx context.Context, projectID, extractorID string, documentIDs []string) error
	ExtractionProgress(ctx context.Context, projectID, extractorID string) (*backend.ProgressStream, error)
}

type ISessionService interface {
	GetState(ctx context.Context, projectID, taskID string) (*dto.SessionStateResponse, error)
	AddDocuments(ctx context.Context, projectID, taskID string, req *dto.AddDocumentsRequest) (*dto.AddDocumentsResponse, error)
	SetExtractor(ctx context.Context, projectID, taskID string, extractorID string) error
	MarkExtractionComplete(ctx context.Context, projectID, taskID string) error
	RunExtraction(ctx context.Context, projectID, taskID string, documentIDs []string) ([]string, error)
	SetSplits(ctx context.Context, projectID, taskID string, splits map[string]float64) error
	SetStep(ctx context.Context, projectID, taskID string, step int) (*dto.SessionStateResponse, error)
	DeleteDocument(ctx context.Context, projectID, taskID, documentID string) error
	RemovePart(ctx context.Context, projectID, taskID, documentID string, partIndex int) error
	RemovePair(ctx context.Context, projectID, taskID, documentID string, partIndex int, pairID string) error
	Generate(ctx context.Context, projectID, taskID string, req *dto.GenerateRequest) (session.GenerationProgress, error)
	SaveAll(ctx context.Context, projectID, taskID string) (session.SaveProgress, error)
	GenerationState(ctx context.Context, projectID, taskID string) (session.GenerationProgress, error)
	SaveState(ctx context.Context, projectID, taskID string) (session.SaveProgress, error)
	PreviewChunks(ctx context.Context, projectID, taskID, text string) ([]string, error)
	ClearAll(ctx context.Context, projectID, taskID string) error
}

type sessionService struct {
	repo             session.Repository
	api              BackendAPI
	logger           logger.ILogger
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher

	// caps concurrent extraction progress streams
	streams *syncutil.Semaphore

	chunkWorkers int

	// one live store per wizard; destroyed on ClearAll
	mu     sync.Mutex
	stores map[string]*session.Store
}

func NewSessionService(
	repo session.Repository,
	api BackendAPI,
	log logger.ILogger,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	chunkWorkers int,
	maxProgressStreams int,
) ISessionService {
	return &sessionService{
		repo:             repo,
		api:              api,
		logger:           log,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		streams:          syncutil.NewSemaphore(maxProgressStreams),
		chunkWorkers:     chunkWorkers,
		stores:           make(map[string]*session.Store),
	}
}

func sessionKey(projectID, taskID string) string {
	return projectID + ":" + taskID
}

// store returns the live wizard for the project/task, hydrating it
// from the repository on first access.
func (s *sessionService) store(ctx context.Context, projectID, taskID string) (*session.Store, error) {
	key := sessionKey(projectID, taskID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if store, ok := s.stores[key]; ok {
		return store, nil
	}

	store, err := session.NewStore(ctx, s.repo, s.api, s.logger, projectID, taskID)
	if err != nil {
		return nil, err
	}
	store.SetChunkWorkers(s.chunkWorkers)
	s.stores[key] = store
	return store, nil
}

func (s *sessionService) stateResponse(store *session.Store) *dto.SessionStateResponse {
	return &dto.SessionStateResponse{
		State:       store.Snapshot(),
		CurrentStep: store.CurrentStep(),
		AutoStep:    store.AutoStep(),
	}
}

func (s *sessionService) GetState(ctx context.Context, projectID, taskID string) (*dto.SessionStateResponse, error) {
	store, err := s.store(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}
	return s.stateResponse(store), nil
}

// AddDocuments pulls the backend documents carrying the requested tags
// into the session.
func (s *sessionService) AddDocuments(ctx context.Context, projectID, taskID string, req *dto.AddDocumentsRequest) (*dto.AddDocumentsResponse, error) {
	store, err := s.store(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}

	documents, err := s.api.ListDocuments(ctx, projectID, req.Tags)
	if err != nil {
		return nil, err
	}

	nodes := make([]*session.DocumentNode, 0, len(documents))
	for _, doc := range documents {
		nodes = append(nodes, &session.DocumentNode{
			ID:        doc.ID,
			Name:      doc.Name,
			Tags:      doc.Tags,
			Extracted: doc.Extracted,
		})
	}

	before := len(store.Snapshot().Documents)
	if err := store.AddDocuments(ctx, nodes); err != nil {
		return nil, err
	}
	if err := store.SetSelectedTags(ctx, mergeTags(store.Snapshot().SelectedTags, req.Tags)); err != nil {
		return nil, err
	}

	return &dto.AddDocumentsResponse{Added: len(store.Snapshot().Documents) - before}, nil
}

func mergeTags(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	merged := make([]string, 0, len(existing)+len(incoming))
	for _, tag := range existing {
		if _, ok := seen[tag]; !ok {
			seen[tag] = struct{}{}
			merged = append(merged, tag)
		}
	}
	for _, tag := range incoming {
		if _, ok := seen[tag]; !ok {
			seen[tag] = struct{}{}
			merged = append(merged, tag)
		}
	}
	return merged
}

func (s *sessionService) SetExtractor(ctx context.Context, projectID, taskID, extractorID string) error {
	store, err := s.store(ctx, projectID, taskID)
	if err != nil {
		return err
	}
	return store.SetExtractor(ctx, extractorID)
}

// MarkExtractionComplete flags the session as extracted without running
// anything, for documents extracted outside the wizard.
func (s *sessionService) MarkExtractionComplete(ctx context.Context, projectID, taskID string) error {
	store, err := s.store(ctx, projectID, taskID)
	if err != nil {
		return err
	}
	return store.MarkExtractionComplete(ctx)
}

// RunExtraction starts the configured extractor over the session's
// documents and relays the backend's progress stream to watchers. On a
// clean completion the session is marked extraction-complete; item
// errors reported by the stream are returned for inline display.
func (s *sessionService) RunExtraction(ctx context.Context, projectID, taskID string, documentIDs []string) ([]string, error) {
	store, err := s.store(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}

	state := store.Snapshot()
	if state.ExtractorID == "" {
		return nil, apperror.WithStatus(400, "No extractor selected")
	}
	if len(documentIDs) == 0 {
		for _, doc := range state.Documents {
			documentIDs = append(documentIDs, doc.ID)
		}
	}
	if len(documentIDs) == 0 {
		return nil, apperror.WithStatus(400, "No documents to extract")
	}

	if err := s.api.RunExtractor(ctx, projectID, state.ExtractorID, documentIDs); err != nil {
		return nil, err
	}

	s.streams.Acquire()
	defer s.streams.Release()

	stream, err := s.api.ExtractionProgress(ctx, projectID, state.ExtractorID)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	key := sessionKey(projectID, taskID)
	var itemErrors []string
	for event := range stream.Events() {
		itemErrors = event.Errors
		s.publisherService.PublishProgress(websocket.ProgressMessage{
			Kind:    "extraction",
			Session: key,
			Data:    event,
		})
	}
	if err := stream.Err(); err != nil {
		return itemErrors, fmt.Errorf("extraction progress stream failed: %w", err)
	}

	if err := store.MarkExtractionComplete(ctx); err != nil {
		return itemErrors, err
	}
	return itemErrors, nil
}

func (s *sessionService) SetSplits(ctx context.Context, projectID, taskID string, splits map[string]float64) error {
	store, err := s.store(ctx, projectID, taskID)
	if err != nil {
		return err
	}
	return store.SetSplits(ctx, splits)
}

func (s *sessionService) SetStep(ctx context.Context, projectID, taskID string, step int) (*dto.SessionStateResponse, error) {
	store, err := s.store(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}
	if err := store.SetCurrentStep(ctx, step); err != nil {
		return nil, err
	}
	return s.stateResponse(store), nil
}

func (s *sessionService) DeleteDocument(ctx context.Context, projectID, taskID, documentID string) error {
	store, err := s.store(ctx, projectID, taskID)
	if err != nil {
		return err
	}
	return store.DeleteDocument(ctx, documentID)
}

func (s *sessionService) RemovePart(ctx context.Context, projectID, taskID, documentID string, partIndex int) error {
	store, err := s.store(ctx, projectID, taskID)
	if err != nil {
		return err
	}
	return store.RemovePart(ctx, documentID, partIndex)
}

func (s *sessionService) RemovePair(ctx context.Context, projectID, taskID, documentID string, partIndex int, pairID string) error {
	store, err := s.store(ctx, projectID, taskID)
	if err != nil {
		return err
	}
	return store.RemovePair(ctx, documentID, partIndex, pairID)
}

func (s *sessionService) Generate(ctx context.Context, projectID, taskID string, req *dto.GenerateRequest) (session.GenerationProgress, error) {
	store, err := s.store(ctx, projectID, taskID)
	if err != nil {
		return session.GenerationProgress{}, err
	}

	if req.Config != nil {
		if err := validateGenerationConfig(req.Config); err != nil {
			return session.GenerationProgress{}, err
		}
		if err := store.SetConfig(ctx, *req.Config); err != nil {
			return session.GenerationProgress{}, err
		}
	}

	key := sessionKey(projectID, taskID)
	return store.Generate(ctx, req.Target, func(p session.GenerationProgress) {
		s.publisherService.PublishProgress(websocket.ProgressMessage{
			Kind:    "generation",
			Session: key,
			Data:    p,
		})
	})
}

func validateGenerationConfig(cfg *session.GenerationConfig) error {
	if err := validation.ValidateNumber(cfg.PairsPerPart, 1, 100, true, false, "Pairs per part"); err != nil {
		return apperror.WithStatus(400, err.Error())
	}
	if err := validation.ValidateNumber(cfg.ChunkSize, 1, 100000, true, false, "Chunk size"); err != nil {
		return apperror.WithStatus(400, err.Error())
	}
	if err := validation.ValidateNumber(cfg.ChunkOverlap, 0, float64(cfg.ChunkSize), true, false, "Chunk overlap"); err != nil {
		return apperror.WithStatus(400, err.Error())
	}
	var temp interface{}
	if cfg.Temperature != nil {
		temp = *cfg.Temperature
	}
	if err := validation.ValidateNumber(temp, 0, 2, false, true, "Temperature"); err != nil {
		return apperror.WithStatus(400, err.Error())
	}
	return nil
}

func (s *sessionService) SaveAll(ctx context.Context, projectID, taskID string) (session.SaveProgress, error) {
	store, err := s.store(ctx, projectID, taskID)
	if err != nil {
		return session.SaveProgress{}, err
	}

	key := sessionKey(projectID, taskID)
	progress, err := store.SaveAll(ctx, func(p session.SaveProgress) {
		s.publisherService.PublishProgress(websocket.ProgressMessage{
			Kind:    "save",
			Session: key,
			Data:    p,
		})
	})
	if err != nil {
		return progress, err
	}

	if s.eventPublisher != nil {
		evt := events.PairsSaved(projectID, taskID, progress.Saved, len(progress.Errors))
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("Session", "Failed to publish PAIRS_SAVED event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return progress, nil
}

func (s *sessionService) GenerationState(ctx context.Context, projectID, taskID string) (session.GenerationProgress, error) {
	store, err := s.store(ctx, projectID, taskID)
	if err != nil {
		return session.GenerationProgress{}, err
	}
	return store.GenerationState(), nil
}

func (s *sessionService) SaveState(ctx context.Context, projectID, taskID string) (session.SaveProgress, error) {
	store, err := s.store(ctx, projectID, taskID)
	if err != nil {
		return session.SaveProgress{}, err
	}
	return store.SaveState(), nil
}

func (s *sessionService) PreviewChunks(ctx context.Context, projectID, taskID, text string) ([]string, error) {
	store, err := s.store(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}
	return store.PreviewChunks(text), nil
}

// ClearAll resets the wizard and drops the live store, ending its
// lifecycle.
func (s *sessionService) ClearAll(ctx context.Context, projectID, taskID string) error {
	store, err := s.store(ctx, projectID, taskID)
	if err != nil {
		return err
	}
	if err := store.ClearAll(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.stores, sessionKey(projectID, taskID))
	s.mu.Unlock()

	if s.eventPublisher != nil {
		evt := events.SessionCleared(projectID, taskID)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("Session", "Failed to publish SESSION_CLEARED event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return nil
}
