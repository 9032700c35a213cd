package session

import (
	"context"
	"sync"

	"llm-taskbench/pkg/backend"
	"llm-taskbench/pkg/utils"
)

const defaultChunkWorkers = 5

// chunkAll (re)chunks every target document through the backend with a
// bounded worker pool. Documents are admitted FIFO; completion order
// races. A failed chunk call stops that worker but the others drain
// their share of the queue; the first error is reported to the caller.
func (s *Store) chunkAll(ctx context.Context, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}

	s.mu.Lock()
	projectID := s.state.ProjectID
	chunkSize := s.state.Config.ChunkSize
	chunkOverlap := s.state.Config.ChunkOverlap
	s.mu.Unlock()

	jobs := make(chan string, len(documentIDs))
	for _, id := range documentIDs {
		jobs <- id
	}
	close(jobs)

	workers := s.workers
	if workers > len(documentIDs) {
		workers = len(documentIDs)
	}

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for documentID := range jobs {
				chunks, err := s.api.ChunkDocument(ctx, projectID, documentID, chunkSize, chunkOverlap)
				if err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
					s.logger.Error("Session", "Chunking failed", map[string]interface{}{
						"document_id": documentID,
						"error":       err.Error(),
					})
					// This worker stops; remaining queue items are
					// picked up by the others.
					return
				}
				s.replaceParts(ctx, documentID, chunks)
			}
		}()
	}
	wg.Wait()

	return firstErr
}

// replaceParts swaps a document's parts in one store mutation so
// readers never observe a half-chunked document.
func (s *Store) replaceParts(ctx context.Context, documentID string, chunks []backend.Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.state.document(documentID)
	if doc == nil {
		return
	}

	parts := make([]*DocPart, 0, len(chunks))
	newIDs := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, &DocPart{
			ID:          chunk.ID,
			PreviewText: chunk.Text,
			QAPairs:     []*Pair{},
		})
		newIDs = append(newIDs, chunk.ID)
	}

	oldIDs := make([]string, 0, len(doc.Parts))
	for _, part := range doc.Parts {
		oldIDs = append(oldIDs, part.ID)
	}
	// Identical chunk ids mean the text did not change; keep existing
	// parts and their pairs.
	if len(oldIDs) > 0 && utils.ArraysEqual(oldIDs, newIDs) {
		return
	}

	doc.Parts = parts
	_ = s.persistLocked(ctx)
}
