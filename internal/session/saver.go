package session

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"llm-taskbench/pkg/apperror"
	"llm-taskbench/pkg/backend"
)

// SaveProgress is the derived state for the "save all" dialog.
type SaveProgress struct {
	Running   bool     `json:"running"`
	Completed int      `json:"completed"`
	Saved     int      `json:"saved"`
	Total     int      `json:"total"`
	Errors    []string `json:"errors"`
}

// SaveState returns the progress of the current or last bulk save.
func (s *Store) SaveState() SaveProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save
}

type saveRef struct {
	documentID string
	partIndex  int
	pair       Pair
}

// SaveAll persists every pair that has no SavedID yet. Each pair is
// assigned a split tag by weighted sampling over the splits map; a
// failed save is recorded and the rest of the queue continues. The
// run never retries.
func (s *Store) SaveAll(ctx context.Context, onProgress func(SaveProgress)) (SaveProgress, error) {
	s.mu.Lock()
	projectID, taskID := s.state.ProjectID, s.state.TaskID
	splits := make(map[string]float64, len(s.state.Splits))
	for tag, p := range s.state.Splits {
		splits[tag] = p
	}

	var queue []saveRef
	for _, doc := range s.state.Documents {
		for i, part := range doc.Parts {
			for _, pair := range part.QAPairs {
				if pair.SavedID == nil {
					queue = append(queue, saveRef{documentID: doc.ID, partIndex: i, pair: *pair})
				}
			}
		}
	}

	s.save = SaveProgress{Running: true, Total: len(queue), Errors: []string{}}
	progress := s.save
	s.mu.Unlock()
	if onProgress != nil {
		onProgress(progress)
	}

	rng := rand.New(rand.NewSource(rand.Int63()))

	for _, ref := range queue {
		tag := pickSplitTag(rng, splits)
		savedID, err := s.api.SavePair(ctx, projectID, taskID, backend.SavePairRequest{
			Question:      ref.pair.Question,
			Answer:        ref.pair.Answer,
			SplitTag:      tag,
			ModelName:     ref.pair.ModelName,
			ModelProvider: ref.pair.ModelProvider,
		})

		s.mu.Lock()
		s.save.Completed++
		if err != nil {
			msg := apperror.FromError(err).Message()
			s.save.Errors = append(s.save.Errors, fmt.Sprintf("failed to save pair %s: %s", ref.pair.ID, msg))
		} else {
			s.setSavedIDLocked(ctx, ref, savedID)
			s.save.Saved++
		}
		progress = s.save
		s.mu.Unlock()
		if onProgress != nil {
			onProgress(progress)
		}
	}

	s.mu.Lock()
	s.save.Running = false
	progress = s.save
	s.mu.Unlock()
	if onProgress != nil {
		onProgress(progress)
	}
	return progress, nil
}

// setSavedIDLocked updates a pair's SavedID in place. The transition
// is monotonic: an already-saved pair is never overwritten.
func (s *Store) setSavedIDLocked(ctx context.Context, ref saveRef, savedID string) {
	doc := s.state.document(ref.documentID)
	if doc == nil || ref.partIndex >= len(doc.Parts) {
		return
	}
	for _, pair := range doc.Parts[ref.partIndex].QAPairs {
		if pair.ID == ref.pair.ID {
			if pair.SavedID == nil {
				pair.SavedID = &savedID
				_ = s.persistLocked(ctx)
			}
			return
		}
	}
}

// pickSplitTag draws a tag with probability proportional to its split.
// Tags are walked in sorted order so the cumulative draw is stable.
// An empty splits map yields the empty tag.
func pickSplitTag(rng *rand.Rand, splits map[string]float64) string {
	if len(splits) == 0 {
		return ""
	}

	tags := make([]string, 0, len(splits))
	total := 0.0
	for tag, p := range splits {
		tags = append(tags, tag)
		total += p
	}
	sort.Strings(tags)

	draw := rng.Float64() * total
	cumulative := 0.0
	for _, tag := range tags {
		cumulative += splits[tag]
		if draw < cumulative {
			return tag
		}
	}
	// Floating point slack: fall back to the last tag.
	return tags[len(tags)-1]
}
