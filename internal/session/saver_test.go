package session

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-taskbench/pkg/backend"
)

func seedGeneratedPairs(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()
	d := doc("d1", "Doc 1")
	d.Parts = []*DocPart{{
		ID:          "d1-p0",
		PreviewText: "alpha",
		QAPairs: []*Pair{
			{ID: "pair1", Question: "q1", Answer: "a1", Generated: true, ModelName: "m", ModelProvider: "p"},
			{ID: "pair2", Question: "q2", Answer: "a2", Generated: true, ModelName: "m", ModelProvider: "p"},
			{ID: "pair3", Question: "q3", Answer: "a3", Generated: true, ModelName: "m", ModelProvider: "p"},
		},
	}}
	require.NoError(t, store.AddDocuments(ctx, []*DocumentNode{d}))
	require.NoError(t, store.MarkExtractionComplete(ctx))
	require.NoError(t, store.SetSplits(ctx, map[string]float64{"train": 0.8, "test": 0.2}))
}

func TestSaveAllPersistsEveryUnsavedPair(t *testing.T) {
	store, api, _ := newTestStore(t)
	seedGeneratedPairs(t, store)

	var updates []SaveProgress
	progress, err := store.SaveAll(context.Background(),
		func(p SaveProgress) { updates = append(updates, p) })
	require.NoError(t, err)

	assert.Equal(t, 3, progress.Total)
	assert.Equal(t, 3, progress.Completed)
	assert.Equal(t, 3, progress.Saved)
	assert.Empty(t, progress.Errors)
	assert.False(t, progress.Running)
	require.NotEmpty(t, updates)
	assert.True(t, updates[0].Running)

	state := store.Snapshot()
	for _, pair := range state.Documents[0].Parts[0].QAPairs {
		require.NotNil(t, pair.SavedID)
	}

	// Every save request carried one of the configured split tags.
	for _, call := range api.saveCalls {
		assert.Contains(t, []string{"train", "test"}, call.SplitTag)
	}
}

func TestSaveAllSkipsAlreadySavedPairs(t *testing.T) {
	store, api, _ := newTestStore(t)
	seedGeneratedPairs(t, store)

	// After a full save, a second run finds nothing left to send.
	_, err := store.SaveAll(context.Background(), nil)
	require.NoError(t, err)
	firstRunCalls := len(api.saveCalls)

	progress, err := store.SaveAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.Total)
	assert.Len(t, api.saveCalls, firstRunCalls)
}

func TestSaveAllCollectsErrorsAndContinues(t *testing.T) {
	store, api, _ := newTestStore(t)
	seedGeneratedPairs(t, store)

	api.saveFn = func(req backend.SavePairRequest) (string, error) {
		if req.Question == "q2" {
			return "", errors.New("backend rejected pair")
		}
		return "saved-" + req.Question, nil
	}

	progress, err := store.SaveAll(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, progress.Completed)
	assert.Equal(t, 2, progress.Saved)
	require.Len(t, progress.Errors, 1)
	assert.Contains(t, progress.Errors[0], "backend rejected pair")

	// The failed pair remains unsaved so the user can retry manually.
	pairs := store.Snapshot().Documents[0].Parts[0].QAPairs
	assert.NotNil(t, pairs[0].SavedID)
	assert.Nil(t, pairs[1].SavedID)
	assert.NotNil(t, pairs[2].SavedID)
}

func TestSavedIDNeverReverts(t *testing.T) {
	store, _, _ := newTestStore(t)
	seedGeneratedPairs(t, store)
	ctx := context.Background()

	_, err := store.SaveAll(ctx, nil)
	require.NoError(t, err)

	first := *store.Snapshot().Documents[0].Parts[0].QAPairs[0].SavedID

	// A second attempted write of the same pair is a no-op.
	store.mu.Lock()
	store.setSavedIDLocked(ctx, saveRef{documentID: "d1", partIndex: 0, pair: Pair{ID: "pair1"}}, "other-id")
	store.mu.Unlock()

	assert.Equal(t, first, *store.Snapshot().Documents[0].Parts[0].QAPairs[0].SavedID)
}

func TestPickSplitTagWeightedSampling(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	splits := map[string]float64{"train": 0.8, "test": 0.2}

	counts := map[string]int{}
	for i := 0; i < 10000; i++ {
		counts[pickSplitTag(rng, splits)]++
	}

	assert.InDelta(t, 8000, counts["train"], 300)
	assert.InDelta(t, 2000, counts["test"], 300)
	assert.Equal(t, "", pickSplitTag(rng, nil))
}
