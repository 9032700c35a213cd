package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-taskbench/pkg/backend"
)

func seedChunkedDocs(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()
	d1 := doc("d1", "Doc 1")
	d1.Parts = []*DocPart{
		{ID: "d1-p0", PreviewText: "alpha"},
		{ID: "d1-p1", PreviewText: "beta"},
	}
	d2 := doc("d2", "Doc 2")
	d2.Parts = []*DocPart{{ID: "d2-p0", PreviewText: "gamma"}}
	require.NoError(t, store.AddDocuments(ctx, []*DocumentNode{d1, d2}))
	require.NoError(t, store.MarkExtractionComplete(ctx))
	require.NoError(t, store.SetConfig(ctx, GenerationConfig{
		PairsPerPart:  2,
		ChunkSize:     DefaultChunkSize,
		ChunkOverlap:  DefaultChunkOverlap,
		ModelName:     "gpt-4o-mini",
		ModelProvider: "openai",
	}))
}

func TestGenerateAppendsPairsAndTracksProgress(t *testing.T) {
	store, api, _ := newTestStore(t)
	seedChunkedDocs(t, store)

	api.generateFn = func(req backend.GenerateQnARequest) ([]backend.GeneratedPair, error) {
		assert.Equal(t, 2, req.NumPairs)
		return []backend.GeneratedPair{
			{Question: "Q about " + req.PartText, Answer: "A"},
			{Question: "Q2 about " + req.PartText, Answer: "A2"},
		}, nil
	}

	var updates []GenerationProgress
	progress, err := store.Generate(context.Background(), Target{Type: TargetDocument, DocumentID: "d1"},
		func(p GenerationProgress) { updates = append(updates, p) })
	require.NoError(t, err)

	assert.Equal(t, 4, progress.Total) // 2 parts x 2 pairs
	assert.Equal(t, 4, progress.Generated)
	assert.False(t, progress.Running)
	assert.Empty(t, progress.Errors)

	// First update announces the run, the last one closes it.
	require.NotEmpty(t, updates)
	assert.True(t, updates[0].Running)
	assert.Equal(t, 0, updates[0].Generated)

	state := store.Snapshot()
	part := state.Documents[0].Parts[0]
	require.Len(t, part.QAPairs, 2)
	assert.True(t, part.QAPairs[0].Generated)
	assert.Equal(t, "gpt-4o-mini", part.QAPairs[0].ModelName)
	assert.Equal(t, "openai", part.QAPairs[0].ModelProvider)
	assert.Nil(t, part.QAPairs[0].SavedID)
	assert.True(t, strings.HasPrefix(part.QAPairs[0].Question, "Q about "))

	// Doc 2 was not targeted.
	assert.Empty(t, state.Documents[1].Parts[0].QAPairs)
}

func TestGenerateBestEffortCollectsPartErrors(t *testing.T) {
	store, api, _ := newTestStore(t)
	seedChunkedDocs(t, store)

	// Rechunking yields the seeded chunk ids, so the seeded parts and
	// their texts survive the "all" run.
	api.chunkFn = func(documentID string) ([]backend.Chunk, error) {
		if documentID == "d1" {
			return []backend.Chunk{{ID: "d1-p0", Text: "alpha"}, {ID: "d1-p1", Text: "beta"}}, nil
		}
		return []backend.Chunk{{ID: "d2-p0", Text: "gamma"}}, nil
	}
	api.generateFn = func(req backend.GenerateQnARequest) ([]backend.GeneratedPair, error) {
		if req.PartText == "beta" {
			return nil, errors.New("model refused")
		}
		return []backend.GeneratedPair{{Question: "q", Answer: "a"}, {Question: "q2", Answer: "a2"}}, nil
	}

	progress, err := store.Generate(context.Background(), Target{Type: TargetAll}, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, progress.Generated) // d1-p0 and d2-p0 succeeded
	require.Len(t, progress.Errors, 1)
	assert.Equal(t, "Doc 1", progress.Errors[0].Document)
	assert.Equal(t, 1, progress.Errors[0].PartIndex)
	assert.Contains(t, progress.Errors[0].Message, "model refused")
}

func TestGenerateAllRechunksFirst(t *testing.T) {
	store, api, _ := newTestStore(t)
	seedChunkedDocs(t, store)

	_, err := store.Generate(context.Background(), Target{Type: TargetAll}, nil)
	require.NoError(t, err)

	// Both documents went through the chunk endpoint again.
	assert.ElementsMatch(t, []string{"d1", "d2"}, api.chunkCalls)

	// Parts were replaced by the fake's single chunk per doc.
	state := store.Snapshot()
	assert.Len(t, state.Documents[0].Parts, 1)
}

func TestGenerateAllAbortsOnChunkFailure(t *testing.T) {
	store, api, _ := newTestStore(t)
	seedChunkedDocs(t, store)

	boom := errors.New("chunking broke")
	api.chunkFn = func(string) ([]backend.Chunk, error) { return nil, boom }

	_, err := store.Generate(context.Background(), Target{Type: TargetAll}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestGenerateSinglePartTarget(t *testing.T) {
	store, api, _ := newTestStore(t)
	seedChunkedDocs(t, store)

	var texts []string
	api.generateFn = func(req backend.GenerateQnARequest) ([]backend.GeneratedPair, error) {
		texts = append(texts, req.PartText)
		return []backend.GeneratedPair{{Question: "q", Answer: "a"}}, nil
	}

	progress, err := store.Generate(context.Background(),
		Target{Type: TargetPart, DocumentID: "d1", PartIndex: 1}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"beta"}, texts)
	assert.Equal(t, 2, progress.Total) // 1 part x 2 pairs requested
	assert.Equal(t, 1, progress.Generated)
}

func TestGenerateUnknownTarget(t *testing.T) {
	store, _, _ := newTestStore(t)
	seedChunkedDocs(t, store)

	_, err := store.Generate(context.Background(), Target{Type: "everything"}, nil)
	assert.ErrorContains(t, err, "unknown generation target")
}
