package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-taskbench/pkg/backend"
)

func TestChunkAllReplacesPartsPerDocument(t *testing.T) {
	store, api, _ := newTestStore(t)
	ctx := context.Background()

	d := doc("d1", "Doc 1")
	d.Parts = []*DocPart{{ID: "stale", PreviewText: "old part"}}
	require.NoError(t, store.AddDocuments(ctx, []*DocumentNode{d, doc("d2", "Doc 2")}))

	api.chunkFn = func(documentID string) ([]backend.Chunk, error) {
		return []backend.Chunk{
			{ID: documentID + "-c1", Text: "one"},
			{ID: documentID + "-c2", Text: "two"},
		}, nil
	}

	require.NoError(t, store.chunkAll(ctx, []string{"d1", "d2"}))

	state := store.Snapshot()
	require.Len(t, state.Documents[0].Parts, 2)
	assert.Equal(t, "d1-c1", state.Documents[0].Parts[0].ID)
	assert.Empty(t, state.Documents[0].Parts[0].QAPairs)
	require.Len(t, state.Documents[1].Parts, 2)
}

func TestChunkAllKeepsPairsWhenChunksUnchanged(t *testing.T) {
	store, api, _ := newTestStore(t)
	ctx := context.Background()

	d := doc("d1", "Doc 1")
	d.Parts = []*DocPart{{ID: "d1-c1", PreviewText: "one", QAPairs: []*Pair{{ID: "p1", Question: "q"}}}}
	require.NoError(t, store.AddDocuments(ctx, []*DocumentNode{d}))

	api.chunkFn = func(documentID string) ([]backend.Chunk, error) {
		return []backend.Chunk{{ID: "d1-c1", Text: "one"}}, nil
	}

	require.NoError(t, store.chunkAll(ctx, []string{"d1"}))

	state := store.Snapshot()
	require.Len(t, state.Documents[0].Parts, 1)
	assert.Len(t, state.Documents[0].Parts[0].QAPairs, 1)
}

func TestChunkAllBoundsConcurrency(t *testing.T) {
	store, api, _ := newTestStore(t)
	ctx := context.Background()

	var docs []*DocumentNode
	var ids []string
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("d%d", i)
		docs = append(docs, doc(id, id))
		ids = append(ids, id)
	}
	require.NoError(t, store.AddDocuments(ctx, docs))

	var inFlight, peak int32
	var mu sync.Mutex
	api.chunkFn = func(documentID string) ([]backend.Chunk, error) {
		n := atomic.AddInt32(&inFlight, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		defer atomic.AddInt32(&inFlight, -1)
		return []backend.Chunk{{ID: documentID + "-c", Text: "t"}}, nil
	}

	require.NoError(t, store.chunkAll(ctx, ids))
	assert.LessOrEqual(t, peak, int32(defaultChunkWorkers))
}

func TestChunkAllPartialFailurePropagatesFirstError(t *testing.T) {
	store, api, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddDocuments(ctx, []*DocumentNode{
		doc("d1", "Doc 1"), doc("d2", "Doc 2"), doc("d3", "Doc 3"),
	}))

	boom := errors.New("chunker exploded")
	api.chunkFn = func(documentID string) ([]backend.Chunk, error) {
		if documentID == "d2" {
			return nil, boom
		}
		return []backend.Chunk{{ID: documentID + "-c", Text: "t"}}, nil
	}

	err := store.chunkAll(ctx, []string{"d1", "d2", "d3"})
	assert.ErrorIs(t, err, boom)

	// The failing doc keeps its (empty) parts; the others were chunked.
	state := store.Snapshot()
	assert.NotEmpty(t, state.Documents[0].Parts)
	assert.Empty(t, state.Documents[1].Parts)
	assert.NotEmpty(t, state.Documents[2].Parts)
}
