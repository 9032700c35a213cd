package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-taskbench/pkg/apperror"
)

func llmProps() RunConfigProperties {
	return RunConfigProperties{
		Type:          RunConfigTypeLLM,
		ModelName:     "gpt-4o-mini",
		ModelProvider: "openai",
	}
}

func TestGenerateQnAPairsCoercesNonStringFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects/p1/tasks/t1/generate_qna", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		fmt.Fprint(w, `{"generated_qna_pairs": [
			{"question": "What is Go?", "answer": "A language"},
			{"question": {"text": "nested"}, "answer": 42}
		]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	pairs, err := client.GenerateQnAPairs(context.Background(), "p1", "t1", GenerateQnARequest{
		PartText:            "some text",
		NumPairs:            2,
		RunConfigProperties: llmProps(),
	})
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	assert.Equal(t, "What is Go?", pairs[0].Question)
	assert.Equal(t, "A language", pairs[0].Answer)
	assert.Equal(t, `{"text": "nested"}`, pairs[1].Question)
	assert.Equal(t, "42", pairs[1].Answer)
}

func TestGenerateQnAPairsRejectsUnknownRunConfigType(t *testing.T) {
	client := NewClient("http://unused", "")
	_, err := client.GenerateQnAPairs(context.Background(), "p1", "t1", GenerateQnARequest{
		RunConfigProperties: RunConfigProperties{Type: "mystery"},
	})
	assert.ErrorContains(t, err, "unknown run config type")
}

func TestBackendErrorNormalization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"detail": [{"msg": "field required", "loc": ["body", "question"]}]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.SavePair(context.Background(), "p1", "t1", SavePairRequest{})
	require.Error(t, err)

	appErr := apperror.FromError(err)
	assert.Equal(t, 422, appErr.Status)
	assert.Equal(t, []string{"field required"}, appErr.Messages)
}

func TestChunkDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects/p1/documents/d1/chunk", r.URL.Path)
		fmt.Fprint(w, `{"chunks": [{"id": "c1", "text": "first"}, {"id": "c2", "text": "second"}]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	chunks, err := client.ChunkDocument(context.Background(), "p1", "d1", 512, 64)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "first", chunks[0].Text)
}

func TestProgressStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"progress\": 1, \"total\": 3, \"errors\": []}\n\n")
		flusher.Flush()
		fmt.Fprint(w, "data: {\"progress\": 3, \"total\": 3, \"errors\": [\"doc2 failed\"]}\n\n")
		flusher.Flush()
		fmt.Fprint(w, "data: complete\n\n")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	stream, err := client.ExtractionProgress(context.Background(), "p1", "e1")
	require.NoError(t, err)
	defer stream.Close()

	var events []ProgressEvent
	for event := range stream.Events() {
		events = append(events, event)
	}

	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].Progress)
	assert.Equal(t, 3, events[1].Progress)
	assert.Equal(t, []string{"doc2 failed"}, events[1].Errors)
	assert.NoError(t, stream.Err())
}

func TestProgressStreamEarlyClose(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"progress\": 1, \"total\": 10, \"errors\": []}\n\n")
		flusher.Flush()
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	client := NewClient(srv.URL, "")
	stream, err := client.ExtractionProgress(context.Background(), "p1", "e1")
	require.NoError(t, err)

	<-stream.Events()
	stream.Close()
}
