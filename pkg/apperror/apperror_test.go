package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorPassesThroughAppError(t *testing.T) {
	orig := WithStatus(422, "bad field").Append("second issue")
	got := FromError(fmt.Errorf("wrapped: %w", orig))
	require.NotNil(t, got)
	assert.Equal(t, 422, got.Status)
	assert.Equal(t, []string{"bad field", "second issue"}, got.Messages)
}

func TestFromErrorUnpacksBackendResponse(t *testing.T) {
	httpErr := &HTTPError{
		StatusCode: 422,
		Body:       []byte(`{"detail": [{"msg": "field required", "loc": ["body", "name"]}]}`),
	}
	got := FromError(httpErr)
	assert.Equal(t, 422, got.Status)
	assert.Equal(t, []string{"field required"}, got.Messages)
}

func TestFromErrorUnpacksPlainDetail(t *testing.T) {
	httpErr := &HTTPError{StatusCode: 404, Body: []byte(`{"detail": "Task not found"}`)}
	got := FromError(httpErr)
	assert.Equal(t, 404, got.Status)
	assert.Equal(t, []string{"Task not found"}, got.Messages)
}

func TestFromErrorSentinelStatuses(t *testing.T) {
	assert.Equal(t, 404, FromError(ErrDocumentNotFound).Status)
	assert.Equal(t, 404, FromError(fmt.Errorf("removing: %w", ErrPairNotFound)).Status)
	assert.Equal(t, 400, FromError(ErrInvalidSplits).Status)
	assert.Equal(t, 500, FromError(errors.New("boom")).Status)
}

func TestFromErrorNil(t *testing.T) {
	assert.Nil(t, FromError(nil))
}

func TestMessageFallback(t *testing.T) {
	assert.Equal(t, "unknown error", (&AppError{}).Message())
	assert.Equal(t, "first", New("first").Append("second").Message())
}
