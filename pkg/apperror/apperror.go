package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors shared across services.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrPartNotFound     = errors.New("part not found")
	ErrPairNotFound     = errors.New("pair not found")
	ErrInvalidSplits    = errors.New("split proportions must sum to 1")
	ErrNoSplits         = errors.New("no dataset splits configured")
)

// AppError is the normalized application error. It carries one or more
// human-readable messages so partial-failure flows can surface every
// item that went wrong, plus an optional HTTP status hint for the
// gateway boundary.
type AppError struct {
	Messages []string
	Status   int
	cause    error
}

func New(message string) *AppError {
	return &AppError{Messages: []string{message}, Status: 500}
}

func Newf(format string, args ...interface{}) *AppError {
	return New(fmt.Sprintf(format, args...))
}

func WithStatus(status int, message string) *AppError {
	return &AppError{Messages: []string{message}, Status: status}
}

func (e *AppError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Message returns the first (primary) message.
func (e *AppError) Message() string {
	if len(e.Messages) == 0 {
		return "unknown error"
	}
	return e.Messages[0]
}

// Append adds an item-level message without discarding earlier ones.
func (e *AppError) Append(message string) *AppError {
	e.Messages = append(e.Messages, message)
	return e
}

// FromError normalizes any error into an *AppError at the UI/API
// boundary. Backend responses that carry a JSON body with "message" or
// FastAPI-style "detail" entries are unpacked into readable messages;
// everything else falls back to err.Error().
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return &AppError{
			Messages: httpErr.DetailMessages(),
			Status:   httpErr.StatusCode,
			cause:    err,
		}
	}

	return &AppError{Messages: []string{err.Error()}, Status: sentinelStatus(err), cause: err}
}

func sentinelStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrDocumentNotFound),
		errors.Is(err, ErrPartNotFound),
		errors.Is(err, ErrPairNotFound):
		return 404
	case errors.Is(err, ErrInvalidSplits), errors.Is(err, ErrNoSplits):
		return 400
	default:
		return 500
	}
}

// HTTPError is raised by the backend client when the remote API answers
// with a non-2xx status. Body is kept raw so FromError can mine it for
// structured detail.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	msgs := e.DetailMessages()
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, strings.Join(msgs, "; "))
}

// DetailMessages extracts human-readable messages from the response
// body. Supported shapes: {"message": "..."} and FastAPI validation
// errors {"detail": [{"msg": "...", "loc": [...]}, ...]} or
// {"detail": "..."}.
func (e *HTTPError) DetailMessages() []string {
	var envelope struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(e.Body, &envelope); err == nil {
		if envelope.Message != "" {
			return []string{envelope.Message}
		}
		if len(envelope.Detail) > 0 {
			var plain string
			if json.Unmarshal(envelope.Detail, &plain) == nil && plain != "" {
				return []string{plain}
			}
			var items []struct {
				Msg string `json:"msg"`
			}
			if json.Unmarshal(envelope.Detail, &items) == nil && len(items) > 0 {
				msgs := make([]string, 0, len(items))
				for _, it := range items {
					if it.Msg != "" {
						msgs = append(msgs, it.Msg)
					}
				}
				if len(msgs) > 0 {
					return msgs
				}
			}
		}
	}

	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return []string{fmt.Sprintf("request failed with status %d", e.StatusCode)}
	}
	return []string{body}
}
