package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"llm-taskbench/pkg/apperror"
)

// ProgressEvent is one message on an extraction progress stream.
type ProgressEvent struct {
	Progress int      `json:"progress"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors"`
}

// ProgressStream consumes a server-sent-event stream. Each event is
// either a JSON progress payload or the literal "complete", which
// terminates the stream. Close is the only way to abandon a stream
// early; there is no other cancellation once a run has started.
type ProgressStream struct {
	events  chan ProgressEvent
	body    io.ReadCloser
	closing chan struct{}
	done    chan struct{}
	err     error
}

func (c *Client) openProgressStream(ctx context.Context, path string) (*ProgressStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	// Streams must not inherit the client's request timeout.
	streamClient := &http.Client{Transport: c.HTTPClient.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &apperror.HTTPError{StatusCode: resp.StatusCode, Body: body}
	}

	s := &ProgressStream{
		events:  make(chan ProgressEvent),
		body:    resp.Body,
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (s *ProgressStream) readLoop() {
	defer close(s.events)
	defer close(s.done)
	defer s.body.Close()

	scanner := bufio.NewScanner(s.body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		if payload == "complete" || payload == `"complete"` {
			return
		}

		var event ProgressEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			// Unknown messages are skipped, not fatal.
			continue
		}
		select {
		case s.events <- event:
		case <-s.closing:
			return
		}
	}
	s.err = scanner.Err()
}

// Events yields progress messages until the stream completes or is
// closed.
func (s *ProgressStream) Events() <-chan ProgressEvent {
	return s.events
}

// Err reports a transport failure after Events is drained.
func (s *ProgressStream) Err() error {
	return s.err
}

// Close terminates the stream early. Safe to call after completion,
// but not concurrently with itself.
func (s *ProgressStream) Close() error {
	select {
	case <-s.closing:
	default:
		close(s.closing)
	}
	err := s.body.Close()
	<-s.done
	return err
}
