package backend

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// ListDocuments returns the project's documents, optionally filtered
// to those carrying any of the given tags.
func (c *Client) ListDocuments(ctx context.Context, projectID string, tags []string) ([]Document, error) {
	path := fmt.Sprintf("/api/projects/%s/documents", url.PathEscape(projectID))
	if len(tags) > 0 {
		path += "?tags=" + url.QueryEscape(strings.Join(tags, ","))
	}
	var out []Document
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteDocument(ctx context.Context, projectID, documentID string) error {
	path := fmt.Sprintf("/api/projects/%s/documents/%s",
		url.PathEscape(projectID), url.PathEscape(documentID))
	return c.delete(ctx, path)
}

func (c *Client) ListExtractors(ctx context.Context, projectID string) ([]Extractor, error) {
	var out []Extractor
	path := fmt.Sprintf("/api/projects/%s/extractor_configs", url.PathEscape(projectID))
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type chunkRequest struct {
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
}

type chunkResponse struct {
	Chunks []Chunk `json:"chunks"`
}

// ChunkDocument re-chunks one document's extracted text on the
// backend and returns the resulting parts in document order.
func (c *Client) ChunkDocument(ctx context.Context, projectID, documentID string, chunkSize, chunkOverlap int) ([]Chunk, error) {
	path := fmt.Sprintf("/api/projects/%s/documents/%s/chunk",
		url.PathEscape(projectID), url.PathEscape(documentID))
	var out chunkResponse
	err := c.post(ctx, path, chunkRequest{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}, &out)
	if err != nil {
		return nil, err
	}
	return out.Chunks, nil
}

// RunExtractor kicks off extraction for the given documents. Progress
// is observed separately through ExtractionProgress.
func (c *Client) RunExtractor(ctx context.Context, projectID, extractorID string, documentIDs []string) error {
	path := fmt.Sprintf("/api/projects/%s/extractor_configs/%s/run",
		url.PathEscape(projectID), url.PathEscape(extractorID))
	body := map[string]interface{}{"document_ids": documentIDs}
	return c.post(ctx, path, body, nil)
}

// ExtractionProgress opens the server-sent-event stream reporting
// extraction progress for an extractor run. The caller owns the
// returned stream and must Close it.
func (c *Client) ExtractionProgress(ctx context.Context, projectID, extractorID string) (*ProgressStream, error) {
	path := fmt.Sprintf("/api/projects/%s/extractor_configs/%s/progress",
		url.PathEscape(projectID), url.PathEscape(extractorID))
	return c.openProgressStream(ctx, path)
}
