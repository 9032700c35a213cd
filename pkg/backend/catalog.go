package backend

import (
	"context"
	"fmt"
	"net/url"
)

func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var out []Project
	if err := c.get(ctx, "/api/projects", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListTasks(ctx context.Context, projectID string) ([]Task, error) {
	var out []Task
	path := fmt.Sprintf("/api/projects/%s/tasks", url.PathEscape(projectID))
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListRunConfigs(ctx context.Context, projectID, taskID string) ([]RunConfig, error) {
	var out []RunConfig
	path := fmt.Sprintf("/api/projects/%s/tasks/%s/run_configs",
		url.PathEscape(projectID), url.PathEscape(taskID))
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListEvals(ctx context.Context, projectID, taskID string) ([]Eval, error) {
	var out []Eval
	path := fmt.Sprintf("/api/projects/%s/tasks/%s/evals",
		url.PathEscape(projectID), url.PathEscape(taskID))
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListRAGConfigs(ctx context.Context, projectID string) ([]RAGConfig, error) {
	var out []RAGConfig
	path := fmt.Sprintf("/api/projects/%s/rag_configs", url.PathEscape(projectID))
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListProviders(ctx context.Context) ([]ProviderModels, error) {
	var out []ProviderModels
	if err := c.get(ctx, "/api/available_models", &out); err != nil {
		return nil, err
	}
	return out, nil
}
