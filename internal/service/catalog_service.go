package service

import (
	"context"

	"llm-taskbench/pkg/backend"
)

// CatalogAPI lists the backend's library resources the front end
// browses while configuring a wizard.
type CatalogAPI interface {
	ListProjects(ctx context.Context) ([]backend.Project, error)
	ListTasks(ctx context.Context, projectID string) ([]backend.Task, error)
	ListRunConfigs(ctx context.Context, projectID, taskID string) ([]backend.RunConfig, error)
	ListEvals(ctx context.Context, projectID, taskID string) ([]backend.Eval, error)
	ListRAGConfigs(ctx context.Context, projectID string) ([]backend.RAGConfig, error)
	ListProviders(ctx context.Context) ([]backend.ProviderModels, error)
	ListDocuments(ctx context.Context, projectID string, tags []string) ([]backend.Document, error)
	ListExtractors(ctx context.Context, projectID string) ([]backend.Extractor, error)
	DeleteDocument(ctx context.Context, projectID, documentID string) error
}

type ICatalogService interface {
	Projects(ctx context.Context) ([]backend.Project, error)
	Tasks(ctx context.Context, projectID string) ([]backend.Task, error)
	RunConfigs(ctx context.Context, projectID, taskID string) ([]backend.RunConfig, error)
	Evals(ctx context.Context, projectID, taskID string) ([]backend.Eval, error)
	RAGConfigs(ctx context.Context, projectID string) ([]backend.RAGConfig, error)
	Providers(ctx context.Context) ([]backend.ProviderModels, error)
	Documents(ctx context.Context, projectID string, tags []string) ([]backend.Document, error)
	Extractors(ctx context.Context, projectID string) ([]backend.Extractor, error)
	DeleteDocument(ctx context.Context, projectID, documentID string) error
}

type catalogService struct {
	api CatalogAPI
}

func NewCatalogService(api CatalogAPI) ICatalogService {
	return &catalogService{api: api}
}

func (s *catalogService) Projects(ctx context.Context) ([]backend.Project, error) {
	return s.api.ListProjects(ctx)
}

func (s *catalogService) Tasks(ctx context.Context, projectID string) ([]backend.Task, error) {
	return s.api.ListTasks(ctx, projectID)
}

func (s *catalogService) RunConfigs(ctx context.Context, projectID, taskID string) ([]backend.RunConfig, error) {
	return s.api.ListRunConfigs(ctx, projectID, taskID)
}

func (s *catalogService) Evals(ctx context.Context, projectID, taskID string) ([]backend.Eval, error) {
	return s.api.ListEvals(ctx, projectID, taskID)
}

func (s *catalogService) RAGConfigs(ctx context.Context, projectID string) ([]backend.RAGConfig, error) {
	return s.api.ListRAGConfigs(ctx, projectID)
}

func (s *catalogService) Providers(ctx context.Context) ([]backend.ProviderModels, error) {
	return s.api.ListProviders(ctx)
}

func (s *catalogService) Documents(ctx context.Context, projectID string, tags []string) ([]backend.Document, error) {
	return s.api.ListDocuments(ctx, projectID, tags)
}

func (s *catalogService) Extractors(ctx context.Context, projectID string) ([]backend.Extractor, error) {
	return s.api.ListExtractors(ctx, projectID)
}

func (s *catalogService) DeleteDocument(ctx context.Context, projectID, documentID string) error {
	return s.api.DeleteDocument(ctx, projectID, documentID)
}
