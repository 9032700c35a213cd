package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"llm-taskbench/internal/pkg/serverutils"
	"llm-taskbench/internal/service"
)

type ICatalogController interface {
	RegisterRoutes(r fiber.Router)
}

type catalogController struct {
	catalogService service.ICatalogService
}

func NewCatalogController(catalogService service.ICatalogService) ICatalogController {
	return &catalogController{catalogService: catalogService}
}

func (c *catalogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/catalog/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("projects", c.Projects)
	h.Get("projects/:projectId/tasks", c.Tasks)
	h.Get("projects/:projectId/tasks/:taskId/run-configs", c.RunConfigs)
	h.Get("projects/:projectId/tasks/:taskId/evals", c.Evals)
	h.Get("projects/:projectId/rag-configs", c.RAGConfigs)
	h.Get("projects/:projectId/documents", c.Documents)
	h.Delete("projects/:projectId/documents/:documentId", c.DeleteDocument)
	h.Get("projects/:projectId/extractors", c.Extractors)
	h.Get("providers", c.Providers)
}

func (c *catalogController) Projects(ctx *fiber.Ctx) error {
	res, err := c.catalogService.Projects(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list projects", res))
}

func (c *catalogController) Tasks(ctx *fiber.Ctx) error {
	res, err := c.catalogService.Tasks(ctx.Context(), ctx.Params("projectId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list tasks", res))
}

func (c *catalogController) RunConfigs(ctx *fiber.Ctx) error {
	res, err := c.catalogService.RunConfigs(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list run configs", res))
}

func (c *catalogController) Evals(ctx *fiber.Ctx) error {
	res, err := c.catalogService.Evals(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list evals", res))
}

func (c *catalogController) RAGConfigs(ctx *fiber.Ctx) error {
	res, err := c.catalogService.RAGConfigs(ctx.Context(), ctx.Params("projectId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list rag configs", res))
}

func (c *catalogController) Documents(ctx *fiber.Ctx) error {
	var tags []string
	if raw := ctx.Query("tags"); raw != "" {
		tags = append(tags, splitCSV(raw)...)
	}
	res, err := c.catalogService.Documents(ctx.Context(), ctx.Params("projectId"), tags)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *catalogController) DeleteDocument(ctx *fiber.Ctx) error {
	err := c.catalogService.DeleteDocument(ctx.Context(), ctx.Params("projectId"), ctx.Params("documentId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete document", nil))
}

func (c *catalogController) Extractors(ctx *fiber.Ctx) error {
	res, err := c.catalogService.Extractors(ctx.Context(), ctx.Params("projectId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list extractors", res))
}

func (c *catalogController) Providers(ctx *fiber.Ctx) error {
	res, err := c.catalogService.Providers(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list providers", res))
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
