package controller

import (
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"

	"llm-taskbench/internal/dto"
	"llm-taskbench/internal/pkg/logger"
	"llm-taskbench/internal/pkg/serverutils"
	"llm-taskbench/internal/service"
	internalWS "llm-taskbench/internal/websocket"
	"llm-taskbench/pkg/utils"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
}

type sessionController struct {
	sessionService service.ISessionService
	hub            *internalWS.Hub
	logger         logger.ILogger
}

func NewSessionController(sessionService service.ISessionService, hub *internalWS.Hub, log logger.ILogger) ISessionController {
	return &sessionController{
		sessionService: sessionService,
		hub:            hub,
		logger:         log,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/wizard/v1/:projectId/:taskId")

	// The websocket handshake cannot carry an Authorization header from
	// a browser, so the progress route sits outside the JWT middleware.
	h.Get("/ws", c.Progress)

	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetState)
	h.Delete("", c.ClearAll)
	h.Post("documents", c.AddDocuments)
	h.Delete("documents/:documentId", c.DeleteDocument)
	h.Delete("documents/:documentId/parts/:partIndex", c.RemovePart)
	h.Delete("documents/:documentId/parts/:partIndex/pairs/:pairId", c.RemovePair)
	h.Put("extractor", c.SetExtractor)
	h.Post("extraction", c.RunExtraction)
	h.Put("extraction/complete", c.MarkExtractionComplete)
	h.Put("splits", c.SetSplits)
	h.Put("step", c.SetStep)
	h.Post("generate", c.Generate)
	h.Get("generate/progress", c.GenerationState)
	h.Post("save", c.SaveAll)
	h.Get("save/progress", c.SaveState)
	h.Post("preview-chunks", c.PreviewChunks)
}

func (c *sessionController) GetState(ctx *fiber.Ctx) error {
	res, err := c.sessionService.GetState(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session state", res))
}

func (c *sessionController) AddDocuments(ctx *fiber.Ctx) error {
	var req dto.AddDocumentsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.AddDocuments(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success add documents", res))
}

func (c *sessionController) DeleteDocument(ctx *fiber.Ctx) error {
	err := c.sessionService.DeleteDocument(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"), ctx.Params("documentId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete document", nil))
}

func (c *sessionController) RemovePart(ctx *fiber.Ctx) error {
	partIndex, err := ctx.ParamsInt("partIndex")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid part index")
	}
	err = c.sessionService.RemovePart(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"), ctx.Params("documentId"), partIndex)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success remove part", nil))
}

func (c *sessionController) RemovePair(ctx *fiber.Ctx) error {
	partIndex, err := ctx.ParamsInt("partIndex")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid part index")
	}
	err = c.sessionService.RemovePair(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"), ctx.Params("documentId"), partIndex, ctx.Params("pairId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success remove pair", nil))
}

func (c *sessionController) SetExtractor(ctx *fiber.Ctx) error {
	var req dto.SetExtractorRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	err := c.sessionService.SetExtractor(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"), req.ExtractorID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success set extractor", nil))
}

func (c *sessionController) RunExtraction(ctx *fiber.Ctx) error {
	var req dto.ExtractionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	itemErrors, err := c.sessionService.RunExtraction(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"), req.DocumentIDs)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Extraction complete", fiber.Map{"errors": itemErrors}))
}

func (c *sessionController) MarkExtractionComplete(ctx *fiber.Ctx) error {
	err := c.sessionService.MarkExtractionComplete(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Extraction marked complete", nil))
}

// SetSplits accepts the split map either in the body or as the compact
// "tag:proportion,tag:proportion" query form used in shareable links.
func (c *sessionController) SetSplits(ctx *fiber.Ctx) error {
	var req dto.SetSplitsRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}
	if len(req.Splits) == 0 {
		if param := ctx.Query("splits"); param != "" {
			req.Splits = utils.SplitsFromURLParam(param)
		}
	}

	err := c.sessionService.SetSplits(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"), req.Splits)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success set splits", nil))
}

func (c *sessionController) SetStep(ctx *fiber.Ctx) error {
	var req dto.SetStepRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.SetStep(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"), req.Step)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success set step", res))
}

func (c *sessionController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Generate(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Generation finished", res))
}

func (c *sessionController) GenerationState(ctx *fiber.Ctx) error {
	res, err := c.sessionService.GenerationState(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get generation progress", res))
}

func (c *sessionController) SaveAll(ctx *fiber.Ctx) error {
	res, err := c.sessionService.SaveAll(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Save finished", res))
}

func (c *sessionController) SaveState(ctx *fiber.Ctx) error {
	res, err := c.sessionService.SaveState(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get save progress", res))
}

func (c *sessionController) PreviewChunks(ctx *fiber.Ctx) error {
	var req dto.PreviewChunksRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	chunks, err := c.sessionService.PreviewChunks(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"), req.Text)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success preview chunks", &dto.PreviewChunksResponse{Chunks: chunks}))
}

func (c *sessionController) ClearAll(ctx *fiber.Ctx) error {
	err := c.sessionService.ClearAll(ctx.Context(), ctx.Params("projectId"), ctx.Params("taskId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session cleared", nil))
}

// Progress upgrades the connection and streams wizard progress events
// for this session.
func (c *sessionController) Progress(ctx *fiber.Ctx) error {
	projectID := ctx.Params("projectId")
	taskID := ctx.Params("taskId")
	sessionKey := projectID + ":" + taskID

	if fiberws.IsWebSocketUpgrade(ctx) {
		return fiberws.New(func(conn *fiberws.Conn) {
			c.logger.Info("SessionController", "Starting progress watcher", map[string]interface{}{"session": sessionKey})
			internalWS.ServeWs(c.hub, conn, sessionKey)
			c.logger.Info("SessionController", "Progress watcher ended", map[string]interface{}{"session": sessionKey})
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}
