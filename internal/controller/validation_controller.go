package controller

import (
	"github.com/gofiber/fiber/v2"

	"llm-taskbench/internal/pkg/serverutils"
	"llm-taskbench/pkg/validation"
)

// Form fields the dialogs validate server-side so the rules live in
// one place.

type IValidationController interface {
	RegisterRoutes(r fiber.Router)
}

type validationController struct{}

func NewValidationController() IValidationController {
	return &validationController{}
}

func (c *validationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/validate/v1")
	h.Post("number", c.Number)
	h.Post("filename", c.Filename)
	h.Post("tool-name", c.ToolName)
}

type numberValidationRequest struct {
	Value    interface{} `json:"value"`
	Min      float64     `json:"min"`
	Max      float64     `json:"max"`
	Integer  bool        `json:"integer"`
	Optional bool        `json:"optional"`
	Label    string      `json:"label"`
}

type filenameValidationRequest struct {
	Name      string `json:"name"`
	MinLength int    `json:"min_length"`
	MaxLength int    `json:"max_length"`
}

type toolNameValidationRequest struct {
	Name string `json:"name"`
}

func validationResult(ctx *fiber.Ctx, err error) error {
	if err != nil {
		return ctx.JSON(serverutils.SuccessResponse("Validation finished", fiber.Map{
			"valid": false,
			"error": err.Error(),
		}))
	}
	return ctx.JSON(serverutils.SuccessResponse("Validation finished", fiber.Map{"valid": true}))
}

func (c *validationController) Number(ctx *fiber.Ctx) error {
	var req numberValidationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if req.Label == "" {
		req.Label = "Value"
	}
	return validationResult(ctx, validation.ValidateNumber(req.Value, req.Min, req.Max, req.Integer, req.Optional, req.Label))
}

func (c *validationController) Filename(ctx *fiber.Ctx) error {
	var req filenameValidationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if req.MaxLength == 0 {
		req.MaxLength = 120
	}
	return validationResult(ctx, validation.ValidateFilename(req.Name, req.MinLength, req.MaxLength))
}

func (c *validationController) ToolName(ctx *fiber.Ctx) error {
	var req toolNameValidationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	return validationResult(ctx, validation.ToolNameValidator(req.Name))
}
