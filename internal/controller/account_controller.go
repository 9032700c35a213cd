package controller

import (
	"github.com/gofiber/fiber/v2"

	"llm-taskbench/internal/dto"
	"llm-taskbench/internal/pkg/serverutils"
	"llm-taskbench/internal/service"
)

type IAccountController interface {
	RegisterRoutes(r fiber.Router)
}

type accountController struct {
	accountService service.IAccountService
}

func NewAccountController(accountService service.IAccountService) IAccountController {
	return &accountController{accountService: accountService}
}

func (c *accountController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/account/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("billing-portal", c.BillingPortal)
	h.Post("identify", c.Identify)
}

func (c *accountController) BillingPortal(ctx *fiber.Ctx) error {
	res, err := c.accountService.BillingPortal(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get billing portal", res))
}

func (c *accountController) Identify(ctx *fiber.Ctx) error {
	userID, _ := ctx.Locals("user_id").(string)

	var req dto.IdentifyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := c.accountService.Identify(ctx.Context(), userID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success identify", nil))
}
