package serverutils

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"llm-taskbench/pkg/apperror"
)

type APIResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{Message: message, Data: data}
}

var validate = validator.New()

// ValidateRequest checks a decoded request body against its `validate`
// tags and converts failures into a 400-level AppError.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		appErr := apperror.WithStatus(fiber.StatusBadRequest, "Invalid request")
		if verrs, ok := err.(validator.ValidationErrors); ok {
			appErr.Messages = appErr.Messages[:0]
			for _, ve := range verrs {
				appErr.Append("Field '" + ve.Field() + "' failed rule '" + ve.Tag() + "'")
			}
		}
		return appErr
	}
	return nil
}

// ErrorHandlerMiddleware normalizes every error escaping a handler
// into the application error shape so the UI renders inline messages
// instead of crashing on raw failures.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if fiberErr, ok := err.(*fiber.Error); ok {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		}

		appErr := apperror.FromError(err)
		status := appErr.Status
		if status < 400 || status > 599 {
			status = fiber.StatusInternalServerError
		}
		return ctx.Status(status).JSON(fiber.Map{
			"message":  appErr.Message(),
			"messages": appErr.Messages,
		})
	}
}
