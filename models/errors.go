package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// User-facing detail messages. The API is localized; these match the wording
// clients already depend on.
const (
	MsgNoCredentials   = "Учетные данные не были предоставлены."
	MsgInvalidToken    = "Токен недействителен или просрочен"
	MsgNotEnoughRights = "У вас недостаточно прав для выполнения данного действия."
	MsgPageNotFound    = "Страница не найдена."
	MsgCommentNotFound = "Комментарий не найден"
	MsgSelfFollow      = "Нельзя подписаться на самого себя"
	MsgAlreadyFollows  = "Вы уже подписаны на этого пользователя"
	MsgServerError     = "Внутренняя ошибка сервера."
)

// ErrorResponse is the only error body shape the API produces.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// AppError is a classified application error. Message is what the client
// sees; Err (if any) stays server-side.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status maps the error class to its fixed HTTP status.
func (e *AppError) Status() int {
	switch e.Code {
	case "UNAUTHORIZED":
		return fiber.StatusUnauthorized
	case "FORBIDDEN":
		return fiber.StatusForbidden
	case "NOT_FOUND":
		return fiber.StatusNotFound
	case "VALIDATION_ERROR":
		return fiber.StatusBadRequest
	case "METHOD_NOT_ALLOWED":
		return fiber.StatusMethodNotAllowed
	default:
		return fiber.StatusInternalServerError
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: message}
}

func NewMethodNotAllowedError(method string) *AppError {
	return &AppError{
		Code:    "METHOD_NOT_ALLOWED",
		Message: fmt.Sprintf("Метод %q не разрешен.", method),
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: MsgServerError, Err: err}
}

// RespondWithError renders err as {"detail": ...}. Wrapped causes are never
// serialized; non-AppError values collapse to a generic 500 body.
func RespondWithError(c *fiber.Ctx, err error) error {
	if appErr, ok := err.(*AppError); ok {
		return c.Status(appErr.Status()).JSON(ErrorResponse{Detail: appErr.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Detail: MsgServerError})
}
