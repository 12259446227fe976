package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"docstore/internal/http/middleware"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
	CodeInvalidID          = "INVALID_ID"
	CodeFileRequired       = "FILE_REQUIRED"
	CodeFileOpen           = "FILE_OPEN_ERROR"
	CodeInvalidFileType    = "INVALID_FILE_TYPE"
	CodeFileTooLarge       = "FILE_TOO_LARGE"
	CodeStorageError       = "STORAGE_ERROR"
	CodeDeleteFailed       = "DELETE_FAILED"
	msgInternal            = "internal server error"
	msgFileTooLargeFormat  = "File size exceeds maximum allowed size of %d bytes"
	msgDocumentNotFoundFmt = "Document with ID %d not found"
)

// ErrorResponse is the standardized error body.
type ErrorResponse struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code" example:"NOT_FOUND"`
	Message   string `json:"message" example:"Document with ID 7 not found"`
}

// writeError writes a standardized JSON error response. message must be safe to show to clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		RequestID: middleware.GetRequestID(c),
		Code:      code,
		Message:   message,
	})
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// maxFileSize is reported when a request body exceeds the server limit.
func ErrorHandler(maxFileSize int64) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, CodeBadRequest, "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, CodeNotFound, "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, CodeMethodNotAllowed, "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, CodeFileTooLarge, fmt.Sprintf(msgFileTooLargeFormat, maxFileSize))
		default:
			return writeError(c, status, CodeInternal, msgInternal)
		}
	}
}
