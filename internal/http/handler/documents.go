package handler

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docstore/internal/service"
)

// ListDocuments godoc
// @Summary      List documents
// @Description  Returns every stored document, newest first.
// @Tags         documents
// @Produce      json
// @Success      200  {array}   model.Document
// @Failure      500  {object}  ErrorResponse
// @Router       /documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, CodeInternal, msgInternal)
		}
		return c.JSON(docs)
	}
}

// UploadDocument godoc
// @Summary      Upload a PDF
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "PDF document"
// @Success      201   {object}  model.Document
// @Failure      400   {object}  ErrorResponse
// @Failure      413   {object}  ErrorResponse
// @Router       /documents/upload [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, CodeFileRequired, "No file provided")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, CodeFileOpen, "Cannot open uploaded file")
		}
		defer f.Close()

		doc, err := svc.Upload(c.UserContext(), f, fh.Filename, fh.Header.Get(fiber.HeaderContentType), fh.Size)
		if err != nil {
			return writeUploadError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

func writeUploadError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNoFileProvided):
		return writeError(c, fiber.StatusBadRequest, CodeFileRequired, "No file provided")
	case errors.Is(err, service.ErrInvalidFileType):
		return writeError(c, fiber.StatusBadRequest, CodeInvalidFileType, "Only PDF files are allowed")
	case errors.Is(err, service.ErrFileTooLarge):
		return writeError(c, fiber.StatusBadRequest, CodeFileTooLarge, sentence(err.Error()))
	case errors.Is(err, service.ErrStorageWrite):
		return writeError(c, fiber.StatusBadRequest, CodeStorageError, "Failed to store document")
	default:
		return writeError(c, fiber.StatusInternalServerError, CodeInternal, msgInternal)
	}
}

// GetDocument godoc
// @Summary      Download a document
// @Description  Streams the stored PDF as an attachment.
// @Tags         documents
// @Produce      application/pdf
// @Param        id   path      int  true  "Document ID"
// @Success      200  {file}    file
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, CodeInvalidID, "Validation failed (numeric string is expected)")
		}

		content, err := svc.GetContent(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, CodeNotFound, fmt.Sprintf(msgDocumentNotFoundFmt, id))
			}
			return writeError(c, fiber.StatusInternalServerError, CodeInternal, msgInternal)
		}

		c.Set(fiber.HeaderContentType, service.PDFContentType)
		c.Set(fiber.HeaderContentDisposition, contentDisposition(content.OriginalFilename))
		// The response body stream is closed by fasthttp once written.
		return c.SendStream(content.Body, int(content.Size))
	}
}

// DeleteDocument godoc
// @Summary      Delete a document
// @Tags         documents
// @Param        id   path      int  true  "Document ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, CodeInvalidID, "Validation failed (numeric string is expected)")
		}

		if err := svc.Delete(c.UserContext(), id); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, CodeNotFound, fmt.Sprintf(msgDocumentNotFoundFmt, id))
			}
			return writeError(c, fiber.StatusInternalServerError, CodeDeleteFailed, "Failed to delete document")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil
}

// contentDisposition builds an attachment header. The quoted filename is
// stripped of characters that could break out of the header value; a
// filename* parameter carries non-ASCII names.
func contentDisposition(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r == '"' || r == '\\' || r < 0x20 || r == 0x7f:
			return -1
		case r > 0x7e:
			return '_'
		}
		return r
	}, name)
	if safe == "" {
		safe = "document.pdf"
	}

	v := `attachment; filename="` + safe + `"`
	if name != "" && safe != name {
		v += "; filename*=UTF-8''" + url.PathEscape(name)
	}
	return v
}

func sentence(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
