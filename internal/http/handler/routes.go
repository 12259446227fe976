package handler

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docstore/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Operational endpoints live at the root; document endpoints live under prefix.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, prefix string) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	docs := app.Group(normalizePrefix(prefix) + "/documents")
	docs.Post("/upload", UploadDocument(docSvc))
	docs.Get("/", ListDocuments(docSvc))
	docs.Get("/:id", GetDocument(docSvc))
	docs.Delete("/:id", DeleteDocument(docSvc))
}

// normalizePrefix returns prefix with a single leading slash and no trailing slash; "" and "/" mean none.
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return "/" + prefix
}
