package repository

import (
	"context"

	"docstore/internal/model"
)

// DocumentRepository defines data access for document metadata using SQL queries only.
// No business logic here; strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record. ID is assigned by the store
	// and returned on the stored document.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id int64) (*model.Document, error)

	// List returns every document, newest first.
	List(ctx context.Context) ([]model.Document, error)

	// Delete removes a document by ID. It returns sql.ErrNoRows if no row was deleted.
	Delete(ctx context.Context, id int64) error
}
