package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docstore/internal/logger"
	"docstore/internal/metrics"
	"docstore/internal/model"
	"docstore/internal/repository"
	"docstore/internal/storage"
)

// PDFContentType is the only accepted upload type.
const PDFContentType = "application/pdf"

const storedExtension = ".pdf"

var (
	ErrNoFileProvided  = errors.New("no file provided")
	ErrInvalidFileType = errors.New("only PDF files are allowed")
	ErrFileTooLarge    = errors.New("file size exceeds maximum allowed size")
	ErrStorageWrite    = errors.New("failed to store document")
	ErrNotFound        = errors.New("document not found")
	ErrStorageDelete   = errors.New("failed to delete document")
)

// IsValidation reports whether err was caused by the uploaded input rather than the server.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNoFileProvided) ||
		errors.Is(err, ErrInvalidFileType) ||
		errors.Is(err, ErrFileTooLarge)
}

// Config is the service configuration, read once at startup.
type Config struct {
	// MaxFileSize is the largest accepted upload in bytes.
	MaxFileSize int64
}

// DocumentContent references stored content for streaming. Body is open and must be closed by the caller.
type DocumentContent struct {
	Path             string
	OriginalFilename string
	Size             int64
	Body             io.ReadCloser
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload validates and stores a PDF, then records its metadata.
	// Content is written before the record is inserted, so no record ever points at unwritten content.
	Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Document, error)

	// List returns every document, newest first.
	List(ctx context.Context) ([]model.Document, error)

	// GetContent opens the content of a document for streaming.
	// Unknown ids and records whose content is gone both yield ErrNotFound.
	GetContent(ctx context.Context, id int64) (*DocumentContent, error)

	// Delete removes a document's content, then its record.
	Delete(ctx context.Context, id int64) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	cfg     Config
	store   storage.Storage
	repo    repository.DocumentRepository
	log     logrus.FieldLogger
	metrics *metrics.DocumentMetrics
	tracer  trace.Tracer
	now     func() time.Time
}

// NewDocumentService constructs a new DocumentService. log and m may be nil.
func NewDocumentService(cfg Config, store storage.Storage, repo repository.DocumentRepository, log logrus.FieldLogger, m *metrics.DocumentMetrics) DocumentService {
	if log == nil {
		log = logger.Discard()
	}
	return &documentService{
		cfg:     cfg,
		store:   store,
		repo:    repo,
		log:     log.WithField("component", "document_service"),
		metrics: m,
		tracer:  otel.Tracer("docstore/internal/service"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *documentService) validate(r io.Reader, contentType string, size int64) error {
	if r == nil || size <= 0 {
		s.metrics.UploadFailed(metrics.UploadNoFile)
		return ErrNoFileProvided
	}
	if contentType != PDFContentType {
		s.metrics.UploadFailed(metrics.UploadInvalidType)
		return ErrInvalidFileType
	}
	if size > s.cfg.MaxFileSize {
		s.metrics.UploadFailed(metrics.UploadTooLarge)
		return fmt.Errorf("%w of %d bytes", ErrFileTooLarge, s.cfg.MaxFileSize)
	}
	return nil
}

func (s *documentService) Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (doc *model.Document, err error) {
	ctx, span := s.tracer.Start(ctx, "DocumentService.Upload", trace.WithAttributes(
		attribute.String("document.original_filename", originalFilename),
		attribute.Int64("document.size", size),
	))
	defer func() { endSpan(span, err) }()

	if err := s.validate(r, contentType, size); err != nil {
		return nil, err
	}

	storedFilename := uuid.NewString() + storedExtension
	log := s.log.WithFields(logrus.Fields{
		"stored_filename":   storedFilename,
		"original_filename": originalFilename,
	})

	info, err := s.store.Put(ctx, storedFilename, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		s.metrics.UploadFailed(metrics.UploadStorageError)
		log.WithError(err).Error("failed to write document content")
		return nil, fmt.Errorf("%w: write content: %v", ErrStorageWrite, err)
	}
	log.WithFields(logrus.Fields{"filepath": info.Location, "filesize": info.Size}).Info("document content saved")

	stored, err := s.repo.Create(ctx, &model.Document{
		OriginalFilename: originalFilename,
		StoredFilename:   storedFilename,
		Filepath:         info.Location,
		Filesize:         info.Size,
		CreatedAt:        s.now(),
	})
	if err != nil {
		s.metrics.UploadFailed(metrics.UploadStorageError)
		// Best-effort cleanup; a failure leaves an orphaned file for operators.
		if delErr := s.store.Delete(ctx, storedFilename); delErr != nil {
			log.WithError(delErr).WithField("filepath", info.Location).Error("orphaned document content after failed metadata insert")
		}
		log.WithError(err).Error("failed to save document metadata")
		return nil, fmt.Errorf("%w: save metadata: %v", ErrStorageWrite, err)
	}

	s.metrics.UploadStored(stored.Filesize)
	span.SetAttributes(attribute.Int64("document.id", stored.ID))
	return stored, nil
}

func (s *documentService) List(ctx context.Context) (items []model.Document, err error) {
	ctx, span := s.tracer.Start(ctx, "DocumentService.List")
	defer func() { endSpan(span, err) }()

	items, err = s.repo.List(ctx)
	if err != nil {
		s.log.WithError(err).Error("failed to list documents")
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if items == nil {
		items = []model.Document{}
	}
	return items, nil
}

// find loads a record, mapping a missing row to ErrNotFound.
func (s *documentService) find(ctx context.Context, id int64) (*model.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find document %d: %w", id, err)
	}
	return doc, nil
}

func (s *documentService) GetContent(ctx context.Context, id int64) (content *DocumentContent, err error) {
	ctx, span := s.tracer.Start(ctx, "DocumentService.GetContent", trace.WithAttributes(attribute.Int64("document.id", id)))
	defer func() { endSpan(span, err) }()

	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	body, info, err := s.store.Get(ctx, doc.StoredFilename)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			s.metrics.MissingContent()
			s.log.WithFields(logrus.Fields{
				"event":       "data_integrity",
				"document_id": doc.ID,
				"filepath":    doc.Filepath,
			}).Warn("file not found on disk")
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open document %d: %w", id, err)
	}

	return &DocumentContent{
		Path:             doc.Filepath,
		OriginalFilename: doc.OriginalFilename,
		Size:             info.Size,
		Body:             body,
	}, nil
}

func (s *documentService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "DocumentService.Delete", trace.WithAttributes(attribute.Int64("document.id", id)))
	defer func() { endSpan(span, err) }()

	doc, err := s.find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.Deleted(metrics.DeleteNotFound)
		} else {
			s.metrics.Deleted(metrics.DeleteError)
		}
		return err
	}
	log := s.log.WithFields(logrus.Fields{"document_id": doc.ID, "filepath": doc.Filepath})

	if err := s.store.Delete(ctx, doc.StoredFilename); err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			s.metrics.Deleted(metrics.DeleteError)
			log.WithError(err).Error("failed to delete document content")
			return fmt.Errorf("%w: delete content: %v", ErrStorageDelete, err)
		}
		log.Warn("file not found on disk")
	} else {
		log.Info("document content deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A concurrent delete removed the record first.
			s.metrics.Deleted(metrics.DeleteNotFound)
			return ErrNotFound
		}
		s.metrics.Deleted(metrics.DeleteError)
		log.WithError(err).Error("content deleted but metadata record remains")
		return fmt.Errorf("%w: delete metadata: %v", ErrStorageDelete, err)
	}

	s.metrics.Deleted(metrics.DeleteOK)
	log.Info("document deleted")
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
