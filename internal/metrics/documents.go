// Package metrics holds the Prometheus collectors for document operations.
// A nil *DocumentMetrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "docstore"

// Upload results.
const (
	UploadStored       = "stored"
	UploadNoFile       = "no_file"
	UploadInvalidType  = "invalid_type"
	UploadTooLarge     = "too_large"
	UploadStorageError = "storage_error"
)

// Delete results.
const (
	DeleteOK       = "ok"
	DeleteNotFound = "not_found"
	DeleteError    = "error"
)

// DocumentMetrics counts uploads, deletes and content integrity faults.
type DocumentMetrics struct {
	uploads        *prometheus.CounterVec
	uploadBytes    prometheus.Counter
	deletes        *prometheus.CounterVec
	missingContent prometheus.Counter
}

// NewDocumentMetrics creates and registers the document collectors on reg.
func NewDocumentMetrics(reg prometheus.Registerer) (*DocumentMetrics, error) {
	m := &DocumentMetrics{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_total",
				Help:      "Document uploads by result.",
			},
			[]string{"result"},
		),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Bytes written by successful uploads.",
		}),
		deletes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deletes_total",
				Help:      "Document deletions by result.",
			},
			[]string{"result"},
		),
		missingContent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missing_content_total",
			Help:      "Metadata records whose stored content was absent.",
		}),
	}

	for _, c := range []prometheus.Collector{m.uploads, m.uploadBytes, m.deletes, m.missingContent} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// UploadStored records a successful upload of size bytes.
func (m *DocumentMetrics) UploadStored(size int64) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(UploadStored).Inc()
	m.uploadBytes.Add(float64(size))
}

// UploadFailed records a rejected or failed upload.
func (m *DocumentMetrics) UploadFailed(result string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
}

// Deleted records a delete attempt outcome.
func (m *DocumentMetrics) Deleted(result string) {
	if m == nil {
		return
	}
	m.deletes.WithLabelValues(result).Inc()
}

// MissingContent records a record whose content was not in storage.
func (m *DocumentMetrics) MissingContent() {
	if m == nil {
		return
	}
	m.missingContent.Inc()
}
