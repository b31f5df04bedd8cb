package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DocumentStatus is the ingestion lifecycle state of a document.
type DocumentStatus string

// Document lifecycle states.
const (
	// StatusPending means the document is uploaded and waits for extraction or indexing.
	StatusPending DocumentStatus = "pending"

	// StatusProcessing means extraction or ingestion is running.
	StatusProcessing DocumentStatus = "processing"

	// StatusIndexed means every chunk of the raw text is in the vector index.
	StatusIndexed DocumentStatus = "indexed"

	// StatusError means the last extraction or ingestion attempt failed.
	StatusError DocumentStatus = "error"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusIndexed, StatusError:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// allowedTransitions lists the implicit lifecycle edges.
// Indexed -> Pending is deliberately absent: it is only reachable through ResetStatus.
var allowedTransitions = map[DocumentStatus][]DocumentStatus{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusPending, StatusIndexed, StatusError},
	StatusError:      {StatusProcessing},
	StatusIndexed:    {},
}

// CanTransition reports whether from -> to is a legal implicit transition.
func CanTransition(from, to DocumentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionSources returns the statuses from which to is reachable.
func TransitionSources(to DocumentStatus) []DocumentStatus {
	var from []DocumentStatus
	for _, st := range []DocumentStatus{StatusPending, StatusProcessing, StatusIndexed, StatusError} {
		if CanTransition(st, to) {
			from = append(from, st)
		}
	}
	return from
}

// TransitionStatus validates a status change and returns the new status.
func TransitionStatus(from, to DocumentStatus) (DocumentStatus, error) {
	if !from.IsValid() || !to.IsValid() {
		return from, fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
	}
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}

// ResetStatus is the explicit operation that returns an indexed
// (or failed) document to pending so it can be indexed again.
func ResetStatus(from DocumentStatus) (DocumentStatus, error) {
	if !slices.Contains(ResetSources, from) {
		return from, fmt.Errorf("%w: cannot reset from %s", ErrInvalidTransition, from)
	}
	return StatusPending, nil
}

// ResetSources are the statuses ResetStatus accepts.
var ResetSources = []DocumentStatus{StatusIndexed, StatusError}

// DocumentSource records how a document entered the system.
type DocumentSource string

// Known document sources.
const (
	SourceManualUpload DocumentSource = "MANUAL_UPLOAD"
	SourceEmailIngest  DocumentSource = "EMAIL_INGEST"
	SourceAPIUpload    DocumentSource = "API_UPLOAD"
)

// Document represents one uploaded source file.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the display name, usually the original filename.
	Name string

	// StorageKey is the opaque key of the file in blob storage.
	StorageKey string

	// ContentType is the MIME type of the stored file.
	ContentType string

	// Size is the file size in bytes.
	Size int64

	// Status is the ingestion lifecycle state.
	Status DocumentStatus

	// RawText is the extracted text. Empty until extraction succeeds.
	RawText string

	// OwnerID references the user who uploaded the document.
	OwnerID string

	// Source records how the document was added.
	Source DocumentSource

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time

	// UpdatedAt is when the document was last modified.
	UpdatedAt time.Time
}

// HasRawText reports whether extraction has produced non-blank text.
func (d *Document) HasRawText() bool {
	return d != nil && strings.TrimSpace(d.RawText) != ""
}

// DocumentSummary is a listing row without the raw text body.
type DocumentSummary struct {
	ID          string
	Name        string
	ContentType string
	Size        int64
	Status      DocumentStatus
	Source      DocumentSource
	OwnerID     string
	HasRawText  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
