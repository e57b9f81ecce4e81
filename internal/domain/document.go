package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared by repositories and services.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// Document represents a stored document carrying an ordered, duplicate-free
// set of string tags. The in-memory Tags slice is owned exclusively by the
// document instance: only AddTag/RemoveTag (local mode) and the mirroring done
// by DocumentService after a confirmed store update may write it.
// swagger:model Document
type Document struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDocument returns a new Document with the given fields. ID is typically set
// by the repository on create. Tags may be nil; it is normalized on creation.
func NewDocument(ownerID, title, body string, tags []string, createdAt, updatedAt time.Time) *Document {
	return &Document{
		OwnerID:   ownerID,
		Title:     title,
		Body:      body,
		Tags:      tags,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// DocumentQuery describes a document list query: owner scoping, tag filtering,
// and pagination. The tag filter augments the base conditions; an empty filter
// leaves the query untouched.
type DocumentQuery struct {
	OwnerID    string
	Tags       TagFilter
	Pagination PaginationParams
}

// DocumentRepository defines the interface for document storage.
//
// AddTag and RemoveTag are conditional atomic updates: the membership
// precondition is evaluated by the store, together with the effect, as one
// indivisible operation. Two concurrent AddTag calls for the same absent tag
// therefore resolve to exactly one true report. Both return ErrNotFound when
// no document has the given id.
type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context, q DocumentQuery) ([]*Document, int, error)
	// Update changes title and/or body; nil fields are left as stored.
	Update(ctx context.Context, id string, title, body *string) (*Document, error)
	Delete(ctx context.Context, id string) error

	// AddTag appends tag to the stored sequence iff it is absent.
	// Reports true when the sequence changed, false when the tag was already present.
	AddTag(ctx context.Context, id, tag string) (added bool, err error)
	// RemoveTag deletes tag from the stored sequence iff it is present.
	// Reports true when the sequence changed, false when the tag was absent.
	RemoveTag(ctx context.Context, id, tag string) (removed bool, err error)
}

// DocumentService defines the business logic around documents and their tags.
//
// AddTag and RemoveTag are the persisted-mode tag mutators: they validate the
// tag, issue the store-side conditional update, and mirror the accepted change
// onto the caller's in-memory doc.Tags without a re-fetch. The local copy is
// touched only after, and only if, the store confirms the change.
type DocumentService interface {
	CreateDocument(ctx context.Context, ownerID, title, body string, tags []string) (*Document, error)
	// GetDocument returns the document, or ErrForbidden when callerID is not its owner.
	GetDocument(ctx context.Context, id, callerID string) (*Document, error)
	ListDocuments(ctx context.Context, ownerID string, filter TagFilter, p PaginationParams) ([]*Document, int, error)
	UpdateDocument(ctx context.Context, id, callerID string, title, body *string) (*Document, error)
	DeleteDocument(ctx context.Context, id, callerID string) error

	AddTag(ctx context.Context, doc *Document, tag string) (added bool, err error)
	RemoveTag(ctx context.Context, doc *Document, tag string) (removed bool, err error)
}
