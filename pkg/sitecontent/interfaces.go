package sitecontent

import (
	"context"
	"io"
	"time"
)

// Repository defines the interface for document persistence. Each method
// is a single remote read or write with per-document atomicity; no
// cross-document transactions are offered.
type Repository interface {
	// ListDocuments returns all documents in a collection ordered by
	// CreatedAt descending. An empty collection yields an empty slice.
	ListDocuments(ctx context.Context, collection string) ([]*Document, error)

	// GetDocument returns a document by id, or ErrNotFound.
	GetDocument(ctx context.Context, collection, id string) (*Document, error)

	// CreateDocument persists a new document. ID and timestamps are
	// expected to be set by the caller (the Store).
	CreateDocument(ctx context.Context, doc *Document) error

	// UpdateDocument replaces the stored fields of an existing document
	// wholesale. Returns ErrNotFound if the id does not exist.
	UpdateDocument(ctx context.Context, doc *Document) error

	// DeleteDocument removes a document, reporting whether it existed.
	// Deleting a nonexistent id is not an error.
	DeleteDocument(ctx context.Context, collection, id string) (bool, error)
}

// BlobStore defines the interface for blob storage backends.
type BlobStore interface {
	// Upload stores the reader's content under params.ObjectKey.
	Upload(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download returns the content stored under objectKey.
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, objectKey string) error

	// GetURL returns a publicly dereferenceable URL for the object.
	GetURL(ctx context.Context, objectKey string) (string, error)

	// GetObjectMeta retrieves storage-side metadata for an object.
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// UploadParams contains parameters for storing an object.
type UploadParams struct {
	ObjectKey   string
	ContentType string
	// Metadata is attached to the stored object (uploader identity,
	// original filename).
	Metadata map[string]string
}

// ObjectMeta contains metadata about an object in storage.
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	Metadata    map[string]string
}

// Identity is the authenticated caller as exposed by the auth
// collaborator. Opaque to this layer beyond UID, which is used for
// upload attribution.
type Identity struct {
	UID string
}
