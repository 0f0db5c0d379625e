package sitecontent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ListResult is the outcome of a read that degrades instead of failing.
// Degraded distinguishes a truly empty collection from one that could not
// be read; Cause carries the underlying failure for logging.
type ListResult struct {
	Items    []*Document
	Degraded bool
	Cause    error
}

// Store provides CRUD over one named collection of a Repository. It owns
// document identity and timestamps: ids are minted on create, and
// caller-supplied values for store-owned keys are discarded.
type Store struct {
	collection string
	repo       Repository
	logger     *slog.Logger
	now        func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for degraded-read reporting.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a store bound to a collection name.
func NewStore(collection string, repo Repository, opts ...StoreOption) *Store {
	s := &Store{
		collection: collection,
		repo:       repo,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Collection returns the collection name this store is bound to.
func (s *Store) Collection() string {
	return s.collection
}

// List returns the collection's documents newest first. On backend
// failure it returns an empty, degraded result rather than an error: the
// typical caller is rendering a feed and an empty feed beats a crashed
// page. The failure is logged and carried in the result for callers that
// want to surface it.
func (s *Store) List(ctx context.Context) ListResult {
	docs, err := s.repo.ListDocuments(ctx, s.collection)
	if err != nil {
		s.logger.Error("degraded read: list failed, returning empty",
			"collection", s.collection, "error", err)
		return ListResult{Items: []*Document{}, Degraded: true, Cause: err}
	}
	if docs == nil {
		docs = []*Document{}
	}
	return ListResult{Items: docs}
}

// Get returns a document by id. Not-found is reported as ErrNotFound;
// any other failure is ErrStoreUnavailable territory and is propagated.
func (s *Store) Get(ctx context.Context, id string) (*Document, error) {
	doc, err := s.repo.GetDocument(ctx, s.collection, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Collection: s.collection, ID: id, Op: "get", Err: err}
	}
	return doc, nil
}

// Create persists a new document from the given fields. The store mints
// the id and sets CreatedAt == UpdatedAt. Reserved keys in fields are
// dropped. Empty fields fail with ErrValidation; nothing is persisted on
// any failure (single-document atomic write).
func (s *Store) Create(ctx context.Context, fields map[string]any) (*Document, error) {
	fields = stripReserved(fields)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty fields", ErrValidation)
	}

	now := s.now().UTC()
	doc := &Document{
		ID:         uuid.NewString(),
		Collection: s.collection,
		Fields:     fields,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return nil, &StoreError{Collection: s.collection, ID: doc.ID, Op: "create", Err: err}
	}
	return doc, nil
}

// Update shallow-merges fields into an existing document and bumps
// UpdatedAt. Top-level keys overwrite; nested values are replaced
// wholesale, not deep-merged. An empty merge is legal and still advances
// UpdatedAt. Fails with ErrNotFound if the id does not exist.
func (s *Store) Update(ctx context.Context, id string, fields map[string]any) (*Document, error) {
	existing, err := s.repo.GetDocument(ctx, s.collection, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Collection: s.collection, ID: id, Op: "update", Err: err}
	}

	merged := existing.Clone()
	for k, v := range stripReserved(fields) {
		merged.Fields[k] = v
	}
	merged.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateDocument(ctx, merged); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Collection: s.collection, ID: id, Op: "update", Err: err}
	}
	return merged, nil
}

// Delete removes a document. It is idempotent: deleting a nonexistent id
// is not an error, and the returned bool reports whether a document
// existed to be removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	existed, err := s.repo.DeleteDocument(ctx, s.collection, id)
	if err != nil {
		return false, &StoreError{Collection: s.collection, ID: id, Op: "delete", Err: err}
	}
	return existed, nil
}

func stripReserved(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	for _, k := range reservedFieldKeys {
		delete(out, k)
	}
	return out
}

// TypedList is ListResult for one typed collection.
type TypedList[T Record] struct {
	Items    []T
	Degraded bool
	Cause    error
}

// Collection binds a Store to a typed record, recovering type safety over
// the store's open field maps. Records round-trip through JSON, so the
// record's json tags define its field names.
type Collection[T Record] struct {
	store *Store
}

// NewCollection creates a typed view over a store.
func NewCollection[T Record](store *Store) *Collection[T] {
	return &Collection[T]{store: store}
}

// Store exposes the underlying untyped store.
func (c *Collection[T]) Store() *Store {
	return c.store
}

// List returns decoded records newest first, degrading like Store.List.
// Documents that fail to decode are skipped, not fatal.
func (c *Collection[T]) List(ctx context.Context) TypedList[T] {
	res := c.store.List(ctx)
	out := TypedList[T]{Items: make([]T, 0, len(res.Items)), Degraded: res.Degraded, Cause: res.Cause}
	for _, doc := range res.Items {
		rec, err := decodeRecord[T](doc)
		if err != nil {
			c.store.logger.Error("skipping undecodable document",
				"collection", c.store.collection, "id", doc.ID, "error", err)
			continue
		}
		out.Items = append(out.Items, rec)
	}
	return out
}

// Get returns one decoded record or ErrNotFound.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	doc, err := c.store.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	return decodeRecord[T](doc)
}

// Create validates and persists a typed record, returning it with its
// minted id and timestamps filled in.
func (c *Collection[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := rec.Validate(); err != nil {
		return zero, err
	}
	fields, err := encodeRecord(rec)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	doc, err := c.store.Create(ctx, fields)
	if err != nil {
		return zero, err
	}
	return decodeRecord[T](doc)
}

// Update shallow-merges fields into the record's document.
func (c *Collection[T]) Update(ctx context.Context, id string, fields map[string]any) (T, error) {
	var zero T
	doc, err := c.store.Update(ctx, id, fields)
	if err != nil {
		return zero, err
	}
	return decodeRecord[T](doc)
}

// Delete removes the record's document, idempotently.
func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	return c.store.Delete(ctx, id)
}

func encodeRecord(rec any) (map[string]any, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return stripReserved(fields), nil
}

func decodeRecord[T Record](doc *Document) (T, error) {
	var rec T
	raw, err := json.Marshal(doc.Fields)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("decode %s/%s: %w", doc.Collection, doc.ID, err)
	}
	// Store-owned attributes come from the document, not the field map.
	setMeta(&rec, doc)
	return rec, nil
}

// metaCarrier is implemented by every record via the embedded Meta.
type metaCarrier interface {
	setMeta(id string, createdAt, updatedAt time.Time)
}

func (m *Meta) setMeta(id string, createdAt, updatedAt time.Time) {
	m.ID = id
	m.CreatedAt = createdAt
	m.UpdatedAt = updatedAt
}

func setMeta[T Record](rec *T, doc *Document) {
	if mc, ok := any(rec).(metaCarrier); ok {
		mc.setMeta(doc.ID, doc.CreatedAt, doc.UpdatedAt)
	}
}
