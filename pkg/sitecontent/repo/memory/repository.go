package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/amicale-dev/site-content/pkg/sitecontent"
)

// Repository implements sitecontent.Repository using in-memory storage.
// Intended for tests and development.
type Repository struct {
	mu          sync.RWMutex
	collections map[string]map[string]*sitecontent.Document
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{
		collections: make(map[string]map[string]*sitecontent.Document),
	}
}

func (r *Repository) ListDocuments(ctx context.Context, collection string) ([]*sitecontent.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := r.collections[collection]
	result := make([]*sitecontent.Document, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.Clone())
	}

	// Sort by created_at descending; break ties by id so the order is
	// deterministic.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (r *Repository) GetDocument(ctx context.Context, collection, id string) (*sitecontent.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.collections[collection][id]
	if !exists {
		return nil, sitecontent.ErrNotFound
	}
	return doc.Clone(), nil
}

func (r *Repository) CreateDocument(ctx context.Context, doc *sitecontent.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.collections[doc.Collection] == nil {
		r.collections[doc.Collection] = make(map[string]*sitecontent.Document)
	}
	// Store a copy to avoid external modifications.
	r.collections[doc.Collection][doc.ID] = doc.Clone()
	return nil
}

func (r *Repository) UpdateDocument(ctx context.Context, doc *sitecontent.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.collections[doc.Collection][doc.ID]; !exists {
		return sitecontent.ErrNotFound
	}
	r.collections[doc.Collection][doc.ID] = doc.Clone()
	return nil
}

func (r *Repository) DeleteDocument(ctx context.Context, collection, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.collections[collection][id]; !exists {
		return false, nil
	}
	delete(r.collections[collection], id)
	return true, nil
}
