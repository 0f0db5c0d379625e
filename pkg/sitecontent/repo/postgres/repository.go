package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amicale-dev/site-content/pkg/sitecontent"
)

// DBTX is an interface that allows us to use either a database connection
// or a transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements sitecontent.Repository using PostgreSQL. Documents
// are rows in a single table with their open fields stored as jsonb, so
// each write stays a single-row atomic operation.
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository.
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with a connection pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// mapError translates driver failures into the store taxonomy:
// connectivity problems become ErrStoreUnavailable, missing rows become
// ErrNotFound, anything else is wrapped as-is.
func mapError(operation string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sitecontent.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("%w: documents table missing, migration required", sitecontent.ErrStoreUnavailable)
		case "23505": // unique_violation
			return fmt.Errorf("document already exists")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	// Anything that is not a server-reported error is treated as the
	// backend being unreachable.
	return fmt.Errorf("%w: %s: %v", sitecontent.ErrStoreUnavailable, operation, err)
}

func (r *Repository) ListDocuments(ctx context.Context, collection string) ([]*sitecontent.Document, error) {
	query := `
        SELECT id, collection, fields, created_at, updated_at
        FROM documents
        WHERE collection = $1
        ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, query, collection)
	if err != nil {
		return nil, mapError("list documents", err)
	}
	defer rows.Close()

	var result []*sitecontent.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list documents", err)
	}
	return result, nil
}

func (r *Repository) GetDocument(ctx context.Context, collection, id string) (*sitecontent.Document, error) {
	query := `
        SELECT id, collection, fields, created_at, updated_at
        FROM documents
        WHERE collection = $1 AND id = $2`

	doc, err := scanDocument(r.db.QueryRow(ctx, query, collection, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sitecontent.ErrNotFound
		}
		return nil, mapError("get document", err)
	}
	return doc, nil
}

func (r *Repository) CreateDocument(ctx context.Context, doc *sitecontent.Document) error {
	fields, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	query := `
        INSERT INTO documents (id, collection, fields, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)`

	_, err = r.db.Exec(ctx, query, doc.ID, doc.Collection, fields, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return mapError("create document", err)
	}
	return nil
}

func (r *Repository) UpdateDocument(ctx context.Context, doc *sitecontent.Document) error {
	fields, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	query := `
        UPDATE documents
        SET fields = $3, updated_at = $4
        WHERE collection = $1 AND id = $2`

	tag, err := r.db.Exec(ctx, query, doc.Collection, doc.ID, fields, doc.UpdatedAt)
	if err != nil {
		return mapError("update document", err)
	}
	if tag.RowsAffected() == 0 {
		return sitecontent.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteDocument(ctx context.Context, collection, id string) (bool, error) {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`

	tag, err := r.db.Exec(ctx, query, collection, id)
	if err != nil {
		return false, mapError("delete document", err)
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*sitecontent.Document, error) {
	var (
		doc sitecontent.Document
		raw []byte
	)
	if err := row.Scan(&doc.ID, &doc.Collection, &raw, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &doc.Fields); err != nil {
		return nil, fmt.Errorf("decode fields for %s: %w", doc.ID, err)
	}
	if doc.Fields == nil {
		doc.Fields = map[string]any{}
	}
	return &doc, nil
}
