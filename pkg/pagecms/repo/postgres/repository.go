package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pagecms/pagecms/pkg/pagecms"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements pagecms.Repository using PostgreSQL. Pages embed
// their content blocks as a JSONB column; there is no separate block table.
// Slug uniqueness is a database constraint, so concurrent creates racing on
// one slug resolve to a single winner without a read-then-write check.
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) pagecms.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) pagecms.Repository {
	return &Repository{db: pool}
}

// EnsureSchema creates the pages table and its slug constraint when absent.
func EnsureSchema(ctx context.Context, db DBTX) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS pages (
			id UUID PRIMARY KEY,
			type TEXT NOT NULL DEFAULT 'page',
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			data JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS pages_slug_key ON pages (slug);`

	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// handlePostgresError maps driver errors onto domain errors.
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return pagecms.ErrSlugExists
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - run EnsureSchema first")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return pagecms.ErrPageNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) ListCollections(ctx context.Context) ([]pagecms.CollectionInfo, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM pages`).Scan(&count)
	if err != nil {
		return nil, r.handlePostgresError("list collections", err)
	}

	if count == 0 {
		return []pagecms.CollectionInfo{}, nil
	}
	return []pagecms.CollectionInfo{{Name: "pages", Count: count}}, nil
}

func (r *Repository) CreatePage(ctx context.Context, page *pagecms.Page) error {
	data, err := json.Marshal(page.Data)
	if err != nil {
		return fmt.Errorf("marshal blocks: %w", err)
	}

	query := `
		INSERT INTO pages (id, type, name, slug, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.Exec(ctx, query,
		page.ID, page.Type, page.Name, page.Slug, data, page.CreatedAt, page.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create page", err)
	}

	return nil
}

func (r *Repository) GetPage(ctx context.Context, id uuid.UUID) (*pagecms.Page, error) {
	query := `
		SELECT id, type, name, slug, data, created_at, updated_at
		FROM pages WHERE id = $1`

	page, err := scanPage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pagecms.ErrPageNotFound
		}
		return nil, r.handlePostgresError("get page", err)
	}

	return page, nil
}

func (r *Repository) ListPages(ctx context.Context) ([]*pagecms.Page, error) {
	query := `
		SELECT id, type, name, slug, data, created_at, updated_at
		FROM pages ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list pages", err)
	}
	defer rows.Close()

	pages := make([]*pagecms.Page, 0)
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, r.handlePostgresError("list pages", err)
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list pages", err)
	}

	return pages, nil
}

func (r *Repository) UpdatePage(ctx context.Context, page *pagecms.Page) error {
	data, err := json.Marshal(page.Data)
	if err != nil {
		return fmt.Errorf("marshal blocks: %w", err)
	}

	query := `
		UPDATE pages SET name = $2, slug = $3, data = $4, updated_at = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		page.ID, page.Name, page.Slug, data, page.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update page", err)
	}
	if tag.RowsAffected() == 0 {
		return pagecms.ErrPageNotFound
	}

	return nil
}

func (r *Repository) DeletePage(ctx context.Context, id uuid.UUID) (*pagecms.Page, error) {
	query := `
		DELETE FROM pages WHERE id = $1
		RETURNING id, type, name, slug, data, created_at, updated_at`

	page, err := scanPage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pagecms.ErrPageNotFound
		}
		return nil, r.handlePostgresError("delete page", err)
	}

	return page, nil
}

func scanPage(row pgx.Row) (*pagecms.Page, error) {
	var (
		page      pagecms.Page
		data      []byte
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&page.ID, &page.Type, &page.Name, &page.Slug, &data, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &page.Data); err != nil {
			return nil, fmt.Errorf("unmarshal blocks: %w", err)
		}
	}
	page.CreatedAt = createdAt.UTC()
	page.UpdatedAt = updatedAt.UTC()

	return &page, nil
}
