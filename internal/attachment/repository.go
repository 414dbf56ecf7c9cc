package attachment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the persistence contract for attachment records. The service
// depends on this interface; Repository is the PostgreSQL implementation.
type Repo interface {
	CountByArticle(ctx context.Context, articleID string) (int, error)
	ListByArticle(ctx context.Context, articleID string) ([]Attachment, error)
	GetByID(ctx context.Context, id string) (*Attachment, error)
	Insert(ctx context.Context, a *Attachment) error
	Delete(ctx context.Context, id string) error
	DeleteByArticle(ctx context.Context, articleID string) error
}

// Repository handles all attachment database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const attachmentColumns = `id, article_id, original_file_name, storage_key, location, file_size, display_order, created_at, updated_at`

// CountByArticle returns how many attachments an article currently has.
func (r *Repository) CountByArticle(ctx context.Context, articleID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM article_attachments WHERE article_id = $1`,
		articleID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count attachments: %w", err)
	}
	return n, nil
}

// ListByArticle returns an article's attachments ascending by display order.
func (r *Repository) ListByArticle(ctx context.Context, articleID string) ([]Attachment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+attachmentColumns+`
		 FROM article_attachments
		 WHERE article_id = $1
		 ORDER BY display_order ASC`,
		articleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var out []Attachment
	for rows.Next() {
		var a Attachment
		if err := scanAttachment(rows, &a); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return out, nil
}

// GetByID fetches a single attachment record.
func (r *Repository) GetByID(ctx context.Context, id string) (*Attachment, error) {
	a := &Attachment{}
	err := scanAttachment(r.db.QueryRow(ctx,
		`SELECT `+attachmentColumns+` FROM article_attachments WHERE id = $1`,
		id,
	), a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get attachment by id: %w", err)
	}
	return a, nil
}

// Insert persists a new attachment record and fills in its generated fields.
func (r *Repository) Insert(ctx context.Context, a *Attachment) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO article_attachments
		   (article_id, original_file_name, storage_key, location, file_size, display_order)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		a.ArticleID, a.OriginalName, a.StorageKey, a.Location, a.Size, a.DisplayOrder,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

// Delete removes a single attachment record.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM article_attachments WHERE id = $1`, id,
	); err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}

// DeleteByArticle removes all attachment records for an article in one
// statement.
func (r *Repository) DeleteByArticle(ctx context.Context, articleID string) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM article_attachments WHERE article_id = $1`, articleID,
	); err != nil {
		return fmt.Errorf("delete attachments for article: %w", err)
	}
	return nil
}

func scanAttachment(row pgx.Row, a *Attachment) error {
	return row.Scan(
		&a.ID, &a.ArticleID, &a.OriginalName, &a.StorageKey,
		&a.Location, &a.Size, &a.DisplayOrder, &a.CreatedAt, &a.UpdatedAt,
	)
}
