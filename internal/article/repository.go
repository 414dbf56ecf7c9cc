// Package article manages board articles and their persistence.
package article

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Article represents one board post.
type Article struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"authorId"`
	AuthorNickname string    `json:"authorNickname"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Hashtag        *string   `json:"hashtag,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SearchType selects which field a board search matches against.
type SearchType string

const (
	SearchTitle    SearchType = "title"
	SearchContent  SearchType = "content"
	SearchAuthor   SearchType = "id" // author username
	SearchNickname SearchType = "nickname"
	SearchHashtag  SearchType = "hashtag"
)

// ErrNotFound is returned when an article does not exist.
var ErrNotFound = errors.New("article not found")

// Repository handles all article database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const selectArticle = `
	SELECT a.id, a.user_account_id, ua.nickname, a.title, a.content, a.hashtag, a.created_at, a.updated_at
	FROM articles a
	JOIN user_accounts ua ON ua.id = a.user_account_id`

// Create inserts a new article and returns the created record.
func (r *Repository) Create(ctx context.Context, authorID, title, content string, hashtag *string) (*Article, error) {
	var id string
	err := r.db.QueryRow(ctx,
		`INSERT INTO articles (user_account_id, title, content, hashtag)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		authorID, title, content, hashtag,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches an article by its UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Article, error) {
	a := &Article{}
	err := r.db.QueryRow(ctx, selectArticle+` WHERE a.id = $1`, id).Scan(
		&a.ID, &a.AuthorID, &a.AuthorNickname, &a.Title, &a.Content,
		&a.Hashtag, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article by id: %w", err)
	}
	return a, nil
}

// Update rewrites an article's editable fields.
func (r *Repository) Update(ctx context.Context, id, title, content string, hashtag *string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE articles
		 SET title = $2, content = $3, hashtag = $4, updated_at = now()
		 WHERE id = $1`,
		id, title, content, hashtag,
	)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an article row. Attachment records must be cascaded by the
// caller before this runs — the foreign key rejects orphaning them.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of articles newest-first, optionally filtered by a
// search. Returns the page and the total match count.
func (r *Repository) List(ctx context.Context, searchType SearchType, query string, page, size int) ([]Article, int, error) {
	where, args := searchClause(searchType, query)

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM articles a JOIN user_accounts ua ON ua.id = a.user_account_id`+where,
		args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	args = append(args, size, (page-1)*size)
	rows, err := r.db.Query(ctx,
		selectArticle+where+fmt.Sprintf(` ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var out []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(
			&a.ID, &a.AuthorID, &a.AuthorNickname, &a.Title, &a.Content,
			&a.Hashtag, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	return out, total, nil
}

func searchClause(searchType SearchType, query string) (string, []interface{}) {
	if query == "" {
		return "", nil
	}
	switch searchType {
	case SearchTitle:
		return ` WHERE a.title ILIKE '%' || $1 || '%'`, []interface{}{query}
	case SearchContent:
		return ` WHERE a.content ILIKE '%' || $1 || '%'`, []interface{}{query}
	case SearchAuthor:
		return ` WHERE ua.username = $1`, []interface{}{query}
	case SearchNickname:
		return ` WHERE ua.nickname ILIKE '%' || $1 || '%'`, []interface{}{query}
	case SearchHashtag:
		return ` WHERE a.hashtag = $1`, []interface{}{query}
	default:
		return ` WHERE a.title ILIKE '%' || $1 || '%'`, []interface{}{query}
	}
}
