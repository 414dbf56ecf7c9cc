package article

import (
	"context"
	"errors"
	"fmt"

	"github.com/projectboard/service/internal/attachment"
)

// ErrNotOwner is returned when an account tries to modify someone else's
// article.
var ErrNotOwner = errors.New("article does not belong to the requester")

// Draft carries the editable fields of an article.
type Draft struct {
	Title   string
	Content string
	Hashtag *string
}

// Service contains business logic for articles, delegating file handling to
// the attachment service.
type Service struct {
	repo        *Repository
	attachments *attachment.Service
}

// NewService creates a new article Service.
func NewService(repo *Repository, attachments *attachment.Service) *Service {
	return &Service{repo: repo, attachments: attachments}
}

// Create stores a new article and then its attachment batch. A failed batch
// leaves the article in place; the attachment subsystem's own partial-failure
// rules apply to the files.
func (s *Service) Create(ctx context.Context, authorID string, draft Draft, files []attachment.File) (*Article, error) {
	a, err := s.repo.Create(ctx, authorID, draft.Title, draft.Content, draft.Hashtag)
	if err != nil {
		return nil, err
	}
	if _, err := s.attachments.StoreBatch(ctx, a.ID, files); err != nil {
		return a, fmt.Errorf("store article files: %w", err)
	}
	return a, nil
}

// Update rewrites an article's fields and appends any new files. Only the
// author may update.
func (s *Service) Update(ctx context.Context, id, accountID string, draft Draft, files []attachment.File) (*Article, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != accountID {
		return nil, ErrNotOwner
	}

	if err := s.repo.Update(ctx, id, draft.Title, draft.Content, draft.Hashtag); err != nil {
		return nil, err
	}
	if _, err := s.attachments.StoreBatch(ctx, id, files); err != nil {
		return nil, fmt.Errorf("store article files: %w", err)
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes an article and cascades its attachments first: store bytes
// best-effort, metadata in bulk, then the article row. Only the author may
// delete.
func (s *Service) Delete(ctx context.Context, id, accountID string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.AuthorID != accountID {
		return ErrNotOwner
	}

	if _, err := s.attachments.DeleteAllForArticle(ctx, id); err != nil {
		return fmt.Errorf("cascade article files: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

// GetByID returns an article by its UUID.
func (s *Service) GetByID(ctx context.Context, id string) (*Article, error) {
	return s.repo.GetByID(ctx, id)
}

// Attachments returns an article's attachments ascending by display order.
func (s *Service) Attachments(ctx context.Context, articleID string) ([]attachment.Attachment, error) {
	return s.attachments.ListByArticle(ctx, articleID)
}

// List returns a page of articles with the total match count.
func (s *Service) List(ctx context.Context, searchType SearchType, query string, page, size int) ([]Article, int, error) {
	return s.repo.List(ctx, searchType, query, page, size)
}

// AuthorID resolves the author of an article. Satisfies the attachment
// package's ownership-check contract.
func (s *Service) AuthorID(ctx context.Context, articleID string) (string, error) {
	a, err := s.repo.GetByID(ctx, articleID)
	if err != nil {
		return "", err
	}
	return a.AuthorID, nil
}
