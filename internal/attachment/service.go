package attachment

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/projectboard/service/internal/storage"
)

// Service orchestrates attachment uploads and deletions: validate, derive a
// storage key, store bytes, then persist the metadata record — and the
// reverse for deletes.
type Service struct {
	repo      Repo
	store     storage.Storage
	validator *Validator
}

// NewService creates a new attachment Service.
func NewService(repo Repo, store storage.Storage, validator *Validator) *Service {
	return &Service{repo: repo, store: store, validator: validator}
}

// StoreFailure records one best-effort object-store delete that failed.
type StoreFailure struct {
	StorageKey string
	Err        error
}

// DeleteOutcome reports a delete operation. Metadata failures are returned
// as errors; object-store delete failures are best-effort and collected
// here so callers can see them without the operation failing.
type DeleteOutcome struct {
	Deleted       int
	StoreFailures []StoreFailure
}

// StoreBatch validates and stores a batch of candidate files for an article,
// returning the created records in input order. Display orders continue from
// the article's existing attachment count, so N stored files on top of E
// existing ones receive orders E+1..E+N.
//
// Validation is all-or-nothing and runs before any write. After that, each
// file is uploaded and its record inserted independently, strictly in input
// order; if an upload fails mid-batch, the remaining files are not attempted
// and files already stored in this batch stay stored.
//
// Known race: two concurrent batches for the same article can read the same
// existing count and assign overlapping display orders. Nothing serializes
// per-article uploads here.
func (s *Service) StoreBatch(ctx context.Context, articleID string, files []File) ([]Attachment, error) {
	if len(files) == 0 {
		return nil, nil
	}

	existing, err := s.repo.CountByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("count existing attachments: %w", err)
	}

	if err := s.validator.Validate(files, existing); err != nil {
		return nil, err
	}

	order := existing + 1
	var stored []Attachment
	for _, f := range files {
		if f.IsEmpty() {
			continue
		}

		key := DeriveKey(articleID, order, f.Name)
		location, err := s.store.Upload(ctx, key, f.Content, f.Size, f.ContentType)
		if err != nil {
			return stored, fmt.Errorf("upload %q: %w", f.Name, err)
		}

		a := &Attachment{
			ArticleID:    articleID,
			OriginalName: f.Name,
			StorageKey:   key,
			Location:     location,
			Size:         f.Size,
			DisplayOrder: order,
		}
		if err := s.repo.Insert(ctx, a); err != nil {
			return stored, fmt.Errorf("save attachment record for %q: %w", f.Name, err)
		}

		stored = append(stored, *a)
		order++
	}

	return stored, nil
}

// ListByArticle returns an article's attachments ascending by display order.
func (s *Service) ListByArticle(ctx context.Context, articleID string) ([]Attachment, error) {
	return s.repo.ListByArticle(ctx, articleID)
}

// GetByID returns a single attachment. The error wraps ErrNotFound and names
// the missing id when the record does not exist.
func (s *Service) GetByID(ctx context.Context, id string) (*Attachment, error) {
	return s.repo.GetByID(ctx, id)
}

// FetchBytes opens the stored bytes for a storage key. Failures wrap
// ErrDownload with the underlying store error, distinct from ErrNotFound.
func (s *Service) FetchBytes(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	rc, err := s.store.Download(ctx, storageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	return rc, nil
}

// DeleteByID removes one attachment. The object-store delete is best-effort:
// a failure there is logged and collected in the outcome, and the metadata
// row is deleted regardless so a transient store outage cannot strand the
// record.
func (s *Service) DeleteByID(ctx context.Context, id string) (*DeleteOutcome, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &DeleteOutcome{}
	if err := s.store.Delete(ctx, a.StorageKey); err != nil {
		log.Printf("attachment: store delete failed for key %s: %v", a.StorageKey, err)
		out.StoreFailures = append(out.StoreFailures, StoreFailure{StorageKey: a.StorageKey, Err: err})
	}

	if err := s.repo.Delete(ctx, a.ID); err != nil {
		return out, fmt.Errorf("delete attachment record %s: %w", a.ID, err)
	}
	out.Deleted = 1
	return out, nil
}

// DeleteAllForArticle removes every attachment of an article: best-effort
// object-store deletes per item, then one bulk metadata delete. Invoked as a
// cascade when the owning article is removed.
func (s *Service) DeleteAllForArticle(ctx context.Context, articleID string) (*DeleteOutcome, error) {
	files, err := s.repo.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("list attachments for cascade: %w", err)
	}

	out := &DeleteOutcome{}
	for _, a := range files {
		if err := s.store.Delete(ctx, a.StorageKey); err != nil {
			log.Printf("attachment: store delete failed for key %s: %v", a.StorageKey, err)
			out.StoreFailures = append(out.StoreFailures, StoreFailure{StorageKey: a.StorageKey, Err: err})
		}
	}

	if err := s.repo.DeleteByArticle(ctx, articleID); err != nil {
		return out, fmt.Errorf("delete attachment records for article %s: %w", articleID, err)
	}
	out.Deleted = len(files)
	return out, nil
}
