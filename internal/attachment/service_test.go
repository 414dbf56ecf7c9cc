package attachment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory Repo for tests.
type fakeRepo struct {
	records map[string]Attachment
	seq     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]Attachment)}
}

func (r *fakeRepo) CountByArticle(_ context.Context, articleID string) (int, error) {
	n := 0
	for _, a := range r.records {
		if a.ArticleID == articleID {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) ListByArticle(_ context.Context, articleID string) ([]Attachment, error) {
	var out []Attachment
	for _, a := range r.records {
		if a.ArticleID == articleID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Attachment, error) {
	if a, ok := r.records[id]; ok {
		copied := a
		return &copied, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (r *fakeRepo) Insert(_ context.Context, a *Attachment) error {
	r.seq++
	a.ID = fmt.Sprintf("att-%d", r.seq)
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.records[a.ID] = *a
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	delete(r.records, id)
	return nil
}

func (r *fakeRepo) DeleteByArticle(_ context.Context, articleID string) error {
	for id, a := range r.records {
		if a.ArticleID == articleID {
			delete(r.records, id)
		}
	}
	return nil
}

// fakeStore is an in-memory object store for tests.
type fakeStore struct {
	objects      map[string][]byte
	uploads      []string // keys in attempt order, including failed attempts
	deletes      []string
	failUploadAt int // 1-based attempt number that fails; 0 disables
	deleteErr    error
	downloadErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) (string, error) {
	s.uploads = append(s.uploads, key)
	if s.failUploadAt > 0 && len(s.uploads) == s.failUploadAt {
		return "", errors.New("store unavailable")
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.objects[key] = b
	return "http://store.local/" + key, nil
}

func (s *fakeStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	if s.downloadErr != nil {
		return nil, s.downloadErr
	}
	b, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key: %s", key)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.deletes = append(s.deletes, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	return nil
}

func newTestService() (*Service, *fakeRepo, *fakeStore) {
	repo := newFakeRepo()
	store := newFakeStore()
	return NewService(repo, store, NewValidator(testPolicy())), repo, store
}

func uploadFile(name string, size int) File {
	return File{
		Name:        name,
		Size:        int64(size),
		ContentType: "image/jpeg",
		Content:     bytes.NewReader(bytes.Repeat([]byte{0xAB}, size)),
	}
}

func TestStoreBatchAssignsSequentialDisplayOrders(t *testing.T) {
	svc, repo, store := newTestService()
	ctx := context.Background()

	stored, err := svc.StoreBatch(ctx, "article-1", []File{
		uploadFile("a.jpg", 1024),
		uploadFile("b.png", 2048),
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)

	require.Equal(t, "a.jpg", stored[0].OriginalName)
	require.Equal(t, 1, stored[0].DisplayOrder)
	require.Equal(t, int64(1024), stored[0].Size)
	require.Equal(t, "b.png", stored[1].OriginalName)
	require.Equal(t, 2, stored[1].DisplayOrder)
	require.Equal(t, int64(2048), stored[1].Size)

	for _, a := range stored {
		require.NotEmpty(t, a.ID)
		require.Equal(t, "http://store.local/"+a.StorageKey, a.Location)
		require.Contains(t, store.objects, a.StorageKey)
	}

	listed, err := svc.ListByArticle(ctx, "article-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, []int{1, 2}, []int{listed[0].DisplayOrder, listed[1].DisplayOrder})

	n, err := repo.CountByArticle(ctx, "article-1")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestStoreBatchContinuesFromExistingCount(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.StoreBatch(ctx, "article-1", []File{
		uploadFile("a.jpg", 10),
		uploadFile("b.jpg", 10),
	})
	require.NoError(t, err)

	stored, err := svc.StoreBatch(ctx, "article-1", []File{
		uploadFile("c.jpg", 10),
		uploadFile("d.jpg", 10),
	})
	require.NoError(t, err)
	require.Equal(t, 3, stored[0].DisplayOrder)
	require.Equal(t, 4, stored[1].DisplayOrder)
}

func TestStoreBatchSkipsEmptySlots(t *testing.T) {
	svc, _, store := newTestService()

	stored, err := svc.StoreBatch(context.Background(), "article-1", []File{
		uploadFile("a.jpg", 10),
		{Name: "", Size: 0},
		uploadFile("b.jpg", 10),
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, 1, stored[0].DisplayOrder)
	require.Equal(t, 2, stored[1].DisplayOrder)
	require.Len(t, store.uploads, 2)
}

func TestStoreBatchEmptyBatchIsNoop(t *testing.T) {
	svc, repo, store := newTestService()

	stored, err := svc.StoreBatch(context.Background(), "article-1", nil)
	require.NoError(t, err)
	require.Empty(t, stored)
	require.Empty(t, store.uploads)
	require.Empty(t, repo.records)
}

func TestStoreBatchRejectsOverCountWithoutWrites(t *testing.T) {
	svc, repo, store := newTestService()

	files := make([]File, 6)
	for i := range files {
		files[i] = uploadFile("img.jpg", 10)
	}

	stored, err := svc.StoreBatch(context.Background(), "article-1", files)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, RuleCount, vErr.Rule)
	require.Empty(t, stored)
	require.Empty(t, store.uploads)
	require.Empty(t, repo.records)
}

func TestStoreBatchRejectsOversizedWithoutWrites(t *testing.T) {
	svc, repo, store := newTestService()

	// Declared size is what the policy checks; no need to allocate 10 MiB.
	oversized := File{Name: "big.jpg", Size: 10*1024*1024 + 1, Content: bytes.NewReader(nil)}

	stored, err := svc.StoreBatch(context.Background(), "article-1", []File{oversized})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, RuleSize, vErr.Rule)
	require.Empty(t, stored)
	require.Empty(t, store.uploads)
	require.Empty(t, repo.records)
}

func TestStoreBatchRejectsUnsupportedTypeWithoutWrites(t *testing.T) {
	svc, repo, store := newTestService()

	stored, err := svc.StoreBatch(context.Background(), "article-1", []File{
		uploadFile("notes.txt", 10),
	})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, RuleType, vErr.Rule)
	require.Contains(t, vErr.Message, "notes.txt")
	require.Empty(t, stored)
	require.Empty(t, store.uploads)
	require.Empty(t, repo.records)
}

func TestStoreBatchAbortsRemainingOnUploadFailure(t *testing.T) {
	svc, repo, store := newTestService()
	store.failUploadAt = 2

	stored, err := svc.StoreBatch(context.Background(), "article-1", []File{
		uploadFile("a.jpg", 10),
		uploadFile("b.jpg", 10),
		uploadFile("c.jpg", 10),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "b.jpg")

	// First file stays stored, second failed, third was never attempted.
	require.Len(t, stored, 1)
	require.Equal(t, "a.jpg", stored[0].OriginalName)
	require.Len(t, store.uploads, 2)
	require.Len(t, repo.records, 1)
}

func TestGetByIDNotFoundNamesID(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetByID(context.Background(), "missing-id")
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), "missing-id")
}

func TestFetchBytesRoundTrip(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	stored, err := svc.StoreBatch(ctx, "article-1", []File{uploadFile("a.jpg", 64)})
	require.NoError(t, err)

	rc, err := svc.FetchBytes(ctx, stored[0].StorageKey)
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Len(t, b, 64)
}

func TestFetchBytesWrapsStoreFailure(t *testing.T) {
	svc, _, store := newTestService()
	store.downloadErr = errors.New("connection refused")

	_, err := svc.FetchBytes(context.Background(), "articles/a1/1_x.jpg")
	require.ErrorIs(t, err, ErrDownload)
	require.Contains(t, err.Error(), "connection refused")
	require.False(t, errors.Is(err, ErrNotFound))
}

func TestDeleteByIDRemovesBytesAndRecord(t *testing.T) {
	svc, _, store := newTestService()
	ctx := context.Background()

	stored, err := svc.StoreBatch(ctx, "article-1", []File{uploadFile("a.jpg", 10)})
	require.NoError(t, err)
	id := stored[0].ID

	out, err := svc.DeleteByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 1, out.Deleted)
	require.Empty(t, out.StoreFailures)
	require.NotContains(t, store.objects, stored[0].StorageKey)

	_, err = svc.GetByID(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteByIDMissingReturnsNotFound(t *testing.T) {
	svc, _, store := newTestService()

	_, err := svc.DeleteByID(context.Background(), "never-created")
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), "never-created")
	require.Empty(t, store.deletes)
}

func TestDeleteByIDStoreFailureIsBestEffort(t *testing.T) {
	svc, _, store := newTestService()
	ctx := context.Background()

	stored, err := svc.StoreBatch(ctx, "article-1", []File{uploadFile("a.jpg", 10)})
	require.NoError(t, err)
	store.deleteErr = errors.New("store unreachable")

	out, err := svc.DeleteByID(ctx, stored[0].ID)
	require.NoError(t, err)
	require.Equal(t, 1, out.Deleted)
	require.Len(t, out.StoreFailures, 1)
	require.Equal(t, stored[0].StorageKey, out.StoreFailures[0].StorageKey)

	// The metadata row is gone even though the bytes were not removed.
	_, err = svc.GetByID(ctx, stored[0].ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAllForArticleCascades(t *testing.T) {
	svc, _, store := newTestService()
	ctx := context.Background()

	_, err := svc.StoreBatch(ctx, "article-1", []File{
		uploadFile("a.jpg", 10),
		uploadFile("b.jpg", 10),
		uploadFile("c.jpg", 10),
	})
	require.NoError(t, err)

	// Files of another article must survive the cascade.
	other, err := svc.StoreBatch(ctx, "article-2", []File{uploadFile("keep.jpg", 10)})
	require.NoError(t, err)

	out, err := svc.DeleteAllForArticle(ctx, "article-1")
	require.NoError(t, err)
	require.Equal(t, 3, out.Deleted)
	require.Len(t, store.deletes, 3)

	remaining, err := svc.ListByArticle(ctx, "article-1")
	require.NoError(t, err)
	require.Empty(t, remaining)

	kept, err := svc.ListByArticle(ctx, "article-2")
	require.NoError(t, err)
	require.Len(t, kept, 1)
	require.Equal(t, other[0].ID, kept[0].ID)
}

func TestDeleteAllForArticleSurvivesStoreFailures(t *testing.T) {
	svc, _, store := newTestService()
	ctx := context.Background()

	_, err := svc.StoreBatch(ctx, "article-1", []File{
		uploadFile("a.jpg", 10),
		uploadFile("b.jpg", 10),
	})
	require.NoError(t, err)
	store.deleteErr = errors.New("store unreachable")

	out, err := svc.DeleteAllForArticle(ctx, "article-1")
	require.NoError(t, err)
	require.Equal(t, 2, out.Deleted)
	require.Len(t, out.StoreFailures, 2)

	remaining, err := svc.ListByArticle(ctx, "article-1")
	require.NoError(t, err)
	require.Empty(t, remaining)
}
