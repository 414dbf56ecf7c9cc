// Package attachment manages files attached to articles: acceptance policy,
// object-store persistence, ordered metadata records, and cascade deletion.
package attachment

import (
	"errors"
	"io"
	"time"
)

// Attachment is the metadata record for one file stored against an article.
// The bytes themselves live in the object store under StorageKey; a record
// is only written after its bytes are confirmed stored.
type Attachment struct {
	ID           string    `json:"id"`
	ArticleID    string    `json:"articleId"`
	OriginalName string    `json:"originalName"`
	StorageKey   string    `json:"-"`
	Location     string    `json:"location"`
	Size         int64     `json:"size"`
	DisplayOrder int       `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// File is one candidate upload in a batch. A zero Size marks an empty form
// slot; empty candidates are skipped by validation and never stored.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Content     io.Reader
}

// IsEmpty reports whether the candidate is an empty upload slot.
func (f File) IsEmpty() bool {
	return f.Size == 0
}

// ErrNotFound is returned when an attachment does not exist. Lookup errors
// wrap it together with the missing id.
var ErrNotFound = errors.New("attachment not found")

// ErrDownload is returned when the object store fails to serve an
// attachment's bytes. It is distinct from ErrNotFound: the metadata record
// may exist while the store is unreachable.
var ErrDownload = errors.New("attachment download failed")
