package attachment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func testPolicy() Policy {
	return Policy{
		MaxCount:          5,
		MaxFileSize:       10 * 1024 * 1024,
		AllowedExtensions: []string{"jpg", "jpeg", "png", "gif", "tiff", "tif", "raw"},
	}
}

func candidate(name string, size int64) File {
	return File{Name: name, Size: size, ContentType: "application/octet-stream"}
}

func TestValidateAcceptsValidBatch(t *testing.T) {
	v := NewValidator(testPolicy())

	files := []File{
		candidate("a.jpg", 1024),
		candidate("b.png", 2048),
		candidate("c.GIF", 512), // extension matching is case-insensitive
	}
	require.NoError(t, v.Validate(files, 0))
	require.NoError(t, v.Validate(files, 2))
}

func TestValidateEmptyBatchIsNoop(t *testing.T) {
	v := NewValidator(testPolicy())

	require.NoError(t, v.Validate(nil, 0))
	require.NoError(t, v.Validate([]File{}, 5))

	// A batch of only empty slots passes even at the count limit.
	onlyEmpty := []File{candidate("", 0), candidate("ignored.exe", 0)}
	require.NoError(t, v.Validate(onlyEmpty, 5))
}

func TestValidateRejectsCountOverLimit(t *testing.T) {
	v := NewValidator(testPolicy())

	files := make([]File, 6)
	for i := range files {
		files[i] = candidate("img.jpg", 100)
	}

	err := v.Validate(files, 0)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, RuleCount, vErr.Rule)
	require.Contains(t, vErr.Message, "5")
	require.Contains(t, vErr.Message, "existing: 0")
	require.Contains(t, vErr.Message, "new: 6")
}

func TestValidateCountsExistingAttachments(t *testing.T) {
	v := NewValidator(testPolicy())

	files := []File{candidate("a.jpg", 1), candidate("b.jpg", 1), candidate("c.jpg", 1)}
	require.NoError(t, v.Validate(files, 2))

	err := v.Validate(files, 3)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, RuleCount, vErr.Rule)
}

func TestValidateSkipsEmptyCandidatesInCount(t *testing.T) {
	v := NewValidator(testPolicy())

	files := []File{
		candidate("a.jpg", 1),
		candidate("", 0),
		candidate("", 0),
		candidate("b.jpg", 1),
	}
	// 2 non-empty files against 3 existing is exactly at the limit.
	require.NoError(t, v.Validate(files, 3))
}

func TestValidateRejectsOversizedFile(t *testing.T) {
	v := NewValidator(testPolicy())

	files := []File{
		candidate("ok.jpg", 10*1024*1024), // exactly at the limit passes
		candidate("huge.png", 10*1024*1024+1),
	}

	err := v.Validate(files, 0)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, RuleSize, vErr.Rule)
	require.Equal(t, "huge.png", vErr.FileName)
	require.Contains(t, vErr.Message, "huge.png")
}

func TestValidateRejectsUnsupportedType(t *testing.T) {
	v := NewValidator(testPolicy())

	for _, name := range []string{"notes.txt", "archive.zip", "noextension", "trailingdot."} {
		err := v.Validate([]File{candidate(name, 100)}, 0)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, "expected rejection for %q", name)
		require.Equal(t, RuleType, vErr.Rule)
		require.Equal(t, name, vErr.FileName)
	}
}

func TestValidationErrorIsPlainError(t *testing.T) {
	v := NewValidator(testPolicy())

	err := v.Validate([]File{candidate("notes.txt", 100)}, 0)
	require.Error(t, err)
	require.Equal(t, err.Error(), "unsupported file type: notes.txt")

	// It must not be confused with lookup errors.
	require.False(t, errors.Is(err, ErrNotFound))
}
