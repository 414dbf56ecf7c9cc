package attachment

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/projectboard/service/internal/middleware"
	"github.com/projectboard/service/internal/response"
)

// ArticleAuthors resolves the author of an article so the delete endpoint
// can enforce ownership without this package importing the article package.
type ArticleAuthors interface {
	AuthorID(ctx context.Context, articleID string) (string, error)
}

// Handler holds HTTP handlers for attachment endpoints.
type Handler struct {
	svc     *Service
	authors ArticleAuthors
}

// NewHandler creates a new attachment Handler.
func NewHandler(svc *Service, authors ArticleAuthors) *Handler {
	return &Handler{svc: svc, authors: authors}
}

// Download godoc
//
//	@Summary		Download an attachment
//	@Description	Streams the attachment bytes as an octet-stream download.
//	@Tags			files
//	@Produce		octet-stream
//	@Param			fileID	path	string	true	"attachment id"
//	@Success		200	{file}		file
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/files/download/{fileID} [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fileID")

	a, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w)
		return
	}

	rc, err := h.svc.FetchBytes(r.Context(), a.StorageKey)
	if err != nil {
		log.Printf("attachment: download failed for %s: %v", id, err)
		response.Error(w, http.StatusInternalServerError, "file download failed")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+encodeFilename(a.OriginalName))
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, rc); err != nil {
		log.Printf("attachment: streaming %s aborted: %v", id, err)
	}
}

// Delete godoc
//
//	@Summary		Delete an attachment
//	@Description	Deletes an attachment. Only the owning article's author may delete it.
//	@Tags			files
//	@Produce		json
//	@Security		BearerAuth
//	@Param			fileID	path	string	true	"attachment id"
//	@Success		200	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/files/{fileID} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value(middleware.AccountIDKey).(string)
	if !ok || accountID == "" {
		response.Forbidden(w, "authentication required")
		return
	}

	id := chi.URLParam(r, "fileID")
	a, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w)
		return
	}

	authorID, err := h.authors.AuthorID(r.Context(), a.ArticleID)
	if err != nil {
		response.InternalError(w)
		return
	}
	if authorID != accountID {
		response.Forbidden(w, "only the article author can delete its attachments")
		return
	}

	if _, err := h.svc.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, nil)
}

// encodeFilename percent-encodes a filename for RFC 5987 Content-Disposition,
// encoding spaces as %20 rather than "+".
func encodeFilename(name string) string {
	return strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}
