package article

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/projectboard/service/internal/attachment"
	"github.com/projectboard/service/internal/middleware"
	"github.com/projectboard/service/internal/response"
)

// maxUploadMemory bounds how much of a multipart form is held in memory
// before spilling to temp files.
const maxUploadMemory = 32 << 20

// Handler holds HTTP handlers for article endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new article Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type detailResponse struct {
	Article     *Article                `json:"article"`
	Attachments []attachment.Attachment `json:"attachments"`
}

type listResponse struct {
	Articles []Article `json:"articles"`
	Page     int       `json:"page"`
	Size     int       `json:"size"`
	Total    int       `json:"total"`
}

// Create godoc
//
//	@Summary		Create an article
//	@Description	Creates an article from a multipart form; file parts named "files" are attached.
//	@Tags			articles
//	@Accept			mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Param			title	formData	string	true	"title"
//	@Param			content	formData	string	true	"content"
//	@Param			hashtag	formData	string	false	"hashtag"
//	@Param			files	formData	file	false	"attachments"
//	@Success		201	{object}	response.Envelope{data=detailResponse}
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Router			/articles [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value(middleware.AccountIDKey).(string)
	if !ok || accountID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	draft, files, err := parseArticleForm(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	a, err := h.svc.Create(r.Context(), accountID, draft, files)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeDetail(w, r, a, http.StatusCreated)
}

// Get godoc
//
//	@Summary		Get an article
//	@Description	Returns an article with its attachments in display order.
//	@Tags			articles
//	@Produce		json
//	@Param			articleID	path	string	true	"article id"
//	@Success		200	{object}	response.Envelope{data=detailResponse}
//	@Failure		404	{object}	response.Envelope
//	@Router			/articles/{articleID} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "articleID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeDetail(w, r, a, http.StatusOK)
}

// List godoc
//
//	@Summary		List articles
//	@Description	Returns a page of articles newest-first, optionally filtered by searchType/query.
//	@Tags			articles
//	@Produce		json
//	@Param			searchType	query	string	false	"title | content | id | nickname | hashtag"
//	@Param			query		query	string	false	"search term"
//	@Param			page		query	int		false	"1-based page number"
//	@Param			size		query	int		false	"page size"
//	@Success		200	{object}	response.Envelope{data=listResponse}
//	@Router			/articles [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	size := queryInt(r, "size", 10)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}

	articles, total, err := h.svc.List(r.Context(),
		SearchType(r.URL.Query().Get("searchType")), r.URL.Query().Get("query"), page, size)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, listResponse{Articles: articles, Page: page, Size: size, Total: total})
}

// Update godoc
//
//	@Summary		Update an article
//	@Description	Rewrites an article's fields and appends any uploaded files. Author only.
//	@Tags			articles
//	@Accept			mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Param			articleID	path		string	true	"article id"
//	@Param			title		formData	string	true	"title"
//	@Param			content		formData	string	true	"content"
//	@Param			hashtag		formData	string	false	"hashtag"
//	@Param			files		formData	file	false	"additional attachments"
//	@Success		200	{object}	response.Envelope{data=detailResponse}
//	@Failure		400	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/articles/{articleID} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value(middleware.AccountIDKey).(string)
	if !ok || accountID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	draft, files, err := parseArticleForm(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	a, err := h.svc.Update(r.Context(), chi.URLParam(r, "articleID"), accountID, draft, files)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeDetail(w, r, a, http.StatusOK)
}

// Delete godoc
//
//	@Summary		Delete an article
//	@Description	Deletes an article and cascades its attachments. Author only.
//	@Tags			articles
//	@Produce		json
//	@Security		BearerAuth
//	@Param			articleID	path	string	true	"article id"
//	@Success		200	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/articles/{articleID} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value(middleware.AccountIDKey).(string)
	if !ok || accountID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "articleID"), accountID); err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, nil)
}

func (h *Handler) writeDetail(w http.ResponseWriter, r *http.Request, a *Article, status int) {
	files, err := h.svc.Attachments(r.Context(), a.ID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.JSON(w, status, response.Envelope{
		Success: true,
		Data:    detailResponse{Article: a, Attachments: files},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var vErr *attachment.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.BadRequest(w, vErr.Message)
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotOwner):
		response.Forbidden(w, err.Error())
	default:
		response.InternalError(w)
	}
}

// parseArticleForm extracts the article draft and candidate files from a
// multipart form. Empty file parts are carried through as empty candidates;
// the attachment validator skips them.
func parseArticleForm(r *http.Request) (Draft, []attachment.File, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return Draft{}, nil, errors.New("invalid multipart form")
	}

	draft := Draft{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
	}
	if draft.Title == "" || draft.Content == "" {
		return Draft{}, nil, errors.New("title and content are required")
	}
	if tag := r.FormValue("hashtag"); tag != "" {
		draft.Hashtag = &tag
	}

	var files []attachment.File
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			f, err := fh.Open()
			if err != nil {
				return Draft{}, nil, errors.New("unreadable file part")
			}
			files = append(files, attachment.File{
				Name:        fh.Filename,
				Size:        fh.Size,
				ContentType: fh.Header.Get("Content-Type"),
				Content:     f,
			})
		}
	}

	return draft, files, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
