package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/projectboard/service/internal/middleware"
	"github.com/projectboard/service/internal/response"
)

// Handler holds HTTP handlers for account endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new account Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Nickname string  `json:"nickname"`
	Email    *string `json:"email,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}

// Register godoc
//
//	@Summary		Register an account
//	@Description	Creates a board account and returns a session token.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		registerRequest	true	"account details"
//	@Success		201		{object}	response.Envelope{data=sessionResponse}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Router			/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" || req.Nickname == "" {
		response.BadRequest(w, "username, password, and nickname are required")
		return
	}

	token, a, err := h.svc.Register(r.Context(), req.Username, req.Password, req.Nickname, req.Email)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			response.Conflict(w, "username is already taken")
			return
		}
		response.InternalError(w)
		return
	}

	response.Created(w, sessionResponse{Token: token, Account: a})
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Verifies credentials and returns a session token.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		loginRequest	true	"credentials"
//	@Success		200		{object}	response.Envelope{data=sessionResponse}
//	@Failure		401		{object}	response.Envelope
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	token, a, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, err.Error())
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, sessionResponse{Token: token, Account: a})
}

// GetMe godoc
//
//	@Summary		Get current account
//	@Description	Returns the profile of the currently authenticated account.
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=Account}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/users/me [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value(middleware.AccountIDKey).(string)
	if !ok || accountID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	a, err := h.svc.GetByID(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "account not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, a)
}
