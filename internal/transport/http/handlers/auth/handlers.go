package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"marina/internal/domain/auth"
	"marina/internal/transport/http/api"
	"marina/internal/transport/http/middleware"
	"marina/internal/transport/http/shared"
)

type Handler struct {
	Accounts auth.AccountStore
	Secret   string
	TTL      time.Duration
}

func NewHandler(accounts auth.AccountStore, secret string, ttl time.Duration) *Handler {
	return &Handler{Accounts: accounts, Secret: secret, TTL: ttl}
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      auth.User `json:"user"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

func (p loginRequest) login() string {
	if login := strings.TrimSpace(p.Username); login != "" {
		return login
	}
	return strings.TrimSpace(p.Email)
}

func validateLogin(p loginRequest) []shared.ValidationIssue {
	v := shared.NewValidator()
	if p.login() == "" {
		v.Add("username", "username or email is required")
	}
	if p.Password == "" {
		v.Add("password", "is required")
	}
	return v.Issues()
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if issues := validateLogin(payload); len(issues) > 0 {
		shared.FailValidation(w, reqID, issues)
		return
	}

	account, err := h.Accounts.FindByLogin(r.Context(), payload.login())
	if errors.Is(err, auth.ErrAccountNotFound) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}
	if err != nil {
		slog.Error("account lookup failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to log in", reqID)
		return
	}
	if err := auth.CheckPassword(account.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}

	token, expiresAt, err := auth.GenerateToken(h.Secret, auth.ClaimsFor(account.User), h.TTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}
	slog.Info("login succeeded", "username", account.User.Username, "requestId", reqID)
	api.Success(w, loginResponse{Token: token, ExpiresAt: expiresAt, User: account.User})
}
