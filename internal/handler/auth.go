package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/shaunstone0/stone-budget/internal/auth"
	"github.com/shaunstone0/stone-budget/internal/service"
)

// AuthHandler exposes registration, login, and the three token-backed
// endpoints (profile, verify, logout).
type AuthHandler struct {
	auth     *service.AuthService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     authService,
		validate: validator.New(),
		logger:   logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates a new user and returns a token plus the public
// user view.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	result, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCreated(w, "User registered successfully", result)
}

// HandleLogin authenticates a user and returns a fresh token.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Login successful", result)
}

// HandleProfile returns the authenticated user's profile. The middleware has
// already resolved the user; this just re-reads the safe view.
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, errMissingIdentity)
		return
	}

	user, err := h.auth.GetSafeUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Profile retrieved", map[string]interface{}{"user": user})
}

// HandleVerify confirms the presented token is still valid. Reaching this
// handler means the middleware already verified it, so the body is a
// formality the client's startup check relies on.
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, errMissingIdentity)
		return
	}

	user, err := h.auth.GetSafeUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Token is valid", map[string]interface{}{
		"user":       user,
		"tokenValid": true,
	})
}

// HandleLogout acknowledges a logout. Tokens are not revoked server-side;
// the client discards its copy.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		h.logger.Info("user logged out", slog.String("userID", userID))
	}
	writeSuccess(w, "Logged out successfully", nil)
}
