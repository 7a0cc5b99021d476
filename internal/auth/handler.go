package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/care-management/internal"
	"github.com/frahmantamala/care-management/internal/authz"
	"github.com/frahmantamala/care-management/internal/transport"
	"github.com/frahmantamala/care-management/pkg/logger"
)

// TokenValidator resolves a decoded token into scoped credentials. The authz
// service is the only implementation outside of tests.
type TokenValidator interface {
	Validate(ctx context.Context, token authz.DecodedToken) authz.TokenValidation
}

type Handler struct {
	*transport.BaseHandler
	Service   AuthService
	Validator TokenValidator
}

func NewHandler(service AuthService, validator TokenValidator) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Validator:   validator,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Login: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Warn("Login: authentication failed", "error", err, "email", dto.Email)
		h.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("RefreshToken: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.Service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.Logger.Warn("RefreshToken: refresh failed", "error", err)
		h.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	// Tokens are stateless; logout is client-side. Kept for API symmetry.
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// AuthMiddleware authenticates the bearer token, resolves it into scoped
// credentials and stores them in the request context. Resolution failures are
// reported uniformly as 401: authorization fails closed.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := h.ExtractTokenFromHeader(r)
		if tokenString == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(tokenString)
		if err != nil {
			h.Logger.Warn("AuthMiddleware: token rejected", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		validation := h.Validator.Validate(r.Context(), authz.DecodedToken{UserID: claims.UserID})
		if !validation.IsValid {
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := authz.ContextWithCredentials(r.Context(), validation.Credentials)
		ctx = internal.ContextWithUserID(ctx, validation.Credentials.ID)
		ctx = logger.With(ctx, "user_id", validation.Credentials.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
