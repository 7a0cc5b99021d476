package user

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/care-management/internal"
	"github.com/frahmantamala/care-management/internal/authz"
	"github.com/frahmantamala/care-management/internal/transport"
	"github.com/frahmantamala/care-management/pkg/logger"

	"github.com/go-chi/chi"
)

type UserService interface {
	GetByID(ctx context.Context, id int64) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service UserService
}

func NewHandler(service UserService) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// GetCurrentUser returns the authenticated user together with the scope list
// resolved at authentication time.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	creds, ok := authz.CredentialsFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID := internal.UserIDFromContext(r.Context())
	if userID == 0 {
		userID = creds.ID
	}

	u, err := h.Service.GetByID(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, h.toCurrentUserDTO(u, creds.Scope))
}

// GetUser returns any user by id; route access is scope-guarded upstream.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	creds, ok := authz.CredentialsFromContext(r.Context())
	if !ok || !creds.HasScope(authz.UserReadScope(id)) {
		h.WriteError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	u, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, h.toCurrentUserDTO(u, nil))
}

func (h *Handler) toCurrentUserDTO(u *User, scope []string) CurrentUserDTO {
	missing := u.MissingMandatoryInfo()
	if missing == nil {
		missing = []string{}
	}
	contractIDs := u.ContractIDs
	if contractIDs == nil {
		contractIDs = []string{}
	}
	return CurrentUserDTO{
		ID:                   u.ID,
		Email:                u.Email,
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		Phone:                u.Phone,
		SectorID:             u.SectorID,
		InactivityDate:       u.InactivityDate,
		ContractIDs:          contractIDs,
		MissingMandatoryInfo: missing,
		Scope:                scope,
	}
}
