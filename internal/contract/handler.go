package contract

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/care-management/internal/authz"
	"github.com/frahmantamala/care-management/internal/core/common/dates"
	"github.com/frahmantamala/care-management/internal/transport"
	"github.com/frahmantamala/care-management/pkg/logger"

	"github.com/go-chi/chi"
)

// ContractService is the operation surface the HTTP layer needs.
type ContractService interface {
	CreateContract(ctx context.Context, dto CreateContractDTO, companyID int64) (*ContractDTO, error)
	EndContract(ctx context.Context, contractID string, dto EndContractDTO, companyID int64) (*ContractDTO, error)
	CreateVersion(ctx context.Context, contractID string, dto VersionDTO, companyID int64) (*Contract, error)
	UpdateVersion(ctx context.Context, contractID, versionID string, dto UpdateVersionDTO, companyID int64) (*Contract, error)
	DeleteVersion(ctx context.Context, contractID, versionID string, companyID int64) error
	GetContract(ctx context.Context, companyID int64, contractID string) (*ContractDTO, error)
	ContractInfo(ctx context.Context, companyID int64, contractID string, query dates.DateRange) (ContractInfoDTO, error)
	ListContracts(ctx context.Context, companyID int64, userID int64) ([]Contract, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ContractService
}

func NewHandler(service ContractService) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// companyScope extracts the caller's company id from the resolved
// credentials. Contract routes are meaningless without a company context.
func (h *Handler) companyScope(w http.ResponseWriter, r *http.Request) (int64, bool) {
	creds, ok := authz.CredentialsFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	companyID := creds.CompanyID()
	if companyID == 0 {
		h.WriteError(w, http.StatusForbidden, "no company context")
		return 0, false
	}
	return companyID, true
}

func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyScope(w, r)
	if !ok {
		return
	}

	var dto CreateContractDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateContract(r.Context(), dto, companyID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyScope(w, r)
	if !ok {
		return
	}

	c, err := h.Service.GetContract(r.Context(), companyID, chi.URLParam(r, "contractID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

// GetContractInfo serves the pay-facing aggregate for a contract over a
// query window. Both bounds are required, RFC 3339 formatted.
func (h *Handler) GetContractInfo(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyScope(w, r)
	if !ok {
		return
	}

	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start_date"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid start_date")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end_date"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid end_date")
		return
	}

	info, err := h.Service.ContractInfo(r.Context(), companyID, chi.URLParam(r, "contractID"),
		dates.DateRange{Start: start, End: end})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, info)
}

func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyScope(w, r)
	if !ok {
		return
	}

	var userID int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		userID = parsed
	}

	contracts, err := h.Service.ListContracts(r.Context(), companyID, userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"contracts": contracts})
}

func (h *Handler) EndContract(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyScope(w, r)
	if !ok {
		return
	}

	var dto EndContractDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ended, err := h.Service.EndContract(r.Context(), chi.URLParam(r, "contractID"), dto, companyID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ended)
}

func (h *Handler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyScope(w, r)
	if !ok {
		return
	}

	var dto VersionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.CreateVersion(r.Context(), chi.URLParam(r, "contractID"), dto, companyID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, updated)
}

func (h *Handler) UpdateVersion(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyScope(w, r)
	if !ok {
		return
	}

	var dto UpdateVersionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateVersion(r.Context(),
		chi.URLParam(r, "contractID"), chi.URLParam(r, "versionID"), dto, companyID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteVersion(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyScope(w, r)
	if !ok {
		return
	}

	err := h.Service.DeleteVersion(r.Context(),
		chi.URLParam(r, "contractID"), chi.URLParam(r, "versionID"), companyID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
