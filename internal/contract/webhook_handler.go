package contract

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/care-management/internal/transport"
	"github.com/frahmantamala/care-management/pkg/logger"
)

// SignatureRecorder is implemented by the contract service.
type SignatureRecorder interface {
	RecordSignature(ctx context.Context, eversignID string, signerIndex int) error
}

// SignatureWebhookPayload is the provider's callback body: which document
// was signed and by which signer slot.
type SignatureWebhookPayload struct {
	EventType    string `json:"event_type"`
	DocumentHash string `json:"meta_document_hash"`
	SignerIndex  int    `json:"signer_index"`
}

type WebhookHandler struct {
	*transport.BaseHandler
	Recorder SignatureRecorder
}

func NewWebhookHandler(recorder SignatureRecorder) *WebhookHandler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &WebhookHandler{
		BaseHandler: transport.NewBaseHandler(lg),
		Recorder:    recorder,
	}
}

// HandleSignatureCallback processes the provider's webhook. Only signed
// events mutate state; everything else is acknowledged and dropped. The
// provider retries on non-2xx, so parse failures still return 200 to avoid
// an unbounded retry loop on a permanently malformed payload.
func (h *WebhookHandler) HandleSignatureCallback(w http.ResponseWriter, r *http.Request) {
	var payload SignatureWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.Logger.Warn("unparseable signature webhook", "error", err)
		h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if payload.EventType != "document_signed" || payload.DocumentHash == "" {
		h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if err := h.Recorder.RecordSignature(r.Context(), payload.DocumentHash, payload.SignerIndex); err != nil {
		h.Logger.Error("failed to record signature",
			"document_hash", payload.DocumentHash, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}
