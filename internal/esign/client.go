package esign

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/care-management/internal"
	esignmodel "github.com/frahmantamala/care-management/internal/core/datamodel/esign"
)

// Client talks to the e-signature provider. Requests are synchronous: a
// provider rejection must surface to the caller as a request error, so no
// queueing or retry happens here.
type Client struct {
	baseURL    string
	apiKey     string
	businessID string
	sandbox    bool
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg internal.ESignConfig, logger *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    cfg.APIURL,
		apiKey:     cfg.APIKey,
		businessID: cfg.BusinessID,
		sandbox:    cfg.Sandbox,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// GenerateSignatureRequest creates a signature request with the provider and
// returns the issued document hash. A provider-side rejection comes back as a
// typed external error embedding the provider's error tag.
func (c *Client) GenerateSignatureRequest(ctx context.Context, req esignmodel.SignatureRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", internal.NewValidationError(err.Error(), internal.ErrCodeSignatureRequest)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", internal.NewInternalError("failed to encode signature request", err)
	}

	url := fmt.Sprintf("%s/document?access_key=%s&business_id=%s", c.baseURL, c.apiKey, c.businessID)
	if c.sandbox {
		url += "&sandbox=1"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", internal.NewInternalError("failed to build signature request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("signature provider unreachable", "error", err)
		return "", internal.NewExternalError("signature provider unreachable", internal.ErrCodeSignatureRequest).WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", internal.NewExternalError("failed to read provider response", internal.ErrCodeSignatureRequest).WithCause(err)
	}

	var envelope esignmodel.SignatureResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		c.logger.Error("unparseable provider response",
			"status", resp.StatusCode, "body", string(respBody))
		return "", internal.NewExternalError("unparseable provider response", internal.ErrCodeSignatureRequest).WithCause(err)
	}

	if envelope.Data.Error != nil {
		c.logger.Warn("signature request rejected by provider",
			"type", envelope.Data.Error.Type, "info", envelope.Data.Error.Info)
		appErr := internal.NewValidationError("signature request rejected", internal.ErrCodeSignatureRequest)
		return "", appErr.WithDetails(map[string]string{"type": envelope.Data.Error.Type})
	}

	if envelope.Data.DocumentHash == "" {
		return "", internal.NewExternalError("provider returned no document hash", internal.ErrCodeSignatureRequest)
	}

	return envelope.Data.DocumentHash, nil
}
