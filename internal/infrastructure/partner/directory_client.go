// Package partner looks up customers and suppliers in an external directory service.
package partner

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// counterpartyPayload mirrors the directory's counterparty resource
type counterpartyPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// apiError is the directory's error body
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DirectoryClient is a resty-backed ledger.CounterpartyDirectory
type DirectoryClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

var _ ledger.CounterpartyDirectory = (*DirectoryClient)(nil)

// NewDirectoryClient builds a directory client from configuration
func NewDirectoryClient(cfg config.PartnerConfig, logger *zap.Logger) *DirectoryClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &DirectoryClient{httpClient: client, logger: logger}
}

// Lookup fetches a counterparty and checks it has the requested role.
// A missing counterparty and a role mismatch are both reported as not found.
func (c *DirectoryClient) Lookup(ctx context.Context, tenantID, id uuid.UUID, role ledger.Role) (*ledger.Counterparty, error) {
	result := new(counterpartyPayload)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("X-Tenant-ID", tenantID.String()).
		SetPathParams(map[string]string{
			"tenant": tenantID.String(),
			"id":     id.String(),
		}).
		SetResult(result).
		SetError(apiErr).
		Get("/tenants/{tenant}/counterparties/{id}")
	if err != nil {
		return nil, fmt.Errorf("counterparty directory lookup: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, ledger.ErrCounterpartyNotFound(id, role)
	case resp.StatusCode() >= http.StatusBadRequest:
		c.logger.Warn("counterparty directory returned an error",
			zap.Int("status", resp.StatusCode()),
			zap.String("code", apiErr.Code),
			zap.String("counterparty_id", id.String()),
		)
		return nil, fmt.Errorf("counterparty directory error: status=%d, message=%s", resp.StatusCode(), apiErr.Message)
	}

	if ledger.Role(result.Role) != role {
		return nil, ledger.ErrCounterpartyNotFound(id, role)
	}

	cp, err := ledger.NewCounterparty(tenantID, result.Name, role, result.Phone, result.Email)
	if err != nil {
		return nil, fmt.Errorf("counterparty directory returned invalid counterparty %s: %w", id, err)
	}
	cp.ID = id
	return cp, nil
}
