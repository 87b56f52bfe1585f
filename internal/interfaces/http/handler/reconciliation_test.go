package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/erp/ledger/internal/application/reconciliation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReconciliationHandler_Receivables(t *testing.T) {
	svc := new(MockReconciliationService)
	router := newTestRouter(NewReconciliationHandler(svc))
	counterpartyID := uuid.New()

	svc.On("Receivables", mock.Anything, testTenantID, mock.MatchedBy(func(f reconciliation.ListFilter) bool {
		return f.CounterpartyID != nil && *f.CounterpartyID == counterpartyID
	})).Return(&reconciliation.BalanceView{
		Side:  "receivable",
		Items: []reconciliation.OpenItem{{Number: "SO-20260101-00000001", Balance: decimal.NewFromInt(70)}},
		Total: 1,
	}, nil)

	w := doRequest(t, router, http.MethodGet, "/api/v1/reconciliation/receivables?counterparty_id="+counterpartyID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	var view reconciliation.BalanceView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, "receivable", view.Side)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(1), resp.Meta.Total)
	svc.AssertExpectations(t)
}

func TestReconciliationHandler_Payables(t *testing.T) {
	svc := new(MockReconciliationService)
	router := newTestRouter(NewReconciliationHandler(svc))

	svc.On("Payables", mock.Anything, testTenantID, mock.Anything).
		Return(&reconciliation.BalanceView{Side: "payable"}, nil)

	w := doRequest(t, router, http.MethodGet, "/api/v1/reconciliation/payables", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(t, router, http.MethodGet, "/api/v1/reconciliation/payables?counterparty_id=bad", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertNumberOfCalls(t, "Payables", 1)
}

func TestReconciliationHandler_Dashboard(t *testing.T) {
	svc := new(MockReconciliationService)
	router := newTestRouter(NewReconciliationHandler(svc))

	svc.On("Dashboard", mock.Anything, testTenantID).Return(&reconciliation.Dashboard{
		Receivable:  decimal.NewFromInt(300),
		Payable:     decimal.NewFromInt(120),
		NetPosition: decimal.NewFromInt(180),
	}, nil)

	w := doRequest(t, router, http.MethodGet, "/api/v1/reconciliation/dashboard", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var dashboard reconciliation.Dashboard
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &dashboard))
	assert.True(t, dashboard.NetPosition.Equal(decimal.NewFromInt(180)))
}
