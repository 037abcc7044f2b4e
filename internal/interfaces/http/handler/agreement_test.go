package handler

import (
	"net/http"
	"testing"

	"github.com/estate/backend/internal/interfaces/http/dto"
	"github.com/estate/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgreementHandler_CreateAndGet(t *testing.T) {
	api := newTestAPI(t)
	id := api.seedAgreement(t)

	w := api.do(t, http.MethodGet, "/api/v1/agreements/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var agreement AgreementView
	decode(t, w, &agreement)
	assert.Equal(t, "AGR-2024-001", agreement.AgreementNumber)
	assert.Equal(t, "PROJECT_SALE", agreement.InvoiceCategory)
	assert.Equal(t, "1,000,000.00", agreement.SellingPriceDisplay)
	assert.Equal(t, middleware.DefaultTenantID, agreement.TenantID)
	require.NotNil(t, agreement.Plan)
	assert.Equal(t, 8, agreement.Plan.TotalInstallments)
}

func TestAgreementHandler_CreateDuplicateNumber(t *testing.T) {
	api := newTestAPI(t)
	api.seedAgreement(t)

	w := api.do(t, http.MethodPost, "/api/v1/agreements", map[string]any{
		"agreement_number": "AGR-2024-001",
		"kind":             "RENTAL",
		"selling_price":    "5000",
		"issue_date":       "2024-01-01",
		"client_id":        "7b6f1c8e-1b7a-4f7e-9d43-2f1f0f5a9c10",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w, nil)
	assert.Equal(t, dto.ErrCodeAlreadyExists, env.Error.Code)
}

func TestAgreementHandler_CreateValidation(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/agreements", map[string]any{
		"kind":       "LEASE",
		"issue_date": "2024-01-01",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w, nil)
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
	fields := make(map[string]string)
	for _, d := range env.Error.Details {
		fields[d.Field] = d.Message
	}
	assert.Contains(t, fields, "agreement_number")
	assert.Contains(t, fields, "kind")
	assert.Contains(t, fields, "client_id")
}

func TestAgreementHandler_CreateInvalidDate(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/agreements", map[string]any{
		"agreement_number": "AGR-X",
		"kind":             "RENTAL",
		"selling_price":    "5000",
		"issue_date":       "01/02/2024",
		"client_id":        "7b6f1c8e-1b7a-4f7e-9d43-2f1f0f5a9c10",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w, nil)
	assert.Equal(t, dto.ErrCodeInvalidDate, env.Error.Code)
}

func TestAgreementHandler_TenantIsolation(t *testing.T) {
	api := newTestAPI(t)
	tenantA := "11111111-1111-4111-8111-111111111111"
	tenantB := "22222222-2222-4222-8222-222222222222"
	id := api.seedAgreement(t, middleware.TenantHeaderKey, tenantA)

	w := api.do(t, http.MethodGet, "/api/v1/agreements/"+id, nil, middleware.TenantHeaderKey, tenantA)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/agreements/"+id, nil, middleware.TenantHeaderKey, tenantB)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/agreements/"+id, nil, middleware.TenantHeaderKey, "tenant-a")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAgreementHandler_List(t *testing.T) {
	api := newTestAPI(t)
	api.seedAgreement(t)

	w := api.do(t, http.MethodGet, "/api/v1/agreements?kind=PROJECT", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var items []AgreementListView
	env := decode(t, w, &items)
	require.Len(t, items, 1)
	assert.True(t, items[0].HasPlan)
	assert.Equal(t, "1,000,000.00", items[0].SellingPriceDisplay)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)
	assert.Equal(t, 1, env.Meta.Page)
	assert.Equal(t, 20, env.Meta.PageSize)

	w = api.do(t, http.MethodGet, "/api/v1/agreements?kind=RENTAL", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decode(t, w, &items)
	assert.Empty(t, items)
	assert.Zero(t, env.Meta.Total)

	w = api.do(t, http.MethodGet, "/api/v1/agreements?client_id=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/agreements?kind=LEASE", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAgreementHandler_SetPlan(t *testing.T) {
	api := newTestAPI(t)
	id := api.seedAgreement(t)

	var before AgreementView
	decode(t, api.do(t, http.MethodGet, "/api/v1/agreements/"+id, nil), &before)

	w := api.do(t, http.MethodPut, "/api/v1/agreements/"+id+"/plan", map[string]any{
		"duration_years":          "3",
		"down_payment_percentage": "10",
		"frequency":               "annually",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var agreement AgreementView
	decode(t, w, &agreement)
	require.NotNil(t, agreement.Plan)
	assert.Equal(t, "Yearly", agreement.Plan.Frequency)
	assert.Equal(t, 12, agreement.Plan.PeriodMonths)
	assert.Equal(t, 3, agreement.Plan.TotalInstallments)
	assert.Equal(t, before.Version+1, agreement.Version)
}

func TestAgreementHandler_Cancel(t *testing.T) {
	api := newTestAPI(t)
	id := api.seedAgreement(t)

	w := api.do(t, http.MethodPost, "/api/v1/agreements/"+id+"/cancel", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/agreements/"+id+"/cancel", map[string]any{"reason": "client withdrew"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var agreement AgreementView
	decode(t, w, &agreement)
	assert.Equal(t, "CANCELLED", agreement.Status)

	w = api.do(t, http.MethodPost, "/api/v1/agreements/"+id+"/cancel", map[string]any{"reason": "again"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
