package handler

import (
	"net/http"
	"testing"

	"github.com/estate/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleHandler_PreviewDoesNotPersist(t *testing.T) {
	api := newTestAPI(t)
	id := api.seedAgreement(t)

	w := api.do(t, http.MethodPost, "/api/v1/agreements/"+id+"/schedule/preview", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var schedule ScheduleView
	env := decode(t, w, &schedule)
	assert.True(t, env.Success)
	assert.False(t, schedule.Persisted)
	require.Len(t, schedule.Invoices, 9)
	assert.Equal(t, "P-INV-00001", schedule.Invoices[0].InvoiceNumber)
	assert.Equal(t, "200,000.00", schedule.Invoices[0].AmountDisplay)
	assert.Equal(t, "100,000.00", schedule.Invoices[1].AmountDisplay)
	assert.Equal(t, "1,000,000.00", schedule.TotalDisplay)
	assert.Equal(t, "200,000.00", schedule.DownPaymentDisplay)
	assert.Equal(t, "100,000.00", schedule.InstallmentAmountDisplay)
	assert.Equal(t, "2026-03-15", schedule.Invoices[8].DueDate)

	// Nothing was written, so a second preview hands out the same numbers
	w = api.do(t, http.MethodPost, "/api/v1/agreements/"+id+"/schedule/preview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &schedule)
	assert.Equal(t, "P-INV-00001", schedule.Invoices[0].InvoiceNumber)

	w = api.do(t, http.MethodGet, "/api/v1/agreements/"+id+"/invoices", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored []InvoiceView
	decode(t, w, &stored)
	assert.Empty(t, stored)
}

func TestScheduleHandler_PreviewWithOverridePlan(t *testing.T) {
	api := newTestAPI(t)
	id := api.seedAgreement(t)

	w := api.do(t, http.MethodPost, "/api/v1/agreements/"+id+"/schedule/preview", map[string]any{
		"plan": map[string]any{
			"duration_years":          "1",
			"down_payment_percentage": "0",
			"frequency":               "Monthly",
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var schedule ScheduleView
	decode(t, w, &schedule)
	assert.Equal(t, 12, schedule.TotalInstallments)
	assert.Len(t, schedule.Invoices, 12)
	assert.Equal(t, "2024-04-15", schedule.Invoices[0].DueDate)
}

func TestScheduleHandler_GenerateThenConflict(t *testing.T) {
	api := newTestAPI(t)
	id := api.seedAgreement(t)

	w := api.do(t, http.MethodPost, "/api/v1/agreements/"+id+"/schedule", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var schedule ScheduleView
	decode(t, w, &schedule)
	assert.True(t, schedule.Persisted)
	require.NotNil(t, schedule.Numbering)
	assert.Equal(t, int64(10), schedule.Numbering.NextNumber)

	w = api.do(t, http.MethodPost, "/api/v1/agreements/"+id+"/schedule", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w, nil)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeScheduleExists, env.Error.Code)

	w = api.do(t, http.MethodPost, "/api/v1/agreements/"+id+"/schedule", map[string]any{"force": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &schedule)
	assert.Equal(t, "P-INV-00010", schedule.Invoices[0].InvoiceNumber)

	w = api.do(t, http.MethodGet, "/api/v1/agreements/"+id+"/invoices", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored []InvoiceView
	decode(t, w, &stored)
	assert.Len(t, stored, 18)
}

func TestScheduleHandler_GenerateWithoutPlan(t *testing.T) {
	api := newTestAPI(t)
	id := api.seedAgreement(t)

	w := api.do(t, http.MethodDelete, "/api/v1/agreements/"+id+"/plan", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, http.MethodPost, "/api/v1/agreements/"+id+"/schedule", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decode(t, w, nil)
	assert.Equal(t, dto.ErrCodeConfigurationMissing, env.Error.Code)

	w = api.do(t, http.MethodPost, "/api/v1/agreements/"+id+"/schedule", map[string]any{"skip_if_no_plan": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var schedule ScheduleView
	decode(t, w, &schedule)
	assert.True(t, schedule.Skipped)
	assert.False(t, schedule.Persisted)
	assert.Empty(t, schedule.Invoices)
}

func TestScheduleHandler_PrefixWithoutNumbering(t *testing.T) {
	api := newTestAPI(t)
	id := api.seedAgreement(t)

	w := api.do(t, http.MethodPost, "/api/v1/agreements/"+id+"/schedule/preview", map[string]any{"prefix": "R-INV-"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decode(t, w, nil)
	assert.Equal(t, dto.ErrCodeConfigurationMissing, env.Error.Code)
}

func TestScheduleHandler_BadRequests(t *testing.T) {
	api := newTestAPI(t)
	id := api.seedAgreement(t)

	tests := []struct {
		name string
		path string
		body any
		code string
		want int
	}{
		{"malformed id", "/api/v1/agreements/not-a-uuid/schedule", nil, dto.ErrCodeBadRequest, http.StatusBadRequest},
		{"unknown agreement", "/api/v1/agreements/6f1d3c1e-0000-4000-8000-000000000000/schedule", nil, dto.ErrCodeNotFound, http.StatusNotFound},
		{"invalid json", "/api/v1/agreements/" + id + "/schedule", `{"force":`, dto.ErrCodeInvalidJSON, http.StatusBadRequest},
		{"plan without frequency", "/api/v1/agreements/" + id + "/schedule/preview", map[string]any{"plan": map[string]any{"duration_years": "1"}}, dto.ErrCodeValidation, http.StatusBadRequest},
		{"unknown frequency", "/api/v1/agreements/" + id + "/schedule/preview", map[string]any{"plan": map[string]any{"duration_years": "1", "frequency": "Weekly"}}, dto.ErrCodeInvalidPlan, http.StatusBadRequest},
		{"plan without duration", "/api/v1/agreements/" + id + "/schedule/preview", map[string]any{"plan": map[string]any{"frequency": "Monthly"}}, dto.ErrCodeInvalidPlan, http.StatusBadRequest},
		{"duration beyond horizon", "/api/v1/agreements/" + id + "/schedule/preview", map[string]any{"plan": map[string]any{"duration_years": "1e30", "frequency": "Monthly"}}, dto.ErrCodeInvalidPlan, http.StatusBadRequest},
		{"percentage finer than storage", "/api/v1/agreements/" + id + "/schedule/preview", map[string]any{"plan": map[string]any{"duration_years": "1", "down_payment_percentage": "33.333333", "frequency": "Monthly"}}, dto.ErrCodeInvalidPlan, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			env := decode(t, w, nil)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.NotEmpty(t, env.Error.RequestID)
		})
	}
}

func TestScheduleHandler_CancelledAgreementRejected(t *testing.T) {
	api := newTestAPI(t)
	id := api.seedAgreement(t)

	w := api.do(t, http.MethodPost, "/api/v1/agreements/"+id+"/cancel", map[string]any{"reason": "client withdrew"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, http.MethodPost, "/api/v1/agreements/"+id+"/schedule/preview", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decode(t, w, nil)
	assert.Equal(t, dto.ErrCodeInvalidState, env.Error.Code)
}
