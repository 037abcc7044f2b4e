package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	invoicingapp "github.com/estate/backend/internal/application/invoicing"
	"github.com/estate/backend/internal/infrastructure/persistence"
	"github.com/estate/backend/internal/infrastructure/persistence/models"
	"github.com/estate/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testAPI wires real services over an in-memory SQLite database
type testAPI struct {
	engine *gin.Engine
	db     *gorm.DB
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.SaleAgreementModel{},
		&models.InvoiceModel{},
		&models.InvoiceNumberingModel{},
	))

	repos := persistence.NewRepositories(db)
	uow := persistence.NewGormUnitOfWork(db)

	agreementSvc := invoicingapp.NewAgreementService(repos.Agreements)
	invoiceSvc := invoicingapp.NewInvoiceService(repos.Invoices, repos.Agreements)
	numberingSvc := invoicingapp.NewNumberingService(repos.Numbering, uow, invoicingapp.NumberingDefaults{Prefix: "P-INV-", Padding: 5})
	scheduleSvc := invoicingapp.NewScheduleService(repos, uow, zaptest.NewLogger(t))

	agreements := NewAgreementHandler(agreementSvc, invoiceSvc)
	schedules := NewScheduleHandler(scheduleSvc)
	invoices := NewInvoiceHandler(invoiceSvc)
	numbering := NewNumberingHandler(numberingSvc)

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.TenantMiddleware())
	api := engine.Group("/api/v1")
	api.POST("/agreements", agreements.Create)
	api.GET("/agreements", agreements.List)
	api.GET("/agreements/:id", agreements.GetByID)
	api.PUT("/agreements/:id/plan", agreements.SetPlan)
	api.DELETE("/agreements/:id/plan", agreements.ClearPlan)
	api.POST("/agreements/:id/cancel", agreements.Cancel)
	api.GET("/agreements/:id/invoices", agreements.ListInvoices)
	api.POST("/agreements/:id/schedule/preview", schedules.Preview)
	api.POST("/agreements/:id/schedule", schedules.Generate)
	api.GET("/invoices", invoices.List)
	api.GET("/invoices/:id", invoices.GetByID)
	api.GET("/numbering", numbering.List)
	api.GET("/numbering/:prefix", numbering.GetByPrefix)
	api.PUT("/numbering", numbering.Upsert)

	return &testAPI{engine: engine, db: db}
}

// do sends a request; body may be nil, a string, or any JSON-encodable value
func (a *testAPI) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// envelope mirrors dto.Response with a raw data payload
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
		Details   []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

// seedAgreement configures default numbering and creates a project agreement
// priced 1,000,000 with 20% down over two years of quarterly installments
func (a *testAPI) seedAgreement(t *testing.T, headers ...string) string {
	t.Helper()
	w := a.do(t, http.MethodPut, "/api/v1/numbering", map[string]any{"prefix": "P-INV-"}, headers...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/v1/agreements", map[string]any{
		"agreement_number": "AGR-2024-001",
		"kind":             "PROJECT",
		"selling_price":    "1000000",
		"issue_date":       "2024-03-15",
		"client_id":        "7b6f1c8e-1b7a-4f7e-9d43-2f1f0f5a9c10",
		"unit_references":  []string{"T1-0501"},
		"plan": map[string]any{
			"duration_years":          "2",
			"down_payment_percentage": "20",
			"frequency":               "Quarterly",
		},
	}, headers...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created AgreementView
	decode(t, w, &created)
	return created.ID.String()
}
