package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "github.com/estate/backend/docs"
	"github.com/estate/backend/internal/infrastructure/config"
	"github.com/estate/backend/internal/interfaces/http/handler"
	"github.com/estate/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.BasePath())

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup_AppliesMiddlewareToAPIOnly(t *testing.T) {
	engine := gin.New()
	engine.GET("/outside", func(c *gin.Context) { c.String(http.StatusOK, "outside") })

	r := NewRouter(engine, WithMiddleware(func(c *gin.Context) {
		c.Header("X-API", "1")
		c.Next()
	}))
	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Register(group)
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-API"))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/outside", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-API"))
}

func TestDomainGroup_MiddlewareAndSubgroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	var calls []string
	group := NewDomainGroup("orders", "/orders").Use(func(c *gin.Context) {
		calls = append(calls, "group")
		c.Next()
	})
	group.PUT("/:id", func(c *gin.Context) { c.String(http.StatusOK, "put "+c.Param("id")) })
	group.DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	items := group.Group("items", "/:id/items")
	items.POST("", func(c *gin.Context) { c.String(http.StatusCreated, "item for "+c.Param("id")) })
	r.Register(group)
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/orders/42/items", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "item for 42", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/orders/7", nil))
	assert.Equal(t, "put 7", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/orders/7", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, []string{"group", "group", "group"}, calls)
	assert.Equal(t, "orders", group.Name())
	assert.Equal(t, "/orders", group.Prefix())
}

func TestJoinPaths(t *testing.T) {
	tests := []struct{ base, rel, want string }{
		{"/api/v1", "", "/api/v1"},
		{"/api/v1", "/x", "/api/v1/x"},
		{"/api/v1/", "/x", "/api/v1/x"},
		{"/api/v1", "x", "/api/v1/x"},
		{"/", "/x", "/x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, joinPaths(tt.base, tt.rel), tt.base+" + "+tt.rel)
	}
}

func newTestEngine(t *testing.T, httpCfg config.HTTPConfig) (*gin.Engine, *Router) {
	t.Helper()
	tracing := middleware.DefaultTracingConfig()
	tracing.Enabled = false

	engine, r, err := NewEngine(EngineConfig{
		HTTP:    httpCfg,
		Logger:  zaptest.NewLogger(t),
		Tracing: tracing,
		Tenant:  middleware.DefaultTenantConfig(),
	}, Handlers{
		Agreements: handler.NewAgreementHandler(nil, nil),
		Schedules:  handler.NewScheduleHandler(nil),
		Invoices:   handler.NewInvoiceHandler(nil),
		Numbering:  handler.NewNumberingHandler(nil),
		System:     handler.NewSystemHandler("estate-backend", "test", nil),
	})
	require.NoError(t, err)
	return engine, r
}

func TestNewEngine_RegistersInvoicingRoutes(t *testing.T) {
	engine, r := newTestEngine(t, config.HTTPConfig{})

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	want := []string{
		"GET /health",
		"GET /swagger/*any",
		"POST /api/v1/agreements",
		"GET /api/v1/agreements",
		"GET /api/v1/agreements/:id",
		"PUT /api/v1/agreements/:id/plan",
		"DELETE /api/v1/agreements/:id/plan",
		"POST /api/v1/agreements/:id/cancel",
		"GET /api/v1/agreements/:id/invoices",
		"POST /api/v1/agreements/:id/schedule",
		"POST /api/v1/agreements/:id/schedule/preview",
		"GET /api/v1/invoices",
		"GET /api/v1/invoices/:id",
		"GET /api/v1/numbering",
		"PUT /api/v1/numbering",
		"GET /api/v1/numbering/:prefix",
		"GET /api/v1/system/info",
	}
	for _, route := range want {
		assert.True(t, registered[route], "missing route %s", route)
	}

	// Every route the router reports is one gin actually serves
	for _, info := range r.Routes() {
		assert.True(t, registered[info.Method+" "+info.Path], "unserved route %s %s", info.Method, info.Path)
	}
	// /health and /swagger live outside the versioned API
	assert.Len(t, r.Routes(), len(want)-2)
}

func TestNewEngine_SwaggerDocs(t *testing.T) {
	tests := []struct {
		name       string
		swagger    middleware.SwaggerConfig
		path       string
		wantStatus int
		wantBody   string
	}{
		{"index page", middleware.SwaggerConfig{Enabled: true}, "/swagger/index.html", http.StatusOK, "swagger-ui"},
		{"generated document", middleware.SwaggerConfig{Enabled: true}, "/swagger/doc.json", http.StatusOK, "/agreements/{id}/schedule/preview"},
		{"disabled", middleware.SwaggerConfig{Enabled: false}, "/swagger/index.html", http.StatusNotFound, "ERR_NOT_FOUND"},
		{"outside allow list", middleware.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}, "/swagger/index.html", http.StatusForbidden, "ERR_FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _, err := NewEngine(EngineConfig{
				Logger:  zaptest.NewLogger(t),
				Tracing: middleware.TracingConfig{Enabled: false},
				Tenant:  middleware.DefaultTenantConfig(),
				Swagger: tt.swagger,
			}, Handlers{})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.RemoteAddr = "192.168.1.1:12345"
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestNewEngine_HealthAndHeaders(t *testing.T) {
	engine, _ := newTestEngine(t, config.HTTPConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "trace-me")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Equal(t, "trace-me", w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestNewEngine_RejectsMalformedTenant(t *testing.T) {
	engine, _ := newTestEngine(t, config.HTTPConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	req.Header.Set(middleware.TenantHeaderKey, "not-a-tenant")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewEngine_BodyLimit(t *testing.T) {
	engine, _ := newTestEngine(t, config.HTTPConfig{MaxBodySize: 16})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/numbering", strings.NewReader(`{"prefix":"P-INV-","padding":5}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), middleware.ErrCodeRequestTooLarge)
}

func TestNewEngine_InvalidTrustedProxy(t *testing.T) {
	_, _, err := NewEngine(EngineConfig{
		HTTP: config.HTTPConfig{TrustedProxies: []string{"not-an-ip"}},
	}, Handlers{})
	assert.Error(t, err)
}
