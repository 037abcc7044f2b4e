package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/estate/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type planInput struct {
	Frequency string `json:"frequency" binding:"required,oneof=Monthly Quarterly"`
	Prefix    string `json:"prefix" binding:"max=5"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/plan", func(c *gin.Context) {
		var in planInput
		if err := c.ShouldBindJSON(&in); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(in))
	})
	return router
}

func postPlan(t *testing.T, router *gin.Engine, body string) (int, dto.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/plan", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHandleValidationError_FieldDetails(t *testing.T) {
	router := newValidationRouter()

	code, resp := postPlan(t, router, `{"frequency":"Weekly","prefix":"TOO-LONG-"}`)

	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-42", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 2)

	byField := map[string]string{}
	for _, d := range resp.Error.Details {
		byField[d.Field] = d.Message
	}
	assert.Equal(t, "Must be one of: Monthly Quarterly", byField["frequency"])
	assert.Equal(t, "Must be at most 5 characters", byField["prefix"])
}

func TestHandleValidationError_Required(t *testing.T) {
	router := newValidationRouter()

	code, resp := postPlan(t, router, `{}`)

	assert.Equal(t, http.StatusBadRequest, code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "frequency", resp.Error.Details[0].Field)
	assert.Equal(t, "This field is required", resp.Error.Details[0].Message)
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	router := newValidationRouter()

	code, resp := postPlan(t, router, `{"frequency":`)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, []string{dto.ErrCodeInvalidJSON, dto.ErrCodeBadRequest}, resp.Error.Code)
}

func TestHandleValidationError_WrongType(t *testing.T) {
	router := newValidationRouter()

	code, resp := postPlan(t, router, `{"frequency":12}`)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "frequency", resp.Error.Details[0].Field)
}

func TestHandleValidationError_Valid(t *testing.T) {
	router := newValidationRouter()

	code, resp := postPlan(t, router, `{"frequency":"Monthly","prefix":"P-"}`)

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
}
