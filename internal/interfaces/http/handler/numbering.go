package handler

import (
	invoicingapp "github.com/estate/backend/internal/application/invoicing"
	"github.com/gin-gonic/gin"
)

// NumberingHandler handles invoice numbering configuration
type NumberingHandler struct {
	BaseHandler
	numberingService *invoicingapp.NumberingService
}

// NewNumberingHandler creates a new NumberingHandler
func NewNumberingHandler(numberingService *invoicingapp.NumberingService) *NumberingHandler {
	return &NumberingHandler{numberingService: numberingService}
}

// List godoc
// @Summary      List numbering configurations
// @Description  Retrieve every invoice numbering configuration of the tenant
// @Tags         numbering
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the development tenant)"
// @Success      200 {object} dto.Response{data=[]invoicingapp.NumberingResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /numbering [get]
func (h *NumberingHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	configs, err := h.numberingService.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, configs)
}

// GetByPrefix godoc
// @Summary      Get numbering configuration
// @Description  Retrieve the numbering configuration of a prefix
// @Tags         numbering
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the development tenant)"
// @Param        prefix path string true "Invoice number prefix"
// @Success      200 {object} dto.Response{data=invoicingapp.NumberingResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /numbering/{prefix} [get]
func (h *NumberingHandler) GetByPrefix(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	config, err := h.numberingService.GetByPrefix(c.Request.Context(), tenantID, c.Param("prefix"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, config)
}

// Upsert godoc
// @Summary      Create or update numbering configuration
// @Description  Create a numbering configuration or reconfigure an existing one. Updates must carry the stored version
// @Tags         numbering
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the development tenant)"
// @Param        request body invoicingapp.UpsertNumberingRequest true "Numbering configuration"
// @Success      200 {object} dto.Response{data=invoicingapp.NumberingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /numbering [put]
func (h *NumberingHandler) Upsert(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req invoicingapp.UpsertNumberingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	config, err := h.numberingService.Upsert(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, config)
}
