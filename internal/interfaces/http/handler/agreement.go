package handler

import (
	invoicingapp "github.com/estate/backend/internal/application/invoicing"
	"github.com/gin-gonic/gin"
)

// AgreementHandler handles sale agreement endpoints
type AgreementHandler struct {
	BaseHandler
	agreementService *invoicingapp.AgreementService
	invoiceService   *invoicingapp.InvoiceService
}

// NewAgreementHandler creates a new AgreementHandler
func NewAgreementHandler(agreementService *invoicingapp.AgreementService, invoiceService *invoicingapp.InvoiceService) *AgreementHandler {
	return &AgreementHandler{
		agreementService: agreementService,
		invoiceService:   invoiceService,
	}
}

// Create godoc
// @Summary      Create a sale agreement
// @Description  Record a project sale or rental agreement, optionally with an installment plan
// @Tags         agreements
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the development tenant)"
// @Param        request body invoicingapp.CreateAgreementRequest true "Agreement creation request"
// @Success      201 {object} dto.Response{data=AgreementView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /agreements [post]
func (h *AgreementHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req invoicingapp.CreateAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	agreement, err := h.agreementService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toAgreementView(agreement))
}

// GetByID godoc
// @Summary      Get agreement by ID
// @Description  Retrieve a sale agreement with its installment plan
// @Tags         agreements
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the development tenant)"
// @Param        id path string true "Agreement ID" format(uuid)
// @Success      200 {object} dto.Response{data=AgreementView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /agreements/{id} [get]
func (h *AgreementHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	agreementID, ok := h.parseIDParam(c, "agreement")
	if !ok {
		return
	}

	agreement, err := h.agreementService.GetByID(c.Request.Context(), tenantID, agreementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAgreementView(agreement))
}

// List godoc
// @Summary      List agreements
// @Description  Retrieve a paginated list of sale agreements with filtering
// @Tags         agreements
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the development tenant)"
// @Param        search query string false "Search term (agreement number)"
// @Param        kind query string false "Agreement kind" Enums(PROJECT, RENTAL)
// @Param        status query string false "Status" Enums(ACTIVE, CANCELLED)
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field"
// @Param        order_dir query string false "Order direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]AgreementListView,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /agreements [get]
func (h *AgreementHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var filter invoicingapp.AgreementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if filter.ClientID, ok = h.optionalUUIDQuery(c, "client_id"); !ok {
		return
	}

	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	agreements, total, err := h.agreementService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toAgreementListViews(agreements), total, filter.Page, filter.PageSize)
}

// SetPlan godoc
// @Summary      Set installment plan
// @Description  Attach or replace the installment plan of an active agreement
// @Tags         agreements
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the development tenant)"
// @Param        id path string true "Agreement ID" format(uuid)
// @Param        request body invoicingapp.PlanRequest true "Installment plan"
// @Success      200 {object} dto.Response{data=AgreementView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /agreements/{id}/plan [put]
func (h *AgreementHandler) SetPlan(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	agreementID, ok := h.parseIDParam(c, "agreement")
	if !ok {
		return
	}

	var req invoicingapp.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	agreement, err := h.agreementService.SetPlan(c.Request.Context(), tenantID, agreementID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAgreementView(agreement))
}

// ClearPlan godoc
// @Summary      Clear installment plan
// @Description  Remove the installment plan of an active agreement
// @Tags         agreements
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the development tenant)"
// @Param        id path string true "Agreement ID" format(uuid)
// @Success      200 {object} dto.Response{data=AgreementView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /agreements/{id}/plan [delete]
func (h *AgreementHandler) ClearPlan(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	agreementID, ok := h.parseIDParam(c, "agreement")
	if !ok {
		return
	}

	agreement, err := h.agreementService.ClearPlan(c.Request.Context(), tenantID, agreementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAgreementView(agreement))
}

// Cancel godoc
// @Summary      Cancel agreement
// @Description  Cancel an active agreement with a reason
// @Tags         agreements
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the development tenant)"
// @Param        id path string true "Agreement ID" format(uuid)
// @Param        request body invoicingapp.CancelAgreementRequest true "Cancel request"
// @Success      200 {object} dto.Response{data=AgreementView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /agreements/{id}/cancel [post]
func (h *AgreementHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	agreementID, ok := h.parseIDParam(c, "agreement")
	if !ok {
		return
	}

	var req invoicingapp.CancelAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	agreement, err := h.agreementService.Cancel(c.Request.Context(), tenantID, agreementID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAgreementView(agreement))
}

// ListInvoices godoc
// @Summary      List agreement invoices
// @Description  Retrieve every stored invoice of an agreement in schedule order
// @Tags         agreements
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the development tenant)"
// @Param        id path string true "Agreement ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]InvoiceView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /agreements/{id}/invoices [get]
func (h *AgreementHandler) ListInvoices(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	agreementID, ok := h.parseIDParam(c, "agreement")
	if !ok {
		return
	}

	invoices, err := h.invoiceService.ListByAgreement(c.Request.Context(), tenantID, agreementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceViews(invoices))
}
