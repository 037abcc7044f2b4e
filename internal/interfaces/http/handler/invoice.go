package handler

import (
	invoicingapp "github.com/estate/backend/internal/application/invoicing"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles stored invoice queries
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoicingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoicingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// List godoc
// @Summary      List invoices
// @Description  Retrieve a paginated list of generated invoices with filtering
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the development tenant)"
// @Param        search query string false "Search term (invoice number)"
// @Param        agreement_id query string false "Agreement ID" format(uuid)
// @Param        status query string false "Status" Enums(UNPAID, PAID, CANCELLED)
// @Param        kind query string false "Invoice kind" Enums(DOWN_PAYMENT, INSTALLMENT)
// @Param        due_from query string false "Due from (YYYY-MM-DD)" format(date)
// @Param        due_to query string false "Due to (YYYY-MM-DD)" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field"
// @Param        order_dir query string false "Order direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]InvoiceView,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var filter invoicingapp.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if filter.AgreementID, ok = h.optionalUUIDQuery(c, "agreement_id"); !ok {
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toInvoiceViews(invoices), total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get invoice by ID
// @Description  Retrieve a generated invoice by its ID
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the development tenant)"
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=InvoiceView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	invoiceID, ok := h.parseIDParam(c, "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceView(invoice))
}
