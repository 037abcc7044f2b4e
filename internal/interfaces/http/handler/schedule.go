package handler

import (
	"errors"
	"io"

	invoicingapp "github.com/estate/backend/internal/application/invoicing"
	"github.com/gin-gonic/gin"
)

// ScheduleHandler handles installment schedule preview and generation
type ScheduleHandler struct {
	BaseHandler
	scheduleService *invoicingapp.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(scheduleService *invoicingapp.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// bindScheduleRequest binds an optional JSON body; an empty body means defaults
func (h *ScheduleHandler) bindScheduleRequest(c *gin.Context) (invoicingapp.ScheduleRequest, bool) {
	var req invoicingapp.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BindError(c, err)
		return req, false
	}
	return req, true
}

// Preview godoc
// @Summary      Preview installment schedule
// @Description  Compute the down payment and installment invoices of an agreement without persisting them or consuming invoice numbers
// @Tags         schedules
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the development tenant)"
// @Param        id path string true "Agreement ID" format(uuid)
// @Param        request body invoicingapp.ScheduleRequest false "Schedule options"
// @Success      200 {object} dto.Response{data=ScheduleView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /agreements/{id}/schedule/preview [post]
func (h *ScheduleHandler) Preview(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	agreementID, ok := h.parseIDParam(c, "agreement")
	if !ok {
		return
	}
	req, ok := h.bindScheduleRequest(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleService.Preview(c.Request.Context(), tenantID, agreementID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toScheduleView(schedule))
}

// Generate godoc
// @Summary      Generate installment schedule
// @Description  Generate and persist the invoices of an agreement and advance the numbering counter. Answers 201 when invoices were stored and 200 when an agreement without a plan was skipped
// @Tags         schedules
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the development tenant)"
// @Param        id path string true "Agreement ID" format(uuid)
// @Param        request body invoicingapp.ScheduleRequest false "Schedule options"
// @Success      201 {object} dto.Response{data=ScheduleView}
// @Success      200 {object} dto.Response{data=ScheduleView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /agreements/{id}/schedule [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	agreementID, ok := h.parseIDParam(c, "agreement")
	if !ok {
		return
	}
	req, ok := h.bindScheduleRequest(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleService.Generate(c.Request.Context(), tenantID, agreementID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if !schedule.Persisted {
		h.Success(c, toScheduleView(schedule))
		return
	}
	h.Created(c, toScheduleView(schedule))
}
