package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/id"
	"smartmart/internal/domain/documents/invoice"
	"smartmart/internal/infrastructure/http/v1/dto"
	"smartmart/internal/infrastructure/storage/postgres"
	"smartmart/pkg/logger"
)

// InvoiceHandler handles sales invoice endpoints.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice.Service
	audit   *postgres.AuditService
}

// NewInvoiceHandler creates an invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service, audit *postgres.AuditService) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler: base,
		service:     service,
		audit:       audit,
	}
}

// Commit handles POST /invoices - commit a sale in one shot.
func (h *InvoiceHandler) Commit(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CommitInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	draft, err := req.ToDraft()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("error", err.Error()))
		return
	}

	inv, err := h.service.Commit(ctx, draft)
	if err != nil {
		h.Error(c, err)
		return
	}

	// Audit failures must not fail a committed sale.
	if err := h.audit.LogChange(ctx, "invoice", inv.ID, postgres.AuditActionCommit, map[string]any{
		"number":     inv.Number,
		"lines":      len(inv.Lines),
		"finalTotal": inv.FinalTotal.String(),
	}); err != nil {
		logger.Warn(ctx, "audit log failed", "invoice_id", inv.ID, "error", err)
	}

	c.JSON(http.StatusCreated, inv)
}

// Get handles GET /invoices/:id - invoice with lines.
func (h *InvoiceHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	inv, err := h.service.GetByID(ctx, invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, inv)
}

// List handles GET /invoices.
func (h *InvoiceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := invoice.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	var err error
	if filter.From, err = parseTimeQuery(c, "from"); err != nil {
		h.Error(c, apperror.NewValidation("invalid 'from' date (RFC 3339 expected)"))
		return
	}
	if filter.To, err = parseTimeQuery(c, "to"); err != nil {
		h.Error(c, apperror.NewValidation("invalid 'to' date (RFC 3339 expected)"))
		return
	}

	if custStr := c.Query("customerId"); custStr != "" {
		customerID, err := id.Parse(custStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customerId format"))
			return
		}
		filter.CustomerID = &customerID
	}

	if retStr := c.Query("isReturn"); retStr != "" {
		val := retStr == "true"
		filter.IsReturn = &val
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Return handles POST /invoices/:id/returns - return sold items.
func (h *InvoiceHandler) Return(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.ReturnItemsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	returns, err := req.ToReturnLines()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("error", err.Error()))
		return
	}

	if err := h.service.ReturnItems(ctx, invoiceID, returns); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.audit.LogChange(ctx, "invoice", invoiceID, postgres.AuditActionReturn, map[string]any{
		"lines": len(returns),
	}); err != nil {
		logger.Warn(ctx, "audit log failed", "invoice_id", invoiceID, "error", err)
	}

	inv, err := h.service.GetByID(ctx, invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, inv)
}

// parseTimeQuery parses an optional RFC 3339 time query parameter.
func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	val := c.Query(key)
	if val == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
