package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/id"
	"smartmart/internal/domain/documents/purchase"
	"smartmart/internal/infrastructure/http/v1/dto"
	"smartmart/internal/infrastructure/storage/postgres"
	"smartmart/pkg/logger"
)

// PurchaseHandler handles supplier purchase endpoints.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
	audit   *postgres.AuditService
}

// NewPurchaseHandler creates a purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service, audit *postgres.AuditService) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler: base,
		service:     service,
		audit:       audit,
	}
}

// Commit handles POST /purchases - commit a goods receipt in one shot.
func (h *PurchaseHandler) Commit(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CommitPurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	draft, err := req.ToDraft()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("error", err.Error()))
		return
	}

	doc, err := h.service.Commit(ctx, draft)
	if err != nil {
		h.Error(c, err)
		return
	}

	// Audit failures must not fail a committed receipt.
	if err := h.audit.LogChange(ctx, "purchase", doc.ID, postgres.AuditActionCommit, map[string]any{
		"number":      doc.Number,
		"lines":       len(doc.Lines),
		"totalAmount": doc.TotalAmount.String(),
	}); err != nil {
		logger.Warn(ctx, "audit log failed", "purchase_id", doc.ID, "error", err)
	}

	c.JSON(http.StatusCreated, doc)
}

// Get handles GET /purchases/:id - purchase with lines.
func (h *PurchaseHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	purchaseID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(ctx, purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// List handles GET /purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := purchase.ListFilter{
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

	if supStr := c.Query("supplierId"); supStr != "" {
		supplierID, err := id.Parse(supStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid supplierId format"))
			return
		}
		filter.SupplierID = &supplierID
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := purchase.PaymentStatus(statusStr)
		if !status.Valid() {
			h.Error(c, apperror.NewValidation("unknown payment status").WithDetail("status", statusStr))
			return
		}
		filter.Status = &status
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

// SetPaymentStatus handles POST /purchases/:id/payment-status.
func (h *PurchaseHandler) SetPaymentStatus(c *gin.Context) {
	ctx := c.Request.Context()

	purchaseID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.SetPaymentStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetPaymentStatus(ctx, purchaseID, req.Status); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.audit.LogChange(ctx, "purchase", purchaseID, postgres.AuditActionStatus, map[string]any{
		"status": string(req.Status),
	}); err != nil {
		logger.Warn(ctx, "audit log failed", "purchase_id", purchaseID, "error", err)
	}

	h.Success(c, "payment status updated")
}
