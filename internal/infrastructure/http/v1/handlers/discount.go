package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/id"
	"smartmart/internal/domain/discount"
	"smartmart/internal/infrastructure/http/v1/dto"
)

// DiscountHandler handles the three discount kinds plus resolution.
type DiscountHandler struct {
	*BaseHandler
	service *discount.Service
}

// NewDiscountHandler creates a discount handler.
func NewDiscountHandler(base *BaseHandler, service *discount.Service) *DiscountHandler {
	return &DiscountHandler{
		BaseHandler: base,
		service:     service,
	}
}

// --- Item discounts ---

// CreateItem handles POST /discounts/items.
func (h *DiscountHandler) CreateItem(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateItemDiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("error", err.Error()))
		return
	}

	if err := h.service.CreateItem(ctx, d); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, d)
}

// UpdateItem handles PUT /discounts/items/:id.
func (h *DiscountHandler) UpdateItem(c *gin.Context) {
	ctx := c.Request.Context()

	discountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateItemDiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d, err := h.service.GetItem(ctx, discountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(d)

	if err := h.service.UpdateItem(ctx, d); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

// GetItem handles GET /discounts/items/:id.
func (h *DiscountHandler) GetItem(c *gin.Context) {
	ctx := c.Request.Context()

	discountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	d, err := h.service.GetItem(ctx, discountID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

// ListItems handles GET /discounts/items.
func (h *DiscountHandler) ListItems(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.service.ListItems(ctx, c.Query("includeInactive") == "true")
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// SetItemStatus handles POST /discounts/items/:id/status.
func (h *DiscountHandler) SetItemStatus(c *gin.Context) {
	h.setStatus(c, h.service.SetItemStatus)
}

// --- Category discounts ---

// CreateCategory handles POST /discounts/categories.
func (h *DiscountHandler) CreateCategory(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateCategoryDiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("error", err.Error()))
		return
	}

	if err := h.service.CreateCategory(ctx, d); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, d)
}

// UpdateCategory handles PUT /discounts/categories/:id.
func (h *DiscountHandler) UpdateCategory(c *gin.Context) {
	ctx := c.Request.Context()

	discountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateCategoryDiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d, err := h.service.GetCategory(ctx, discountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(d)

	if err := h.service.UpdateCategory(ctx, d); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

// GetCategory handles GET /discounts/categories/:id.
func (h *DiscountHandler) GetCategory(c *gin.Context) {
	ctx := c.Request.Context()

	discountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	d, err := h.service.GetCategory(ctx, discountID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

// ListCategories handles GET /discounts/categories.
func (h *DiscountHandler) ListCategories(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.service.ListCategories(ctx, c.Query("includeInactive") == "true")
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// SetCategoryStatus handles POST /discounts/categories/:id/status.
func (h *DiscountHandler) SetCategoryStatus(c *gin.Context) {
	h.setStatus(c, h.service.SetCategoryStatus)
}

// --- Bill discounts ---

// CreateBill handles POST /discounts/bills.
func (h *DiscountHandler) CreateBill(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateBillDiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d := req.ToEntity()
	if err := h.service.CreateBill(ctx, d); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, d)
}

// UpdateBill handles PUT /discounts/bills/:id.
func (h *DiscountHandler) UpdateBill(c *gin.Context) {
	ctx := c.Request.Context()

	discountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateBillDiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d, err := h.service.GetBill(ctx, discountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(d)

	if err := h.service.UpdateBill(ctx, d); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

// GetBill handles GET /discounts/bills/:id.
func (h *DiscountHandler) GetBill(c *gin.Context) {
	ctx := c.Request.Context()

	discountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	d, err := h.service.GetBill(ctx, discountID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

// ListBills handles GET /discounts/bills.
func (h *DiscountHandler) ListBills(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.service.ListBills(ctx, c.Query("includeInactive") == "true")
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// SetBillStatus handles POST /discounts/bills/:id/status.
func (h *DiscountHandler) SetBillStatus(c *gin.Context) {
	h.setStatus(c, h.service.SetBillStatus)
}

// --- Resolution ---

// Resolve handles GET /discounts/resolve/:productId - preview the discounts
// that would apply to a product right now.
func (h *DiscountHandler) Resolve(c *gin.Context) {
	ctx := c.Request.Context()

	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	categoryID := id.Nil()
	if catStr := c.Query("categoryId"); catStr != "" {
		categoryID, err = id.Parse(catStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid categoryId format"))
			return
		}
	}

	applicable, err := h.service.Resolve(ctx, productID, categoryID, time.Now().UTC())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ResolvedDiscountsResponse{
		Item:     applicable.Item,
		Category: applicable.Category,
	})
}

// setStatus reads the id and status and applies fn.
func (h *DiscountHandler) setStatus(c *gin.Context, fn func(ctx context.Context, discountID id.ID, status discount.Status) error) {
	ctx := c.Request.Context()

	discountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.SetDiscountStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	switch req.Status {
	case discount.StatusActive, discount.StatusInactive:
	default:
		h.Error(c, apperror.NewValidation("unknown status").WithDetail("status", string(req.Status)))
		return
	}

	if err := fn(ctx, discountID, req.Status); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "status updated")
}
