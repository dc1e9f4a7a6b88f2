package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartmart/internal/domain/shop"
	"smartmart/internal/infrastructure/http/v1/dto"
)

// ShopHandler handles the single-row shop profile.
type ShopHandler struct {
	*BaseHandler
	service *shop.Service
}

// NewShopHandler creates a shop profile handler.
func NewShopHandler(base *BaseHandler, service *shop.Service) *ShopHandler {
	return &ShopHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Get handles GET /shop.
func (h *ShopHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	profile, err := h.service.Get(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Save handles PUT /shop - upsert the profile.
func (h *ShopHandler) Save(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SaveShopProfileRequest
	if !h.BindJSON(c, &req) {
		return
	}

	profile := req.ToEntity()
	if err := h.service.Save(ctx, profile); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
