package dto

import "smartmart/internal/domain/shop"

// SaveShopProfileRequest replaces the single shop profile row.
type SaveShopProfileRequest struct {
	ShopName    string `json:"shopName" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	AltPhone    string `json:"altPhone"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// ToEntity maps the request to a shop profile.
func (r SaveShopProfileRequest) ToEntity() *shop.Profile {
	return &shop.Profile{
		ShopName:    r.ShopName,
		Phone:       r.Phone,
		AltPhone:    r.AltPhone,
		Location:    r.Location,
		Description: r.Description,
	}
}
