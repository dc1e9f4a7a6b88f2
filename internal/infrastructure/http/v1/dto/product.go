package dto

import (
	"time"

	"smartmart/internal/core/types"
	"smartmart/internal/domain/catalogs/product"
)

// CreateProductRequest registers a product with opening stock.
type CreateProductRequest struct {
	Code       string  `json:"code" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	CategoryID *string `json:"categoryId"`
	SupplierID *string `json:"supplierId"`
	UnitID     *string `json:"unitId"`

	CostPrice  types.Money    `json:"costPrice"`
	SalePrice  types.Money    `json:"salePrice"`
	OpeningQty types.Quantity `json:"openingQty"`

	Expiry *time.Time `json:"expiry"`
}

// ToEntity maps the request to a product entity.
func (r CreateProductRequest) ToEntity() (*product.Product, error) {
	p := product.New(r.Code, r.Name)
	p.CostPrice = r.CostPrice
	p.SalePrice = r.SalePrice
	p.Expiry = r.Expiry

	var err error
	if p.CategoryID, err = ParseOptionalID(r.CategoryID); err != nil {
		return nil, err
	}
	if p.SupplierID, err = ParseOptionalID(r.SupplierID); err != nil {
		return nil, err
	}
	if p.UnitID, err = ParseOptionalID(r.UnitID); err != nil {
		return nil, err
	}

	return p, nil
}

// UpdateProductRequest updates product details. The quantity snapshot is
// owned by the stock ledger and is not accepted here.
type UpdateProductRequest struct {
	Name       *string `json:"name"`
	CategoryID *string `json:"categoryId"`
	SupplierID *string `json:"supplierId"`
	UnitID     *string `json:"unitId"`

	CostPrice *types.Money `json:"costPrice"`
	SalePrice *types.Money `json:"salePrice"`

	Expiry *time.Time `json:"expiry"`
}

// ApplyTo maps set fields onto an existing product.
func (r UpdateProductRequest) ApplyTo(p *product.Product) error {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.CostPrice != nil {
		p.CostPrice = *r.CostPrice
	}
	if r.SalePrice != nil {
		p.SalePrice = *r.SalePrice
	}
	if r.Expiry != nil {
		p.Expiry = r.Expiry
	}

	var err error
	if r.CategoryID != nil {
		if p.CategoryID, err = ParseOptionalID(r.CategoryID); err != nil {
			return err
		}
	}
	if r.SupplierID != nil {
		if p.SupplierID, err = ParseOptionalID(r.SupplierID); err != nil {
			return err
		}
	}
	if r.UnitID != nil {
		if p.UnitID, err = ParseOptionalID(r.UnitID); err != nil {
			return err
		}
	}

	return nil
}

// SetStockRequest adjusts product stock to a target quantity.
type SetStockRequest struct {
	Qty     types.Quantity `json:"qty" binding:"required"`
	Remarks string         `json:"remarks"`
}

// ProductResponse is the product API representation.
type ProductResponse struct {
	BaseResponse
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	CategoryID *string `json:"categoryId,omitempty"`
	SupplierID *string `json:"supplierId,omitempty"`
	UnitID     *string `json:"unitId,omitempty"`

	CostPrice types.Money    `json:"costPrice"`
	SalePrice types.Money    `json:"salePrice"`
	Qty       types.Quantity `json:"qty"`
	Value     types.Money    `json:"value"`

	Expiry    *time.Time `json:"expiry,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// FromProduct creates ProductResponse from a product entity.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		BaseResponse: FromBaseCatalog(p.BaseCatalog),
		Code:         p.Code,
		Name:         p.Name,
		CategoryID:   OptionalIDString(p.CategoryID),
		SupplierID:   OptionalIDString(p.SupplierID),
		UnitID:       OptionalIDString(p.UnitID),
		CostPrice:    p.CostPrice,
		SalePrice:    p.SalePrice,
		Qty:          p.Qty,
		Value:        p.TotalValue(),
		Expiry:       p.Expiry,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
