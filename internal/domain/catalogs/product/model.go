// Package product provides the product catalog.
package product

import (
	"context"
	"time"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/entity"
	"smartmart/internal/core/id"
	"smartmart/internal/core/types"
)

// Product is a sellable item.
//
// Qty is a denormalized snapshot of the stock ledger balance. It is written
// only by the stock mutation engine; catalog updates never touch it.
type Product struct {
	entity.Catalog

	CategoryID *id.ID `db:"category_id" json:"categoryId,omitempty"`
	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`
	UnitID     *id.ID `db:"unit_id" json:"unitId,omitempty"`

	CostPrice types.Money    `db:"cost_price" json:"costPrice"`
	SalePrice types.Money    `db:"sale_price" json:"salePrice"`
	Qty       types.Quantity `db:"qty" json:"qty"`

	// Expiry is the shelf-life date, if the product has one.
	Expiry *time.Time `db:"expiry" json:"expiry,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a product with generated ID and zero stock.
func New(code, name string) *Product {
	now := time.Now().UTC()
	return &Product{
		Catalog:   entity.NewCatalog(code, name),
		CostPrice: types.Zero(),
		SalePrice: types.Zero(),
		Qty:       types.Zero(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}
	if p.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}
	if p.CostPrice.Sign() < 0 {
		return apperror.NewValidation("cost price cannot be negative")
	}
	if p.SalePrice.Sign() < 0 {
		return apperror.NewValidation("sale price cannot be negative")
	}
	return nil
}

// TotalValue returns the stock valuation: qty * cost price.
func (p *Product) TotalValue() types.Money {
	return types.RoundMoney(p.Qty.Mul(p.CostPrice))
}
