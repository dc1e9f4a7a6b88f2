// Package purchase provides the supplier purchase document and its
// orchestrator, including the cost re-weighting on receipt.
package purchase

import (
	"context"
	"time"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/entity"
	"smartmart/internal/core/id"
	"smartmart/internal/core/types"
)

// PaymentStatus is the purchase payment lifecycle.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "Pending"
	StatusPartial   PaymentStatus = "Partial"
	StatusPaid      PaymentStatus = "Paid"
	StatusCancelled PaymentStatus = "Cancelled"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// Paid and Cancelled are terminal.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusPartial || next == StatusPaid || next == StatusCancelled
	case StatusPartial:
		return next == StatusPaid || next == StatusCancelled
	}
	return false
}

// Purchase is a committed goods receipt from a supplier.
// Stock and costing effects are final at commit; the payment status is the
// only field that changes afterwards.
type Purchase struct {
	entity.Document

	SupplierID id.ID      `db:"supplier_id" json:"supplierId"`
	DueDate    *time.Time `db:"due_date" json:"dueDate,omitempty"`

	TotalAmount types.Money   `db:"total_amount" json:"totalAmount"`
	PaidAmount  types.Money   `db:"paid_amount" json:"paidAmount"`
	Status      PaymentStatus `db:"payment_status" json:"paymentStatus"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one received product position. CostPrice and SalePrice freeze the
// prices of this receipt; later catalog changes never rewrite them.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	CostPrice types.Money    `db:"cost_price" json:"costPrice"`
	SalePrice types.Money    `db:"sale_price" json:"salePrice"`
}

// Amount returns the line total: quantity * cost price.
func (l *Line) Amount() types.Money {
	return types.RoundMoney(l.Quantity.Mul(l.CostPrice))
}

// Validate implements entity.Validatable.
func (p *Purchase) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if len(p.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, line := range p.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Quantity.Sign() <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// Draft is the input for committing a purchase.
type Draft struct {
	SupplierID id.ID
	Date       *time.Time
	DueDate    *time.Time
	Remarks    string
	PaidAmount types.Money

	Lines []DraftLine
}

// DraftLine is one requested receipt position. A nil SalePrice keeps the
// product's current sale price.
type DraftLine struct {
	ProductID id.ID
	Quantity  types.Quantity
	CostPrice types.Money
	SalePrice *types.Money
}
