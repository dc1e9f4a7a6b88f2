// Package invoice provides the sales invoice document and its orchestrator.
package invoice

import (
	"context"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/entity"
	"smartmart/internal/core/id"
	"smartmart/internal/core/types"
)

// PaymentMethod is how the invoice was settled.
type PaymentMethod string

const (
	PaymentCashSale       PaymentMethod = "Cash Sale"
	PaymentCreditCard     PaymentMethod = "Credit Card"
	PaymentCreditCustomer PaymentMethod = "Credit Customer"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCashSale, PaymentCreditCard, PaymentCreditCustomer:
		return true
	}
	return false
}

// Invoice is a committed sale. It is immutable once committed; item returns
// are tracked per line via ReturnQty and new Return ledger entries.
type Invoice struct {
	entity.Document

	CustomerID  *id.ID        `db:"customer_id" json:"customerId,omitempty"`
	CashierName string        `db:"cashier_name" json:"cashierName,omitempty"`
	Payment     PaymentMethod `db:"payment_method" json:"paymentMethod"`

	// Discount is the bill-level deduction actually applied.
	Discount   types.Money `db:"discount" json:"discount"`
	TaxPercent types.Money `db:"tax_percent" json:"taxPercent"`
	Subtotal   types.Money `db:"subtotal" json:"subtotal"`
	FinalTotal types.Money `db:"final_total" json:"finalTotal"`
	PaidAmount types.Money `db:"paid_amount" json:"paidAmount"`

	// IsReturn marks invoices that have had items returned.
	IsReturn bool `db:"is_return" json:"isReturn"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one sold product position.
//
// CostPrice captures the product's weighted-average cost at the moment of
// sale, freezing margin history against later cost changes.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID  id.ID          `db:"product_id" json:"productId"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
	Price      types.Money    `db:"price" json:"price"`
	TaxPercent types.Money    `db:"tax_percent" json:"taxPercent"`
	CostPrice  types.Money    `db:"cost_price" json:"costPrice"`
	ReturnQty  types.Quantity `db:"return_qty" json:"returnQty"`
}

// Amount returns the line total: quantity * price.
func (l *Line) Amount() types.Money {
	return types.RoundMoney(l.Quantity.Mul(l.Price))
}

// ReturnableQty returns how much of the line can still be returned.
func (l *Line) ReturnableQty() types.Quantity {
	return l.Quantity.Sub(l.ReturnQty)
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}
	if !inv.Payment.Valid() {
		return apperror.NewValidation("unknown payment method").
			WithDetail("payment_method", string(inv.Payment))
	}
	if len(inv.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, line := range inv.Lines {
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

// Draft is the input for committing a sale.
type Draft struct {
	CustomerID  *id.ID
	CashierName string
	Payment     PaymentMethod
	Remarks     string

	// Discount overrides bill discount resolution when set.
	Discount   *types.Money
	TaxPercent types.Money
	PaidAmount types.Money

	Lines []DraftLine
}

// DraftLine is one requested sale position. A nil Price means "use the
// product's sale price with applicable discounts".
type DraftLine struct {
	ProductID  id.ID
	Quantity   types.Quantity
	Price      *types.Money
	TaxPercent types.Money
}
