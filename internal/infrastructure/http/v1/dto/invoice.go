package dto

import (
	"smartmart/internal/core/id"
	"smartmart/internal/core/types"
	"smartmart/internal/domain/documents/invoice"
)

// CommitInvoiceRequest commits a sale in one shot.
type CommitInvoiceRequest struct {
	CustomerID  *string               `json:"customerId"`
	CashierName string                `json:"cashierName"`
	Payment     invoice.PaymentMethod `json:"paymentMethod" binding:"required"`
	Remarks     string                `json:"remarks"`

	// Discount overrides bill discount resolution when set.
	Discount   *types.Money `json:"discount"`
	TaxPercent types.Money  `json:"taxPercent"`
	PaidAmount types.Money  `json:"paidAmount"`

	Lines []InvoiceLineRequest `json:"lines" binding:"required"`
}

// InvoiceLineRequest is one requested sale position. A null price means
// "use the product's sale price with applicable discounts".
type InvoiceLineRequest struct {
	ProductID  string         `json:"productId" binding:"required"`
	Quantity   types.Quantity `json:"quantity" binding:"required"`
	Price      *types.Money   `json:"price"`
	TaxPercent types.Money    `json:"taxPercent"`
}

// ToDraft maps the request to an invoice draft.
func (r CommitInvoiceRequest) ToDraft() (invoice.Draft, error) {
	draft := invoice.Draft{
		CashierName: r.CashierName,
		Payment:     r.Payment,
		Remarks:     r.Remarks,
		Discount:    r.Discount,
		TaxPercent:  r.TaxPercent,
		PaidAmount:  r.PaidAmount,
	}

	var err error
	if draft.CustomerID, err = ParseOptionalID(r.CustomerID); err != nil {
		return draft, err
	}

	draft.Lines = make([]invoice.DraftLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		productID, err := id.Parse(l.ProductID)
		if err != nil {
			return draft, err
		}
		draft.Lines = append(draft.Lines, invoice.DraftLine{
			ProductID:  productID,
			Quantity:   l.Quantity,
			Price:      l.Price,
			TaxPercent: l.TaxPercent,
		})
	}

	return draft, nil
}

// ReturnItemsRequest returns sold items against an invoice.
type ReturnItemsRequest struct {
	Lines []ReturnLineRequest `json:"lines" binding:"required"`
}

// ReturnLineRequest returns part of one invoice line.
type ReturnLineRequest struct {
	LineID string         `json:"lineId" binding:"required"`
	Qty    types.Quantity `json:"qty" binding:"required"`
}

// ToReturnLines maps the request to return lines.
func (r ReturnItemsRequest) ToReturnLines() ([]invoice.ReturnLine, error) {
	lines := make([]invoice.ReturnLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lineID, err := id.Parse(l.LineID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, invoice.ReturnLine{LineID: lineID, Qty: l.Qty})
	}
	return lines, nil
}
