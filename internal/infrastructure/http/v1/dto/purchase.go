package dto

import (
	"time"

	"smartmart/internal/core/id"
	"smartmart/internal/core/types"
	"smartmart/internal/domain/documents/purchase"
)

// CommitPurchaseRequest commits a supplier goods receipt in one shot.
type CommitPurchaseRequest struct {
	SupplierID string     `json:"supplierId" binding:"required"`
	Date       *time.Time `json:"date"`
	DueDate    *time.Time `json:"dueDate"`
	Remarks    string     `json:"remarks"`

	PaidAmount types.Money `json:"paidAmount"`

	Lines []PurchaseLineRequest `json:"lines" binding:"required"`
}

// PurchaseLineRequest is one requested receipt position. A null sale price
// keeps the product's current sale price.
type PurchaseLineRequest struct {
	ProductID string         `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
	CostPrice types.Money    `json:"costPrice" binding:"required"`
	SalePrice *types.Money   `json:"salePrice"`
}

// ToDraft maps the request to a purchase draft.
func (r CommitPurchaseRequest) ToDraft() (purchase.Draft, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return purchase.Draft{}, err
	}

	draft := purchase.Draft{
		SupplierID: supplierID,
		Date:       r.Date,
		DueDate:    r.DueDate,
		Remarks:    r.Remarks,
		PaidAmount: r.PaidAmount,
	}

	draft.Lines = make([]purchase.DraftLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		productID, err := id.Parse(l.ProductID)
		if err != nil {
			return draft, err
		}
		draft.Lines = append(draft.Lines, purchase.DraftLine{
			ProductID: productID,
			Quantity:  l.Quantity,
			CostPrice: l.CostPrice,
			SalePrice: l.SalePrice,
		})
	}

	return draft, nil
}

// SetPaymentStatusRequest moves a purchase along its payment lifecycle.
type SetPaymentStatusRequest struct {
	Status purchase.PaymentStatus `json:"status" binding:"required"`
}
