package dto

import (
	"smartmart/internal/core/entity"
	"smartmart/internal/core/types"
)

// AvailabilityResponse is the current ledger balance of a product.
type AvailabilityResponse struct {
	ProductID string         `json:"productId"`
	Qty       types.Quantity `json:"qty"`
}

// LedgerHistoryResponse is a page of ledger entries for a product.
type LedgerHistoryResponse struct {
	ProductID string              `json:"productId"`
	Entries   []entity.LedgerEntry `json:"entries"`
}
