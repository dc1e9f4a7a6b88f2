// Package entity provides core domain entities.
package entity

import (
	"time"

	"smartmart/internal/core/id"
	"smartmart/internal/core/types"
)

// TransactionType classifies stock ledger entries.
type TransactionType string

const (
	// TransactionOpening is the initial stock declared at product registration.
	TransactionOpening TransactionType = "Opening"
	// TransactionPurchase increases stock from a supplier receipt.
	TransactionPurchase TransactionType = "Purchase"
	// TransactionSale decreases stock from a customer invoice.
	TransactionSale TransactionType = "Sale"
	// TransactionReturn increases stock from a customer return.
	TransactionReturn TransactionType = "Return"
	// TransactionAdjustment is a manual correction, either direction.
	TransactionAdjustment TransactionType = "Adjustment"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionOpening, TransactionPurchase, TransactionSale,
		TransactionReturn, TransactionAdjustment:
		return true
	}
	return false
}

// LedgerEntry is a single immutable row of the stock ledger.
// Entries are append-only: corrections are new entries, never updates.
//
// Exactly one of QtyIn/QtyOut is non-zero. Balance is the running total
// for the product after this entry; the chain of balances is a prefix sum
// over the entries in creation order (UUIDv7 ids are time-ordered).
type LedgerEntry struct {
	// ID is the primary key (UUIDv7, time-ordered)
	ID id.ID `db:"id" json:"id"`

	// ProductID is the product this entry moves stock for
	ProductID id.ID `db:"product_id" json:"productId"`

	// Type classifies the movement
	Type TransactionType `db:"transaction_type" json:"transactionType"`

	// TransactionID references the originating document (nullable for
	// Opening and manual Adjustment entries)
	TransactionID *id.ID `db:"transaction_id" json:"transactionId,omitempty"`

	// QtyIn is the inbound quantity (zero for outbound entries)
	QtyIn types.Quantity `db:"qty_in" json:"qtyIn"`

	// QtyOut is the outbound quantity (zero for inbound entries)
	QtyOut types.Quantity `db:"qty_out" json:"qtyOut"`

	// Balance is the product's stock level after this entry
	Balance types.Quantity `db:"balance" json:"balance"`

	// Remarks is free-form context (e.g. "Opening Stock", invoice number)
	Remarks string `db:"remarks" json:"remarks,omitempty"`

	// CreatedAt is when the entry was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewLedgerEntry creates a ledger entry with generated ID and timestamp.
// Quantities and balance are filled in by the stock mutation engine.
func NewLedgerEntry(productID id.ID, txType TransactionType) LedgerEntry {
	return LedgerEntry{
		ID:        id.New(),
		ProductID: productID,
		Type:      txType,
		CreatedAt: time.Now().UTC(),
	}
}

// SignedQuantity returns the entry's net effect on stock:
// positive for inbound, negative for outbound.
func (e *LedgerEntry) SignedQuantity() types.Quantity {
	if e.QtyOut.Sign() > 0 {
		return e.QtyOut.Neg()
	}
	return e.QtyIn
}

// IsInbound reports whether the entry increases stock.
func (e *LedgerEntry) IsInbound() bool {
	return e.QtyIn.Sign() > 0
}
