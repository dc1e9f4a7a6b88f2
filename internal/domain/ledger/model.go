// Package ledger provides the stock ledger: an append-only journal of every
// stock movement plus the mutation engine that keeps product quantity
// snapshots consistent with it.
package ledger

import (
	"context"
	"time"

	"smartmart/internal/core/entity"
	"smartmart/internal/core/id"
	"smartmart/internal/core/types"
)

// Movement describes a requested stock mutation. Exactly one of QtyIn/QtyOut
// must be positive; the other must be zero.
type Movement struct {
	ProductID     id.ID
	Type          entity.TransactionType
	TransactionID *id.ID
	QtyIn         types.Quantity
	QtyOut        types.Quantity
	Remarks       string
}

// HistoryFilter narrows ledger history queries.
type HistoryFilter struct {
	Types []entity.TransactionType
	From  *time.Time
	To    *time.Time

	Limit  int
	Offset int
}

// Repository persists ledger entries.
// All methods must run on the transaction querier carried in ctx.
type Repository interface {
	// AppendEntry inserts an immutable ledger row.
	AppendEntry(ctx context.Context, e *entity.LedgerEntry) error

	// GetLastBalance returns the balance of the most recent entry for the
	// product, or zero when the product has no ledger history.
	GetLastBalance(ctx context.Context, productID id.ID) (types.Quantity, error)

	// ListByProduct returns entries for a product, most recent first.
	ListByProduct(ctx context.Context, productID id.ID, filter HistoryFilter) ([]entity.LedgerEntry, error)

	// ListByTransaction returns entries created by a document.
	ListByTransaction(ctx context.Context, transactionID id.ID) ([]entity.LedgerEntry, error)
}

// ProductStock is the lock-protected stock view of a product.
type ProductStock struct {
	ID         id.ID          `db:"id"`
	Code       string         `db:"code"`
	Name       string         `db:"name"`
	CategoryID *id.ID         `db:"category_id"`
	Qty        types.Quantity `db:"qty"`
	CostPrice  types.Money    `db:"cost_price"`
	SalePrice  types.Money    `db:"sale_price"`
}

// ProductStore is the narrow product access the mutation engine needs.
// GetForUpdate takes the product row lock that serializes all concurrent
// stock mutations for a product.
type ProductStore interface {
	// GetForUpdate loads the product with SELECT ... FOR UPDATE.
	// Returns PRODUCT_NOT_FOUND when the id does not exist.
	GetForUpdate(ctx context.Context, productID id.ID) (*ProductStock, error)

	// UpdateQty writes the product's quantity snapshot.
	UpdateQty(ctx context.Context, productID id.ID, qty types.Quantity) error

	// UpdatePricing writes the product's cost and sale price.
	UpdatePricing(ctx context.Context, productID id.ID, costPrice, salePrice types.Money) error
}
