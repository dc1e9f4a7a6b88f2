package ledger

import (
	"context"
	"fmt"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/entity"
	"smartmart/internal/core/id"
	"smartmart/internal/core/types"
	"smartmart/pkg/logger"
)

// Service is the stock mutation engine. It is the only writer of ledger
// entries and product quantity snapshots.
//
// All mutating methods must be called inside a transaction opened by the
// caller (document orchestrators, adjustment handlers); the repositories
// reject calls that arrive without one.
type Service struct {
	repo     Repository
	products ProductStore
}

// NewService creates a new ledger service.
func NewService(repo Repository, products ProductStore) *Service {
	return &Service{
		repo:     repo,
		products: products,
	}
}

// RecordMovement appends one ledger entry and synchronizes the product's
// quantity snapshot.
//
// The product row lock (SELECT ... FOR UPDATE) is acquired here, making the
// lock -> read balance -> append -> sync sequence atomic with respect to any
// concurrent mutation of the same product. A movement that would drive the
// balance negative is rejected with INSUFFICIENT_STOCK.
func (s *Service) RecordMovement(ctx context.Context, m Movement) (*entity.LedgerEntry, error) {
	if err := validateMovement(m); err != nil {
		return nil, err
	}

	// Single serialization point for the product's stock.
	if _, err := s.products.GetForUpdate(ctx, m.ProductID); err != nil {
		return nil, err
	}

	lastBalance, err := s.repo.GetLastBalance(ctx, m.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get last balance: %w", err)
	}

	newBalance := lastBalance.Add(m.QtyIn).Sub(m.QtyOut)
	if newBalance.Sign() < 0 {
		return nil, apperror.NewInsufficientStock(
			m.ProductID.String(),
			m.QtyOut.String(),
			lastBalance.String(),
		)
	}

	e := entity.NewLedgerEntry(m.ProductID, m.Type)
	e.TransactionID = m.TransactionID
	e.QtyIn = m.QtyIn
	e.QtyOut = m.QtyOut
	e.Balance = newBalance
	e.Remarks = m.Remarks

	if err := s.repo.AppendEntry(ctx, &e); err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}

	if err := s.products.UpdateQty(ctx, m.ProductID, newBalance); err != nil {
		return nil, fmt.Errorf("sync product qty: %w", err)
	}

	logger.Debug(ctx, "recorded stock movement",
		"product_id", m.ProductID,
		"type", m.Type,
		"balance", newBalance.String(),
	)

	return &e, nil
}

// RegisterOpening records the initial stock for a freshly registered product.
// A zero quantity is a no-op: products may start with an empty history.
func (s *Service) RegisterOpening(ctx context.Context, productID id.ID, qty types.Quantity, remarks string) (*entity.LedgerEntry, error) {
	if qty.Sign() == 0 {
		return nil, nil
	}
	if qty.Sign() < 0 {
		return nil, apperror.NewValidation("opening quantity cannot be negative").
			WithDetail("product_id", productID.String())
	}
	if remarks == "" {
		remarks = "Opening Stock"
	}

	return s.RecordMovement(ctx, Movement{
		ProductID: productID,
		Type:      entity.TransactionOpening,
		QtyIn:     qty,
		Remarks:   remarks,
	})
}

// AdjustTo realizes the difference between the current balance and target
// as a single Adjustment entry. Reducing below zero is impossible because
// target quantities are validated to be non-negative.
func (s *Service) AdjustTo(ctx context.Context, productID id.ID, target types.Quantity, remarks string) (*entity.LedgerEntry, error) {
	if target.Sign() < 0 {
		return nil, apperror.NewValidation("target quantity cannot be negative").
			WithDetail("product_id", productID.String())
	}

	// Take the lock before reading the balance so the diff stays valid.
	if _, err := s.products.GetForUpdate(ctx, productID); err != nil {
		return nil, err
	}

	current, err := s.repo.GetLastBalance(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get last balance: %w", err)
	}

	diff := target.Sub(current)
	if diff.Sign() == 0 {
		return nil, nil
	}

	m := Movement{
		ProductID: productID,
		Type:      entity.TransactionAdjustment,
		Remarks:   remarks,
	}
	if diff.Sign() > 0 {
		m.QtyIn = diff
	} else {
		m.QtyOut = diff.Neg()
	}

	return s.RecordMovement(ctx, m)
}

// Balance returns the product's current ledger balance (zero for products
// without history).
func (s *Service) Balance(ctx context.Context, productID id.ID) (types.Quantity, error) {
	return s.repo.GetLastBalance(ctx, productID)
}

// History returns ledger entries for a product, most recent first.
func (s *Service) History(ctx context.Context, productID id.ID, filter HistoryFilter) ([]entity.LedgerEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.repo.ListByProduct(ctx, productID, filter)
}

// EntriesByTransaction returns the entries a document produced.
func (s *Service) EntriesByTransaction(ctx context.Context, transactionID id.ID) ([]entity.LedgerEntry, error) {
	return s.repo.ListByTransaction(ctx, transactionID)
}

func validateMovement(m Movement) error {
	if id.IsNil(m.ProductID) {
		return apperror.NewValidation("product_id is required")
	}
	if !m.Type.Valid() {
		return apperror.NewValidation("unknown transaction type").
			WithDetail("transaction_type", string(m.Type))
	}
	if m.QtyIn.Sign() < 0 || m.QtyOut.Sign() < 0 {
		return apperror.NewValidation("quantities cannot be negative")
	}
	inSet := m.QtyIn.Sign() > 0
	outSet := m.QtyOut.Sign() > 0
	if inSet == outSet {
		return apperror.NewValidation("exactly one of qty_in and qty_out must be positive")
	}
	return nil
}
