package purchase

import (
	"context"
	"fmt"
	"time"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/entity"
	"smartmart/internal/core/id"
	"smartmart/internal/core/tx"
	"smartmart/internal/core/types"
	"smartmart/internal/domain"
	"smartmart/internal/domain/costing"
	"smartmart/internal/domain/ledger"
	"smartmart/pkg/logger"
	"smartmart/pkg/numerator"
)

// ListFilter narrows purchase list queries.
type ListFilter struct {
	From       *time.Time
	To         *time.Time
	SupplierID *id.ID
	Status     *PaymentStatus

	Limit  int
	Offset int
}

// Repository is the purchase persistence contract.
type Repository interface {
	Create(ctx context.Context, doc *Purchase) error
	Update(ctx context.Context, doc *Purchase) error
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error
	GetByID(ctx context.Context, docID id.ID) (*Purchase, error)
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Purchase], error)
}

// Service orchestrates purchase commits and the payment lifecycle.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	products  ledger.ProductStore
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates a purchase service.
func NewService(
	repo Repository,
	ledgerSvc *ledger.Service,
	products ledger.ProductStore,
	num *numerator.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		products:  products,
		numerator: num,
		txManager: txManager,
	}
}

// Commit turns a draft into a committed purchase.
//
// Per line, in order: the product row is locked, the pre-receipt quantity
// and cost are captured, the weighted-average cost is recomputed against the
// PRE-mutation quantity, the product's pricing is updated, and a Purchase
// ledger entry brings the stock in. Any failure rolls everything back.
func (s *Service) Commit(ctx context.Context, draft Draft) (*Purchase, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	docDate := now
	if draft.Date != nil {
		docDate = draft.Date.UTC()
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("PO"), nil, docDate)
	if err != nil {
		return nil, fmt.Errorf("generate purchase number: %w", err)
	}

	doc := &Purchase{
		Document:   entity.NewDocument(),
		SupplierID: draft.SupplierID,
		DueDate:    draft.DueDate,
		PaidAmount: draft.PaidAmount,
		Status:     StatusPending,
	}
	doc.Number = number
	doc.Date = docDate
	doc.Comment = draft.Remarks

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		total := types.Zero()

		for i, dl := range draft.Lines {
			line, err := s.commitLine(ctx, doc, i+1, dl)
			if err != nil {
				return err
			}
			doc.Lines = append(doc.Lines, *line)
			total = total.Add(line.Amount())
		}

		doc.TotalAmount = types.RoundMoney(total)

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save purchase lines: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase committed",
		"purchase_id", doc.ID,
		"number", doc.Number,
		"lines", len(doc.Lines),
		"total", doc.TotalAmount.String(),
	)

	return doc, nil
}

// commitLine locks the product, re-weights its cost and records the receipt.
func (s *Service) commitLine(ctx context.Context, doc *Purchase, lineNo int, dl DraftLine) (*Line, error) {
	product, err := s.products.GetForUpdate(ctx, dl.ProductID)
	if err != nil {
		return nil, err
	}

	// Re-weight against the quantity BEFORE this receipt lands.
	newCost := costing.Reweight(product.Qty, product.CostPrice, dl.Quantity, dl.CostPrice)

	salePrice := product.SalePrice
	if dl.SalePrice != nil {
		salePrice = types.RoundMoney(*dl.SalePrice)
	}

	if err := s.products.UpdatePricing(ctx, product.ID, newCost, salePrice); err != nil {
		return nil, fmt.Errorf("update product pricing: %w", err)
	}

	line := Line{
		LineID:    id.New(),
		LineNo:    lineNo,
		ProductID: product.ID,
		Quantity:  dl.Quantity,
		CostPrice: types.RoundMoney(dl.CostPrice),
		SalePrice: salePrice,
	}

	txID := doc.ID
	if _, err := s.ledger.RecordMovement(ctx, ledger.Movement{
		ProductID:     product.ID,
		Type:          entity.TransactionPurchase,
		TransactionID: &txID,
		QtyIn:         dl.Quantity,
		Remarks:       doc.Number,
	}); err != nil {
		return nil, err
	}

	return &line, nil
}

// SetPaymentStatus moves the purchase along its payment lifecycle.
// It never touches stock: a cancelled purchase keeps its ledger entries,
// corrections go through adjustments.
func (s *Service) SetPaymentStatus(ctx context.Context, docID id.ID, status PaymentStatus) error {
	if !status.Valid() {
		return apperror.NewValidation("unknown payment status").
			WithDetail("payment_status", string(status))
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetByID(ctx, docID)
		if err != nil {
			return err
		}

		if doc.Status == status {
			return nil
		}
		if !doc.Status.CanTransitionTo(status) {
			return apperror.NewBusinessRule(
				apperror.CodeBusinessRule,
				fmt.Sprintf("cannot move payment status from %s to %s", doc.Status, status),
			).WithDetail("purchase_id", docID.String())
		}

		doc.Status = status
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update purchase: %w", err)
		}

		logger.Info(ctx, "purchase payment status changed",
			"purchase_id", docID,
			"status", status,
		)
		return nil
	})
}

// GetByID retrieves a purchase with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Purchase, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// List retrieves purchases with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Purchase], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

func validateDraft(draft Draft) error {
	if id.IsNil(draft.SupplierID) {
		return apperror.NewValidation("supplier is required")
	}
	if len(draft.Lines) == 0 {
		return apperror.NewValidation("at least one line is required")
	}
	if draft.PaidAmount.Sign() < 0 {
		return apperror.NewValidation("paid amount cannot be negative")
	}
	for i, l := range draft.Lines {
		if id.IsNil(l.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("lineNo", i+1)
		}
		if l.Quantity.Sign() <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("lineNo", i+1)
		}
		if l.CostPrice.Sign() < 0 {
			return apperror.NewValidation("cost price cannot be negative").
				WithDetail("lineNo", i+1)
		}
		if l.SalePrice != nil && l.SalePrice.Sign() <= 0 {
			return apperror.NewNonPositiveSalePrice(l.ProductID.String(), l.SalePrice.String()).
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}
