package invoice

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
	"smartmart/internal/domain/discount"
	"smartmart/internal/domain/ledger"
	"smartmart/pkg/logger"
	"smartmart/pkg/numerator"
)

// ListFilter narrows invoice list queries.
type ListFilter struct {
	From       *time.Time
	To         *time.Time
	CustomerID *id.ID
	IsReturn   *bool

	Limit  int
	Offset int
}

// Repository is the invoice persistence contract.
type Repository interface {
	Create(ctx context.Context, doc *Invoice) error
	Update(ctx context.Context, doc *Invoice) error
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error
	UpdateLine(ctx context.Context, docID id.ID, line *Line) error
	GetByID(ctx context.Context, docID id.ID) (*Invoice, error)
	GetByIDForUpdate(ctx context.Context, docID id.ID) (*Invoice, error)
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)
}

// DiscountResolver picks applicable discounts at sale time.
type DiscountResolver interface {
	Resolve(ctx context.Context, productID, categoryID id.ID, asOf time.Time) (discount.Applicable, error)
	ResolveBill(ctx context.Context, total types.Money, asOf time.Time) (*discount.BillDiscount, error)
}

// Service orchestrates invoice commits and item returns.
//
// A commit is all-or-nothing: the document header, every line, every Sale
// ledger entry and every product snapshot either all land or none do.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	products  ledger.ProductStore
	discounts DiscountResolver
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates an invoice service.
func NewService(
	repo Repository,
	ledgerSvc *ledger.Service,
	products ledger.ProductStore,
	discounts DiscountResolver,
	num *numerator.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		products:  products,
		discounts: discounts,
		numerator: num,
		txManager: txManager,
	}
}

// Commit turns a draft into a committed invoice.
//
// Lines are processed in request order; each line locks its product row, so
// concurrent sales of the same products serialize on the first shared line.
// Any failure rolls the whole document back.
func (s *Service) Commit(ctx context.Context, draft Draft) (*Invoice, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("INV"), nil, now)
	if err != nil {
		return nil, fmt.Errorf("generate invoice number: %w", err)
	}

	inv := &Invoice{
		Document:    entity.NewDocument(),
		CustomerID:  draft.CustomerID,
		CashierName: draft.CashierName,
		Payment:     draft.Payment,
		TaxPercent:  draft.TaxPercent,
		PaidAmount:  draft.PaidAmount,
	}
	inv.Number = number
	inv.Comment = draft.Remarks

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		subtotal := types.Zero()

		for i, dl := range draft.Lines {
			line, err := s.commitLine(ctx, inv, i+1, dl, now)
			if err != nil {
				return err
			}
			inv.Lines = append(inv.Lines, *line)
			subtotal = subtotal.Add(line.Amount())
		}

		inv.Subtotal = types.RoundMoney(subtotal)

		billDiscount, err := s.resolveBillDiscount(ctx, draft, inv.Subtotal, now)
		if err != nil {
			return err
		}
		inv.Discount = billDiscount

		taxable := inv.Subtotal.Sub(inv.Discount)
		if taxable.Sign() < 0 {
			taxable = types.Zero()
		}
		tax := taxable.Mul(inv.TaxPercent).Div(types.MustMoney("100"))
		inv.FinalTotal = types.RoundMoney(taxable.Add(tax))

		if err := s.repo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if err := s.repo.SaveLines(ctx, inv.ID, inv.Lines); err != nil {
			return fmt.Errorf("save invoice lines: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice committed",
		"invoice_id", inv.ID,
		"number", inv.Number,
		"lines", len(inv.Lines),
		"final_total", inv.FinalTotal.String(),
	)

	return inv, nil
}

// commitLine locks the product, prices the line and records the Sale entry.
func (s *Service) commitLine(ctx context.Context, inv *Invoice, lineNo int, dl DraftLine, now time.Time) (*Line, error) {
	product, err := s.products.GetForUpdate(ctx, dl.ProductID)
	if err != nil {
		return nil, err
	}

	// Advisory check against the snapshot. The authoritative check happens
	// inside RecordMovement against the ledger balance; this one just fails
	// fast before pricing work.
	if product.Qty.LessThan(dl.Quantity) {
		return nil, apperror.NewInsufficientStock(
			product.ID.String(),
			dl.Quantity.String(),
			product.Qty.String(),
		)
	}

	price, err := s.resolveLinePrice(ctx, product, dl, now)
	if err != nil {
		return nil, err
	}

	line := Line{
		LineID:     id.New(),
		LineNo:     lineNo,
		ProductID:  product.ID,
		Quantity:   dl.Quantity,
		Price:      price,
		TaxPercent: dl.TaxPercent,
		CostPrice:  product.CostPrice,
		ReturnQty:  types.Zero(),
	}

	txID := inv.ID
	if _, err := s.ledger.RecordMovement(ctx, ledger.Movement{
		ProductID:     product.ID,
		Type:          entity.TransactionSale,
		TransactionID: &txID,
		QtyOut:        dl.Quantity,
		Remarks:       inv.Number,
	}); err != nil {
		return nil, err
	}

	return &line, nil
}

// resolveLinePrice returns the explicit draft price, or the product's sale
// price with the applicable discount applied. Item discounts take precedence
// over category discounts. The cost floor applies only to caller-supplied
// prices; a price produced by an active discount is honored as configured,
// even below cost.
func (s *Service) resolveLinePrice(ctx context.Context, product *ledger.ProductStock, dl DraftLine, now time.Time) (types.Money, error) {
	if dl.Price != nil {
		if dl.Price.Sign() < 0 {
			return types.Zero(), apperror.NewValidation("price cannot be negative")
		}
		price := types.RoundMoney(*dl.Price)
		if price.LessThan(product.CostPrice) {
			return types.Zero(), apperror.NewInvalidSalePrice(
				product.ID.String(),
				price.String(),
				product.CostPrice.String(),
			)
		}
		return price, nil
	}

	categoryID := id.Nil()
	if product.CategoryID != nil {
		categoryID = *product.CategoryID
	}

	applicable, err := s.discounts.Resolve(ctx, product.ID, categoryID, now)
	if err != nil {
		return types.Zero(), err
	}

	price := product.SalePrice
	switch {
	case applicable.Item != nil:
		price = applicable.Item.Apply(price)
	case applicable.Category != nil:
		factor := types.MustMoney("100").Sub(applicable.Category.Percent).Div(types.MustMoney("100"))
		price = types.RoundMoney(price.Mul(factor))
	}

	return price, nil
}

func (s *Service) resolveBillDiscount(ctx context.Context, draft Draft, subtotal types.Money, now time.Time) (types.Money, error) {
	if draft.Discount != nil {
		if draft.Discount.Sign() < 0 {
			return types.Zero(), apperror.NewInvalidDiscountAmount("bill discount cannot be negative")
		}
		if draft.Discount.GreaterThan(subtotal) {
			return types.Zero(), apperror.NewInvalidDiscountAmount("bill discount exceeds subtotal").
				WithDetail("subtotal", subtotal.String())
		}
		return types.RoundMoney(*draft.Discount), nil
	}

	bill, err := s.discounts.ResolveBill(ctx, subtotal, now)
	if err != nil {
		return types.Zero(), err
	}
	if bill == nil {
		return types.Zero(), nil
	}
	return bill.Deduction(subtotal), nil
}

// ReturnLine requests a partial or full return of one invoice line.
type ReturnLine struct {
	LineID id.ID
	Qty    types.Quantity
}

// ReturnItems records Return ledger entries for sold items. Per line, the
// cumulative returned quantity may never exceed the sold quantity.
func (s *Service) ReturnItems(ctx context.Context, invoiceID id.ID, returns []ReturnLine) error {
	if len(returns) == 0 {
		return apperror.NewValidation("at least one return line is required")
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// The invoice row lock serializes concurrent returns against the
		// same invoice, so the returnable bound is checked against the
		// committed return_qty, not a stale read.
		inv, err := s.repo.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		lines, err := s.repo.GetLines(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		inv.Lines = lines

		lineByID := make(map[id.ID]*Line, len(inv.Lines))
		for i := range inv.Lines {
			lineByID[inv.Lines[i].LineID] = &inv.Lines[i]
		}

		for _, r := range returns {
			line, ok := lineByID[r.LineID]
			if !ok {
				return apperror.NewNotFound("invoice line", r.LineID.String())
			}
			if r.Qty.Sign() <= 0 {
				return apperror.NewValidation("return quantity must be positive").
					WithDetail("line_id", r.LineID.String())
			}
			if r.Qty.GreaterThan(line.ReturnableQty()) {
				return apperror.NewValidation("return quantity exceeds sold quantity").
					WithDetail("line_id", r.LineID.String()).
					WithDetail("returnable", line.ReturnableQty().String())
			}

			txID := inv.ID
			if _, err := s.ledger.RecordMovement(ctx, ledger.Movement{
				ProductID:     line.ProductID,
				Type:          entity.TransactionReturn,
				TransactionID: &txID,
				QtyIn:         r.Qty,
				Remarks:       fmt.Sprintf("Return against %s", inv.Number),
			}); err != nil {
				return err
			}

			line.ReturnQty = line.ReturnQty.Add(r.Qty)
			if err := s.repo.UpdateLine(ctx, inv.ID, line); err != nil {
				return fmt.Errorf("update line return qty: %w", err)
			}
		}

		if !inv.IsReturn {
			inv.IsReturn = true
			if err := s.repo.Update(ctx, inv); err != nil {
				return fmt.Errorf("mark invoice returned: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "invoice items returned",
		"invoice_id", invoiceID,
		"lines", len(returns),
	)

	return nil
}

// GetByID retrieves an invoice with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Invoice, error) {
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

// List retrieves invoices with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

func validateDraft(draft Draft) error {
	if !draft.Payment.Valid() {
		return apperror.NewValidation("unknown payment method").
			WithDetail("payment_method", string(draft.Payment))
	}
	if len(draft.Lines) == 0 {
		return apperror.NewValidation("at least one line is required")
	}
	if draft.TaxPercent.Sign() < 0 {
		return apperror.NewValidation("tax percent cannot be negative")
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
	}
	return nil
}
