package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"smartmart/internal/core/id"
	"smartmart/internal/domain"
	"smartmart/internal/domain/documents/purchase"
	"smartmart/internal/infrastructure/storage/postgres"
)

const (
	purchaseTable     = "doc_purchases"
	purchaseLineTable = "doc_purchase_lines"
)

var purchaseLineColumns = []string{
	"line_id", "line_no", "product_id", "quantity", "cost_price", "sale_price",
}

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	*BaseDocumentRepo[*purchase.Purchase]
}

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			purchaseTable,
			postgres.ExtractDBColumns[purchase.Purchase](),
			func() *purchase.Purchase { return &purchase.Purchase{} },
		),
	}
}

// SaveLines inserts all purchase lines. Requires an active transaction.
func (r *PurchaseRepo) SaveLines(ctx context.Context, docID id.ID, lines []purchase.Line) error {
	if len(lines) == 0 {
		return nil
	}

	querier, err := r.txm.RequireTx(ctx)
	if err != nil {
		return err
	}

	cols := append([]string{"purchase_id"}, purchaseLineColumns...)
	q := r.Builder().Insert(purchaseLineTable).Columns(cols...)

	for _, l := range lines {
		q = q.Values(
			docID, l.LineID, l.LineNo, l.ProductID,
			l.Quantity, l.CostPrice, l.SalePrice,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase lines: %w", err)
	}

	return nil
}

// GetLines retrieves purchase lines in line order.
func (r *PurchaseRepo) GetLines(ctx context.Context, docID id.ID) ([]purchase.Line, error) {
	q := r.Builder().
		Select(purchaseLineColumns...).
		From(purchaseLineTable).
		Where(squirrel.Eq{"purchase_id": docID}).
		OrderBy("line_no ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase.Line
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select purchase lines: %w", err)
	}

	return lines, nil
}

// List retrieves purchases with filtering, newest first.
func (r *PurchaseRepo) List(ctx context.Context, filter purchase.ListFilter) (domain.ListResult[*purchase.Purchase], error) {
	result := domain.ListResult[*purchase.Purchase]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false})

	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.To})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"payment_status": *filter.Status})
	}

	if err := r.listPage(ctx, q, filter.Limit, filter.Offset, &result.Items, &result.TotalCount); err != nil {
		return result, err
	}

	return result, nil
}

// Ensure interface compliance.
var _ purchase.Repository = (*PurchaseRepo)(nil)
