package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/id"
	"smartmart/internal/domain"
	"smartmart/internal/domain/documents/invoice"
	"smartmart/internal/infrastructure/storage/postgres"
)

const (
	invoiceTable     = "doc_invoices"
	invoiceLineTable = "doc_invoice_lines"
)

var invoiceLineColumns = []string{
	"line_id", "line_no", "product_id", "quantity",
	"price", "tax_percent", "cost_price", "return_qty",
}

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct {
	*BaseDocumentRepo[*invoice.Invoice]
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txm *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			invoiceTable,
			postgres.ExtractDBColumns[invoice.Invoice](),
			func() *invoice.Invoice { return &invoice.Invoice{} },
		),
	}
}

// GetByIDForUpdate loads the invoice header with SELECT ... FOR UPDATE.
// The header row lock serializes concurrent returns against the same
// invoice, so it must run inside an active transaction.
func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, docID id.ID) (*invoice.Invoice, error) {
	querier, err := r.txm.RequireTx(ctx)
	if err != nil {
		return nil, err
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"id": docID}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	doc := &invoice.Invoice{}
	if err := pgxscan.Get(ctx, querier, doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(invoiceTable, docID.String())
		}
		return nil, fmt.Errorf("get for update: %w", err)
	}

	return doc, nil
}

// SaveLines inserts all invoice lines. Requires an active transaction.
func (r *InvoiceRepo) SaveLines(ctx context.Context, docID id.ID, lines []invoice.Line) error {
	if len(lines) == 0 {
		return nil
	}

	querier, err := r.txm.RequireTx(ctx)
	if err != nil {
		return err
	}

	cols := append([]string{"invoice_id"}, invoiceLineColumns...)
	q := r.Builder().Insert(invoiceLineTable).Columns(cols...)

	for _, l := range lines {
		q = q.Values(
			docID, l.LineID, l.LineNo, l.ProductID, l.Quantity,
			l.Price, l.TaxPercent, l.CostPrice, l.ReturnQty,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert invoice lines: %w", err)
	}

	return nil
}

// UpdateLine rewrites one invoice line. Only the return quantity ever
// changes after commit, but writing the full row keeps the method simple.
func (r *InvoiceRepo) UpdateLine(ctx context.Context, docID id.ID, line *invoice.Line) error {
	querier, err := r.txm.RequireTx(ctx)
	if err != nil {
		return err
	}

	q := r.Builder().
		Update(invoiceLineTable).
		Set("quantity", line.Quantity).
		Set("price", line.Price).
		Set("tax_percent", line.TaxPercent).
		Set("cost_price", line.CostPrice).
		Set("return_qty", line.ReturnQty).
		Where(squirrel.Eq{"invoice_id": docID}).
		Where(squirrel.Eq{"line_id": line.LineID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update line: %w", err)
	}

	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update invoice line: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice line", line.LineID.String())
	}

	return nil
}

// GetLines retrieves invoice lines in line order.
func (r *InvoiceRepo) GetLines(ctx context.Context, docID id.ID) ([]invoice.Line, error) {
	q := r.Builder().
		Select(invoiceLineColumns...).
		From(invoiceLineTable).
		Where(squirrel.Eq{"invoice_id": docID}).
		OrderBy("line_no ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []invoice.Line
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select invoice lines: %w", err)
	}

	return lines, nil
}

// List retrieves invoices with filtering, newest first.
func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	result := domain.ListResult[*invoice.Invoice]{
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
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.IsReturn != nil {
		q = q.Where(squirrel.Eq{"is_return": *filter.IsReturn})
	}

	if err := r.listPage(ctx, q, filter.Limit, filter.Offset, &result.Items, &result.TotalCount); err != nil {
		return result, err
	}

	return result, nil
}

// Ensure interface compliance.
var _ invoice.Repository = (*InvoiceRepo)(nil)
