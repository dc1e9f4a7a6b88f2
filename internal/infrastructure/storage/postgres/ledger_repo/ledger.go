// Package ledger_repo provides the PostgreSQL implementation of the stock
// ledger repository.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"smartmart/internal/core/entity"
	"smartmart/internal/core/id"
	"smartmart/internal/core/types"
	"smartmart/internal/domain/ledger"
	"smartmart/internal/infrastructure/storage/postgres"
)

const ledgerTable = "stock_ledger"

var ledgerColumns = []string{
	"id", "product_id", "transaction_type", "transaction_id",
	"qty_in", "qty_out", "balance", "remarks", "created_at",
}

// LedgerRepo implements ledger.Repository.
// Writes require an active transaction: entries and the product quantity
// snapshot must land atomically under the product row lock.
type LedgerRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new stock ledger repository.
func NewLedgerRepo(txm *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// AppendEntry inserts an immutable ledger row. There is no update or delete
// counterpart: corrections are recorded as new entries.
func (r *LedgerRepo) AppendEntry(ctx context.Context, e *entity.LedgerEntry) error {
	querier, err := r.txm.RequireTx(ctx)
	if err != nil {
		return err
	}

	q := r.builder.Insert(ledgerTable).
		Columns(ledgerColumns...).
		Values(
			e.ID, e.ProductID, e.Type, e.TransactionID,
			e.QtyIn, e.QtyOut, e.Balance, e.Remarks, e.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}

	return nil
}

// GetLastBalance returns the balance of the most recent entry for the
// product, or zero when the product has no ledger history. UUIDv7 ids are
// time-ordered, so the latest entry is the one with the greatest id.
func (r *LedgerRepo) GetLastBalance(ctx context.Context, productID id.ID) (types.Quantity, error) {
	q := r.builder.Select("balance").
		From(ledgerTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("id DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var balance types.Quantity
	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&balance)
	if err == pgx.ErrNoRows {
		return types.Zero(), nil
	}
	if err != nil {
		return types.Zero(), fmt.Errorf("get last balance: %w", err)
	}

	return balance, nil
}

// ListByProduct returns entries for a product, most recent first.
func (r *LedgerRepo) ListByProduct(ctx context.Context, productID id.ID, filter ledger.HistoryFilter) ([]entity.LedgerEntry, error) {
	q := r.builder.Select(ledgerColumns...).
		From(ledgerTable).
		Where(squirrel.Eq{"product_id": productID})

	if len(filter.Types) > 0 {
		q = q.Where(squirrel.Eq{"transaction_type": filter.Types})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.To})
	}

	q = q.OrderBy("id DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []entity.LedgerEntry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select ledger entries: %w", err)
	}

	return entries, nil
}

// ListByTransaction returns entries created by a document, oldest first.
func (r *LedgerRepo) ListByTransaction(ctx context.Context, transactionID id.ID) ([]entity.LedgerEntry, error) {
	q := r.builder.Select(ledgerColumns...).
		From(ledgerTable).
		Where(squirrel.Eq{"transaction_id": transactionID}).
		OrderBy("id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []entity.LedgerEntry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select ledger entries: %w", err)
	}

	return entries, nil
}

// Turnover sums inbound and outbound quantities for a product over a period.
func (r *LedgerRepo) Turnover(ctx context.Context, productID id.ID, filter ledger.HistoryFilter) (in, out types.Quantity, err error) {
	q := r.builder.Select(
		"COALESCE(SUM(qty_in), 0) AS total_in",
		"COALESCE(SUM(qty_out), 0) AS total_out",
	).From(ledgerTable).
		Where(squirrel.Eq{"product_id": productID})

	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.To})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), types.Zero(), fmt.Errorf("build query: %w", err)
	}

	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&in, &out)
	if err != nil && err != pgx.ErrNoRows {
		return types.Zero(), types.Zero(), fmt.Errorf("calculate turnover: %w", err)
	}

	return in, out, nil
}

// Ensure interface compliance.
var _ ledger.Repository = (*LedgerRepo)(nil)
