// Package discount_repo provides the PostgreSQL implementation of the
// discount repository (item, category and bill discounts).
package discount_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/id"
	"smartmart/internal/domain/discount"
	"smartmart/internal/infrastructure/storage/postgres"
)

const (
	itemDiscountTable     = "disc_item_discounts"
	categoryDiscountTable = "disc_category_discounts"
	billDiscountTable     = "disc_bill_discounts"
)

// DiscountRepo implements discount.Repository over the three discount tables.
type DiscountRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType

	itemCols     []string
	categoryCols []string
	billCols     []string
}

// NewDiscountRepo creates a new discount repository.
func NewDiscountRepo(txm *postgres.TxManager) *DiscountRepo {
	return &DiscountRepo{
		txm:          txm,
		builder:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		itemCols:     postgres.ExtractDBColumns[discount.ItemDiscount](),
		categoryCols: postgres.ExtractDBColumns[discount.CategoryDiscount](),
		billCols:     postgres.ExtractDBColumns[discount.BillDiscount](),
	}
}

func (r *DiscountRepo) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// insert builds and executes an INSERT from the entity's "db" tags.
func (r *DiscountRepo) insert(ctx context.Context, table string, cols []string, entity any) error {
	data := postgres.StructToMap(entity)

	filtered := make(map[string]any, len(cols))
	for _, col := range cols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder.Insert(table).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}

	return nil
}

// update builds and executes an UPDATE with optimistic locking.
func (r *DiscountRepo) update(ctx context.Context, table string, cols []string, entity any) error {
	data := postgres.StructToMap(entity)

	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("entity has no 'id' field with db tag")
	}
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field or it is not an int")
	}

	filtered := make(map[string]any, len(cols))
	for _, col := range cols {
		if col == "id" || col == "version" {
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}
	filtered["updated_at"] = time.Now().UTC()

	q := r.builder.Update(table).
		SetMap(filtered).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(table, entityID)
	}

	return nil
}

func (r *DiscountRepo) setStatus(ctx context.Context, table string, discountID id.ID, status discount.Status) error {
	q := r.builder.Update(table).
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": discountID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set status: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set status on %s: %w", table, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(table, discountID.String())
	}

	return nil
}

// activeWindow filters to Active discounts whose inclusive date window
// contains asOf. Windows hold dates, so asOf is truncated to the day.
func activeWindow(q squirrel.SelectBuilder, asOf time.Time) squirrel.SelectBuilder {
	day := asOf.UTC().Truncate(24 * time.Hour)
	return q.
		Where(squirrel.Eq{"status": discount.StatusActive}).
		Where(squirrel.LtOrEq{"start_date": day}).
		Where(squirrel.GtOrEq{"end_date": day})
}

// --- Item discounts ---

// CreateItem persists a new item discount.
func (r *DiscountRepo) CreateItem(ctx context.Context, d *discount.ItemDiscount) error {
	return r.insert(ctx, itemDiscountTable, r.itemCols, d)
}

// UpdateItem persists changes to an item discount.
func (r *DiscountRepo) UpdateItem(ctx context.Context, d *discount.ItemDiscount) error {
	return r.update(ctx, itemDiscountTable, r.itemCols, d)
}

// GetItem retrieves an item discount by id.
func (r *DiscountRepo) GetItem(ctx context.Context, discountID id.ID) (*discount.ItemDiscount, error) {
	q := r.builder.Select(r.itemCols...).
		From(itemDiscountTable).
		Where(squirrel.Eq{"id": discountID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d discount.ItemDiscount
	if err := pgxscan.Get(ctx, r.querier(ctx), &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("item discount", discountID.String())
		}
		return nil, fmt.Errorf("get item discount: %w", err)
	}

	return &d, nil
}

// ListItems retrieves item discounts, newest first.
func (r *DiscountRepo) ListItems(ctx context.Context, includeInactive bool) ([]discount.ItemDiscount, error) {
	q := r.builder.Select(r.itemCols...).
		From(itemDiscountTable).
		OrderBy("created_at DESC")

	if !includeInactive {
		q = q.Where(squirrel.Eq{"status": discount.StatusActive})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []discount.ItemDiscount
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list item discounts: %w", err)
	}

	return items, nil
}

// SetItemStatus toggles an item discount.
func (r *DiscountRepo) SetItemStatus(ctx context.Context, discountID id.ID, status discount.Status) error {
	return r.setStatus(ctx, itemDiscountTable, discountID, status)
}

// ActiveItemsForProduct returns Active item discounts for the product whose
// window contains asOf.
func (r *DiscountRepo) ActiveItemsForProduct(ctx context.Context, productID id.ID, asOf time.Time) ([]discount.ItemDiscount, error) {
	q := activeWindow(
		r.builder.Select(r.itemCols...).
			From(itemDiscountTable).
			Where(squirrel.Eq{"product_id": productID}),
		asOf,
	)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []discount.ItemDiscount
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("active item discounts: %w", err)
	}

	return items, nil
}

// --- Category discounts ---

// CreateCategory persists a new category discount.
func (r *DiscountRepo) CreateCategory(ctx context.Context, d *discount.CategoryDiscount) error {
	return r.insert(ctx, categoryDiscountTable, r.categoryCols, d)
}

// UpdateCategory persists changes to a category discount.
func (r *DiscountRepo) UpdateCategory(ctx context.Context, d *discount.CategoryDiscount) error {
	return r.update(ctx, categoryDiscountTable, r.categoryCols, d)
}

// GetCategory retrieves a category discount by id.
func (r *DiscountRepo) GetCategory(ctx context.Context, discountID id.ID) (*discount.CategoryDiscount, error) {
	q := r.builder.Select(r.categoryCols...).
		From(categoryDiscountTable).
		Where(squirrel.Eq{"id": discountID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d discount.CategoryDiscount
	if err := pgxscan.Get(ctx, r.querier(ctx), &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("category discount", discountID.String())
		}
		return nil, fmt.Errorf("get category discount: %w", err)
	}

	return &d, nil
}

// ListCategories retrieves category discounts, newest first.
func (r *DiscountRepo) ListCategories(ctx context.Context, includeInactive bool) ([]discount.CategoryDiscount, error) {
	q := r.builder.Select(r.categoryCols...).
		From(categoryDiscountTable).
		OrderBy("created_at DESC")

	if !includeInactive {
		q = q.Where(squirrel.Eq{"status": discount.StatusActive})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []discount.CategoryDiscount
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list category discounts: %w", err)
	}

	return items, nil
}

// SetCategoryStatus toggles a category discount.
func (r *DiscountRepo) SetCategoryStatus(ctx context.Context, discountID id.ID, status discount.Status) error {
	return r.setStatus(ctx, categoryDiscountTable, discountID, status)
}

// ActiveCategoriesFor returns Active category discounts for the category
// whose window contains asOf.
func (r *DiscountRepo) ActiveCategoriesFor(ctx context.Context, categoryID id.ID, asOf time.Time) ([]discount.CategoryDiscount, error) {
	q := activeWindow(
		r.builder.Select(r.categoryCols...).
			From(categoryDiscountTable).
			Where(squirrel.Eq{"category_id": categoryID}),
		asOf,
	)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []discount.CategoryDiscount
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("active category discounts: %w", err)
	}

	return items, nil
}

// --- Bill discounts ---

// CreateBill persists a new bill discount.
func (r *DiscountRepo) CreateBill(ctx context.Context, d *discount.BillDiscount) error {
	return r.insert(ctx, billDiscountTable, r.billCols, d)
}

// UpdateBill persists changes to a bill discount.
func (r *DiscountRepo) UpdateBill(ctx context.Context, d *discount.BillDiscount) error {
	return r.update(ctx, billDiscountTable, r.billCols, d)
}

// GetBill retrieves a bill discount by id.
func (r *DiscountRepo) GetBill(ctx context.Context, discountID id.ID) (*discount.BillDiscount, error) {
	q := r.builder.Select(r.billCols...).
		From(billDiscountTable).
		Where(squirrel.Eq{"id": discountID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d discount.BillDiscount
	if err := pgxscan.Get(ctx, r.querier(ctx), &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("bill discount", discountID.String())
		}
		return nil, fmt.Errorf("get bill discount: %w", err)
	}

	return &d, nil
}

// ListBills retrieves bill discounts, newest first.
func (r *DiscountRepo) ListBills(ctx context.Context, includeInactive bool) ([]discount.BillDiscount, error) {
	q := r.builder.Select(r.billCols...).
		From(billDiscountTable).
		OrderBy("created_at DESC")

	if !includeInactive {
		q = q.Where(squirrel.Eq{"status": discount.StatusActive})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []discount.BillDiscount
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list bill discounts: %w", err)
	}

	return items, nil
}

// SetBillStatus toggles a bill discount.
func (r *DiscountRepo) SetBillStatus(ctx context.Context, discountID id.ID, status discount.Status) error {
	return r.setStatus(ctx, billDiscountTable, discountID, status)
}

// ActiveBills returns Active bill discounts whose window contains asOf.
func (r *DiscountRepo) ActiveBills(ctx context.Context, asOf time.Time) ([]discount.BillDiscount, error) {
	q := activeWindow(
		r.builder.Select(r.billCols...).From(billDiscountTable),
		asOf,
	)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []discount.BillDiscount
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("active bill discounts: %w", err)
	}

	return items, nil
}

// Ensure interface compliance.
var _ discount.Repository = (*DiscountRepo)(nil)
