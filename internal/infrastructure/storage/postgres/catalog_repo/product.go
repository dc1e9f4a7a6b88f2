package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/id"
	"smartmart/internal/core/types"
	"smartmart/internal/domain"
	"smartmart/internal/domain/catalogs/product"
	"smartmart/internal/domain/ledger"
	"smartmart/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// ProductRepo implements product.Repository, plus the narrow stock and
// pricing views the ledger and discount engines need (ledger.ProductStore,
// discount.SalePriceReader).
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// GetForUpdate loads the product's stock view with SELECT ... FOR UPDATE.
// The row lock is the serialization point for all stock mutations of this
// product, so it must run inside an active transaction.
func (r *ProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*ledger.ProductStock, error) {
	querier, err := r.txm.RequireTx(ctx)
	if err != nil {
		return nil, err
	}

	q := r.Builder().
		Select("id", "code", "name", "category_id", "qty", "cost_price", "sale_price").
		From(productTable).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var stock ledger.ProductStock
	if err := pgxscan.Get(ctx, querier, &stock, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewProductNotFound(productID.String())
		}
		return nil, fmt.Errorf("get for update: %w", err)
	}

	return &stock, nil
}

// UpdateQty writes the product's quantity snapshot.
// Only the stock mutation engine calls this, always under the row lock.
func (r *ProductRepo) UpdateQty(ctx context.Context, productID id.ID, qty types.Quantity) error {
	querier, err := r.txm.RequireTx(ctx)
	if err != nil {
		return err
	}

	q := r.Builder().
		Update(productTable).
		Set("qty", qty).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update qty: %w", err)
	}

	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update qty: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewProductNotFound(productID.String())
	}

	return nil
}

// UpdatePricing writes the product's cost and sale price.
func (r *ProductRepo) UpdatePricing(ctx context.Context, productID id.ID, costPrice, salePrice types.Money) error {
	querier, err := r.txm.RequireTx(ctx)
	if err != nil {
		return err
	}

	q := r.Builder().
		Update(productTable).
		Set("cost_price", costPrice).
		Set("sale_price", salePrice).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update pricing: %w", err)
	}

	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update pricing: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewProductNotFound(productID.String())
	}

	return nil
}

// GetSalePrice returns the current sale price of a product.
func (r *ProductRepo) GetSalePrice(ctx context.Context, productID id.ID) (types.Money, error) {
	q := r.Builder().
		Select("sale_price").
		From(productTable).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var price types.Money
	if err := pgxscan.Get(ctx, r.Querier(ctx), &price, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return types.Zero(), apperror.NewProductNotFound(productID.String())
		}
		return types.Zero(), fmt.Errorf("get sale price: %w", err)
	}

	return price, nil
}

// FindByCategory retrieves products in a category.
func (r *ProductRepo) FindByCategory(ctx context.Context, categoryID id.ID, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	result := domain.ListResult[*product.Product]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"category_id": categoryID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return result, fmt.Errorf("find by category: %w", err)
	}
	result.Items = items
	result.TotalCount = int64(len(items))

	return result, nil
}

// FindExpiringBefore retrieves products whose expiry date falls before cutoff.
func (r *ProductRepo) FindExpiringBefore(ctx context.Context, cutoff time.Time) ([]*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Lt{"expiry": cutoff}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("expiry ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("find expiring: %w", err)
	}

	return items, nil
}
