// Package shop_repo provides the PostgreSQL implementation of the shop
// profile repository.
package shop_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"smartmart/internal/core/apperror"
	"smartmart/internal/domain/shop"
	"smartmart/internal/infrastructure/storage/postgres"
)

const shopProfileTable = "shop_profile"

// ShopRepo implements shop.Repository over the single-row profile table.
// A fixed primary key keeps the table at exactly one row.
type ShopRepo struct {
	txm *postgres.TxManager
}

// NewShopRepo creates a new shop profile repository.
func NewShopRepo(txm *postgres.TxManager) *ShopRepo {
	return &ShopRepo{txm: txm}
}

// Get returns the profile, or NotFound if it was never saved.
func (r *ShopRepo) Get(ctx context.Context) (*shop.Profile, error) {
	sql := `
		SELECT shop_name, phone, alt_phone, location, description, updated_at
		FROM shop_profile
		WHERE id = 1
	`

	var p shop.Profile
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(shopProfileTable, "profile")
		}
		return nil, fmt.Errorf("get shop profile: %w", err)
	}

	return &p, nil
}

// Upsert inserts or replaces the single profile row.
func (r *ShopRepo) Upsert(ctx context.Context, p *shop.Profile) error {
	sql := `
		INSERT INTO shop_profile (id, shop_name, phone, alt_phone, location, description, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			shop_name = EXCLUDED.shop_name,
			phone = EXCLUDED.phone,
			alt_phone = EXCLUDED.alt_phone,
			location = EXCLUDED.location,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.txm.GetQuerier(ctx).Exec(ctx, sql,
		p.ShopName, p.Phone, p.AltPhone, p.Location, p.Description, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert shop profile: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ shop.Repository = (*ShopRepo)(nil)
