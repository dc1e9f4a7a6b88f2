// Package shop provides the single-row shop profile.
package shop

import (
	"context"
	"time"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/tx"
)

// Profile holds shop identity shown on receipts and reports.
// There is exactly one row; saving always upserts it.
type Profile struct {
	ShopName    string    `db:"shop_name" json:"shopName"`
	Phone       string    `db:"phone" json:"phone"`
	AltPhone    string    `db:"alt_phone" json:"altPhone,omitempty"`
	Location    string    `db:"location" json:"location,omitempty"`
	Description string    `db:"description" json:"description,omitempty"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks profile invariants.
func (p *Profile) Validate(ctx context.Context) error {
	if p.ShopName == "" {
		return apperror.NewValidation("shop name is required").
			WithDetail("field", "shop_name")
	}
	if p.Phone == "" {
		return apperror.NewValidation("phone is required").
			WithDetail("field", "phone")
	}
	return nil
}

// Repository persists the shop profile.
type Repository interface {
	// Get returns the profile, or NotFound if it was never saved.
	Get(ctx context.Context) (*Profile, error)

	// Upsert inserts or replaces the single profile row.
	Upsert(ctx context.Context, p *Profile) error
}

// Service provides shop profile operations.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a shop profile service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Get returns the shop profile.
func (s *Service) Get(ctx context.Context) (*Profile, error) {
	return s.repo.Get(ctx)
}

// Save validates and upserts the shop profile.
func (s *Service) Save(ctx context.Context, p *Profile) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Upsert(ctx, p)
	})
}
