// Package user provides the staff catalog.
//
// Credentials are out of scope: the catalog tracks who exists and what role
// they hold, not how they sign in.
package user

import (
	"context"
	"time"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/entity"
	"smartmart/internal/core/tx"
	"smartmart/internal/domain"
)

// Role determines what a user may do.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleCashier Role = "Cashier"
)

// Status enables or disables a user.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// User is a staff member. Code doubles as the login name.
type User struct {
	entity.Catalog

	FullName  string     `db:"full_name" json:"fullName"`
	Role      Role       `db:"role" json:"role"`
	Status    Status     `db:"status" json:"status"`
	Email     string     `db:"email" json:"email,omitempty"`
	LastLogin *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

// New creates a user with generated ID.
func New(username, fullName string, role Role) *User {
	now := time.Now().UTC()
	return &User{
		Catalog:   entity.NewCatalog(username, fullName),
		FullName:  fullName,
		Role:      role,
		Status:    StatusInactive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate implements entity.Validatable.
func (u *User) Validate(ctx context.Context) error {
	if u.Code == "" {
		return apperror.NewValidation("username is required").
			WithDetail("field", "code")
	}
	if u.FullName == "" {
		return apperror.NewValidation("full name is required").
			WithDetail("field", "full_name")
	}
	switch u.Role {
	case RoleAdmin, RoleCashier:
	default:
		return apperror.NewValidation("unknown role").
			WithDetail("role", string(u.Role))
	}
	return nil
}

// Repository is the user persistence contract.
type Repository interface {
	domain.CatalogRepository[*User]
}

// Service provides user operations.
type Service struct {
	*domain.CatalogService[*User]
}

// NewService creates a user service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*User]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "user",
		}),
	}
}
