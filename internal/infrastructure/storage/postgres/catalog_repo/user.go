package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/id"
	"smartmart/internal/domain/catalogs/user"
	"smartmart/internal/infrastructure/storage/postgres"
)

const userTable = "cat_users"

// UserRepo implements user.Repository.
type UserRepo struct {
	*BaseCatalogRepo[*user.User]
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *postgres.TxManager) *UserRepo {
	return &UserRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			userTable,
			postgres.ExtractDBColumns[user.User](),
			func() *user.User { return &user.User{} },
		),
	}
}

// TouchLastLogin stamps the user's last login time.
func (r *UserRepo) TouchLastLogin(ctx context.Context, userID id.ID, at time.Time) error {
	q := r.Builder().
		Update(userTable).
		Set("last_login", at.UTC()).
		Where(squirrel.Eq{"id": userID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build touch last login: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("user", userID.String())
	}

	return nil
}
