package customer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/id"
	"smartmart/internal/domain"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	customers map[id.ID]*Customer
	creates   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{customers: make(map[id.ID]*Customer)}
}

func (r *fakeRepo) Create(_ context.Context, c *Customer) error {
	r.creates++
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, customerID id.ID) (*Customer, error) {
	c, ok := r.customers[customerID]
	if !ok {
		return nil, apperror.NewNotFound("customer", customerID.String())
	}
	return c, nil
}

func (r *fakeRepo) GetByCode(_ context.Context, code string) (*Customer, error) {
	for _, c := range r.customers {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("customer", code)
}

func (r *fakeRepo) GetByName(_ context.Context, name string) (*Customer, error) {
	for _, c := range r.customers {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("customer", name)
}

func (r *fakeRepo) Update(_ context.Context, c *Customer) error {
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *fakeRepo) SetDeletionMark(_ context.Context, customerID id.ID, marked bool) error {
	c, ok := r.customers[customerID]
	if !ok {
		return apperror.NewNotFound("customer", customerID.String())
	}
	c.DeletionMark = marked
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ domain.ListFilter) (domain.ListResult[*Customer], error) {
	var out []*Customer
	for _, c := range r.customers {
		out = append(out, c)
	}
	return domain.ListResult[*Customer]{Items: out, TotalCount: int64(len(out))}, nil
}

func (r *fakeRepo) Exists(_ context.Context, customerID id.ID) (bool, error) {
	_, ok := r.customers[customerID]
	return ok, nil
}

func (r *fakeRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, c := range r.customers {
		if c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func TestEnsureCashCustomer(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, fakeTxManager{})

	first, err := svc.EnsureCashCustomer(ctx)
	require.NoError(t, err)
	assert.Equal(t, CashCustomerName, first.Name)
	assert.Equal(t, "CASH", first.Code)
	assert.Equal(t, 1, repo.creates)

	// Calling again must reuse the existing customer.
	second, err := svc.EnsureCashCustomer(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.creates)
}
