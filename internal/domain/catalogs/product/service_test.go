package product

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/entity"
	"smartmart/internal/core/id"
	"smartmart/internal/core/types"
	"smartmart/internal/domain"
	"smartmart/internal/domain/ledger"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeProductRepo backs both the catalog contract and the ledger's narrow
// product store, like the real repository does.
type fakeProductRepo struct {
	products map[id.ID]*Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[id.ID]*Product)}
}

func (r *fakeProductRepo) Create(_ context.Context, p *Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, productID id.ID) (*Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetByCode(_ context.Context, code string) (*Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("product", code)
}

func (r *fakeProductRepo) Update(_ context.Context, p *Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return apperror.NewNotFound("product", p.ID.String())
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) SetDeletionMark(_ context.Context, productID id.ID, marked bool) error {
	p, ok := r.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	p.DeletionMark = marked
	return nil
}

func (r *fakeProductRepo) List(_ context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	var out []*Product
	for _, p := range r.products {
		if !filter.IncludeDeleted && p.DeletionMark {
			continue
		}
		if filter.Search != "" && !strings.Contains(p.Name, filter.Search) {
			continue
		}
		out = append(out, p)
	}
	return domain.ListResult[*Product]{Items: out, TotalCount: int64(len(out))}, nil
}

func (r *fakeProductRepo) Exists(_ context.Context, productID id.ID) (bool, error) {
	_, ok := r.products[productID]
	return ok, nil
}

func (r *fakeProductRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, p := range r.products {
		if p.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProductRepo) GetForUpdate(_ context.Context, productID id.ID) (*ledger.ProductStock, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewProductNotFound(productID.String())
	}
	return &ledger.ProductStock{
		ID:         p.ID,
		Code:       p.Code,
		Name:       p.Name,
		CategoryID: p.CategoryID,
		Qty:        p.Qty,
		CostPrice:  p.CostPrice,
		SalePrice:  p.SalePrice,
	}, nil
}

func (r *fakeProductRepo) UpdateQty(_ context.Context, productID id.ID, qty types.Quantity) error {
	r.products[productID].Qty = qty
	return nil
}

func (r *fakeProductRepo) UpdatePricing(_ context.Context, productID id.ID, costPrice, salePrice types.Money) error {
	r.products[productID].CostPrice = costPrice
	r.products[productID].SalePrice = salePrice
	return nil
}

type fakeLedgerRepo struct {
	entries []entity.LedgerEntry
}

func (r *fakeLedgerRepo) AppendEntry(_ context.Context, e *entity.LedgerEntry) error {
	r.entries = append(r.entries, *e)
	return nil
}

func (r *fakeLedgerRepo) GetLastBalance(_ context.Context, productID id.ID) (types.Quantity, error) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].ProductID == productID {
			return r.entries[i].Balance, nil
		}
	}
	return types.Zero(), nil
}

func (r *fakeLedgerRepo) ListByProduct(_ context.Context, _ id.ID, _ ledger.HistoryFilter) ([]entity.LedgerEntry, error) {
	return nil, nil
}

func (r *fakeLedgerRepo) ListByTransaction(_ context.Context, _ id.ID) ([]entity.LedgerEntry, error) {
	return nil, nil
}

func newTestService() (*Service, *fakeProductRepo, *fakeLedgerRepo) {
	repo := newFakeProductRepo()
	ledgerRepo := &fakeLedgerRepo{}
	svc := NewService(repo, ledger.NewService(ledgerRepo, repo), fakeTxManager{})
	return svc, repo, ledgerRepo
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, repo, ledgerRepo := newTestService()

	p := New("P-001", "Sugar 1kg")
	p.CostPrice = types.MustMoney("2.00")
	p.SalePrice = types.MustMoney("3.00")

	require.NoError(t, svc.Register(ctx, p, types.MustMoney("25")))

	// The snapshot follows the Opening entry, not the request.
	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Qty.Equal(types.MustMoney("25")), "qty = %s", stored.Qty)

	require.Len(t, ledgerRepo.entries, 1)
	assert.Equal(t, entity.TransactionOpening, ledgerRepo.entries[0].Type)
	assert.True(t, ledgerRepo.entries[0].Balance.Equal(types.MustMoney("25")))
}

func TestRegisterZeroOpening(t *testing.T) {
	ctx := context.Background()
	svc, repo, ledgerRepo := newTestService()

	p := New("P-002", "Salt 500g")
	require.NoError(t, svc.Register(ctx, p, types.Zero()))

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Qty.Equal(types.Zero()))
	assert.Empty(t, ledgerRepo.entries, "zero opening must not create history")
}

func TestRegisterDuplicateCode(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	require.NoError(t, svc.Register(ctx, New("P-001", "First"), types.Zero()))

	err := svc.Register(ctx, New("P-001", "Second"), types.Zero())
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestRegisterNegativeOpening(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Register(context.Background(), New("P-001", "Sugar"), types.MustMoney("-1"))
	assert.Error(t, err)
}

func TestUpdateDetails(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()

	p := New("P-001", "Sugar 1kg")
	require.NoError(t, svc.Register(ctx, p, types.MustMoney("10")))

	t.Run("code is immutable", func(t *testing.T) {
		changed, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		changed.Code = "P-999"
		err = svc.UpdateDetails(ctx, changed)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("quantity snapshot is preserved", func(t *testing.T) {
		changed, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		changed.Name = "Sugar 1kg (refined)"
		changed.Qty = types.MustMoney("999")

		require.NoError(t, svc.UpdateDetails(ctx, changed))

		stored, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Sugar 1kg (refined)", stored.Name)
		assert.True(t, stored.Qty.Equal(types.MustMoney("10")), "qty = %s", stored.Qty)
	})
}

func TestSetStock(t *testing.T) {
	ctx := context.Background()
	svc, repo, ledgerRepo := newTestService()

	p := New("P-001", "Sugar 1kg")
	require.NoError(t, svc.Register(ctx, p, types.MustMoney("10")))

	require.NoError(t, svc.SetStock(ctx, p.ID, types.MustMoney("4"), "stocktake"))

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Qty.Equal(types.MustMoney("4")))

	last := ledgerRepo.entries[len(ledgerRepo.entries)-1]
	assert.Equal(t, entity.TransactionAdjustment, last.Type)
	assert.True(t, last.QtyOut.Equal(types.MustMoney("6")))
}

func TestAvailability(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	p := New("P-001", "Sugar 1kg")
	require.NoError(t, svc.Register(ctx, p, types.MustMoney("7")))

	t.Run("returns ledger balance", func(t *testing.T) {
		qty, err := svc.Availability(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, qty.Equal(types.MustMoney("7")))
	})

	t.Run("unknown product rejected", func(t *testing.T) {
		_, err := svc.Availability(ctx, id.New())
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeProductNotFound, appErr.Code)
	})
}
