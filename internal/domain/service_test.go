package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/entity"
	"smartmart/internal/core/id"
)

type testCatalog struct {
	entity.BaseCatalog
	Code string `db:"code"`
	Name string `db:"name"`
}

func (c *testCatalog) Validate(_ context.Context) error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeCatalogRepo struct {
	items map[id.ID]*testCatalog
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{items: make(map[id.ID]*testCatalog)}
}

func (r *fakeCatalogRepo) Create(_ context.Context, c *testCatalog) error {
	r.items[c.ID] = c
	return nil
}

func (r *fakeCatalogRepo) GetByID(_ context.Context, entityID id.ID) (*testCatalog, error) {
	c, ok := r.items[entityID]
	if !ok {
		return nil, apperror.NewNotFound("record", entityID.String())
	}
	return c, nil
}

func (r *fakeCatalogRepo) GetByCode(_ context.Context, code string) (*testCatalog, error) {
	for _, c := range r.items {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("record", code)
}

func (r *fakeCatalogRepo) Update(_ context.Context, c *testCatalog) error {
	r.items[c.ID] = c
	return nil
}

func (r *fakeCatalogRepo) SetDeletionMark(_ context.Context, entityID id.ID, marked bool) error {
	c, ok := r.items[entityID]
	if !ok {
		return apperror.NewNotFound("record", entityID.String())
	}
	c.DeletionMark = marked
	return nil
}

func (r *fakeCatalogRepo) List(_ context.Context, _ ListFilter) (ListResult[*testCatalog], error) {
	var out []*testCatalog
	for _, c := range r.items {
		out = append(out, c)
	}
	return ListResult[*testCatalog]{Items: out, TotalCount: int64(len(out))}, nil
}

func (r *fakeCatalogRepo) Exists(_ context.Context, entityID id.ID) (bool, error) {
	_, ok := r.items[entityID]
	return ok, nil
}

func (r *fakeCatalogRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, c := range r.items {
		if c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func newTestCatalogService() (*CatalogService[*testCatalog], *fakeCatalogRepo) {
	repo := newFakeCatalogRepo()
	svc := NewCatalogService(CatalogServiceConfig[*testCatalog]{
		Repo:       repo,
		TxManager:  fakeTxManager{},
		EntityName: "widget",
	})
	return svc, repo
}

func newTestCatalog(code, name string) *testCatalog {
	return &testCatalog{
		BaseCatalog: entity.NewBaseCatalog(),
		Code:        code,
		Name:        name,
	}
}

func TestCatalogServiceCreate(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestCatalogService()

	t.Run("valid entity created", func(t *testing.T) {
		c := newTestCatalog("W-1", "Widget One")
		require.NoError(t, svc.Create(ctx, c))
		assert.Contains(t, repo.items, c.ID)
	})

	t.Run("plain validation error becomes AppError", func(t *testing.T) {
		err := svc.Create(ctx, newTestCatalog("W-2", ""))
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})
}

func TestCatalogServiceGetNotFoundUsesEntityName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestCatalogService()

	_, err := svc.GetByID(ctx, id.New())
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)
	assert.Contains(t, appErr.Message, "widget")
}

func TestCatalogServiceDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestCatalogService()

	c := newTestCatalog("W-1", "Widget One")
	require.NoError(t, svc.Create(ctx, c))

	require.NoError(t, svc.Delete(ctx, c.ID))
	assert.True(t, repo.items[c.ID].DeletionMark, "delete is a soft delete")

	require.NoError(t, svc.SetDeletionMark(ctx, c.ID, false))
	assert.False(t, repo.items[c.ID].DeletionMark)
}

func TestCatalogServiceHooks(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestCatalogService()

	var events []HookEvent
	svc.Hooks().On(BeforeCreate, func(_ context.Context, _ *testCatalog) error {
		events = append(events, BeforeCreate)
		return nil
	})
	svc.Hooks().On(AfterCreate, func(_ context.Context, _ *testCatalog) error {
		events = append(events, AfterCreate)
		return nil
	})

	require.NoError(t, svc.Create(ctx, newTestCatalog("W-1", "Widget One")))
	assert.Equal(t, []HookEvent{BeforeCreate, AfterCreate}, events)

	t.Run("before-create failure blocks the create", func(t *testing.T) {
		svc.Hooks().On(BeforeCreate, func(_ context.Context, _ *testCatalog) error {
			return errors.New("blocked")
		})
		c := newTestCatalog("W-2", "Widget Two")
		assert.Error(t, svc.Create(ctx, c))
		assert.NotContains(t, repo.items, c.ID)
	})
}
