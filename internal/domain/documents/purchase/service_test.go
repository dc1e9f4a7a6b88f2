package purchase

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/entity"
	"smartmart/internal/core/id"
	"smartmart/internal/core/types"
	"smartmart/internal/domain"
	"smartmart/internal/domain/ledger"
	"smartmart/pkg/numerator"
)

// --- Test fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	purchases map[id.ID]*Purchase
	lines     map[id.ID][]Line
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		purchases: make(map[id.ID]*Purchase),
		lines:     make(map[id.ID][]Line),
	}
}

func (r *fakeRepo) Create(_ context.Context, doc *Purchase) error {
	cp := *doc
	r.purchases[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) Update(_ context.Context, doc *Purchase) error {
	cp := *doc
	r.purchases[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) SaveLines(_ context.Context, docID id.ID, lines []Line) error {
	r.lines[docID] = append([]Line(nil), lines...)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, docID id.ID) (*Purchase, error) {
	doc, ok := r.purchases[docID]
	if !ok {
		return nil, apperror.NewNotFound("purchase", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeRepo) GetLines(_ context.Context, docID id.ID) ([]Line, error) {
	return append([]Line(nil), r.lines[docID]...), nil
}

func (r *fakeRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*Purchase], error) {
	var out []*Purchase
	for _, doc := range r.purchases {
		out = append(out, doc)
	}
	return domain.ListResult[*Purchase]{Items: out, TotalCount: int64(len(out))}, nil
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

func (r *fakeLedgerRepo) ListByTransaction(_ context.Context, transactionID id.ID) ([]entity.LedgerEntry, error) {
	var out []entity.LedgerEntry
	for _, e := range r.entries {
		if e.TransactionID != nil && *e.TransactionID == transactionID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeProductStore struct {
	products map[id.ID]*ledger.ProductStock
}

func (s *fakeProductStore) GetForUpdate(_ context.Context, productID id.ID) (*ledger.ProductStock, error) {
	p, ok := s.products[productID]
	if !ok {
		return nil, apperror.NewProductNotFound(productID.String())
	}
	return p, nil
}

func (s *fakeProductStore) UpdateQty(_ context.Context, productID id.ID, qty types.Quantity) error {
	s.products[productID].Qty = qty
	return nil
}

func (s *fakeProductStore) UpdatePricing(_ context.Context, productID id.ID, costPrice, salePrice types.Money) error {
	s.products[productID].CostPrice = costPrice
	s.products[productID].SalePrice = salePrice
	return nil
}

type mockRow struct {
	num int64
}

func (m *mockRow) Scan(dest ...any) error {
	if p, ok := dest[0].(*int64); ok {
		*p = m.num
	}
	return nil
}

type mockQuerier struct {
	counter int64
}

func (m *mockQuerier) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	m.counter++
	return &mockRow{num: m.counter}
}

// --- Test harness ---

type harness struct {
	svc    *Service
	repo   *fakeRepo
	ledger *fakeLedgerRepo
	store  *fakeProductStore
}

func newHarness(products ...*ledger.ProductStock) *harness {
	store := &fakeProductStore{products: make(map[id.ID]*ledger.ProductStock)}
	ledgerRepo := &fakeLedgerRepo{}
	for _, p := range products {
		store.products[p.ID] = p
		if p.Qty.Sign() > 0 {
			e := entity.NewLedgerEntry(p.ID, entity.TransactionOpening)
			e.QtyIn = p.Qty
			e.Balance = p.Qty
			ledgerRepo.entries = append(ledgerRepo.entries, e)
		}
	}

	repo := newFakeRepo()
	svc := NewService(
		repo,
		ledger.NewService(ledgerRepo, store),
		store,
		numerator.New(&mockQuerier{}),
		fakeTxManager{},
	)

	return &harness{svc: svc, repo: repo, ledger: ledgerRepo, store: store}
}

func testProduct(qty, cost, sale string) *ledger.ProductStock {
	return &ledger.ProductStock{
		ID:        id.New(),
		Code:      "P-001",
		Name:      "Test Product",
		Qty:       types.MustMoney(qty),
		CostPrice: types.MustMoney(cost),
		SalePrice: types.MustMoney(sale),
	}
}

func money(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

// --- Commit ---

func TestCommitReweightsCost(t *testing.T) {
	ctx := context.Background()
	p := testProduct("10", "5.00", "8.00")
	h := newHarness(p)

	doc, err := h.svc.Commit(ctx, Draft{
		SupplierID: id.New(),
		Lines: []DraftLine{
			{ProductID: p.ID, Quantity: types.MustMoney("5"), CostPrice: types.MustMoney("8.00")},
		},
	})
	require.NoError(t, err)

	// (10*5 + 5*8) / 15 = 6.00, weighted against the pre-receipt quantity.
	assert.True(t, p.CostPrice.Equal(types.MustMoney("6")), "cost = %s", p.CostPrice)
	assert.True(t, p.Qty.Equal(types.MustMoney("15")), "qty = %s", p.Qty)

	assert.True(t, doc.TotalAmount.Equal(types.MustMoney("40")), "total = %s", doc.TotalAmount)
	assert.Equal(t, StatusPending, doc.Status)
	assert.True(t, strings.HasPrefix(doc.Number, "PO-"), "number = %s", doc.Number)
	assert.True(t, strings.HasSuffix(doc.Number, "-00001"), "number = %s", doc.Number)

	entries, err := h.ledger.ListByTransaction(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.TransactionPurchase, entries[0].Type)
	assert.True(t, entries[0].QtyIn.Equal(types.MustMoney("5")))
	assert.Equal(t, doc.Number, entries[0].Remarks)
}

func TestCommitFirstReceiptTakesIncomingCost(t *testing.T) {
	ctx := context.Background()
	p := testProduct("0", "0", "0")
	h := newHarness(p)

	_, err := h.svc.Commit(ctx, Draft{
		SupplierID: id.New(),
		Lines: []DraftLine{
			{
				ProductID: p.ID,
				Quantity:  types.MustMoney("20"),
				CostPrice: types.MustMoney("3.50"),
				SalePrice: money("5.00"),
			},
		},
	})
	require.NoError(t, err)

	assert.True(t, p.CostPrice.Equal(types.MustMoney("3.5")), "cost = %s", p.CostPrice)
	assert.True(t, p.SalePrice.Equal(types.MustMoney("5")), "sale = %s", p.SalePrice)
	assert.True(t, p.Qty.Equal(types.MustMoney("20")))
}

func TestCommitKeepsSalePriceWhenNotGiven(t *testing.T) {
	ctx := context.Background()
	p := testProduct("10", "5.00", "8.00")
	h := newHarness(p)

	_, err := h.svc.Commit(ctx, Draft{
		SupplierID: id.New(),
		Lines: []DraftLine{
			{ProductID: p.ID, Quantity: types.MustMoney("5"), CostPrice: types.MustMoney("8.00")},
		},
	})
	require.NoError(t, err)
	assert.True(t, p.SalePrice.Equal(types.MustMoney("8")), "sale = %s", p.SalePrice)
}

func TestCommitLineCapturesReceiptPrices(t *testing.T) {
	ctx := context.Background()
	p := testProduct("10", "5.00", "8.00")
	h := newHarness(p)

	doc, err := h.svc.Commit(ctx, Draft{
		SupplierID: id.New(),
		Lines: []DraftLine{
			{
				ProductID: p.ID,
				Quantity:  types.MustMoney("5"),
				CostPrice: types.MustMoney("8.00"),
				SalePrice: money("12.00"),
			},
		},
	})
	require.NoError(t, err)

	// The line keeps the receipt cost, not the re-weighted average.
	line := doc.Lines[0]
	assert.True(t, line.CostPrice.Equal(types.MustMoney("8")))
	assert.True(t, line.SalePrice.Equal(types.MustMoney("12")))
}

func TestCommitRejectsUnknownProduct(t *testing.T) {
	h := newHarness()

	_, err := h.svc.Commit(context.Background(), Draft{
		SupplierID: id.New(),
		Lines: []DraftLine{
			{ProductID: id.New(), Quantity: types.MustMoney("1"), CostPrice: types.MustMoney("1")},
		},
	})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeProductNotFound, appErr.Code)
	assert.Empty(t, h.repo.purchases)
}

func TestCommitRejectsNonPositiveSalePrice(t *testing.T) {
	ctx := context.Background()

	for _, price := range []string{"0", "-1"} {
		t.Run("declared sale price "+price, func(t *testing.T) {
			p := testProduct("10", "5.00", "8.00")
			h := newHarness(p)

			_, err := h.svc.Commit(ctx, Draft{
				SupplierID: id.New(),
				Lines: []DraftLine{
					{
						ProductID: p.ID,
						Quantity:  types.MustMoney("5"),
						CostPrice: types.MustMoney("8.00"),
						SalePrice: money(price),
					},
				},
			})
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeInvalidSalePrice, appErr.Code)

			// The whole purchase aborts before anything lands.
			assert.Empty(t, h.repo.purchases)
			assert.True(t, p.Qty.Equal(types.MustMoney("10")))
			assert.True(t, p.SalePrice.Equal(types.MustMoney("8")))
		})
	}
}

func TestCommitDraftValidation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	supplierID := id.New()

	tests := []struct {
		name  string
		draft Draft
	}{
		{"missing supplier", Draft{Lines: []DraftLine{{ProductID: id.New(), Quantity: types.MustMoney("1")}}}},
		{"no lines", Draft{SupplierID: supplierID}},
		{"negative paid amount", Draft{SupplierID: supplierID, PaidAmount: types.MustMoney("-1"), Lines: []DraftLine{{ProductID: id.New(), Quantity: types.MustMoney("1")}}}},
		{"zero quantity", Draft{SupplierID: supplierID, Lines: []DraftLine{{ProductID: id.New()}}}},
		{"negative cost", Draft{SupplierID: supplierID, Lines: []DraftLine{{ProductID: id.New(), Quantity: types.MustMoney("1"), CostPrice: types.MustMoney("-1")}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Commit(ctx, tt.draft)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

// --- Payment lifecycle ---

func TestSetPaymentStatus(t *testing.T) {
	ctx := context.Background()
	p := testProduct("0", "0", "0")
	h := newHarness(p)

	doc, err := h.svc.Commit(ctx, Draft{
		SupplierID: id.New(),
		Lines: []DraftLine{
			{ProductID: p.ID, Quantity: types.MustMoney("5"), CostPrice: types.MustMoney("2.00")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, doc.Status)

	t.Run("pending to partial", func(t *testing.T) {
		require.NoError(t, h.svc.SetPaymentStatus(ctx, doc.ID, StatusPartial))
		stored, err := h.svc.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPartial, stored.Status)
	})

	t.Run("partial to paid", func(t *testing.T) {
		require.NoError(t, h.svc.SetPaymentStatus(ctx, doc.ID, StatusPaid))
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		assert.NoError(t, h.svc.SetPaymentStatus(ctx, doc.ID, StatusPaid))
	})

	t.Run("paid is terminal", func(t *testing.T) {
		err := h.svc.SetPaymentStatus(ctx, doc.ID, StatusPending)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		err := h.svc.SetPaymentStatus(ctx, doc.ID, "Refunded")
		assert.Error(t, err)
	})

	t.Run("stock stays untouched through lifecycle", func(t *testing.T) {
		assert.True(t, p.Qty.Equal(types.MustMoney("5")))
	})
}

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to PaymentStatus
		allowed  bool
	}{
		{StatusPending, StatusPartial, true},
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusCancelled, true},
		{StatusPartial, StatusPaid, true},
		{StatusPartial, StatusCancelled, true},
		{StatusPartial, StatusPending, false},
		{StatusPaid, StatusPending, false},
		{StatusPaid, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}
