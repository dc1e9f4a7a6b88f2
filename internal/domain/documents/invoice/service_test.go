package invoice

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/entity"
	"smartmart/internal/core/id"
	"smartmart/internal/core/types"
	"smartmart/internal/domain"
	"smartmart/internal/domain/discount"
	"smartmart/internal/domain/ledger"
	"smartmart/pkg/numerator"
)

// --- Test fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	invoices map[id.ID]*Invoice
	lines    map[id.ID][]Line
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		invoices: make(map[id.ID]*Invoice),
		lines:    make(map[id.ID][]Line),
	}
}

func (r *fakeRepo) Create(_ context.Context, doc *Invoice) error {
	cp := *doc
	r.invoices[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) Update(_ context.Context, doc *Invoice) error {
	cp := *doc
	r.invoices[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) SaveLines(_ context.Context, docID id.ID, lines []Line) error {
	r.lines[docID] = append([]Line(nil), lines...)
	return nil
}

func (r *fakeRepo) UpdateLine(_ context.Context, docID id.ID, line *Line) error {
	stored := r.lines[docID]
	for i := range stored {
		if stored[i].LineID == line.LineID {
			stored[i] = *line
			return nil
		}
	}
	return apperror.NewNotFound("invoice line", line.LineID.String())
}

func (r *fakeRepo) GetByID(_ context.Context, docID id.ID) (*Invoice, error) {
	doc, ok := r.invoices[docID]
	if !ok {
		return nil, apperror.NewNotFound("invoice", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeRepo) GetByIDForUpdate(ctx context.Context, docID id.ID) (*Invoice, error) {
	return r.GetByID(ctx, docID)
}

func (r *fakeRepo) GetLines(_ context.Context, docID id.ID) ([]Line, error) {
	return append([]Line(nil), r.lines[docID]...), nil
}

func (r *fakeRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*Invoice], error) {
	var out []*Invoice
	for _, doc := range r.invoices {
		out = append(out, doc)
	}
	return domain.ListResult[*Invoice]{Items: out, TotalCount: int64(len(out))}, nil
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

func (r *fakeLedgerRepo) ListByProduct(_ context.Context, productID id.ID, _ ledger.HistoryFilter) ([]entity.LedgerEntry, error) {
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

type fakeResolver struct {
	item     *discount.ItemDiscount
	category *discount.CategoryDiscount
	bill     *discount.BillDiscount
}

func (r *fakeResolver) Resolve(_ context.Context, _, _ id.ID, _ time.Time) (discount.Applicable, error) {
	return discount.Applicable{Item: r.item, Category: r.category}, nil
}

func (r *fakeResolver) ResolveBill(_ context.Context, total types.Money, _ time.Time) (*discount.BillDiscount, error) {
	if r.bill == nil || !r.bill.Matches(total) {
		return nil, nil
	}
	return r.bill, nil
}

// mockRow and mockQuerier satisfy the numerator querier with an in-memory
// counter.
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
	mu      sync.Mutex
	counter int64
}

func (m *mockQuerier) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return &mockRow{num: m.counter}
}

// --- Row-lock fakes ---

// txLocks carries the row locks held by one fake transaction. Like
// FOR UPDATE locks, they release only when the transaction ends.
type txLocks struct {
	mu   sync.Mutex
	held []*sync.Mutex
}

func (l *txLocks) add(row *sync.Mutex) {
	l.mu.Lock()
	l.held = append(l.held, row)
	l.mu.Unlock()
}

func (l *txLocks) release() {
	l.mu.Lock()
	for i := len(l.held) - 1; i >= 0; i-- {
		l.held[i].Unlock()
	}
	l.held = nil
	l.mu.Unlock()
}

type txLocksKey struct{}

// rowLockTxManager runs the function with a lock set in the context and
// releases every acquired row lock when the transaction ends.
type rowLockTxManager struct{}

func (rowLockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	locks := &txLocks{}
	err := fn(context.WithValue(ctx, txLocksKey{}, locks))
	locks.release()
	return err
}

func holdRowLock(ctx context.Context, row *sync.Mutex) {
	row.Lock()
	locks, ok := ctx.Value(txLocksKey{}).(*txLocks)
	if !ok {
		row.Unlock()
		return
	}
	locks.add(row)
}

// lockingProductStore blocks GetForUpdate on a per-product mutex held until
// the end of the fake transaction, mirroring the row lock in the real store.
type lockingProductStore struct {
	*fakeProductStore
	mu   sync.Mutex
	rows map[id.ID]*sync.Mutex
}

func (s *lockingProductStore) GetForUpdate(ctx context.Context, productID id.ID) (*ledger.ProductStock, error) {
	s.mu.Lock()
	row, ok := s.rows[productID]
	if !ok {
		row = &sync.Mutex{}
		s.rows[productID] = row
	}
	s.mu.Unlock()

	holdRowLock(ctx, row)
	return s.fakeProductStore.GetForUpdate(ctx, productID)
}

// lockingInvoiceRepo blocks GetByIDForUpdate on a per-invoice mutex held
// until the end of the fake transaction.
type lockingInvoiceRepo struct {
	*fakeRepo
	mu   sync.Mutex
	rows map[id.ID]*sync.Mutex
}

func (r *lockingInvoiceRepo) GetByIDForUpdate(ctx context.Context, docID id.ID) (*Invoice, error) {
	r.mu.Lock()
	row, ok := r.rows[docID]
	if !ok {
		row = &sync.Mutex{}
		r.rows[docID] = row
	}
	r.mu.Unlock()

	holdRowLock(ctx, row)
	return r.fakeRepo.GetByID(ctx, docID)
}

// --- Test harness ---

type harness struct {
	svc      *Service
	repo     *fakeRepo
	ledger   *fakeLedgerRepo
	store    *fakeProductStore
	resolver *fakeResolver
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
	resolver := &fakeResolver{}
	svc := NewService(
		repo,
		ledger.NewService(ledgerRepo, store),
		store,
		resolver,
		numerator.New(&mockQuerier{}),
		fakeTxManager{},
	)

	return &harness{svc: svc, repo: repo, ledger: ledgerRepo, store: store, resolver: resolver}
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

func TestCommit(t *testing.T) {
	ctx := context.Background()
	p1 := testProduct("10", "5.00", "8.00")
	p2 := testProduct("20", "2.00", "3.50")
	h := newHarness(p1, p2)

	inv, err := h.svc.Commit(ctx, Draft{
		CashierName: "alice",
		Payment:     PaymentCashSale,
		TaxPercent:  types.MustMoney("10"),
		Lines: []DraftLine{
			{ProductID: p1.ID, Quantity: types.MustMoney("2")},
			{ProductID: p2.ID, Quantity: types.MustMoney("4")},
		},
	})
	require.NoError(t, err)

	// 2*8 + 4*3.5 = 30; tax 10% on 30 = 3
	assert.True(t, inv.Subtotal.Equal(types.MustMoney("30")), "subtotal = %s", inv.Subtotal)
	assert.True(t, inv.FinalTotal.Equal(types.MustMoney("33")), "final = %s", inv.FinalTotal)
	assert.True(t, strings.HasPrefix(inv.Number, "INV-"), "number = %s", inv.Number)
	assert.True(t, strings.HasSuffix(inv.Number, "-00001"), "number = %s", inv.Number)
	require.Len(t, inv.Lines, 2)

	// Cost at the moment of sale is frozen into the line.
	assert.True(t, inv.Lines[0].CostPrice.Equal(types.MustMoney("5")))

	// Each line produced a Sale entry referencing the invoice.
	entries, err := h.ledger.ListByTransaction(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, entity.TransactionSale, e.Type)
		assert.Equal(t, inv.Number, e.Remarks)
	}

	// Product snapshots follow the ledger.
	assert.True(t, p1.Qty.Equal(types.MustMoney("8")))
	assert.True(t, p2.Qty.Equal(types.MustMoney("16")))

	// Header and lines were persisted.
	stored, err := h.svc.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Lines, 2)
}

func TestCommitUsesItemDiscountOverCategory(t *testing.T) {
	ctx := context.Background()
	catID := id.New()
	p := testProduct("10", "5.00", "100.00")
	p.CategoryID = &catID
	h := newHarness(p)

	h.resolver.item = &discount.ItemDiscount{
		ProductID: p.ID,
		Kind:      discount.KindPercent,
		Amount:    types.MustMoney("10"),
	}
	h.resolver.category = &discount.CategoryDiscount{
		CategoryID: catID,
		Percent:    types.MustMoney("50"),
	}

	inv, err := h.svc.Commit(ctx, Draft{
		Payment: PaymentCashSale,
		Lines:   []DraftLine{{ProductID: p.ID, Quantity: types.MustMoney("1")}},
	})
	require.NoError(t, err)

	// Item discount wins even though the category cut is deeper.
	assert.True(t, inv.Lines[0].Price.Equal(types.MustMoney("90")), "price = %s", inv.Lines[0].Price)
}

func TestCommitFallsBackToCategoryDiscount(t *testing.T) {
	ctx := context.Background()
	catID := id.New()
	p := testProduct("10", "5.00", "100.00")
	p.CategoryID = &catID
	h := newHarness(p)

	h.resolver.category = &discount.CategoryDiscount{
		CategoryID: catID,
		Percent:    types.MustMoney("25"),
	}

	inv, err := h.svc.Commit(ctx, Draft{
		Payment: PaymentCashSale,
		Lines:   []DraftLine{{ProductID: p.ID, Quantity: types.MustMoney("1")}},
	})
	require.NoError(t, err)
	assert.True(t, inv.Lines[0].Price.Equal(types.MustMoney("75")), "price = %s", inv.Lines[0].Price)
}

func TestCommitExplicitPriceWinsOverDiscounts(t *testing.T) {
	ctx := context.Background()
	p := testProduct("10", "5.00", "100.00")
	h := newHarness(p)

	h.resolver.item = &discount.ItemDiscount{
		ProductID: p.ID,
		Kind:      discount.KindPercent,
		Amount:    types.MustMoney("50"),
	}

	inv, err := h.svc.Commit(ctx, Draft{
		Payment: PaymentCashSale,
		Lines: []DraftLine{
			{ProductID: p.ID, Quantity: types.MustMoney("1"), Price: money("95.00")},
		},
	})
	require.NoError(t, err)
	assert.True(t, inv.Lines[0].Price.Equal(types.MustMoney("95")))
}

func TestCommitRejectsExplicitPriceBelowCost(t *testing.T) {
	ctx := context.Background()
	p := testProduct("10", "5.00", "8.00")
	h := newHarness(p)

	_, err := h.svc.Commit(ctx, Draft{
		Payment: PaymentCashSale,
		Lines: []DraftLine{
			{ProductID: p.ID, Quantity: types.MustMoney("1"), Price: money("4.99")},
		},
	})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidSalePrice, appErr.Code)
	assert.Empty(t, h.repo.invoices, "nothing may be persisted on failure")
}

func TestCommitAppliesDiscountPricingBelowCost(t *testing.T) {
	ctx := context.Background()
	catID := id.New()
	p := testProduct("10", "8.00", "10.00")
	p.CategoryID = &catID
	h := newHarness(p)

	// 25% off 10.00 lands at 7.50, under the 8.00 cost. A configured
	// discount is honored; the cost floor binds explicit prices only.
	h.resolver.category = &discount.CategoryDiscount{
		CategoryID: catID,
		Percent:    types.MustMoney("25"),
	}

	inv, err := h.svc.Commit(ctx, Draft{
		Payment: PaymentCashSale,
		Lines:   []DraftLine{{ProductID: p.ID, Quantity: types.MustMoney("1")}},
	})
	require.NoError(t, err)
	assert.True(t, inv.Lines[0].Price.Equal(types.MustMoney("7.50")), "price = %s", inv.Lines[0].Price)

	entries, err := h.ledger.ListByTransaction(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCommitRejectsInsufficientStock(t *testing.T) {
	ctx := context.Background()
	p := testProduct("3", "5.00", "8.00")
	h := newHarness(p)

	_, err := h.svc.Commit(ctx, Draft{
		Payment: PaymentCashSale,
		Lines:   []DraftLine{{ProductID: p.ID, Quantity: types.MustMoney("5")}},
	})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
}

func TestCommitRejectsUnknownProduct(t *testing.T) {
	h := newHarness()

	_, err := h.svc.Commit(context.Background(), Draft{
		Payment: PaymentCashSale,
		Lines:   []DraftLine{{ProductID: id.New(), Quantity: types.MustMoney("1")}},
	})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeProductNotFound, appErr.Code)
}

func TestCommitBillDiscountOverride(t *testing.T) {
	ctx := context.Background()
	p := testProduct("10", "5.00", "100.00")
	h := newHarness(p)

	t.Run("explicit discount applies before tax", func(t *testing.T) {
		inv, err := h.svc.Commit(ctx, Draft{
			Payment:    PaymentCashSale,
			Discount:   money("20"),
			TaxPercent: types.MustMoney("10"),
			Lines:      []DraftLine{{ProductID: p.ID, Quantity: types.MustMoney("1")}},
		})
		require.NoError(t, err)
		// (100 - 20) * 1.10 = 88
		assert.True(t, inv.Discount.Equal(types.MustMoney("20")))
		assert.True(t, inv.FinalTotal.Equal(types.MustMoney("88")), "final = %s", inv.FinalTotal)
	})

	t.Run("discount exceeding subtotal rejected", func(t *testing.T) {
		_, err := h.svc.Commit(ctx, Draft{
			Payment:  PaymentCashSale,
			Discount: money("150"),
			Lines:    []DraftLine{{ProductID: p.ID, Quantity: types.MustMoney("1")}},
		})
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInvalidDiscountAmount, appErr.Code)
	})

	t.Run("negative discount rejected", func(t *testing.T) {
		_, err := h.svc.Commit(ctx, Draft{
			Payment:  PaymentCashSale,
			Discount: money("-5"),
			Lines:    []DraftLine{{ProductID: p.ID, Quantity: types.MustMoney("1")}},
		})
		assert.Error(t, err)
	})
}

func TestCommitResolvesBillDiscount(t *testing.T) {
	ctx := context.Background()
	p := testProduct("10", "5.00", "600.00")
	h := newHarness(p)

	h.resolver.bill = &discount.BillDiscount{
		Condition: discount.ConditionAbove,
		Threshold: types.MustMoney("1000"),
		Kind:      discount.KindPercent,
		Value:     types.MustMoney("5"),
	}

	// 2 * 600 = 1200 qualifies; 5% off = 60.
	inv, err := h.svc.Commit(ctx, Draft{
		Payment: PaymentCashSale,
		Lines:   []DraftLine{{ProductID: p.ID, Quantity: types.MustMoney("2")}},
	})
	require.NoError(t, err)
	assert.True(t, inv.Discount.Equal(types.MustMoney("60")), "discount = %s", inv.Discount)
	assert.True(t, inv.FinalTotal.Equal(types.MustMoney("1140")), "final = %s", inv.FinalTotal)
}

func TestCommitDraftValidation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	tests := []struct {
		name  string
		draft Draft
	}{
		{"unknown payment method", Draft{Payment: "Barter", Lines: []DraftLine{{ProductID: id.New(), Quantity: types.MustMoney("1")}}}},
		{"no lines", Draft{Payment: PaymentCashSale}},
		{"negative tax", Draft{Payment: PaymentCashSale, TaxPercent: types.MustMoney("-1"), Lines: []DraftLine{{ProductID: id.New(), Quantity: types.MustMoney("1")}}}},
		{"zero quantity", Draft{Payment: PaymentCashSale, Lines: []DraftLine{{ProductID: id.New()}}}},
		{"missing product", Draft{Payment: PaymentCashSale, Lines: []DraftLine{{Quantity: types.MustMoney("1")}}}},
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

// --- Returns ---

func TestReturnItems(t *testing.T) {
	ctx := context.Background()
	p := testProduct("10", "5.00", "8.00")
	h := newHarness(p)

	inv, err := h.svc.Commit(ctx, Draft{
		Payment: PaymentCashSale,
		Lines:   []DraftLine{{ProductID: p.ID, Quantity: types.MustMoney("6")}},
	})
	require.NoError(t, err)
	require.True(t, p.Qty.Equal(types.MustMoney("4")))

	lineID := inv.Lines[0].LineID

	t.Run("partial return restores stock", func(t *testing.T) {
		err := h.svc.ReturnItems(ctx, inv.ID, []ReturnLine{
			{LineID: lineID, Qty: types.MustMoney("2")},
		})
		require.NoError(t, err)

		assert.True(t, p.Qty.Equal(types.MustMoney("6")), "qty = %s", p.Qty)

		stored, err := h.svc.GetByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsReturn)
		assert.True(t, stored.Lines[0].ReturnQty.Equal(types.MustMoney("2")))
	})

	t.Run("cumulative return capped at sold quantity", func(t *testing.T) {
		err := h.svc.ReturnItems(ctx, inv.ID, []ReturnLine{
			{LineID: lineID, Qty: types.MustMoney("5")},
		})
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("remaining quantity can be returned", func(t *testing.T) {
		err := h.svc.ReturnItems(ctx, inv.ID, []ReturnLine{
			{LineID: lineID, Qty: types.MustMoney("4")},
		})
		require.NoError(t, err)
		assert.True(t, p.Qty.Equal(types.MustMoney("10")))
	})

	t.Run("unknown line rejected", func(t *testing.T) {
		err := h.svc.ReturnItems(ctx, inv.ID, []ReturnLine{
			{LineID: id.New(), Qty: types.MustMoney("1")},
		})
		assert.Error(t, err)
	})

	t.Run("empty returns rejected", func(t *testing.T) {
		err := h.svc.ReturnItems(ctx, inv.ID, nil)
		assert.Error(t, err)
	})
}

// --- Concurrency ---

func TestCommitSerializesConcurrentSales(t *testing.T) {
	p := testProduct("1", "5.00", "8.00")

	store := &lockingProductStore{
		fakeProductStore: &fakeProductStore{products: map[id.ID]*ledger.ProductStock{p.ID: p}},
		rows:             make(map[id.ID]*sync.Mutex),
	}
	ledgerRepo := &fakeLedgerRepo{}
	opening := entity.NewLedgerEntry(p.ID, entity.TransactionOpening)
	opening.QtyIn = p.Qty
	opening.Balance = p.Qty
	ledgerRepo.entries = append(ledgerRepo.entries, opening)

	repo := newFakeRepo()
	svc := NewService(
		repo,
		ledger.NewService(ledgerRepo, store),
		store,
		&fakeResolver{},
		numerator.New(&mockQuerier{}),
		rowLockTxManager{},
	)

	// Two simultaneous sales of the last unit. The product row lock must
	// serialize them so exactly one commits.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Commit(context.Background(), Draft{
				Payment: PaymentCashSale,
				Lines:   []DraftLine{{ProductID: p.ID, Quantity: types.MustMoney("1")}},
			})
		}(i)
	}
	wg.Wait()

	var committed, rejected int
	for _, err := range errs {
		if err == nil {
			committed++
			continue
		}
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok, "unexpected error: %v", err)
		assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
		rejected++
	}
	assert.Equal(t, 1, committed, "exactly one sale may commit")
	assert.Equal(t, 1, rejected)

	assert.True(t, p.Qty.Equal(types.MustMoney("0")), "qty = %s", p.Qty)
	assert.Len(t, repo.invoices, 1)

	var sales int
	for _, e := range ledgerRepo.entries {
		if e.Type == entity.TransactionSale {
			sales++
		}
	}
	assert.Equal(t, 1, sales, "the losing sale must leave no ledger trace")
}

func TestReturnItemsSerializesOnInvoiceLock(t *testing.T) {
	p := testProduct("10", "5.00", "8.00")

	store := &fakeProductStore{products: map[id.ID]*ledger.ProductStock{p.ID: p}}
	ledgerRepo := &fakeLedgerRepo{}
	opening := entity.NewLedgerEntry(p.ID, entity.TransactionOpening)
	opening.QtyIn = p.Qty
	opening.Balance = p.Qty
	ledgerRepo.entries = append(ledgerRepo.entries, opening)

	repo := &lockingInvoiceRepo{
		fakeRepo: newFakeRepo(),
		rows:     make(map[id.ID]*sync.Mutex),
	}
	svc := NewService(
		repo,
		ledger.NewService(ledgerRepo, store),
		store,
		&fakeResolver{},
		numerator.New(&mockQuerier{}),
		rowLockTxManager{},
	)

	inv, err := svc.Commit(context.Background(), Draft{
		Payment: PaymentCashSale,
		Lines:   []DraftLine{{ProductID: p.ID, Quantity: types.MustMoney("4")}},
	})
	require.NoError(t, err)
	require.True(t, p.Qty.Equal(types.MustMoney("6")))
	lineID := inv.Lines[0].LineID

	// Two simultaneous full returns of the same line. The invoice row lock
	// must serialize them so the second sees the committed return_qty and
	// fails the returnable bound.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.ReturnItems(context.Background(), inv.ID, []ReturnLine{
				{LineID: lineID, Qty: types.MustMoney("4")},
			})
		}(i)
	}
	wg.Wait()

	var returned, rejected int
	for _, err := range errs {
		if err == nil {
			returned++
			continue
		}
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok, "unexpected error: %v", err)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
		rejected++
	}
	assert.Equal(t, 1, returned, "exactly one return may land")
	assert.Equal(t, 1, rejected)

	// Returned quantity never exceeds the sold quantity.
	lines, err := repo.GetLines(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.True(t, lines[0].ReturnQty.Equal(types.MustMoney("4")), "return_qty = %s", lines[0].ReturnQty)
	assert.True(t, p.Qty.Equal(types.MustMoney("10")), "qty = %s", p.Qty)

	var returns int
	for _, e := range ledgerRepo.entries {
		if e.Type == entity.TransactionReturn {
			returns++
		}
	}
	assert.Equal(t, 1, returns)
}
