package service

import (
	"context"
	"sort"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// memStore is the shared backing state for the in-memory repository fakes.
// The fake transaction manager snapshots it before each body and restores it
// on error, so rollback semantics hold in tests.
type memStore struct {
	branches  map[uuid.UUID]model.Branch
	products  map[uuid.UUID]model.Product
	orders    map[uuid.UUID]model.Order
	requests  map[uuid.UUID]model.StockRequest
	movements []model.StockMovement
	audits    []model.AuditLog
	now       time.Time
}

func newMemStore() *memStore {
	return &memStore{
		branches: make(map[uuid.UUID]model.Branch),
		products: make(map[uuid.UUID]model.Product),
		orders:   make(map[uuid.UUID]model.Order),
		requests: make(map[uuid.UUID]model.StockRequest),
		now:      time.Now(),
	}
}

// tick returns a strictly increasing timestamp so creation order is stable
func (s *memStore) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	c.now = s.now
	for k, v := range s.branches {
		c.branches[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.orders {
		v.Items = append([]model.OrderItem(nil), v.Items...)
		c.orders[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	c.movements = append([]model.StockMovement(nil), s.movements...)
	c.audits = append([]model.AuditLog(nil), s.audits...)
	return c
}

// --- transaction manager ---

type fakeTxManager struct {
	store *memStore
}

func (t *fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	snapshot := t.store.clone()
	if err := fn(ctx); err != nil {
		*t.store = *snapshot
		return err
	}
	return nil
}

// --- branch repository ---

type fakeBranchRepo struct {
	store *memStore
}

func (r *fakeBranchRepo) Create(_ context.Context, branch *model.Branch) error {
	if branch.ID == uuid.Nil {
		branch.ID = uuid.New()
	}
	branch.CreatedAt = r.store.tick()
	r.store.branches[branch.ID] = *branch
	return nil
}

func (r *fakeBranchRepo) Update(_ context.Context, branch *model.Branch) error {
	r.store.branches[branch.ID] = *branch
	return nil
}

func (r *fakeBranchRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Branch, error) {
	branch, ok := r.store.branches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &branch, nil
}

func (r *fakeBranchRepo) List(_ context.Context) ([]model.Branch, error) {
	branches := make([]model.Branch, 0, len(r.store.branches))
	for _, b := range r.store.branches {
		branches = append(branches, b)
	}
	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })
	return branches, nil
}

// --- product repository ---

type fakeProductRepo struct {
	store *memStore
}

func (r *fakeProductRepo) Create(_ context.Context, product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = r.store.tick()
	r.store.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *model.Product) error {
	r.store.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, branchID, id uuid.UUID) error {
	if p, ok := r.store.products[id]; ok && p.BranchID == branchID {
		delete(r.store.products, id)
	}
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, branchID, id uuid.UUID) (*model.Product, error) {
	product, ok := r.store.products[id]
	if !ok || product.BranchID != branchID {
		return nil, gorm.ErrRecordNotFound
	}
	return &product, nil
}

func (r *fakeProductRepo) FindByIDForUpdate(ctx context.Context, branchID, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(ctx, branchID, id)
}

func (r *fakeProductRepo) ListByBranch(_ context.Context, branchID uuid.UUID, page, limit int, search string) ([]model.Product, int64, error) {
	var products []model.Product
	for _, p := range r.store.products {
		if p.BranchID == branchID {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].CreatedAt.After(products[j].CreatedAt) })
	return products, int64(len(products)), nil
}

// --- order repository ---

type fakeOrderRepo struct {
	store *memStore
}

func (r *fakeOrderRepo) Create(_ context.Context, order *model.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	order.CreatedAt = r.store.tick()
	stored := *order
	stored.Items = append([]model.OrderItem(nil), order.Items...)
	r.store.orders[order.ID] = stored
	return nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order *model.Order) error {
	stored := *order
	stored.Items = append([]model.OrderItem(nil), order.Items...)
	r.store.orders[order.ID] = stored
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, branchID, id uuid.UUID) (*model.Order, error) {
	order, ok := r.store.orders[id]
	if !ok || order.BranchID != branchID {
		return nil, gorm.ErrRecordNotFound
	}
	order.Items = append([]model.OrderItem(nil), order.Items...)
	return &order, nil
}

func (r *fakeOrderRepo) FindByIDForUpdate(ctx context.Context, branchID, id uuid.UUID) (*model.Order, error) {
	return r.FindByID(ctx, branchID, id)
}

func (r *fakeOrderRepo) ListByBranch(_ context.Context, branchID uuid.UUID, page, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	for _, o := range r.store.orders {
		if o.BranchID == branchID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, int64(len(orders)), nil
}

func (r *fakeOrderRepo) ListByCustomer(_ context.Context, branchID uuid.UUID, customerID string) ([]model.Order, error) {
	var orders []model.Order
	for _, o := range r.store.orders {
		if o.BranchID == branchID && o.CustomerID == customerID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) ListRevenue(_ context.Context, branchID uuid.UUID, start, end *time.Time) ([]model.Order, error) {
	var orders []model.Order
	for _, o := range r.store.orders {
		if o.BranchID != branchID {
			continue
		}
		if o.Status != model.OrderPaid && o.Status != model.OrderShipped && o.Status != model.OrderCompleted {
			continue
		}
		if start != nil && o.CreatedAt.Before(*start) {
			continue
		}
		if end != nil && o.CreatedAt.After(*end) {
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// --- stock request repository ---

type fakeStockRequestRepo struct {
	store *memStore
}

func (r *fakeStockRequestRepo) Create(_ context.Context, req *model.StockRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.CreatedAt = r.store.tick()
	stored := *req
	stored.Product = nil
	r.store.requests[req.ID] = stored
	return nil
}

func (r *fakeStockRequestRepo) Update(_ context.Context, req *model.StockRequest) error {
	stored := *req
	stored.Product = nil
	r.store.requests[req.ID] = stored
	return nil
}

func (r *fakeStockRequestRepo) FindByID(_ context.Context, branchID, id uuid.UUID) (*model.StockRequest, error) {
	req, ok := r.store.requests[id]
	if !ok || req.BranchID != branchID {
		return nil, gorm.ErrRecordNotFound
	}
	if product, ok := r.store.products[req.ProductID]; ok {
		req.Product = &product
	}
	return &req, nil
}

func (r *fakeStockRequestRepo) FindByIDForUpdate(ctx context.Context, branchID, id uuid.UUID) (*model.StockRequest, error) {
	return r.FindByID(ctx, branchID, id)
}

func (r *fakeStockRequestRepo) ListByBranch(_ context.Context, branchID uuid.UUID, page, limit int) ([]model.StockRequest, int64, error) {
	var requests []model.StockRequest
	for _, req := range r.store.requests {
		if req.BranchID == branchID {
			if product, ok := r.store.products[req.ProductID]; ok {
				req.Product = &product
			}
			requests = append(requests, req)
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].CreatedAt.After(requests[j].CreatedAt) })
	return requests, int64(len(requests)), nil
}

func (r *fakeStockRequestRepo) ListPendingByBranch(_ context.Context, branchID uuid.UUID) ([]model.StockRequest, error) {
	var requests []model.StockRequest
	for _, req := range r.store.requests {
		if req.BranchID == branchID && req.Status == model.StockRequestPending {
			if product, ok := r.store.products[req.ProductID]; ok {
				req.Product = &product
			}
			requests = append(requests, req)
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].CreatedAt.After(requests[j].CreatedAt) })
	return requests, nil
}

// --- stock movement repository ---

type fakeMovementRepo struct {
	store *memStore
}

func (r *fakeMovementRepo) Record(_ context.Context, movement *model.StockMovement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	movement.CreatedAt = r.store.tick()
	r.store.movements = append(r.store.movements, *movement)
	return nil
}

func (r *fakeMovementRepo) ListByProduct(_ context.Context, branchID, productID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error) {
	var movements []model.StockMovement
	for _, m := range r.store.movements {
		if m.BranchID == branchID && m.ProductID == productID {
			movements = append(movements, m)
		}
	}
	return movements, int64(len(movements)), nil
}

// --- audit repository ---

type fakeAuditRepo struct {
	store *memStore
}

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = r.store.tick()
	r.store.audits = append(r.store.audits, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	logs := append([]model.AuditLog(nil), r.store.audits...)
	sort.Slice(logs, func(i, j int) bool { return logs[i].CreatedAt.After(logs[j].CreatedAt) })
	return logs, int64(len(logs)), nil
}

// --- alert publisher ---

type fakeAlerts struct {
	published []interface{}
}

func (a *fakeAlerts) Publish(v interface{}) {
	a.published = append(a.published, v)
}

// --- fixture ---

// env bundles the fakes and the services under test
type env struct {
	store    *memStore
	branches *fakeBranchRepo
	products *fakeProductRepo
	orders   *fakeOrderRepo
	requests *fakeStockRequestRepo
	alerts   *fakeAlerts

	orderService        OrderService
	stockRequestService StockRequestService
}

func newEnv() *env {
	store := newMemStore()
	branches := &fakeBranchRepo{store: store}
	products := &fakeProductRepo{store: store}
	orders := &fakeOrderRepo{store: store}
	requests := &fakeStockRequestRepo{store: store}
	movements := &fakeMovementRepo{store: store}
	audits := &fakeAuditRepo{store: store}
	tx := &fakeTxManager{store: store}
	alerts := &fakeAlerts{}

	ledger := NewInventoryLedger(products, movements)

	return &env{
		store:               store,
		branches:            branches,
		products:            products,
		orders:              orders,
		requests:            requests,
		alerts:              alerts,
		orderService:        NewOrderService(branches, products, orders, audits, ledger, tx, alerts),
		stockRequestService: NewStockRequestService(branches, products, requests, audits, ledger, tx, alerts),
	}
}

func (e *env) addBranch(name string) model.Branch {
	branch := model.Branch{ID: uuid.New(), Name: name, CreatedAt: e.store.tick()}
	e.store.branches[branch.ID] = branch
	return branch
}

func (e *env) addProduct(branchID uuid.UUID, name string, price int64, stock, minStock int) model.Product {
	product := model.Product{
		ID:       uuid.New(),
		BranchID: branchID,
		Name:     name,
		Price:    decimal.NewFromInt(price),
		Stock:    stock,
		MinStock: minStock,
		Status:   model.StockStatus(stock, minStock),
	}
	product.CreatedAt = e.store.tick()
	e.store.products[product.ID] = product
	return product
}
