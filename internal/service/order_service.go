package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"backend/internal/model"
	"backend/internal/policy"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// branchFanOutLimit caps concurrent per-branch queries during cross-branch
// scatter-gather reads.
const branchFanOutLimit = 4

// alertPublisher receives stock alerts after a transaction commits. The
// websocket hub satisfies it; tests pass nil.
type alertPublisher interface {
	Publish(v interface{})
}

// --- DTOs ---

type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	BranchID     string             `json:"branch_id" binding:"required,uuid"`
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingCost decimal.Decimal    `json:"shipping_cost"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CustomerOrder annotates an order with the identity of its branch, for the
// cross-branch customer listing.
type CustomerOrder struct {
	model.Order
	BranchName string `json:"branch_name"`
}

type ReportQuery struct {
	BranchID  string // optional
	StartDate string // optional, YYYY-MM-DD or RFC3339
	EndDate   string // optional, inclusive through end of day
}

// BranchReportEntry is one branch's rollup inside the all-branch report
type BranchReportEntry struct {
	BranchID     uuid.UUID       `json:"branch_id"`
	BranchName   string          `json:"branch_name"`
	TotalOrders  int             `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// OrderReport aggregates revenue-bearing orders (paid, shipped, completed);
// pending and cancelled orders never count toward revenue.
type OrderReport struct {
	BranchID     *uuid.UUID          `json:"branch_id,omitempty"`
	BranchName   string              `json:"branch_name,omitempty"`
	TotalOrders  int                 `json:"total_orders"`
	TotalRevenue decimal.Decimal     `json:"total_revenue"`
	Orders       []model.Order       `json:"orders,omitempty"`
	Branches     []BranchReportEntry `json:"branches,omitempty"`
}

// --- Interface ---

type OrderService interface {
	Create(ctx context.Context, customerID string, req CreateOrderRequest) (*model.Order, error)
	UpdateStatus(ctx context.Context, actor policy.Actor, branchID, orderID uuid.UUID, newStatus string) (*model.Order, error)
	GetByID(ctx context.Context, branchID, orderID uuid.UUID) (*model.Order, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID, page, limit int) ([]model.Order, int64, error)
	ListByCustomer(ctx context.Context, customerID string) ([]CustomerOrder, error)
	Report(ctx context.Context, q ReportQuery) (*OrderReport, error)
}

type orderService struct {
	branches  repository.BranchRepository
	products  repository.ProductRepository
	orders    repository.OrderRepository
	auditRepo repository.AuditRepository
	ledger    *InventoryLedger
	txManager repository.TransactionManager
	alerts    alertPublisher
}

func NewOrderService(
	branches repository.BranchRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	auditRepo repository.AuditRepository,
	ledger *InventoryLedger,
	txManager repository.TransactionManager,
	alerts alertPublisher,
) OrderService {
	return &orderService{
		branches:  branches,
		products:  products,
		orders:    orders,
		auditRepo: auditRepo,
		ledger:    ledger,
		txManager: txManager,
		alerts:    alerts,
	}
}

// --- Implementation ---

// Create validates every line item, freezes the product name/price snapshot,
// decrements stock per item and persists the pending order inside one
// transaction, so a failing item leaves no stock change behind.
func (s *orderService) Create(ctx context.Context, customerID string, req CreateOrderRequest) (*model.Order, error) {
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, apperror.Validation("invalid branch id")
	}
	if req.ShippingCost.IsNegative() {
		return nil, apperror.Validation("shipping cost must not be negative")
	}

	// The same product may appear on several lines. Stock is checked and
	// decremented against the summed quantity per product, never per line,
	// so duplicate lines cannot slip past the stock check one at a time.
	lineProducts := make([]uuid.UUID, 0, len(req.Items))
	productIDs := make([]uuid.UUID, 0, len(req.Items))
	totalQty := make(map[uuid.UUID]int, len(req.Items))
	for _, itemReq := range req.Items {
		productID, parseErr := uuid.Parse(itemReq.ProductID)
		if parseErr != nil {
			return nil, apperror.Validation("invalid product id: " + itemReq.ProductID)
		}
		lineProducts = append(lineProducts, productID)
		if _, seen := totalQty[productID]; !seen {
			productIDs = append(productIDs, productID)
		}
		totalQty[productID] += itemReq.Quantity
	}

	var order model.Order
	var touched []model.Product

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		touched = touched[:0]

		if _, findErr := s.branches.FindByID(txCtx, branchID); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("branch")
			}
			return fmt.Errorf("failed to load branch: %w", findErr)
		}

		loaded := make(map[uuid.UUID]*model.Product, len(productIDs))
		for _, productID := range productIDs {
			product, findErr := s.products.FindByIDForUpdate(txCtx, branchID, productID)
			if findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					return apperror.NotFound("product " + productID.String())
				}
				return fmt.Errorf("failed to load product %s: %w", productID, findErr)
			}
			loaded[productID] = product
		}

		items := make([]model.OrderItem, 0, len(req.Items))
		subtotal := decimal.Zero
		for i, itemReq := range req.Items {
			product := loaded[lineProducts[i]]
			items = append(items, model.OrderItem{
				ProductID:    product.ID,
				ProductName:  product.Name,
				Quantity:     itemReq.Quantity,
				PriceAtOrder: product.Price,
				ImageURL:     product.ImageURL,
			})
			subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(itemReq.Quantity))))
		}

		order = model.Order{
			BranchID:     branchID,
			CustomerID:   customerID,
			Items:        items,
			Subtotal:     subtotal,
			ShippingCost: req.ShippingCost,
			Total:        subtotal.Add(req.ShippingCost),
			Status:       model.OrderPending,
		}
		if createErr := s.orders.Create(txCtx, &order); createErr != nil {
			return fmt.Errorf("failed to create order: %w", createErr)
		}

		// The decrements reference the order id, so they run after the
		// insert; everything still commits or rolls back together.
		for _, productID := range productIDs {
			product := loaded[productID]
			if decErr := s.ledger.Decrement(txCtx, product, totalQty[productID], model.MovementOrderCreate, order.ID); decErr != nil {
				return decErr
			}
			touched = append(touched, *product)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"items":    order.Items,
			"subtotal": order.Subtotal,
			"total":    order.Total,
		})
		audit := &model.AuditLog{
			UserID:   customerID,
			BranchID: &branchID,
			Action:   model.ActionCreateOrder,
			EntityID: order.ID.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	s.publishAlerts(touched)
	return &order, nil
}

// UpdateStatus moves an order along its state machine. Transitioning to
// cancelled reverses the frozen line-item quantities in the same
// transaction; re-asserting the current status is a no-op, so reversal
// happens at most once per order.
func (s *orderService) UpdateStatus(ctx context.Context, actor policy.Actor, branchID, orderID uuid.UUID, newStatus string) (*model.Order, error) {
	if !model.ValidOrderStatus(newStatus) {
		return nil, apperror.Validation("invalid order status: " + newStatus)
	}
	if !policy.CanTransitionOrder(actor.Role, actor.BranchID, branchID) {
		return nil, apperror.Forbidden("no permission to update orders in this branch")
	}

	var order *model.Order
	var touched []model.Product

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		touched = touched[:0]

		if _, findErr := s.branches.FindByID(txCtx, branchID); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("branch")
			}
			return fmt.Errorf("failed to load branch: %w", findErr)
		}

		var findErr error
		order, findErr = s.orders.FindByIDForUpdate(txCtx, branchID, orderID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("order")
			}
			return fmt.Errorf("failed to load order: %w", findErr)
		}

		if order.Status == newStatus {
			// Idempotent no-op; in particular a second cancellation
			// must never re-adjust stock.
			return nil
		}
		if !model.CanTransitionOrder(order.Status, newStatus) {
			return apperror.Validation(fmt.Sprintf("cannot transition order from %s to %s", order.Status, newStatus))
		}

		if newStatus == model.OrderCancelled {
			for _, item := range order.Items {
				product, prodErr := s.products.FindByIDForUpdate(txCtx, branchID, item.ProductID)
				if prodErr != nil {
					if errors.Is(prodErr, gorm.ErrRecordNotFound) {
						return apperror.NotFound("product " + item.ProductID.String())
					}
					return fmt.Errorf("failed to load product %s: %w", item.ProductID, prodErr)
				}
				if incErr := s.ledger.Increment(txCtx, product, item.Quantity, model.MovementOrderCancel, order.ID); incErr != nil {
					return incErr
				}
				touched = append(touched, *product)
			}
		}

		previous := order.Status
		order.Status = newStatus
		if newStatus == model.OrderPaid {
			order.ApprovedBy = &actor.ID
		}
		if updateErr := s.orders.Update(txCtx, order); updateErr != nil {
			return fmt.Errorf("failed to update order status: %w", updateErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"from": previous,
			"to":   newStatus,
		})
		audit := &model.AuditLog{
			UserID:   actor.ID,
			BranchID: &branchID,
			Action:   model.ActionUpdateOrderStatus,
			EntityID: order.ID.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	s.publishAlerts(touched)
	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, branchID, orderID uuid.UUID) (*model.Order, error) {
	if _, err := s.branches.FindByID(ctx, branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("branch")
		}
		return nil, fmt.Errorf("failed to load branch: %w", err)
	}

	order, err := s.orders.FindByID(ctx, branchID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("order")
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}

func (s *orderService) ListByBranch(ctx context.Context, branchID uuid.UUID, page, limit int) ([]model.Order, int64, error) {
	if _, err := s.branches.FindByID(ctx, branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperror.NotFound("branch")
		}
		return nil, 0, fmt.Errorf("failed to load branch: %w", err)
	}
	return s.orders.ListByBranch(ctx, branchID, page, limit)
}

// ListByCustomer fans out across all branches with bounded concurrency,
// then merges and sorts by creation time, newest first. Acceptable only at
// small branch counts; there is no single indexed cross-branch query here.
func (s *orderService) ListByCustomer(ctx context.Context, customerID string) ([]CustomerOrder, error) {
	branches, err := s.branches.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	perBranch := make([][]CustomerOrder, len(branches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(branchFanOutLimit)

	for i, branch := range branches {
		g.Go(func() error {
			orders, listErr := s.orders.ListByCustomer(gctx, branch.ID, customerID)
			if listErr != nil {
				return fmt.Errorf("failed to list orders for branch %s: %w", branch.ID, listErr)
			}
			annotated := make([]CustomerOrder, 0, len(orders))
			for _, order := range orders {
				annotated = append(annotated, CustomerOrder{Order: order, BranchName: branch.Name})
			}
			perBranch[i] = annotated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []CustomerOrder
	for _, orders := range perBranch {
		all = append(all, orders...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

// Report aggregates count and revenue over paid/shipped/completed orders,
// optionally bounded by a creation-time range, for one branch or all.
func (s *orderService) Report(ctx context.Context, q ReportQuery) (*OrderReport, error) {
	start, end, err := parseReportRange(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}

	if q.BranchID != "" {
		branchID, parseErr := uuid.Parse(q.BranchID)
		if parseErr != nil {
			return nil, apperror.Validation("invalid branch id")
		}
		branch, findErr := s.branches.FindByID(ctx, branchID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("branch")
			}
			return nil, fmt.Errorf("failed to load branch: %w", findErr)
		}

		orders, listErr := s.orders.ListRevenue(ctx, branchID, start, end)
		if listErr != nil {
			return nil, fmt.Errorf("failed to load orders: %w", listErr)
		}

		revenue := decimal.Zero
		for _, order := range orders {
			revenue = revenue.Add(order.Total)
		}
		return &OrderReport{
			BranchID:     &branch.ID,
			BranchName:   branch.Name,
			TotalOrders:  len(orders),
			TotalRevenue: revenue,
			Orders:       orders,
		}, nil
	}

	branches, err := s.branches.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	entries := make([]BranchReportEntry, len(branches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(branchFanOutLimit)

	for i, branch := range branches {
		g.Go(func() error {
			orders, listErr := s.orders.ListRevenue(gctx, branch.ID, start, end)
			if listErr != nil {
				return fmt.Errorf("failed to load orders for branch %s: %w", branch.ID, listErr)
			}
			revenue := decimal.Zero
			for _, order := range orders {
				revenue = revenue.Add(order.Total)
			}
			entries[i] = BranchReportEntry{
				BranchID:     branch.ID,
				BranchName:   branch.Name,
				TotalOrders:  len(orders),
				TotalRevenue: revenue,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &OrderReport{TotalRevenue: decimal.Zero, Branches: entries}
	for _, entry := range entries {
		report.TotalOrders += entry.TotalOrders
		report.TotalRevenue = report.TotalRevenue.Add(entry.TotalRevenue)
	}
	return report, nil
}

func (s *orderService) publishAlerts(products []model.Product) {
	if s.alerts == nil {
		return
	}
	for i := range products {
		if alert := AlertFor(&products[i]); alert != nil {
			s.alerts.Publish(alert)
		}
	}
}

// parseReportRange accepts YYYY-MM-DD or RFC3339 bounds; a date-only end is
// inclusive through the end of that day.
func parseReportRange(startDate, endDate string) (*time.Time, *time.Time, error) {
	var start, end *time.Time

	if startDate != "" {
		t, _, err := parseDate(startDate)
		if err != nil {
			return nil, nil, apperror.Validation("invalid start date format")
		}
		start = &t
	}
	if endDate != "" {
		t, dateOnly, err := parseDate(endDate)
		if err != nil {
			return nil, nil, apperror.Validation("invalid end date format")
		}
		// Only a date-only bound means "the whole day"; an explicit
		// timestamp is taken as-is.
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		end = &t
	}
	return start, end, nil
}

// parseDate reports whether the value matched the date-only layout, so the
// caller can widen date-only end bounds without touching explicit timestamps.
func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, false, err
}
