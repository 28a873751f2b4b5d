package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/policy"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService service.OrderService
	auth         *middleware.Auth
}

func NewOrderHandler(orderService service.OrderService, auth *middleware.Auth) *OrderHandler {
	return &OrderHandler{orderService: orderService, auth: auth}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/api/orders")
	{
		orders.POST("", h.auth.RequireRole(policy.RoleCustomer), h.CreateOrder)
		orders.GET("/my-orders", h.auth.RequireRole(policy.RoleCustomer), h.GetMyOrders)
		orders.GET("/reports", h.auth.RequireRole(policy.RoleOwner, policy.RoleSuper), h.GetReport)

		branch := orders.Group("/branch/:branchId")
		branch.Use(
			h.auth.RequireRole(policy.RoleAdmin, policy.RoleHead, policy.RoleOwner, policy.RoleSuper),
			h.auth.RequireBranchAccess(),
		)
		{
			branch.GET("", h.GetBranchOrders)
			branch.GET("/:id", h.GetOrder)
			branch.PATCH("/:id/status", h.UpdateOrderStatus)
		}
	}
}

// CreateOrder places an order against one branch
// @Summary      Create order
// @Description  Creates a pending order, decrementing stock for every line item in one transaction
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateOrderRequest  true  "Create Order Payload"
// @Success      201      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("invalid request payload: "+err.Error()))
		return
	}

	actor, _ := middleware.GetActor(c)

	order, err := h.orderService.Create(c.Request.Context(), actor.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.SuccessMessage("order created successfully", order))
}

// GetMyOrders lists the caller's orders across every branch
// @Summary      Get my orders
// @Description  Lists the authenticated customer's orders from all branches, newest first
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.CustomerOrder}
// @Router       /api/orders/my-orders [get]
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	orders, err := h.orderService.ListByCustomer(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessCount(orders, len(orders)))
}

// GetReport aggregates order counts and revenue
// @Summary      Get order report
// @Description  Aggregates revenue-bearing orders for one branch or all branches over an optional date range
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        branch_id   query     string  false  "Branch ID (omit for all branches)"
// @Param        start_date  query     string  false  "Start date (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "End date (YYYY-MM-DD, inclusive)"
// @Success      200  {object}  response.Response{data=service.OrderReport}
// @Failure      400  {object}  response.Response
// @Router       /api/orders/reports [get]
func (h *OrderHandler) GetReport(c *gin.Context) {
	query := service.ReportQuery{
		BranchID:  c.Query("branch_id"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}

	report, err := h.orderService.Report(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(report))
}

// GetBranchOrders lists a branch's orders
// @Summary      Get branch orders
// @Description  Lists a branch's orders with pagination, newest first
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        branchId  path      string  true   "Branch ID"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Number of items per page (default 20)"
// @Success      200  {object}  response.Response{data=[]model.Order}
// @Failure      404  {object}  response.Response
// @Router       /api/orders/branch/{branchId} [get]
func (h *OrderHandler) GetBranchOrders(c *gin.Context) {
	branchID, ok := pathUUID(c, "branchId")
	if !ok {
		return
	}
	params := pagination.Parse(c)

	orders, total, err := h.orderService.ListByBranch(c.Request.Context(), branchID, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessCount(orders, int(total)))
}

// GetOrder fetches one order with its line items
// @Summary      Get order
// @Description  Fetches one order by ID with its frozen line items
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        branchId  path      string  true  "Branch ID"
// @Param        id        path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=model.Order}
// @Failure      404  {object}  response.Response
// @Router       /api/orders/branch/{branchId}/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	branchID, ok := pathUUID(c, "branchId")
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), branchID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(order))
}

// UpdateOrderStatus moves an order along its lifecycle
// @Summary      Update order status
// @Description  Transitions an order's status; cancellation restores the ordered stock exactly once
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        branchId  path      string                            true  "Branch ID"
// @Param        id        path      string                            true  "Order ID"
// @Param        payload   body      service.UpdateOrderStatusRequest  true  "New Status"
// @Success      200  {object}  response.Response{data=model.Order}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/orders/branch/{branchId}/{id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	branchID, ok := pathUUID(c, "branchId")
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("invalid request payload: "+err.Error()))
		return
	}

	actor, _ := middleware.GetActor(c)

	order, err := h.orderService.UpdateStatus(c.Request.Context(), actor, branchID, orderID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessage("order status updated", order))
}
