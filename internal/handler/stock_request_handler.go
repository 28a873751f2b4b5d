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

type StockRequestHandler struct {
	stockRequestService service.StockRequestService
	auth                *middleware.Auth
}

func NewStockRequestHandler(stockRequestService service.StockRequestService, auth *middleware.Auth) *StockRequestHandler {
	return &StockRequestHandler{stockRequestService: stockRequestService, auth: auth}
}

func (h *StockRequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/stock-requests")
	{
		// Creation is admin-only; the roles that resolve requests never
		// file them, so nobody approves their own replenishment.
		requests.POST("", h.auth.RequireRole(policy.RoleAdmin), h.CreateStockRequest)
		requests.GET("/pending", h.auth.RequireRole(policy.RoleHead, policy.RoleOwner, policy.RoleSuper), h.GetPendingRequests)

		branch := requests.Group("/branch/:branchId")
		branch.Use(
			h.auth.RequireRole(policy.RoleAdmin, policy.RoleHead, policy.RoleOwner, policy.RoleSuper),
			h.auth.RequireBranchAccess(),
		)
		{
			branch.GET("", h.GetBranchRequests)
			branch.GET("/:id", h.GetStockRequest)
			branch.PATCH("/:id/status", h.ResolveStockRequest)
		}
	}
}

// CreateStockRequest files a replenishment request
// @Summary      Create stock request
// @Description  Files a pending replenishment request for one product
// @Tags         stock-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateStockRequestRequest  true  "Create Stock Request Payload"
// @Success      201      {object}  response.Response{data=service.StockRequestView}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/stock-requests [post]
func (h *StockRequestHandler) CreateStockRequest(c *gin.Context) {
	var req service.CreateStockRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("invalid request payload: "+err.Error()))
		return
	}

	actor, _ := middleware.GetActor(c)

	request, err := h.stockRequestService.Create(c.Request.Context(), actor.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.SuccessMessage("stock request created", request))
}

// GetPendingRequests lists unresolved requests visible to the caller
// @Summary      Get pending stock requests
// @Description  Lists pending requests for the head's branch, or for all branches for global roles
// @Tags         stock-requests
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.StockRequestView}
// @Router       /api/stock-requests/pending [get]
func (h *StockRequestHandler) GetPendingRequests(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	requests, err := h.stockRequestService.ListPending(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessCount(requests, len(requests)))
}

// GetBranchRequests lists a branch's stock requests
// @Summary      Get branch stock requests
// @Description  Lists a branch's stock requests with pagination, newest first
// @Tags         stock-requests
// @Security     BearerAuth
// @Produce      json
// @Param        branchId  path      string  true   "Branch ID"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Number of items per page (default 20)"
// @Success      200  {object}  response.Response{data=[]service.StockRequestView}
// @Failure      404  {object}  response.Response
// @Router       /api/stock-requests/branch/{branchId} [get]
func (h *StockRequestHandler) GetBranchRequests(c *gin.Context) {
	branchID, ok := pathUUID(c, "branchId")
	if !ok {
		return
	}
	params := pagination.Parse(c)

	requests, total, err := h.stockRequestService.ListByBranch(c.Request.Context(), branchID, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessCount(requests, int(total)))
}

// GetStockRequest fetches one stock request
// @Summary      Get stock request
// @Description  Fetches one stock request with its product summary
// @Tags         stock-requests
// @Security     BearerAuth
// @Produce      json
// @Param        branchId  path      string  true  "Branch ID"
// @Param        id        path      string  true  "Stock Request ID"
// @Success      200  {object}  response.Response{data=service.StockRequestView}
// @Failure      404  {object}  response.Response
// @Router       /api/stock-requests/branch/{branchId}/{id} [get]
func (h *StockRequestHandler) GetStockRequest(c *gin.Context) {
	branchID, ok := pathUUID(c, "branchId")
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	request, err := h.stockRequestService.GetByID(c.Request.Context(), branchID, requestID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(request))
}

// ResolveStockRequest approves or rejects a pending request
// @Summary      Resolve stock request
// @Description  Approves or rejects a pending request; approval increments the product's stock in the same transaction
// @Tags         stock-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        branchId  path      string                              true  "Branch ID"
// @Param        id        path      string                              true  "Stock Request ID"
// @Param        payload   body      service.ResolveStockRequestRequest  true  "Resolution"
// @Success      200  {object}  response.Response{data=service.StockRequestView}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/stock-requests/branch/{branchId}/{id}/status [patch]
func (h *StockRequestHandler) ResolveStockRequest(c *gin.Context) {
	branchID, ok := pathUUID(c, "branchId")
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.ResolveStockRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("invalid request payload: "+err.Error()))
		return
	}

	actor, _ := middleware.GetActor(c)

	request, err := h.stockRequestService.Resolve(c.Request.Context(), actor, branchID, requestID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessage("stock request resolved", request))
}
