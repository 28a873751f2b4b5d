package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/policy"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type BranchHandler struct {
	branchService service.BranchService
	auth          *middleware.Auth
}

func NewBranchHandler(branchService service.BranchService, auth *middleware.Auth) *BranchHandler {
	return &BranchHandler{branchService: branchService, auth: auth}
}

func (h *BranchHandler) RegisterRoutes(router *gin.RouterGroup) {
	branches := router.Group("/api/branches")
	{
		branches.GET("", h.GetBranches)
		branches.GET("/:id", h.GetBranch)
		branches.POST("", h.auth.RequireRole(policy.RoleOwner, policy.RoleSuper), h.CreateBranch)
		branches.PUT("/:id", h.auth.RequireRole(policy.RoleOwner, policy.RoleSuper), h.UpdateBranch)
	}
}

// GetBranches lists every branch
// @Summary      Get branches
// @Description  Lists all branches, ordered by name
// @Tags         branches
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Branch}
// @Router       /api/branches [get]
func (h *BranchHandler) GetBranches(c *gin.Context) {
	branches, err := h.branchService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessCount(branches, len(branches)))
}

// GetBranch fetches one branch
// @Summary      Get branch
// @Description  Fetches one branch by ID
// @Tags         branches
// @Produce      json
// @Param        id   path      string  true  "Branch ID"
// @Success      200  {object}  response.Response{data=model.Branch}
// @Failure      404  {object}  response.Response
// @Router       /api/branches/{id} [get]
func (h *BranchHandler) GetBranch(c *gin.Context) {
	branchID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	branch, err := h.branchService.GetByID(c.Request.Context(), branchID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(branch))
}

// CreateBranch opens a new branch
// @Summary      Create branch
// @Description  Creates a branch
// @Tags         branches
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.BranchRequest  true  "Branch Payload"
// @Success      201      {object}  response.Response{data=model.Branch}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/branches [post]
func (h *BranchHandler) CreateBranch(c *gin.Context) {
	var req service.BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("invalid request payload: "+err.Error()))
		return
	}

	actor, _ := middleware.GetActor(c)

	branch, err := h.branchService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.SuccessMessage("branch created", branch))
}

// UpdateBranch updates a branch's details
// @Summary      Update branch
// @Description  Updates a branch by ID
// @Tags         branches
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Branch ID"
// @Param        payload  body      service.BranchRequest  true  "Branch Payload"
// @Success      200  {object}  response.Response{data=model.Branch}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/branches/{id} [put]
func (h *BranchHandler) UpdateBranch(c *gin.Context) {
	branchID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("invalid request payload: "+err.Error()))
		return
	}

	actor, _ := middleware.GetActor(c)

	branch, err := h.branchService.Update(c.Request.Context(), actor, branchID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessage("branch updated", branch))
}
