package handler

import (
	"io"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/policy"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// maxImageBytes caps product image uploads at 5 MiB
const maxImageBytes = 5 << 20

type ProductHandler struct {
	productService service.ProductService
	auth           *middleware.Auth
}

func NewProductHandler(productService service.ProductService, auth *middleware.Auth) *ProductHandler {
	return &ProductHandler{productService: productService, auth: auth}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/api/products")
	{
		// Catalog reads are public so the storefront can browse without a
		// session.
		products.GET("/branch/:branchId", h.GetProducts)
		products.GET("/branch/:branchId/:id", h.GetProduct)

		products.POST("", h.auth.RequireRole(policy.RoleHead, policy.RoleOwner, policy.RoleSuper), h.CreateProduct)

		manage := products.Group("/branch/:branchId")
		manage.Use(
			h.auth.RequireRole(policy.RoleHead, policy.RoleOwner, policy.RoleSuper),
			h.auth.RequireBranchAccess(),
		)
		{
			manage.PUT("/:id", h.UpdateProduct)
			manage.DELETE("/:id", h.DeleteProduct)
			manage.POST("/:id/image", h.UploadProductImage)
			manage.GET("/:id/movements", h.GetProductMovements)
		}
	}
}

// GetProducts lists a branch's catalog
// @Summary      Get products
// @Description  Lists a branch's products with pagination and optional name search
// @Tags         products
// @Produce      json
// @Param        branchId  path      string  true   "Branch ID"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Number of items per page (default 20)"
// @Param        search    query     string  false  "Search by product name"
// @Success      200  {object}  response.Response{data=[]model.Product}
// @Failure      404  {object}  response.Response
// @Router       /api/products/branch/{branchId} [get]
func (h *ProductHandler) GetProducts(c *gin.Context) {
	branchID, ok := pathUUID(c, "branchId")
	if !ok {
		return
	}
	params := pagination.Parse(c)
	search := c.Query("search")

	products, total, err := h.productService.ListByBranch(c.Request.Context(), branchID, params.Page, params.Limit, search)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessCount(products, int(total)))
}

// GetProduct fetches one product
// @Summary      Get product
// @Description  Fetches one product by ID
// @Tags         products
// @Produce      json
// @Param        branchId  path      string  true  "Branch ID"
// @Param        id        path      string  true  "Product ID"
// @Success      200  {object}  response.Response{data=model.Product}
// @Failure      404  {object}  response.Response
// @Router       /api/products/branch/{branchId}/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	branchID, ok := pathUUID(c, "branchId")
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), branchID, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(product))
}

// CreateProduct adds a product to a branch's catalog
// @Summary      Create product
// @Description  Creates a product; its stock status is derived from stock and threshold
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateProductRequest  true  "Create Product Payload"
// @Success      201      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("invalid request payload: "+err.Error()))
		return
	}

	actor, _ := middleware.GetActor(c)

	product, err := h.productService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.SuccessMessage("product created", product))
}

// UpdateProduct updates a product's catalog fields
// @Summary      Update product
// @Description  Updates a product's details; stock itself only moves through orders and stock requests
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        branchId  path      string                        true  "Branch ID"
// @Param        id        path      string                        true  "Product ID"
// @Param        payload   body      service.UpdateProductRequest  true  "Update Product Payload"
// @Success      200  {object}  response.Response{data=model.Product}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/products/branch/{branchId}/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	branchID, ok := pathUUID(c, "branchId")
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("invalid request payload: "+err.Error()))
		return
	}

	actor, _ := middleware.GetActor(c)

	product, err := h.productService.Update(c.Request.Context(), actor, branchID, productID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessage("product updated", product))
}

// DeleteProduct removes a product from the catalog
// @Summary      Delete product
// @Description  Soft deletes a product; existing order snapshots keep their frozen copy
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        branchId  path      string  true  "Branch ID"
// @Param        id        path      string  true  "Product ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/products/branch/{branchId}/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	branchID, ok := pathUUID(c, "branchId")
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	actor, _ := middleware.GetActor(c)

	if err := h.productService.Delete(c.Request.Context(), actor, branchID, productID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessage("product deleted", nil))
}

// GetProductMovements lists a product's stock ledger history
// @Summary      Get product stock movements
// @Description  Lists every recorded stock change for a product, newest first
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        branchId  path      string  true   "Branch ID"
// @Param        id        path      string  true   "Product ID"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Number of items per page (default 20)"
// @Success      200  {object}  response.Response{data=[]model.StockMovement}
// @Failure      404  {object}  response.Response
// @Router       /api/products/branch/{branchId}/{id}/movements [get]
func (h *ProductHandler) GetProductMovements(c *gin.Context) {
	branchID, ok := pathUUID(c, "branchId")
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	params := pagination.Parse(c)

	movements, total, err := h.productService.ListMovements(c.Request.Context(), branchID, productID, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessCount(movements, int(total)))
}

// UploadProductImage attaches an image to a product
// @Summary      Upload product image
// @Description  Uploads an image to the external store and records the returned URL on the product
// @Tags         products
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        branchId  path      string  true  "Branch ID"
// @Param        id        path      string  true  "Product ID"
// @Param        image     formData  file    true  "Image file"
// @Success      200  {object}  response.Response{data=model.Product}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/products/branch/{branchId}/{id}/image [post]
func (h *ProductHandler) UploadProductImage(c *gin.Context) {
	branchID, ok := pathUUID(c, "branchId")
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error("image file is missing"))
		return
	}
	if fileHeader.Size > maxImageBytes {
		c.JSON(http.StatusBadRequest, response.Error("image exceeds the 5MB limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		respondError(c, err)
		return
	}

	actor, _ := middleware.GetActor(c)

	product, err := h.productService.UploadImage(c.Request.Context(), actor, branchID, productID, fileHeader.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessage("product image updated", product))
}
