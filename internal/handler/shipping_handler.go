package handler

import (
	"net/http"
	"strconv"

	"backend/internal/shipping"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ShippingHandler struct {
	rates shipping.Client
}

func NewShippingHandler(rates shipping.Client) *ShippingHandler {
	return &ShippingHandler{rates: rates}
}

func (h *ShippingHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/shipping")
	{
		group.GET("/provinces", h.GetProvinces)
		group.GET("/cities", h.GetCities)
		group.POST("/cost", h.GetCost)
	}
}

type shippingCostRequest struct {
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	WeightGrams int    `json:"weight_grams" binding:"required,gt=0"`
	Courier     string `json:"courier"`
}

// GetProvinces lists shipping provinces
// @Summary      Get provinces
// @Description  Lists the provinces known to the shipping rate provider
// @Tags         shipping
// @Produce      json
// @Success      200  {object}  response.Response{data=[]shipping.Province}
// @Router       /api/shipping/provinces [get]
func (h *ShippingHandler) GetProvinces(c *gin.Context) {
	provinces, err := h.rates.Provinces(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessCount(provinces, len(provinces)))
}

// GetCities lists shipping cities
// @Summary      Get cities
// @Description  Lists cities, optionally filtered by province
// @Tags         shipping
// @Produce      json
// @Param        province  query     string  false  "Province ID"
// @Success      200  {object}  response.Response{data=[]shipping.City}
// @Router       /api/shipping/cities [get]
func (h *ShippingHandler) GetCities(c *gin.Context) {
	cities, err := h.rates.Cities(c.Request.Context(), c.Query("province"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessCount(cities, len(cities)))
}

// GetCost quotes delivery costs for a shipment
// @Summary      Get shipping cost
// @Description  Quotes courier rates between an origin and destination for a given weight
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        payload  body      shippingCostRequest  true  "Cost Query"
// @Success      200  {object}  response.Response{data=[]shipping.RateOption}
// @Failure      400  {object}  response.Response
// @Router       /api/shipping/cost [post]
func (h *ShippingHandler) GetCost(c *gin.Context) {
	var req shippingCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Accept form posts too, matching the upstream API's shape
		origin := c.PostForm("origin")
		destination := c.PostForm("destination")
		weight, _ := strconv.Atoi(c.PostForm("weight"))
		if origin == "" || destination == "" || weight <= 0 {
			c.JSON(http.StatusBadRequest, response.Error("invalid request payload: "+err.Error()))
			return
		}
		req = shippingCostRequest{
			Origin:      origin,
			Destination: destination,
			WeightGrams: weight,
			Courier:     c.PostForm("courier"),
		}
	}

	options, err := h.rates.Cost(c.Request.Context(), req.Origin, req.Destination, req.WeightGrams, req.Courier)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessCount(options, len(options)))
}
