package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/lineform-api/internal/application/service"
	"github.com/sangkips/lineform-api/internal/presentation/http/dto/request"
	"github.com/sangkips/lineform-api/internal/presentation/http/dto/response"
	"github.com/sangkips/lineform-api/pkg/pagination"
)

// RateHandler handles exchange rate HTTP requests
type RateHandler struct {
	rateService *service.RateService
}

// NewRateHandler creates a new rate handler
func NewRateHandler(rateService *service.RateService) *RateHandler {
	return &RateHandler{rateService: rateService}
}

// List handles listing the stored exchange rates
func (h *RateHandler) List(c *gin.Context) {
	var params pagination.PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.rateService.ListRates(c.Request.Context(), &params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Exchange rates retrieved successfully", result)
}

// Set handles storing the rate of one currency
func (h *RateHandler) Set(c *gin.Context) {
	var req request.SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rate, err := h.rateService.SetRate(c.Request.Context(), c.Param("code"), req.Rate)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Exchange rate saved successfully", rate)
}
