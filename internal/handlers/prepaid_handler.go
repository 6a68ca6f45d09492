package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"credits-service/internal/services"
	"credits-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type PrepaidHandler struct {
	Prepaid *services.PrepaidWalletService
}

func NewPrepaidHandler(prepaid *services.PrepaidWalletService) *PrepaidHandler {
	return &PrepaidHandler{Prepaid: prepaid}
}

func (h *PrepaidHandler) GetBalance(c *gin.Context) {
	companyID, err := strconv.Atoi(c.Query("companyId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid companyId", nil, http.StatusBadRequest))
		return
	}

	balance, err := h.Prepaid.GetBalance(companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error(), nil, http.StatusInternalServerError))
		return
	}

	// The fold is returned alongside so callers can spot divergence.
	folded, err := h.Prepaid.FoldBalance(companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error(), nil, http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"balance":       balance,
		"ledgerBalance": folded,
	}, "Prepaid balance fetched"))
}

type PrepaidCreditRequest struct {
	CompanyID   int     `json:"companyId" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description"`
}

func (h *PrepaidHandler) Credit(c *gin.Context) {
	var req PrepaidCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	entry, err := h.Prepaid.Credit(req.CompanyID, req.Amount, req.Description)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error(), nil, http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(entry, "Wallet credited"))
}

type PayWithPrepaidRequest struct {
	CompanyID int     `json:"companyId" binding:"required"`
	ClientID  int     `json:"clientId" binding:"required"`
	ServiceID int     `json:"serviceId" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
}

func (h *PrepaidHandler) PayServiceOrder(c *gin.Context) {
	var req PayWithPrepaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	result, err := h.Prepaid.PayServiceOrder(services.PayServiceOrderDTO{
		CompanyID: req.CompanyID,
		ClientID:  req.ClientID,
		ServiceID: req.ServiceID,
		Amount:    req.Amount,
	})
	if err != nil {
		var insufficient *services.InsufficientBalanceError
		if errors.As(err, &insufficient) {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Insufficient prepaid balance", gin.H{
				"required":  insufficient.Required,
				"available": insufficient.Available,
			}, http.StatusBadRequest))
			return
		}
		if errors.Is(err, services.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error(), nil, http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(result, "Service order paid"))
}

func (h *PrepaidHandler) ListTransactions(c *gin.Context) {
	companyID, err := strconv.Atoi(c.Query("companyId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid companyId", nil, http.StatusBadRequest))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	transactions, total, err := h.Prepaid.ListTransactions(services.ListPrepaidTransactionsDTO{
		CompanyID: companyID,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error(), nil, http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, common.PaginateResponse(transactions, total, page, limit, "Transactions fetched"))
}
