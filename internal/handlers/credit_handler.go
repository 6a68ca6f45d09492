package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"credits-service/internal/services"
	"credits-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type CreditHandler struct {
	Credit *services.CreditService
}

func NewCreditHandler(credit *services.CreditService) *CreditHandler {
	return &CreditHandler{Credit: credit}
}

func (h *CreditHandler) GetBalance(c *gin.Context) {
	ownerType := c.Query("ownerType")
	ownerID, err := strconv.Atoi(c.Query("ownerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid ownerId", nil, http.StatusBadRequest))
		return
	}

	credit, err := h.Credit.GetOrCreateCredit(ownerType, ownerID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidOwner) {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error(), nil, http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"balance":        credit.Balance,
		"totalPurchased": credit.TotalPurchased,
		"totalUsed":      credit.TotalUsed,
	}, "Balance fetched"))
}

func (h *CreditHandler) GetAvailableBalance(c *gin.Context) {
	clientID, err := strconv.Atoi(c.Query("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid clientId", nil, http.StatusBadRequest))
		return
	}
	companyID, _ := strconv.Atoi(c.Query("companyId"))
	useCompanyCredits := c.Query("useCompanyCredits") == "true"

	available, err := h.Credit.GetAvailableBalance(clientID, companyID, useCompanyCredits)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error(), nil, http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(available, "Available balance fetched"))
}

type DebitRequest struct {
	Amount            float64 `json:"amount" binding:"required"`
	ClientID          int     `json:"clientId" binding:"required"`
	CompanyID         int     `json:"companyId"`
	UseCompanyCredits bool    `json:"useCompanyCredits"`
	ServiceID         *int    `json:"serviceId"`
	Description       string  `json:"description"`
	CreatedBy         string  `json:"createdBy"`
}

func (h *CreditHandler) Debit(c *gin.Context) {
	var req DebitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	result, err := h.Credit.ValidateAndDebit(services.DebitRequest{
		Amount:            req.Amount,
		ClientID:          req.ClientID,
		CompanyID:         req.CompanyID,
		UseCompanyCredits: req.UseCompanyCredits,
		ServiceID:         req.ServiceID,
		Description:       req.Description,
		CreatedBy:         req.CreatedBy,
	})
	if err != nil {
		var insufficient *services.InsufficientCreditsError
		if errors.As(err, &insufficient) {
			c.JSON(http.StatusPaymentRequired, common.NewErrorResponse("Insufficient credits", gin.H{
				"required":  insufficient.Required,
				"available": insufficient.Available,
			}, http.StatusPaymentRequired))
			return
		}
		if errors.Is(err, services.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error(), nil, http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(result, "Credits debited"))
}

func (h *CreditHandler) ListTransactions(c *gin.Context) {
	ownerType := c.Query("ownerType")
	ownerID, err := strconv.Atoi(c.Query("ownerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid ownerId", nil, http.StatusBadRequest))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	transactions, total, err := h.Credit.ListTransactions(services.ListTransactionsDTO{
		OwnerType: ownerType,
		OwnerID:   ownerID,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error(), nil, http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, common.PaginateResponse(transactions, total, page, limit, "Transactions fetched"))
}
