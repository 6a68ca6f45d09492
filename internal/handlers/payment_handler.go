package handlers

import (
	"errors"
	"net/http"

	"credits-service/internal/services"
	"credits-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	Payment *services.PaymentService
}

func NewPaymentHandler(payment *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Payment: payment}
}

type PurchaseRequest struct {
	PackageID   int    `json:"packageId" binding:"required"`
	OwnerType   string `json:"ownerType" binding:"required"`
	OwnerID     int    `json:"ownerId" binding:"required"`
	CustomerRef string `json:"customerRef" binding:"required"`
	RecursoID   *int   `json:"recursoId"`
	CreatedBy   string `json:"createdBy"`
}

func (h *PaymentHandler) PurchaseCredits(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	result, err := h.Payment.PurchaseCredits(services.PurchaseCreditsDTO{
		PackageID:   req.PackageID,
		OwnerType:   req.OwnerType,
		OwnerID:     req.OwnerID,
		CustomerRef: req.CustomerRef,
		RecursoID:   req.RecursoID,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		if errors.Is(err, services.ErrPackageNotFound) {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Credit package not found", nil, http.StatusNotFound))
			return
		}
		if errors.Is(err, services.ErrInvalidOwner) {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
			return
		}
		var gatewayErr *services.GatewayError
		if errors.As(err, &gatewayErr) {
			c.JSON(http.StatusBadGateway, common.NewErrorResponse("Payment gateway unavailable", nil, http.StatusBadGateway))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error(), nil, http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(result, "Payment created"))
}

func (h *PaymentHandler) ListPackages(c *gin.Context) {
	packages, err := h.Payment.ListPackages(c.Query("all") != "true")
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error(), nil, http.StatusInternalServerError))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(packages, "Packages fetched"))
}

type SavePackageRequest struct {
	ID      int     `json:"id"`
	Name    string  `json:"name" binding:"required"`
	Credits float64 `json:"credits" binding:"required"`
	Price   float64 `json:"price" binding:"required"`
	Status  int     `json:"status"`
}

func (h *PaymentHandler) SavePackage(c *gin.Context) {
	var req SavePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	pkg, err := h.Payment.SavePackage(services.SavePackageDTO{
		ID:      req.ID,
		Name:    req.Name,
		Credits: req.Credits,
		Price:   req.Price,
		Status:  req.Status,
	})
	if err != nil {
		if errors.Is(err, services.ErrPackageNotFound) {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Credit package not found", nil, http.StatusNotFound))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error(), nil, http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(pkg, "Saved"))
}
