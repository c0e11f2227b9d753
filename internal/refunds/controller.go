package refunds

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tickethub/internal/shared/utils/response"
)

type Controller interface {
	RequestRefund(c *gin.Context)
	GetRefund(c *gin.Context)
	GetUserRefunds(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func userFromContext(c *gin.Context) (uuid.UUID, bool, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return uuid.Nil, false, false
	}

	userUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Invalid user ID format", nil)
		return uuid.Nil, false, false
	}

	role, _ := c.Get("user_role")
	return userUUID, role == "ADMIN", true
}

func (ctrl *controller) RequestRefund(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid order ID", err.Error())
		return
	}

	userUUID, isAdmin, ok := userFromContext(c)
	if !ok {
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	refund, err := ctrl.service.RequestRefund(c.Request.Context(), orderID, userUUID, isAdmin, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			response.Error(c, http.StatusNotFound, "Order not found", nil)
		case errors.Is(err, ErrNotOrderOwner):
			response.Error(c, http.StatusForbidden, "Order does not belong to user", nil)
		case errors.Is(err, ErrAlreadyRefunded):
			response.Error(c, http.StatusConflict, "Order has already been refunded", nil)
		case errors.Is(err, ErrOrderNotRefundable), errors.Is(err, ErrEventStarted):
			response.Error(c, http.StatusBadRequest, err.Error(), nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to process refund", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, "Refund processed successfully", refund)
}

func (ctrl *controller) GetRefund(c *gin.Context) {
	refundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid refund ID", err.Error())
		return
	}

	refund, err := ctrl.service.GetRefund(c.Request.Context(), refundID)
	if err != nil {
		if errors.Is(err, ErrRefundNotFound) {
			response.Error(c, http.StatusNotFound, "Refund not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to get refund", nil)
		return
	}

	response.Success(c, http.StatusOK, "Refund retrieved successfully", refund)
}

func (ctrl *controller) GetUserRefunds(c *gin.Context) {
	userUUID, _, ok := userFromContext(c)
	if !ok {
		return
	}

	refundList, err := ctrl.service.GetUserRefunds(c.Request.Context(), userUUID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get refunds", nil)
		return
	}

	response.Success(c, http.StatusOK, "Refunds retrieved successfully", refundList)
}
