package orders

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tickethub/internal/shared/utils/response"
)

type Controller interface {
	ValidatePurchase(c *gin.Context)
	Purchase(c *gin.Context)
	GetOrder(c *gin.Context)
	GetUserOrders(c *gin.Context)
	GetTicketByCode(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// statusForPurchaseError maps the purchase taxonomy onto HTTP statuses.
func statusForPurchaseError(perr *PurchaseError) int {
	switch perr.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindIneligible, KindNotYetOnSale, KindSaleEnded, KindLimitExceeded, KindInsufficientInventory:
		return http.StatusBadRequest
	case KindConcurrencyConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondPurchaseError(c *gin.Context, err error) {
	var perr *PurchaseError
	if errors.As(err, &perr) {
		details := gin.H{"kind": string(perr.Kind)}
		if perr.Kind == KindInsufficientInventory {
			details["remaining"] = perr.Remaining
		}
		message := perr.Error()
		if perr.Kind == KindStoreFailure {
			message = "purchase failed, please try again later"
		}
		response.Error(c, statusForPurchaseError(perr), message, details)
		return
	}

	response.Error(c, http.StatusBadRequest, err.Error(), nil)
}

func buyerFromContext(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return uuid.Nil, false
	}

	userUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Invalid user ID format", nil)
		return uuid.Nil, false
	}

	return userUUID, true
}

func (ctrl *controller) ValidatePurchase(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid event ID", err.Error())
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	quote, err := ctrl.service.ValidatePurchase(c.Request.Context(), eventID, req)
	if err != nil {
		respondPurchaseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Purchase is admissible", quote)
}

func (ctrl *controller) Purchase(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid event ID", err.Error())
		return
	}

	userUUID, ok := buyerFromContext(c)
	if !ok {
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	result, err := ctrl.service.Purchase(c.Request.Context(), userUUID, eventID, req)
	if err != nil {
		respondPurchaseError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Purchase completed successfully", result)
}

func (ctrl *controller) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid order ID", err.Error())
		return
	}

	userUUID, ok := buyerFromContext(c)
	if !ok {
		return
	}

	role, _ := c.Get("user_role")
	isAdmin := role == "ADMIN"

	order, err := ctrl.service.GetOrder(c.Request.Context(), orderID, userUUID, isAdmin)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			response.Error(c, http.StatusNotFound, "Order not found", nil)
		case errors.Is(err, ErrNotOrderOwner):
			response.Error(c, http.StatusForbidden, "Order does not belong to user", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to get order", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, "Order retrieved successfully", order)
}

func (ctrl *controller) GetUserOrders(c *gin.Context) {
	userUUID, ok := buyerFromContext(c)
	if !ok {
		return
	}

	var query OrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	result, err := ctrl.service.GetUserOrders(c.Request.Context(), userUUID, query)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get orders", nil)
		return
	}

	response.Success(c, http.StatusOK, "Orders retrieved successfully", result)
}

func (ctrl *controller) GetTicketByCode(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if len(code) != 10 {
		response.Error(c, http.StatusBadRequest, "Invalid ticket code", nil)
		return
	}

	ticket, err := ctrl.service.GetTicketByCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			response.Error(c, http.StatusNotFound, "Ticket not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to get ticket", nil)
		return
	}

	response.Success(c, http.StatusOK, "Ticket retrieved successfully", ticket)
}
