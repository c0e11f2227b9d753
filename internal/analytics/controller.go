package analytics

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tickethub/internal/shared/utils/response"
)

type Controller interface {
	GetEventSales(c *gin.Context)
	GetSalesSummary(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetEventSales(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid event ID format", nil)
		return
	}

	sales, err := ctrl.service.GetEventSales(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.Error(c, http.StatusNotFound, "Event not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to get event sales", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Event sales retrieved successfully", sales)
}

func (ctrl *controller) GetSalesSummary(c *gin.Context) {
	summary, err := ctrl.service.GetSalesSummary(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get sales summary", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Sales summary retrieved successfully", summary)
}
