package tickettypes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tickethub/internal/events"
	"tickethub/internal/shared/utils/response"
)

type Controller interface {
	CreateTicketType(c *gin.Context)
	GetTicketType(c *gin.Context)
	GetTicketTypesByEvent(c *gin.Context)
	UpdateTicketType(c *gin.Context)
	DeleteTicketType(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateTicketType(c *gin.Context) {
	var req CreateTicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	ticketType, err := ctrl.service.CreateTicketType(c.Request.Context(), req)
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, events.ErrEventNotFound) {
			statusCode = http.StatusNotFound
		}
		response.Error(c, statusCode, err.Error(), nil)
		return
	}

	response.Success(c, http.StatusCreated, "Ticket type created successfully", ticketType)
}

func (ctrl *controller) GetTicketType(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid ticket type ID", err.Error())
		return
	}

	ticketType, err := ctrl.service.GetTicketType(c.Request.Context(), id)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrTicketTypeNotFound) {
			statusCode = http.StatusNotFound
		}
		response.Error(c, statusCode, err.Error(), nil)
		return
	}

	response.Success(c, http.StatusOK, "Ticket type retrieved successfully", ticketType)
}

func (ctrl *controller) GetTicketTypesByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid event ID", err.Error())
		return
	}

	types, err := ctrl.service.GetTicketTypesByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	response.Success(c, http.StatusOK, "Ticket types retrieved successfully", types)
}

func (ctrl *controller) UpdateTicketType(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid ticket type ID", err.Error())
		return
	}

	var req UpdateTicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	ticketType, err := ctrl.service.UpdateTicketType(c.Request.Context(), id, req)
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, ErrTicketTypeNotFound) {
			statusCode = http.StatusNotFound
		}
		response.Error(c, statusCode, err.Error(), nil)
		return
	}

	response.Success(c, http.StatusOK, "Ticket type updated successfully", ticketType)
}

func (ctrl *controller) DeleteTicketType(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid ticket type ID", err.Error())
		return
	}

	if err := ctrl.service.DeleteTicketType(c.Request.Context(), id); err != nil {
		statusCode := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrTicketTypeNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrTypeHasSales):
			statusCode = http.StatusConflict
		}
		response.Error(c, statusCode, err.Error(), nil)
		return
	}

	response.Success(c, http.StatusOK, "Ticket type deleted successfully", nil)
}
