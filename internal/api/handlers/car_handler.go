package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gorider/gorider-api/internal/api/dto"
	apperrors "github.com/gorider/gorider-api/pkg/errors"
	"github.com/gorider/gorider-api/pkg/logger"
)

// CreateCar handles POST /cars
func (h *Handlers) CreateCar(c *gin.Context) {
	var req dto.CreateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.ErrFieldsMissing)
		return
	}

	listing, err := req.ToCar()
	if err != nil {
		h.Logger.Debug("Rejected car submission", logger.String("driver_email", req.DriverEmail), logger.Err(err))
		h.respondError(c, err)
		return
	}

	if err := h.Cars.Create(c.Request.Context(), listing); err != nil {
		h.respondError(c, err)
		return
	}

	h.Logger.Info("Car submitted",
		logger.String("id", listing.ID.Hex()),
		logger.String("driver_email", listing.DriverEmail),
	)
	c.JSON(http.StatusCreated, listing)
}

// ListCars handles GET /cars
func (h *Handlers) ListCars(c *gin.Context) {
	cars, err := h.Cars.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cars)
}

// UpdateCar handles PATCH /cars/:id. Only the named fields change.
func (h *Handlers) UpdateCar(c *gin.Context) {
	id, ok := h.objectID(c)
	if !ok {
		return
	}

	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, apperrors.ErrInvalidBody)
		return
	}
	fields, err := dto.UpdateCarFields(body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	modified, err := h.Cars.Update(c.Request.Context(), id, fields)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: modified > 0})
}

// DeleteCar handles DELETE /cars/:id
func (h *Handlers) DeleteCar(c *gin.Context) {
	id, ok := h.objectID(c)
	if !ok {
		return
	}

	deleted, err := h.Cars.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: deleted > 0})
}
