package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gorider/gorider-api/internal/api/dto"
	"github.com/gorider/gorider-api/internal/domain/ride"
	apperrors "github.com/gorider/gorider-api/pkg/errors"
)

var errInvalidStatus = apperrors.BadRequest("Invalid ride status", ride.ErrInvalidStatus)

// CreatePendingRide handles POST /pending-ride and answers 201 with the
// stored record, like the other create endpoints
func (h *Handlers) CreatePendingRide(c *gin.Context) {
	var req dto.PendingRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.ErrInvalidBody)
		return
	}

	pending := req.ToPendingRide()
	if err := h.Rides.RequestRide(c.Request.Context(), pending); err != nil {
		if errors.Is(err, ride.ErrInvalidStatus) {
			h.respondError(c, errInvalidStatus)
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pending)
}

// ListPendingRides handles GET /pending-ride
func (h *Handlers) ListPendingRides(c *gin.Context) {
	rides, err := h.Rides.ListRides(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rides)
}

// UpdatePendingRide handles PATCH /pending-ride/:id
func (h *Handlers) UpdatePendingRide(c *gin.Context) {
	id, ok := h.objectID(c)
	if !ok {
		return
	}

	var req dto.UpdatePendingRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.ErrInvalidBody)
		return
	}

	updated, err := h.Rides.UpdateRide(c.Request.Context(), id, req.ToStatusUpdate())
	if errors.Is(err, ride.ErrInvalidStatus) {
		h.respondError(c, errInvalidStatus)
		return
	}
	if errors.Is(err, ride.ErrEmptyUpdate) {
		h.respondError(c, apperrors.ErrInvalidBody)
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: updated})
}

// DeletePendingRide handles DELETE /pending-ride/:id
func (h *Handlers) DeletePendingRide(c *gin.Context) {
	id, ok := h.objectID(c)
	if !ok {
		return
	}

	deleted, err := h.Rides.CancelRide(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: deleted})
}
