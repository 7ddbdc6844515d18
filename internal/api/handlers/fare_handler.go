package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gorider/gorider-api/internal/api/dto"
	"github.com/gorider/gorider-api/internal/domain/car"
	"github.com/gorider/gorider-api/internal/domain/coupon"
	"github.com/gorider/gorider-api/internal/service/pricing"
	apperrors "github.com/gorider/gorider-api/pkg/errors"
)

// EstimateFare handles POST /fare-estimate
func (h *Handlers) EstimateFare(c *gin.Context) {
	var req dto.FareEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.ErrInvalidBody)
		return
	}

	carID, err := primitive.ObjectIDFromHex(req.CarID)
	if err != nil {
		h.respondError(c, apperrors.ErrInvalidID)
		return
	}

	fare, err := h.Pricing.Estimate(c.Request.Context(), carID, req.Distance, req.CouponCode)
	switch {
	case errors.Is(err, car.ErrCarNotFound):
		h.respondError(c, apperrors.ErrCarNotFound)
	case errors.Is(err, coupon.ErrCouponNotFound):
		h.respondError(c, apperrors.ErrCouponNotFound)
	case errors.Is(err, pricing.ErrInvalidDistance), errors.Is(err, pricing.ErrInvalidRate):
		h.respondError(c, apperrors.BadRequest(err.Error(), err))
	case err != nil:
		h.respondError(c, err)
	default:
		c.JSON(http.StatusOK, fare)
	}
}
