package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gorider/gorider-api/internal/api/dto"
	"github.com/gorider/gorider-api/internal/domain/coupon"
	"github.com/gorider/gorider-api/internal/service/notification"
	apperrors "github.com/gorider/gorider-api/pkg/errors"
	"github.com/gorider/gorider-api/pkg/logger"
)

// CreateCoupon handles POST /coupons. Every user is told about a new
// coupon; a duplicate name is rejected without a broadcast.
func (h *Handlers) CreateCoupon(c *gin.Context) {
	var req dto.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.SuccessResponse{Success: false, Message: apperrors.MsgInvalidBody})
		return
	}

	cp := req.ToCoupon()
	if err := h.Coupons.Create(c.Request.Context(), cp); err != nil {
		if errors.Is(err, coupon.ErrCouponExists) {
			c.JSON(http.StatusBadRequest, dto.SuccessResponse{Success: false, Message: "Coupon already exists"})
			return
		}
		h.respondError(c, err)
		return
	}

	if h.Notifier != nil {
		subject, body := notification.CouponAnnouncement(*cp)
		h.Notifier.BroadcastToAllUsers(subject, body)
	}
	h.record("CouponCreated", map[string]interface{}{
		"name":     cp.Name,
		"discount": cp.Discount,
	})
	h.Logger.Info("Coupon created", logger.String("name", cp.Name), logger.String("code", cp.Code))

	c.JSON(http.StatusCreated, dto.SuccessResponse{Success: true, Message: "Coupon created"})
}

// GetCoupons handles GET /coupons and GET /coupons?name=
func (h *Handlers) GetCoupons(c *gin.Context) {
	ctx := c.Request.Context()

	if name := c.Query("name"); name != "" {
		cp, err := h.Coupons.GetByName(ctx, name)
		if errors.Is(err, coupon.ErrCouponNotFound) {
			h.respondError(c, apperrors.ErrCouponNotFound)
			return
		}
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cp)
		return
	}

	coupons, err := h.Coupons.List(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupons)
}

// DeleteCoupon handles DELETE /coupons/:id
func (h *Handlers) DeleteCoupon(c *gin.Context) {
	id, ok := h.objectID(c)
	if !ok {
		return
	}

	deleted, err := h.Coupons.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: deleted > 0})
}
