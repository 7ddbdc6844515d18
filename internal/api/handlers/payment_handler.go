package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gorider/gorider-api/internal/api/dto"
	"github.com/gorider/gorider-api/internal/service/gateway"
	apperrors "github.com/gorider/gorider-api/pkg/errors"
	"github.com/gorider/gorider-api/pkg/logger"
)

const (
	idempotencyHeader   = "Idempotency-Key"
	replayedHeader      = "Idempotent-Replayed"
	msgPaymentProcessor = "An error occurred during payment processing."
)

// CreatePaymentIntent handles POST /create-payment-intent
func (h *Handlers) CreatePaymentIntent(c *gin.Context) {
	var req dto.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.ErrInvalidBody)
		return
	}

	secret, err := h.Payments.CreateChargeIntent(c.Request.Context(), req.Price)
	if errors.Is(err, gateway.ErrInvalidAmount) {
		h.respondError(c, apperrors.BadRequest("Price must be a positive amount", err))
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
}

// SubmitPayment handles POST /payment. With an Idempotency-Key header a
// repeated submission replays the first answer instead of paying twice.
func (h *Handlers) SubmitPayment(c *gin.Context) {
	ctx := c.Request.Context()
	key := c.GetHeader(idempotencyHeader)

	if key != "" && h.Idempotency != nil {
		cached, ok, err := h.Idempotency.Get(ctx, key)
		if err != nil {
			h.Logger.Warn("Idempotency lookup failed", logger.String("idempotency_key", key), logger.Err(err))
		}
		if ok {
			h.Logger.Info("Returning cached payment response", logger.String("idempotency_key", key))
			c.Header(replayedHeader, "true")
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			return
		}
	}

	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.PaymentResponse{Success: false, Message: apperrors.MsgInvalidBody})
		return
	}

	result, err := h.Rides.CompletePayment(ctx, req.ToPayment())
	if err != nil {
		h.Logger.Error("Payment processing failed",
			logger.String("ride_id", req.RideID),
			logger.String("user_email", req.UserEmail),
			logger.Err(err),
		)
		c.JSON(http.StatusInternalServerError, dto.PaymentResponse{Success: false, Message: msgPaymentProcessor})
		return
	}

	resp := dto.PaymentResponse{
		Success: result.Success(),
		Message: result.Message,
		Status:  string(result.Outcome),
	}

	if key != "" && h.Idempotency != nil {
		if body, err := json.Marshal(resp); err == nil {
			if err := h.Idempotency.Set(ctx, key, body); err != nil {
				h.Logger.Warn("Failed to cache payment response", logger.String("idempotency_key", key), logger.Err(err))
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// ListPayments handles GET /payment
func (h *Handlers) ListPayments(c *gin.Context) {
	payments, err := h.Payments.ListPayments(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
