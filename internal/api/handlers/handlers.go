package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gorider/gorider-api/internal/api/dto"
	"github.com/gorider/gorider-api/internal/api/middleware"
	"github.com/gorider/gorider-api/internal/domain/car"
	"github.com/gorider/gorider-api/internal/domain/coupon"
	"github.com/gorider/gorider-api/internal/domain/payment"
	"github.com/gorider/gorider-api/internal/domain/ride"
	"github.com/gorider/gorider-api/internal/domain/user"
	"github.com/gorider/gorider-api/internal/service/lifecycle"
	"github.com/gorider/gorider-api/internal/service/pricing"
	"github.com/gorider/gorider-api/pkg/auth"
	apperrors "github.com/gorider/gorider-api/pkg/errors"
	"github.com/gorider/gorider-api/pkg/logger"
	"github.com/gorider/gorider-api/pkg/websocket"
)

// Rides is the ride lifecycle seen by handlers
type Rides interface {
	RequestRide(ctx context.Context, r *ride.PendingRide) error
	ListRides(ctx context.Context) ([]ride.PendingRide, error)
	UpdateRide(ctx context.Context, id primitive.ObjectID, u ride.StatusUpdate) (bool, error)
	CancelRide(ctx context.Context, id primitive.ObjectID) (bool, error)
	CompletePayment(ctx context.Context, p *payment.Payment) (*lifecycle.Result, error)
}

// Payments creates charge intents and lists recorded payments
type Payments interface {
	CreateChargeIntent(ctx context.Context, amount decimal.Decimal) (string, error)
	ListPayments(ctx context.Context) ([]payment.Payment, error)
}

// FareEstimator quotes a ride
type FareEstimator interface {
	Estimate(ctx context.Context, carID primitive.ObjectID, distance float64, couponCode string) (*pricing.Fare, error)
}

// Broadcaster queues a message to every user
type Broadcaster interface {
	BroadcastToAllUsers(subject, body string)
}

// ResponseCache replays responses stored under an idempotency key
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte) error
}

// LogReader lists recent entries of a capped log
type LogReader interface {
	Recent(ctx context.Context, n int64) ([]json.RawMessage, error)
}

// EventRecorder records APM custom events
type EventRecorder interface {
	RecordCustomEvent(eventType string, params map[string]interface{})
}

// Deps holds everything the handlers need. Idempotency, Reconcile,
// NotifyFailures, Hub and APM may be nil.
type Deps struct {
	Users          user.Repository
	Cars           car.Repository
	Coupons        coupon.Repository
	Rides          Rides
	Payments       Payments
	Pricing        FareEstimator
	Notifier       Broadcaster
	Tokens         *auth.TokenService
	TokenIssuerKey string
	Idempotency    ResponseCache
	Reconcile      LogReader
	NotifyFailures LogReader
	Hub            *websocket.Hub
	APM            EventRecorder
	Logger         *logger.Logger
}

// Handlers holds all handler dependencies
type Handlers struct {
	Deps
}

// NewHandlers creates a new Handlers instance
func NewHandlers(d Deps) *Handlers {
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	return &Handlers{Deps: d}
}

// Root handles GET /
func (h *Handlers) Root(c *gin.Context) {
	c.String(http.StatusOK, "Server Running")
}

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// respondError writes {error: message} with the mapped status. Anything
// that is not an AppError is logged and answered with a generic 500.
func (h *Handlers) respondError(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.Logger.Error("Request failed",
			logger.String("method", c.Request.Method),
			logger.String("path", c.FullPath()),
			logger.String("request_id", c.GetString(middleware.RequestIDHeader)),
			logger.Err(err),
		)
	}
	c.JSON(appErr.Status, dto.ErrorResponse{Error: appErr.Message})
}

// objectID parses the :id path parameter, answering 400 when malformed
func (h *Handlers) objectID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.ErrInvalidID)
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *Handlers) record(eventType string, params map[string]interface{}) {
	if h.APM == nil {
		return
	}
	h.APM.RecordCustomEvent(eventType, params)
}
