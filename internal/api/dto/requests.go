package dto

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gorider/gorider-api/internal/domain/car"
	"github.com/gorider/gorider-api/internal/domain/coupon"
	"github.com/gorider/gorider-api/internal/domain/payment"
	"github.com/gorider/gorider-api/internal/domain/ride"
	"github.com/gorider/gorider-api/internal/domain/user"
	"github.com/gorider/gorider-api/pkg/docjson"
	apperrors "github.com/gorider/gorider-api/pkg/errors"
)

// CreateUserRequest represents a signup
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"required,email"`
	Photo string `json:"photo"`
	Phone string `json:"phone"`
}

// ToUser builds a user with the default role
func (r CreateUserRequest) ToUser() *user.User {
	return &user.User{
		Name:      r.Name,
		Email:     r.Email,
		Photo:     r.Photo,
		Phone:     r.Phone,
		Role:      user.RoleUser,
		CreatedAt: time.Now().UTC(),
	}
}

// UpdateRoleRequest represents a role change
type UpdateRoleRequest struct {
	Role user.Role `json:"role" binding:"required"`
}

// CreateCarRequest represents a driver's vehicle submission. Seats and
// price arrive either as JSON numbers or numeric strings.
type CreateCarRequest struct {
	CarName      string          `json:"carName"`
	VehicleType  string          `json:"vehicleType"`
	VehicleImage string          `json:"vehicleImage"`
	DriverName   string          `json:"driverName"`
	DriverEmail  string          `json:"driverEmail"`
	Seats        json.RawMessage `json:"seats"`
	EPrice       json.RawMessage `json:"ePrice"`
}

// ToCar validates the submission. Missing fields are reported before
// non-numeric ones, and a zero seat count or price in any spelling counts
// as missing.
func (r CreateCarRequest) ToCar() (*car.Car, error) {
	if r.CarName == "" || r.VehicleType == "" || r.VehicleImage == "" ||
		r.DriverName == "" || r.DriverEmail == "" || isBlank(r.Seats) || isBlank(r.EPrice) {
		return nil, apperrors.ErrFieldsMissing
	}

	seats, err := ParseNumber(r.Seats)
	if err != nil {
		return nil, apperrors.ErrNotNumeric
	}
	price, err := ParseNumber(r.EPrice)
	if err != nil {
		return nil, apperrors.ErrNotNumeric
	}
	if seats == 0 || price == 0 {
		return nil, apperrors.ErrFieldsMissing
	}
	if seats < 1 || price < 0 {
		return nil, apperrors.ErrNotNumeric
	}

	return &car.Car{
		CarName:      r.CarName,
		VehicleType:  r.VehicleType,
		VehicleImage: r.VehicleImage,
		DriverName:   r.DriverName,
		DriverEmail:  r.DriverEmail,
		Seats:        int(seats),
		EPrice:       price,
		Status:       car.StatusPending,
	}, nil
}

// UpdateCarFields keeps only updatable fields from a partial update body
// and coerces the numeric ones. The identifier is always dropped.
func UpdateCarFields(body map[string]json.RawMessage) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, len(body))
	for key, raw := range body {
		if !car.UpdatableFields[key] {
			continue
		}
		switch key {
		case "seats":
			n, err := ParseNumber(raw)
			if err != nil || n < 1 {
				return nil, apperrors.ErrNotNumeric
			}
			fields[key] = int(n)
		case "ePrice":
			n, err := ParseNumber(raw)
			if err != nil || n <= 0 {
				return nil, apperrors.ErrNotNumeric
			}
			fields[key] = n
		default:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, apperrors.ErrInvalidBody
			}
			fields[key] = s
		}
	}
	if len(fields) == 0 {
		return nil, apperrors.ErrInvalidBody
	}
	return fields, nil
}

// ParseNumber accepts a JSON number or a string holding one
func ParseNumber(raw json.RawMessage) (float64, error) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}

func isBlank(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", `""`, "false":
		return true
	}
	return false
}

// CreatePaymentIntentRequest carries the decimal amount to charge
type CreatePaymentIntentRequest struct {
	Price decimal.Decimal `json:"price"`
}

// PaymentRequest is a completed card payment submitted by the client
type PaymentRequest struct {
	RideID        string     `json:"rideId" binding:"required"`
	UserEmail     string     `json:"userEmail" binding:"required"`
	UserName      string     `json:"userName"`
	Price         float64    `json:"price"`
	CarName       string     `json:"carName"`
	VehicleType   string     `json:"vehicleType"`
	DriverName    string     `json:"driverName"`
	DriverEmail   string     `json:"driverEmail"`
	TransactionID string     `json:"transactionId"`
	Distance      float64    `json:"distance"`
	Date          *time.Time `json:"date"`

	// Extra holds submitted members not modelled above
	Extra map[string]interface{} `json:"-"`
}

func (r *PaymentRequest) UnmarshalJSON(data []byte) error {
	type plain PaymentRequest
	var v plain
	extra, err := docjson.Split(data, &v)
	if err != nil {
		return err
	}
	*r = PaymentRequest(v)
	r.Extra = docjson.Without(extra, "_id")
	return nil
}

func (r PaymentRequest) ToPayment() *payment.Payment {
	p := &payment.Payment{
		RideID:        r.RideID,
		UserEmail:     r.UserEmail,
		UserName:      r.UserName,
		Price:         r.Price,
		CarName:       r.CarName,
		VehicleType:   r.VehicleType,
		DriverName:    r.DriverName,
		DriverEmail:   r.DriverEmail,
		TransactionID: r.TransactionID,
		Distance:      r.Distance,
		Extra:         r.Extra,
	}
	if r.Date != nil {
		p.Date = r.Date.UTC()
	}
	return p
}

// PaymentResponse is the tri-state answer to a payment submission
type PaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

// PendingRideRequest represents a rider's ride request
type PendingRideRequest struct {
	RideID         string      `json:"rideId"`
	UserName       string      `json:"userName"`
	UserEmail      string      `json:"userEmail"`
	CarID          string      `json:"carId"`
	CarName        string      `json:"carName"`
	VehicleType    string      `json:"vehicleType"`
	DriverName     string      `json:"driverName"`
	DriverEmail    string      `json:"driverEmail"`
	PickupLocation string      `json:"pickupLocation"`
	DropLocation   string      `json:"dropLocation"`
	Distance       float64     `json:"distance"`
	Status         ride.Status `json:"status"`
	TotalPrice     float64     `json:"totalPrice"`
	IsCouponUsed   bool        `json:"isCouponUsed"`

	// Extra holds submitted members not modelled above
	Extra map[string]interface{} `json:"-"`
}

func (r *PendingRideRequest) UnmarshalJSON(data []byte) error {
	type plain PendingRideRequest
	var v plain
	extra, err := docjson.Split(data, &v)
	if err != nil {
		return err
	}
	*r = PendingRideRequest(v)
	r.Extra = docjson.Without(extra, "_id", "createdAt")
	return nil
}

func (r PendingRideRequest) ToPendingRide() *ride.PendingRide {
	return &ride.PendingRide{
		RideID:         r.RideID,
		UserName:       r.UserName,
		UserEmail:      r.UserEmail,
		CarID:          r.CarID,
		CarName:        r.CarName,
		VehicleType:    r.VehicleType,
		DriverName:     r.DriverName,
		DriverEmail:    r.DriverEmail,
		PickupLocation: r.PickupLocation,
		DropLocation:   r.DropLocation,
		Distance:       r.Distance,
		Status:         r.Status,
		TotalPrice:     r.TotalPrice,
		IsCouponUsed:   r.IsCouponUsed,
		Extra:          r.Extra,
	}
}

// UpdatePendingRideRequest sets status, price and coupon usage together.
// Members left out of the body are not changed.
type UpdatePendingRideRequest struct {
	Status       ride.Status `json:"status"`
	TotalPrice   *float64    `json:"totalPrice"`
	IsCouponUsed *bool       `json:"isCouponUsed"`
}

func (r UpdatePendingRideRequest) ToStatusUpdate() ride.StatusUpdate {
	return ride.StatusUpdate{Status: r.Status, TotalPrice: r.TotalPrice, IsCouponUsed: r.IsCouponUsed}
}

// CreateCouponRequest represents a new promotion
type CreateCouponRequest struct {
	Name     string  `json:"name" binding:"required"`
	Code     string  `json:"code" binding:"required"`
	Discount float64 `json:"discount" binding:"gte=0,lte=100"`
}

func (r CreateCouponRequest) ToCoupon() *coupon.Coupon {
	return &coupon.Coupon{Name: r.Name, Code: r.Code, Discount: r.Discount}
}

// TokenRequest asks for an access token
type TokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// FareEstimateRequest asks for a price quote
type FareEstimateRequest struct {
	CarID      string  `json:"carId" binding:"required"`
	Distance   float64 `json:"distance" binding:"required,gt=0"`
	CouponCode string  `json:"couponCode"`
}

// SuccessResponse is the {success} body of updates and deletes
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}
