package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorider/gorider-api/internal/domain/car"
	"github.com/gorider/gorider-api/internal/domain/ride"
	apperrors "github.com/gorider/gorider-api/pkg/errors"
)

func validCar() CreateCarRequest {
	return CreateCarRequest{
		CarName:      "Axio",
		VehicleType:  "sedan",
		VehicleImage: "https://img/axio.png",
		DriverName:   "Rahim",
		DriverEmail:  "rahim@x.com",
		Seats:        json.RawMessage(`4`),
		EPrice:       json.RawMessage(`"2.5"`),
	}
}

func TestCreateCarRequest_ToCar(t *testing.T) {
	c, err := validCar().ToCar()
	require.NoError(t, err)
	assert.Equal(t, 4, c.Seats)
	assert.Equal(t, 2.5, c.EPrice)
	assert.Equal(t, car.StatusPending, c.Status)
}

func TestCreateCarRequest_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CreateCarRequest)
		want   error
	}{
		{name: "missing name", mutate: func(r *CreateCarRequest) { r.CarName = "" }, want: apperrors.ErrFieldsMissing},
		{name: "missing seats", mutate: func(r *CreateCarRequest) { r.Seats = nil }, want: apperrors.ErrFieldsMissing},
		{name: "null price", mutate: func(r *CreateCarRequest) { r.EPrice = json.RawMessage(`null`) }, want: apperrors.ErrFieldsMissing},
		{name: "text seats", mutate: func(r *CreateCarRequest) { r.Seats = json.RawMessage(`"four"`) }, want: apperrors.ErrNotNumeric},
		{name: "NaN price", mutate: func(r *CreateCarRequest) { r.EPrice = json.RawMessage(`"NaN"`) }, want: apperrors.ErrNotNumeric},
		{name: "negative price", mutate: func(r *CreateCarRequest) { r.EPrice = json.RawMessage(`-3`) }, want: apperrors.ErrNotNumeric},
		{name: "object seats", mutate: func(r *CreateCarRequest) { r.Seats = json.RawMessage(`{"n":4}`) }, want: apperrors.ErrNotNumeric},
		{name: "zero seats", mutate: func(r *CreateCarRequest) { r.Seats = json.RawMessage(`0`) }, want: apperrors.ErrFieldsMissing},
		{name: "zero seats decimal", mutate: func(r *CreateCarRequest) { r.Seats = json.RawMessage(`0.0`) }, want: apperrors.ErrFieldsMissing},
		{name: "zero price text", mutate: func(r *CreateCarRequest) { r.EPrice = json.RawMessage(`"0"`) }, want: apperrors.ErrFieldsMissing},
		{name: "fractional seats", mutate: func(r *CreateCarRequest) { r.Seats = json.RawMessage(`0.5`) }, want: apperrors.ErrNotNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCar()
			tt.mutate(&req)
			_, err := req.ToCar()
			assert.Equal(t, tt.want, err)
		})
	}
}

func TestUpdateCarFields(t *testing.T) {
	body := map[string]json.RawMessage{
		"_id":    json.RawMessage(`"65f0c0ffee0000000000beef"`),
		"status": json.RawMessage(`"approved"`),
		"seats":  json.RawMessage(`"6"`),
		"extra":  json.RawMessage(`true`),
	}

	fields, err := UpdateCarFields(body)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"status": "approved", "seats": 6}, fields)
}

func TestUpdateCarFields_Invalid(t *testing.T) {
	_, err := UpdateCarFields(map[string]json.RawMessage{"_id": json.RawMessage(`"x"`)})
	assert.Equal(t, apperrors.ErrInvalidBody, err)

	_, err = UpdateCarFields(map[string]json.RawMessage{"ePrice": json.RawMessage(`"cheap"`)})
	assert.Equal(t, apperrors.ErrNotNumeric, err)
}

func TestPendingRideRequest_KeepsUnmodelledMembers(t *testing.T) {
	var req PendingRideRequest
	body := `{"rideId":"R3","seats":2,"rideDate":"2024-01-01","_id":"x","createdAt":"2020-01-01T00:00:00Z"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	r := req.ToPendingRide()
	assert.Equal(t, "R3", r.RideID)
	assert.Equal(t, map[string]interface{}{"seats": 2.0, "rideDate": "2024-01-01"}, r.Extra)
}

func TestPaymentRequest_KeepsUnmodelledMembers(t *testing.T) {
	var req PaymentRequest
	require.NoError(t, json.Unmarshal([]byte(`{"rideId":"R1","userEmail":"a@x.com","paymentMethod":"card","_id":"x"}`), &req))

	p := req.ToPayment()
	assert.Equal(t, "R1", p.RideID)
	assert.Equal(t, map[string]interface{}{"paymentMethod": "card"}, p.Extra)
}

func TestUpdatePendingRideRequest_OnlyNamedMembers(t *testing.T) {
	var req UpdatePendingRideRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":"accepted"}`), &req))

	u := req.ToStatusUpdate()
	assert.Nil(t, u.TotalPrice)
	assert.Nil(t, u.IsCouponUsed)
	assert.Equal(t, map[string]interface{}{"status": ride.StatusAccepted}, u.Fields())

	require.NoError(t, json.Unmarshal([]byte(`{"totalPrice":0,"isCouponUsed":false}`), &req))
	u = req.ToStatusUpdate()
	require.NotNil(t, u.TotalPrice)
	require.NotNil(t, u.IsCouponUsed)
	assert.Equal(t, 0.0, *u.TotalPrice)
	assert.False(t, *u.IsCouponUsed)
}
