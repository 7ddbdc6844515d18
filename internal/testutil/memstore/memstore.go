// Package memstore holds in-memory repositories with the same counting
// semantics as the document store: updates report modified records and
// deletes report removed records.
package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gorider/gorider-api/internal/domain/car"
	"github.com/gorider/gorider-api/internal/domain/coupon"
	"github.com/gorider/gorider-api/internal/domain/payment"
	"github.com/gorider/gorider-api/internal/domain/ride"
	"github.com/gorider/gorider-api/internal/domain/user"
)

// Users implements user.Repository
type Users struct {
	mu    sync.Mutex
	items []user.User
	Err   error
}

func (s *Users) Create(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.items {
		if existing.Email == u.Email {
			return user.ErrUserExists
		}
	}
	u.ID = primitive.NewObjectID()
	s.items = append(s.items, *u)
	return nil
}

func (s *Users) List(ctx context.Context) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]user.User{}, s.items...), nil
}

func (s *Users) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.items {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (s *Users) UpdateRole(ctx context.Context, id primitive.ObjectID, role user.Role) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	for i := range s.items {
		if s.items[i].ID == id {
			if s.items[i].Role == role {
				return 0, nil
			}
			s.items[i].Role = role
			return 1, nil
		}
	}
	return 0, nil
}

// Count returns the number of stored users
func (s *Users) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Cars implements car.Repository
type Cars struct {
	mu    sync.Mutex
	items []car.Car
	Err   error
}

func (s *Cars) Create(ctx context.Context, c *car.Car) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	c.ID = primitive.NewObjectID()
	s.items = append(s.items, *c)
	return nil
}

func (s *Cars) List(ctx context.Context) ([]car.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]car.Car{}, s.items...), nil
}

func (s *Cars) GetByID(ctx context.Context, id primitive.ObjectID) (*car.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, c := range s.items {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, car.ErrCarNotFound
}

// Update round-trips the record through JSON to apply the named fields,
// the same shallow replace the store performs with $set.
func (s *Cars) Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		before, _ := json.Marshal(s.items[i])
		var doc map[string]interface{}
		if err := json.Unmarshal(before, &doc); err != nil {
			return 0, err
		}
		for k, v := range fields {
			if k == "_id" {
				continue
			}
			doc[k] = v
		}
		after, _ := json.Marshal(doc)
		var updated car.Car
		if err := json.Unmarshal(after, &updated); err != nil {
			return 0, err
		}
		updated.ID = id
		s.items[i] = updated
		check, _ := json.Marshal(updated)
		if string(check) == string(before) {
			return 0, nil
		}
		return 1, nil
	}
	return 0, nil
}

func (s *Cars) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// Rides implements ride.Repository
type Rides struct {
	mu        sync.Mutex
	items     []ride.PendingRide
	Err       error
	DeleteErr error
}

func (s *Rides) Create(ctx context.Context, r *ride.PendingRide) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	r.ID = primitive.NewObjectID()
	s.items = append(s.items, *r)
	return nil
}

func (s *Rides) List(ctx context.Context) ([]ride.PendingRide, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]ride.PendingRide{}, s.items...), nil
}

func (s *Rides) UpdateStatus(ctx context.Context, id primitive.ObjectID, u ride.StatusUpdate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	for i := range s.items {
		r := &s.items[i]
		if r.ID != id {
			continue
		}
		before := *r
		if u.Status != "" {
			r.Status = u.Status
		}
		if u.TotalPrice != nil {
			r.TotalPrice = *u.TotalPrice
		}
		if u.IsCouponUsed != nil {
			r.IsCouponUsed = *u.IsCouponUsed
		}
		if r.Status == before.Status && r.TotalPrice == before.TotalPrice && r.IsCouponUsed == before.IsCouponUsed {
			return 0, nil
		}
		return 1, nil
	}
	return 0, nil
}

func (s *Rides) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return s.deleteWhere(func(r ride.PendingRide) bool { return r.ID == id })
}

func (s *Rides) DeleteByRideID(ctx context.Context, rideID string) (int64, error) {
	return s.deleteWhere(func(r ride.PendingRide) bool { return r.RideID == rideID })
}

func (s *Rides) deleteWhere(match func(ride.PendingRide) bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return 0, s.DeleteErr
	}
	if s.Err != nil {
		return 0, s.Err
	}
	for i := range s.items {
		if match(s.items[i]) {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// FindByRideID is a test helper
func (s *Rides) FindByRideID(rideID string) (ride.PendingRide, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.items {
		if r.RideID == rideID {
			return r, true
		}
	}
	return ride.PendingRide{}, false
}

// Payments implements payment.Repository
type Payments struct {
	mu    sync.Mutex
	items []payment.Payment
	Err   error
	// Unconfirmed simulates a write the store did not acknowledge with an id
	Unconfirmed bool
}

func (s *Payments) Create(ctx context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.Unconfirmed {
		return payment.ErrPaymentNotRecorded
	}
	p.ID = primitive.NewObjectID()
	s.items = append(s.items, *p)
	return nil
}

func (s *Payments) List(ctx context.Context) ([]payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]payment.Payment{}, s.items...), nil
}

// Coupons implements coupon.Repository
type Coupons struct {
	mu    sync.Mutex
	items []coupon.Coupon
	Err   error
}

func (s *Coupons) Create(ctx context.Context, c *coupon.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.items {
		if existing.Name == c.Name {
			return coupon.ErrCouponExists
		}
	}
	c.ID = primitive.NewObjectID()
	s.items = append(s.items, *c)
	return nil
}

func (s *Coupons) List(ctx context.Context) ([]coupon.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]coupon.Coupon{}, s.items...), nil
}

func (s *Coupons) GetByName(ctx context.Context, name string) (*coupon.Coupon, error) {
	return s.find(func(c coupon.Coupon) bool { return c.Name == name })
}

func (s *Coupons) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	return s.find(func(c coupon.Coupon) bool { return c.Code == code })
}

func (s *Coupons) find(match func(coupon.Coupon) bool) (*coupon.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, c := range s.items {
		if match(c) {
			found := c
			return &found, nil
		}
	}
	return nil, coupon.ErrCouponNotFound
}

func (s *Coupons) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// ErrUnavailable is a convenient injected failure
var ErrUnavailable = errors.New("memstore: unavailable")
