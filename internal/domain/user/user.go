package user

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the capability level of a user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid validates the role
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// User is a registered account. Email is the unique key.
type User struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Photo     string             `json:"photo,omitempty" bson:"photo,omitempty"`
	Phone     string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Role      Role               `json:"role" bson:"role"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// IsAdmin reports whether the user holds the admin capability
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Repository defines the interface for user data access
type Repository interface {
	// Create inserts the user and sets its ID. Returns ErrUserExists on a duplicate email.
	Create(ctx context.Context, u *User) error

	// List returns every user in insertion order
	List(ctx context.Context) ([]User, error)

	// GetByEmail returns ErrUserNotFound when absent
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdateRole returns the number of modified records
	UpdateRole(ctx context.Context, id primitive.ObjectID, role Role) (int64, error)
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)
