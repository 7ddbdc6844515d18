package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gorider/gorider-api/internal/domain/user"
)

// UserRepository implements user.Repository
type UserRepository struct {
	col *Collection[user.User]
}

// NewUserRepository creates a user repository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: NewCollection[user.User](db, UsersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	id, err := r.col.Insert(ctx, u)
	if errors.Is(err, ErrDuplicate) {
		return user.ErrUserExists
	}
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	return r.col.FindAll(ctx)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u, err := r.col.FindOne(ctx, bson.M{"email": email})
	if errors.Is(err, ErrNotFound) {
		return nil, user.ErrUserNotFound
	}
	return u, err
}

func (r *UserRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, role user.Role) (int64, error) {
	return r.col.UpdateFields(ctx, id, bson.M{"role": role})
}
