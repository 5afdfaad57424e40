package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Johaan1835/TestMatrix/internal/models"
	"github.com/Johaan1835/TestMatrix/internal/service"
)

// The first account ever seeded is the bootstrap admin; it stays out of the
// user management list so it cannot be edited or deleted over the API.
const bootstrapAdminID = 1

// UserMongo implements service.UserRepository on the "users" collection.
type UserMongo struct {
	db  *mongo.Database
	col *mongo.Collection
}

// NewUserRepository wires the collection.
func NewUserRepository(db *mongo.Database) *UserMongo {
	return &UserMongo{db: db, col: db.Collection("users")}
}

// EnsureAdmin seeds the bootstrap admin on an empty deployment. It is a
// no-op when any account already exists.
func (r *UserMongo) EnsureAdmin(ctx context.Context, username, email, passwordHash string) error {
	count, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = r.col.InsertOne(ctx, models.User{
		EmpID:    bootstrapAdminID,
		Username: username,
		Email:    email,
		Role:     models.RoleAdmin,
		Password: passwordHash,
	})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("seeding bootstrap admin: %w", err)
	}
	return nil
}

// FindByUsername fetches one account.
func (r *UserMongo) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, fmt.Errorf("user %q: %w", username, service.ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("finding user: %w", err)
	}
	return user, nil
}

// Insert stores a new account with the next employee id.
func (r *UserMongo) Insert(ctx context.Context, user models.User) (models.User, error) {
	empID, err := nextSequence(ctx, r.db, "user_emp_id")
	if err != nil {
		return models.User{}, err
	}
	user.EmpID = empID

	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, fmt.Errorf("user %q %w", user.Username, service.ErrDuplicate)
		}
		return models.User{}, fmt.Errorf("inserting user: %w", err)
	}
	return user, nil
}

// List returns every account except the bootstrap admin.
func (r *UserMongo) List(ctx context.Context) ([]models.User, error) {
	cur, err := r.col.Find(ctx, bson.M{"emp_id": bson.M{"$ne": bootstrapAdminID}})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}
	return users, nil
}

// ListByRole returns every account holding one role.
func (r *UserMongo) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	cur, err := r.col.Find(ctx, bson.M{"role": role})
	if err != nil {
		return nil, fmt.Errorf("listing %s users: %w", role, err)
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}
	return users, nil
}

// Update rewrites the editable fields of one account.
func (r *UserMongo) Update(ctx context.Context, empID int, username, email, role string) (models.User, error) {
	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"emp_id": empID},
		bson.M{"$set": bson.M{"username": username, "email": email, "role": role}},
		afterUpdate(),
	)

	var user models.User
	if err := res.Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, fmt.Errorf("user %d: %w", empID, service.ErrNotFound)
		}
		return models.User{}, fmt.Errorf("updating user: %w", err)
	}
	return user, nil
}

// Delete removes one account.
func (r *UserMongo) Delete(ctx context.Context, empID int) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"emp_id": empID})
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("user %d: %w", empID, service.ErrNotFound)
	}
	return nil
}

// UpdatePassword replaces the stored hash.
func (r *UserMongo) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"password": passwordHash}},
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %q: %w", username, service.ErrNotFound)
	}
	return nil
}
