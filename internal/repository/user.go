package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/businessguru/crm/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrTokenExpired = errors.New("reset token expired or invalid")
)

// CreateUser inserts a new staff account.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	result, err := r.db.Collection(collUsers).InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

// FindUserByEmail fetches a user by email address.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.Collection(collUsers).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindUserByUsername fetches a user by username.
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.Collection(collUsers).FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

// ListTeamEmails returns the email addresses of team member accounts
// (usernames prefixed with "tmis.").
func (r *Repository) ListTeamEmails(ctx context.Context) ([]string, error) {
	query := bson.M{"username": primitive.Regex{Pattern: "^tmis\\.", Options: "i"}}

	cursor, err := r.db.Collection(collUsers).Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list team users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode team users: %w", err)
	}

	emails := make([]string, 0, len(users))
	for _, u := range users {
		if u.Email != "" {
			emails = append(emails, u.Email)
		}
	}
	return emails, nil
}

// SetResetToken stores a password reset token hash with its expiry.
func (r *Repository) SetResetToken(ctx context.Context, email, tokenHash string, expiry time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"reset_token_hash":   tokenHash,
			"reset_token_expiry": expiry,
		},
	}

	result, err := r.db.Collection(collUsers).UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ResetPassword replaces the password of the user holding a live reset
// token and clears the token. Returns ErrTokenExpired when no user holds
// a non-expired token with that hash.
func (r *Repository) ResetPassword(ctx context.Context, tokenHash, passwordHash string) error {
	query := bson.M{
		"reset_token_hash":   tokenHash,
		"reset_token_expiry": bson.M{"$gt": time.Now().UTC()},
	}
	update := bson.M{
		"$set":   bson.M{"password": passwordHash},
		"$unset": bson.M{"reset_token_hash": "", "reset_token_expiry": ""},
	}

	result, err := r.db.Collection(collUsers).UpdateOne(ctx, query, update)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrTokenExpired
	}
	return nil
}
