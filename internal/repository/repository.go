// Package repository provides database access layer.
package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	collEnquiries = "enquiries"
	collClients   = "clients"
	collUsers     = "users"
)

// Repository provides database access methods.
type Repository struct {
	client *mongo.Client
	db     *mongo.Database
}

// New creates a new Repository connected to the given database.
func New(ctx context.Context, uri, database string) (*Repository, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(10).
		SetMinPoolSize(2)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	r := &Repository{
		client: client,
		db:     client.Database(database),
	}

	if err := r.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return r, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from the database.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// ensureIndexes creates the indexes the application relies on.
// The partial unique index on (mobile_number, whatsapp_message_id) backs
// webhook deduplication: a retried gateway delivery can never produce a
// second enquiry document.
func (r *Repository) ensureIndexes(ctx context.Context) error {
	enquiryIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "staff", Value: 1}}},
		{Keys: bson.D{{Key: "mobile_number", Value: 1}}},
		{
			Keys: bson.D{
				{Key: "mobile_number", Value: 1},
				{Key: "whatsapp_message_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{
					{Key: "whatsapp_message_id", Value: bson.D{
						{Key: "$exists", Value: true},
						{Key: "$gt", Value: ""},
					}},
				}),
		},
	}
	if _, err := r.db.Collection(collEnquiries).Indexes().CreateMany(ctx, enquiryIndexes); err != nil {
		return fmt.Errorf("enquiry indexes: %w", err)
	}

	clientIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "mobile_number", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := r.db.Collection(collClients).Indexes().CreateMany(ctx, clientIndexes); err != nil {
		return fmt.Errorf("client indexes: %w", err)
	}

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := r.db.Collection(collUsers).Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}

	return nil
}
