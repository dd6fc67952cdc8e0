package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/businessguru/crm/internal/model"
)

// ErrClientNotFound indicates no client matched the query.
var ErrClientNotFound = errors.New("client not found")

// ClientFilter defines filters for listing clients.
type ClientFilter struct {
	Status model.EnquiryStatus
	Staff  string
	Limit  int64
}

// ClientUpdate holds the mutable client fields. Nil pointers are left
// untouched.
type ClientUpdate struct {
	UserName                *string
	MobileNumber            *string
	Email                   *string
	BusinessName            *string
	District                *string
	BusinessPAN             *string
	IECode                  *string
	NewCurrentAccount       *string
	Website                 *string
	Gateway                 *string
	TransactionDoneByClient *string
	RequiredLoanAmount      *string
	BankAccount             *string
	StaffID                 *string
	BankType                *string
	GSTStatus               *string
	BusinessNature          *string
	Feedback                *string
}

func (u *ClientUpdate) setDoc() bson.M {
	set := bson.M{"updated_at": time.Now().UTC()}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	put("user_name", u.UserName)
	put("mobile_number", u.MobileNumber)
	put("email", u.Email)
	put("business_name", u.BusinessName)
	put("district", u.District)
	put("business_pan", u.BusinessPAN)
	put("ie_code", u.IECode)
	put("new_current_account", u.NewCurrentAccount)
	put("website", u.Website)
	put("gateway", u.Gateway)
	put("transaction_done_by_client", u.TransactionDoneByClient)
	put("required_loan_amount", u.RequiredLoanAmount)
	put("bank_account", u.BankAccount)
	put("staff_id", u.StaffID)
	put("bank_type", u.BankType)
	put("gst_status", u.GSTStatus)
	put("business_nature", u.BusinessNature)
	put("feedback", u.Feedback)
	return set
}

// ChangedFields lists the bson field names a ClientUpdate would modify.
// Used to build notification messages.
func (u *ClientUpdate) ChangedFields() []string {
	set := u.setDoc()
	delete(set, "updated_at")
	fields := make([]string, 0, len(set))
	for k := range set {
		fields = append(fields, k)
	}
	return fields
}

// CreateClient inserts a new client document.
func (r *Repository) CreateClient(ctx context.Context, client *model.Client) error {
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now
	if client.Status == "" {
		client.Status = model.EnquiryStatusPending
	}
	if client.Documents == nil {
		client.Documents = make(map[string]string)
	}

	result, err := r.db.Collection(collClients).InsertOne(ctx, client)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		client.ID = oid
	}
	return nil
}

// GetClient fetches a single client by hex ID.
func (r *Repository) GetClient(ctx context.Context, id string) (*model.Client, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var client model.Client
	err = r.db.Collection(collClients).FindOne(ctx, bson.M{"_id": oid}).Decode(&client)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	return &client, nil
}

// ListClients returns clients sorted by creation time, newest first.
func (r *Repository) ListClients(ctx context.Context, filter ClientFilter) ([]*model.Client, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Staff != "" {
		query["staff_id"] = filter.Staff
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.db.Collection(collClients).Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer cursor.Close(ctx)

	clients := make([]*model.Client, 0)
	if err := cursor.All(ctx, &clients); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}
	return clients, nil
}

// UpdateClient applies the update and returns the new document.
func (r *Repository) UpdateClient(ctx context.Context, id string, update ClientUpdate) (*model.Client, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var client model.Client
	err = r.db.Collection(collClients).
		FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": update.setDoc()}, opts).
		Decode(&client)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return &client, nil
}

// UpdateClientStatus sets the follow-up status and optional feedback.
func (r *Repository) UpdateClientStatus(ctx context.Context, id string, status model.EnquiryStatus, feedback string) (*model.Client, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if feedback != "" {
		set["feedback"] = feedback
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var client model.Client
	err = r.db.Collection(collClients).
		FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).
		Decode(&client)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update client status: %w", err)
	}
	return &client, nil
}

// DeleteClient removes a client by hex ID.
func (r *Repository) DeleteClient(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	result, err := r.db.Collection(collClients).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrClientNotFound
	}
	return nil
}
