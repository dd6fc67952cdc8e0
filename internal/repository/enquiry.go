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

// Common errors for enquiry repository operations.
var (
	ErrEnquiryNotFound  = errors.New("enquiry not found")
	ErrDuplicateEnquiry = errors.New("enquiry already exists for this message")
	ErrInvalidID        = errors.New("invalid object id")
)

// EnquiryFilter defines filters for listing enquiries.
type EnquiryFilter struct {
	Staff  string
	Source string
	Limit  int64
}

// EnquiryUpdate holds the mutable enquiry fields. Nil pointers are
// left untouched.
type EnquiryUpdate struct {
	WatiName              *string
	MobileNumber          *string
	SecondaryMobileNumber *string
	GST                   *string
	GSTStatus             *string
	BusinessType          *string
	BusinessNature        *string
	Staff                 *string
	Comments              *string
	AdditionalComments    *string
}

func (u *EnquiryUpdate) setDoc() bson.M {
	set := bson.M{"updated_at": time.Now().UTC()}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	put("wati_name", u.WatiName)
	put("mobile_number", u.MobileNumber)
	put("secondary_mobile_number", u.SecondaryMobileNumber)
	put("gst", u.GST)
	put("gst_status", u.GSTStatus)
	put("business_type", u.BusinessType)
	put("business_nature", u.BusinessNature)
	put("staff", u.Staff)
	put("comments", u.Comments)
	put("additional_comments", u.AdditionalComments)
	return set
}

// CreateEnquiry inserts a new enquiry document.
// Returns ErrDuplicateEnquiry when the unique webhook message index rejects it.
func (r *Repository) CreateEnquiry(ctx context.Context, enquiry *model.Enquiry) error {
	now := time.Now().UTC()
	if enquiry.Date.IsZero() {
		enquiry.Date = now
	}
	if enquiry.CreatedAt.IsZero() {
		enquiry.CreatedAt = now
	}
	enquiry.UpdatedAt = now

	result, err := r.db.Collection(collEnquiries).InsertOne(ctx, enquiry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEnquiry
		}
		return fmt.Errorf("insert enquiry: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		enquiry.ID = oid
	}
	return nil
}

// GetEnquiry fetches a single enquiry by hex ID.
func (r *Repository) GetEnquiry(ctx context.Context, id string) (*model.Enquiry, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var enquiry model.Enquiry
	err = r.db.Collection(collEnquiries).FindOne(ctx, bson.M{"_id": oid}).Decode(&enquiry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrEnquiryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find enquiry: %w", err)
	}
	return &enquiry, nil
}

// ListEnquiries returns enquiries sorted by date, newest first.
func (r *Repository) ListEnquiries(ctx context.Context, filter EnquiryFilter) ([]*model.Enquiry, error) {
	query := bson.M{}
	if filter.Staff != "" {
		query["staff"] = filter.Staff
	}
	if filter.Source != "" {
		query["source"] = filter.Source
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.db.Collection(collEnquiries).Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	defer cursor.Close(ctx)

	enquiries := make([]*model.Enquiry, 0)
	if err := cursor.All(ctx, &enquiries); err != nil {
		return nil, fmt.Errorf("decode enquiries: %w", err)
	}
	return enquiries, nil
}

// UpdateEnquiry applies the update and returns the new document.
func (r *Repository) UpdateEnquiry(ctx context.Context, id string, update EnquiryUpdate) (*model.Enquiry, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var enquiry model.Enquiry
	err = r.db.Collection(collEnquiries).
		FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": update.setDoc()}, opts).
		Decode(&enquiry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrEnquiryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update enquiry: %w", err)
	}
	return &enquiry, nil
}

// MarkEnquiryMessageSent records that an outbound WhatsApp message went out
// for this enquiry.
func (r *Repository) MarkEnquiryMessageSent(ctx context.Context, id string, messageID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	set := bson.M{
		"whatsapp_sent": true,
		"updated_at":    time.Now().UTC(),
	}
	if messageID != "" {
		set["whatsapp_sent_message_id"] = messageID
	}

	result, err := r.db.Collection(collEnquiries).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("mark enquiry sent: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrEnquiryNotFound
	}
	return nil
}

// DeleteEnquiry removes an enquiry by hex ID.
func (r *Repository) DeleteEnquiry(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	result, err := r.db.Collection(collEnquiries).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete enquiry: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrEnquiryNotFound
	}
	return nil
}

// FindEnquiryByMessageID looks up an enquiry by the webhook dedup key.
func (r *Repository) FindEnquiryByMessageID(ctx context.Context, mobileNumber, messageID string) (*model.Enquiry, error) {
	query := bson.M{
		"mobile_number":       mobileNumber,
		"whatsapp_message_id": messageID,
	}

	var enquiry model.Enquiry
	err := r.db.Collection(collEnquiries).FindOne(ctx, query).Decode(&enquiry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrEnquiryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find enquiry by message id: %w", err)
	}
	return &enquiry, nil
}

// EnquiryStats aggregates counts for the dashboard.
func (r *Repository) EnquiryStats(ctx context.Context) (*model.EnquiryStats, error) {
	coll := r.db.Collection(collEnquiries)

	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count enquiries: %w", err)
	}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	today, err := coll.CountDocuments(ctx, bson.M{"date": bson.M{"$gte": startOfDay}})
	if err != nil {
		return nil, fmt.Errorf("count today's enquiries: %w", err)
	}

	byStaff, err := r.countEnquiriesBy(ctx, "$staff")
	if err != nil {
		return nil, err
	}
	bySource, err := r.countEnquiriesBy(ctx, "$source")
	if err != nil {
		return nil, err
	}
	byComments, err := r.topEnquiryComments(ctx, topCommentsLimit)
	if err != nil {
		return nil, err
	}

	return &model.EnquiryStats{
		Total:      total,
		Today:      today,
		ByStaff:    byStaff,
		BySource:   bySource,
		ByComments: byComments,
	}, nil
}

// topCommentsLimit caps the by_comments grouping to the most frequent values.
const topCommentsLimit = 10

func (r *Repository) topEnquiryComments(ctx context.Context, limit int) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "comments", Value: bson.D{{Key: "$nin", Value: bson.A{"", nil}}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$comments"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.db.Collection(collEnquiries).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate top comments: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode top comments: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

func (r *Repository) countEnquiriesBy(ctx context.Context, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.db.Collection(collEnquiries).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate enquiries by %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode aggregation: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		key := row.ID
		if key == "" {
			key = "unassigned"
		}
		counts[key] = row.Count
	}
	return counts, nil
}
