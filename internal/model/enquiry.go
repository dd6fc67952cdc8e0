// Package model defines domain entities for the application.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnquiryStatus represents the follow-up state of an enquiry.
type EnquiryStatus string

const (
	EnquiryStatusPending       EnquiryStatus = "pending"
	EnquiryStatusInterested    EnquiryStatus = "interested"
	EnquiryStatusNotInterested EnquiryStatus = "not_interested"
	EnquiryStatusHold          EnquiryStatus = "hold"
)

// IsValid checks if the status is one of the known states.
func (s EnquiryStatus) IsValid() bool {
	switch s {
	case EnquiryStatusPending, EnquiryStatusInterested, EnquiryStatusNotInterested, EnquiryStatusHold:
		return true
	}
	return false
}

// Enquiry sources.
const (
	SourceWhatsAppWebhook = "whatsapp_webhook"
	SourcePublicForm      = "public_form"
	SourceManual          = "manual"
)

// WebhookStaffName is the staff value assigned to enquiries created by the
// inbound WhatsApp pipeline.
const WebhookStaffName = "WhatsApp Bot"

// Enquiry represents a loan enquiry record.
// WhatsApp* fields are only populated for enquiries created by the
// inbound webhook pipeline.
type Enquiry struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WatiName              string             `bson:"wati_name" json:"wati_name"`
	UserName              string             `bson:"user_name" json:"user_name"`
	MobileNumber          string             `bson:"mobile_number" json:"mobile_number"`
	SecondaryMobileNumber string             `bson:"secondary_mobile_number,omitempty" json:"secondary_mobile_number,omitempty"`
	GST                   string             `bson:"gst" json:"gst"`
	GSTStatus             string             `bson:"gst_status" json:"gst_status"`
	BusinessType          string             `bson:"business_type" json:"business_type"`
	BusinessNature        string             `bson:"business_nature" json:"business_nature"`
	Staff                 string             `bson:"staff" json:"staff"`
	Comments              string             `bson:"comments" json:"comments"`
	AdditionalComments    string             `bson:"additional_comments" json:"additional_comments"`
	Source                string             `bson:"source,omitempty" json:"source,omitempty"`

	WhatsAppStatus      string `bson:"whatsapp_status,omitempty" json:"whatsapp_status,omitempty"`
	WhatsAppMessageID   string `bson:"whatsapp_message_id,omitempty" json:"whatsapp_message_id,omitempty"`
	WhatsAppChatID      string `bson:"whatsapp_chat_id,omitempty" json:"whatsapp_chat_id,omitempty"`
	WhatsAppSenderName  string `bson:"whatsapp_sender_name,omitempty" json:"whatsapp_sender_name,omitempty"`
	WhatsAppMessageText string `bson:"whatsapp_message_text,omitempty" json:"whatsapp_message_text,omitempty"`
	WhatsAppSent        bool   `bson:"whatsapp_sent" json:"whatsapp_sent"`

	Date      time.Time `bson:"date" json:"date"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DisplayName returns the customer-facing name for outbound messages.
// Falls back to a phone-based placeholder when the gateway did not
// provide a sender name.
func (e *Enquiry) DisplayName() string {
	if e.WatiName != "" {
		return e.WatiName
	}
	return "WhatsApp User " + e.MobileNumber
}

// FromWebhook reports whether the enquiry was created by the inbound
// WhatsApp pipeline.
func (e *Enquiry) FromWebhook() bool {
	return e.Source == SourceWhatsAppWebhook
}

// EnquiryStats summarizes enquiry counts for the dashboard.
type EnquiryStats struct {
	Total    int64            `json:"total"`
	Today    int64            `json:"today"`
	ByStaff  map[string]int64 `json:"by_staff"`
	BySource map[string]int64 `json:"by_source"`

	// ByComments holds the most frequent comment values.
	ByComments map[string]int64 `json:"by_comments"`
}
