// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/businessguru/crm/internal/model"
)

// CreateEnquiryRequest represents the request body for creating an enquiry.
type CreateEnquiryRequest struct {
	WatiName              string `json:"wati_name,omitempty"`
	UserName              string `json:"user_name,omitempty"`
	MobileNumber          string `json:"mobile_number"`
	SecondaryMobileNumber string `json:"secondary_mobile_number,omitempty"`
	GST                   string `json:"gst,omitempty"`
	GSTStatus             string `json:"gst_status,omitempty"`
	BusinessType          string `json:"business_type,omitempty"`
	BusinessNature        string `json:"business_nature,omitempty"`
	Staff                 string `json:"staff,omitempty"`
	Comments              string `json:"comments,omitempty"`
	AdditionalComments    string `json:"additional_comments,omitempty"`
}

// UpdateEnquiryRequest represents the request body for updating an enquiry.
// Nil fields are left untouched.
type UpdateEnquiryRequest struct {
	WatiName              *string `json:"wati_name,omitempty"`
	MobileNumber          *string `json:"mobile_number,omitempty"`
	SecondaryMobileNumber *string `json:"secondary_mobile_number,omitempty"`
	GST                   *string `json:"gst,omitempty"`
	GSTStatus             *string `json:"gst_status,omitempty"`
	BusinessType          *string `json:"business_type,omitempty"`
	BusinessNature        *string `json:"business_nature,omitempty"`
	Staff                 *string `json:"staff,omitempty"`
	Comments              *string `json:"comments,omitempty"`
	AdditionalComments    *string `json:"additional_comments,omitempty"`
}

// EnquiryResponse represents an enquiry in API responses.
type EnquiryResponse struct {
	ID                    string    `json:"id"`
	WatiName              string    `json:"wati_name"`
	UserName              string    `json:"user_name,omitempty"`
	MobileNumber          string    `json:"mobile_number"`
	SecondaryMobileNumber string    `json:"secondary_mobile_number,omitempty"`
	GST                   string    `json:"gst,omitempty"`
	GSTStatus             string    `json:"gst_status,omitempty"`
	BusinessType          string    `json:"business_type,omitempty"`
	BusinessNature        string    `json:"business_nature,omitempty"`
	Staff                 string    `json:"staff,omitempty"`
	Comments              string    `json:"comments,omitempty"`
	AdditionalComments    string    `json:"additional_comments,omitempty"`
	Source                string    `json:"source,omitempty"`
	WhatsAppSent          bool      `json:"whatsapp_sent"`
	Date                  time.Time `json:"date"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// EnquiryListResponse represents a list of enquiries.
type EnquiryListResponse struct {
	Data  []EnquiryResponse `json:"data"`
	Total int               `json:"total"`
}

// EnquiryWriteResponse reports a create or update together with the
// outcome of any WhatsApp message the operation triggered.
type EnquiryWriteResponse struct {
	Enquiry      *EnquiryResponse `json:"enquiry"`
	WhatsApp     string           `json:"whatsapp,omitempty"`
	StaffMessage string           `json:"staff_message,omitempty"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToEnquiryResponse converts an Enquiry model to EnquiryResponse DTO.
func ToEnquiryResponse(e *model.Enquiry) *EnquiryResponse {
	return &EnquiryResponse{
		ID:                    e.ID.Hex(),
		WatiName:              e.WatiName,
		UserName:              e.UserName,
		MobileNumber:          e.MobileNumber,
		SecondaryMobileNumber: e.SecondaryMobileNumber,
		GST:                   e.GST,
		GSTStatus:             e.GSTStatus,
		BusinessType:          e.BusinessType,
		BusinessNature:        e.BusinessNature,
		Staff:                 e.Staff,
		Comments:              e.Comments,
		AdditionalComments:    e.AdditionalComments,
		Source:                e.Source,
		WhatsAppSent:          e.WhatsAppSent,
		Date:                  e.Date,
		CreatedAt:             e.CreatedAt,
		UpdatedAt:             e.UpdatedAt,
	}
}

// ToEnquiryListResponse converts a slice of Enquiry models.
func ToEnquiryListResponse(enquiries []*model.Enquiry) *EnquiryListResponse {
	responses := make([]EnquiryResponse, len(enquiries))
	for i, e := range enquiries {
		responses[i] = *ToEnquiryResponse(e)
	}
	return &EnquiryListResponse{Data: responses, Total: len(responses)}
}
