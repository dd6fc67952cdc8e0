package dto

import (
	"time"

	"github.com/businessguru/crm/internal/model"
)

// CreateClientRequest represents the request body for creating a client.
type CreateClientRequest struct {
	UserName                string `json:"user_name"`
	MobileNumber            string `json:"mobile_number"`
	Email                   string `json:"email,omitempty"`
	BusinessName            string `json:"business_name,omitempty"`
	District                string `json:"district,omitempty"`
	BusinessPAN             string `json:"business_pan,omitempty"`
	IECode                  string `json:"ie_code,omitempty"`
	NewCurrentAccount       string `json:"new_current_account,omitempty"`
	Website                 string `json:"website,omitempty"`
	Gateway                 string `json:"gateway,omitempty"`
	TransactionDoneByClient string `json:"transaction_done_by_client,omitempty"`
	RequiredLoanAmount      string `json:"required_loan_amount,omitempty"`
	BankAccount             string `json:"bank_account,omitempty"`
	StaffID                 string `json:"staff_id,omitempty"`
	BankType                string `json:"bank_type,omitempty"`
	GSTStatus               string `json:"gst_status,omitempty"`
	BusinessNature          string `json:"business_nature,omitempty"`
}

// UpdateClientRequest represents the request body for updating a client.
// Nil fields are left untouched.
type UpdateClientRequest struct {
	UserName                *string `json:"user_name,omitempty"`
	MobileNumber            *string `json:"mobile_number,omitempty"`
	Email                   *string `json:"email,omitempty"`
	BusinessName            *string `json:"business_name,omitempty"`
	District                *string `json:"district,omitempty"`
	BusinessPAN             *string `json:"business_pan,omitempty"`
	IECode                  *string `json:"ie_code,omitempty"`
	NewCurrentAccount       *string `json:"new_current_account,omitempty"`
	Website                 *string `json:"website,omitempty"`
	Gateway                 *string `json:"gateway,omitempty"`
	TransactionDoneByClient *string `json:"transaction_done_by_client,omitempty"`
	RequiredLoanAmount      *string `json:"required_loan_amount,omitempty"`
	BankAccount             *string `json:"bank_account,omitempty"`
	StaffID                 *string `json:"staff_id,omitempty"`
	BankType                *string `json:"bank_type,omitempty"`
	GSTStatus               *string `json:"gst_status,omitempty"`
	BusinessNature          *string `json:"business_nature,omitempty"`
	Feedback                *string `json:"feedback,omitempty"`
}

// UpdateClientStatusRequest represents the PATCH status body.
type UpdateClientStatusRequest struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback,omitempty"`
}

// ClientResponse represents a client in API responses.
type ClientResponse struct {
	ID                      string            `json:"id"`
	UserName                string            `json:"user_name"`
	MobileNumber            string            `json:"mobile_number"`
	Email                   string            `json:"email,omitempty"`
	BusinessName            string            `json:"business_name,omitempty"`
	District                string            `json:"district,omitempty"`
	BusinessPAN             string            `json:"business_pan,omitempty"`
	IECode                  string            `json:"ie_code,omitempty"`
	NewCurrentAccount       string            `json:"new_current_account,omitempty"`
	Website                 string            `json:"website,omitempty"`
	Gateway                 string            `json:"gateway,omitempty"`
	TransactionDoneByClient string            `json:"transaction_done_by_client,omitempty"`
	RequiredLoanAmount      string            `json:"required_loan_amount,omitempty"`
	BankAccount             string            `json:"bank_account,omitempty"`
	StaffID                 string            `json:"staff_id,omitempty"`
	BankType                string            `json:"bank_type,omitempty"`
	GSTStatus               string            `json:"gst_status,omitempty"`
	BusinessNature          string            `json:"business_nature,omitempty"`
	Documents               map[string]string `json:"documents,omitempty"`
	Status                  string            `json:"status"`
	Feedback                string            `json:"feedback,omitempty"`
	CreatedAt               time.Time         `json:"created_at"`
	UpdatedAt               time.Time         `json:"updated_at"`
}

// ClientListResponse represents a list of clients.
type ClientListResponse struct {
	Data  []ClientResponse `json:"data"`
	Total int              `json:"total"`
}

// ToClientModel converts a create request to a Client model.
func (r *CreateClientRequest) ToClientModel() *model.Client {
	return &model.Client{
		UserName:                r.UserName,
		MobileNumber:            r.MobileNumber,
		Email:                   r.Email,
		BusinessName:            r.BusinessName,
		District:                r.District,
		BusinessPAN:             r.BusinessPAN,
		IECode:                  r.IECode,
		NewCurrentAccount:       r.NewCurrentAccount,
		Website:                 r.Website,
		Gateway:                 r.Gateway,
		TransactionDoneByClient: r.TransactionDoneByClient,
		RequiredLoanAmount:      r.RequiredLoanAmount,
		BankAccount:             r.BankAccount,
		StaffID:                 r.StaffID,
		BankType:                r.BankType,
		GSTStatus:               r.GSTStatus,
		BusinessNature:          r.BusinessNature,
	}
}

// ToClientResponse converts a Client model to ClientResponse DTO.
func ToClientResponse(c *model.Client) *ClientResponse {
	return &ClientResponse{
		ID:                      c.ID.Hex(),
		UserName:                c.UserName,
		MobileNumber:            c.MobileNumber,
		Email:                   c.Email,
		BusinessName:            c.BusinessName,
		District:                c.District,
		BusinessPAN:             c.BusinessPAN,
		IECode:                  c.IECode,
		NewCurrentAccount:       c.NewCurrentAccount,
		Website:                 c.Website,
		Gateway:                 c.Gateway,
		TransactionDoneByClient: c.TransactionDoneByClient,
		RequiredLoanAmount:      c.RequiredLoanAmount,
		BankAccount:             c.BankAccount,
		StaffID:                 c.StaffID,
		BankType:                c.BankType,
		GSTStatus:               c.GSTStatus,
		BusinessNature:          c.BusinessNature,
		Documents:               c.Documents,
		Status:                  string(c.Status),
		Feedback:                c.Feedback,
		CreatedAt:               c.CreatedAt,
		UpdatedAt:               c.UpdatedAt,
	}
}

// ToClientListResponse converts a slice of Client models.
func ToClientListResponse(clients []*model.Client) *ClientListResponse {
	responses := make([]ClientResponse, len(clients))
	for i, c := range clients {
		responses[i] = *ToClientResponse(c)
	}
	return &ClientListResponse{Data: responses, Total: len(responses)}
}
