package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client represents a converted customer working through the loan process.
type Client struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserName                string             `bson:"user_name" json:"user_name"`
	MobileNumber            string             `bson:"mobile_number" json:"mobile_number"`
	Email                   string             `bson:"email" json:"email"`
	BusinessName            string             `bson:"business_name" json:"business_name"`
	District                string             `bson:"district" json:"district"`
	BusinessPAN             string             `bson:"business_pan" json:"business_pan"`
	IECode                  string             `bson:"ie_code" json:"ie_code"`
	NewCurrentAccount       string             `bson:"new_current_account" json:"new_current_account"`
	Website                 string             `bson:"website" json:"website"`
	Gateway                 string             `bson:"gateway" json:"gateway"`
	TransactionDoneByClient string             `bson:"transaction_done_by_client" json:"transaction_done_by_client"`
	RequiredLoanAmount      string             `bson:"required_loan_amount" json:"required_loan_amount"`
	BankAccount             string             `bson:"bank_account" json:"bank_account"`
	StaffID                 string             `bson:"staff_id" json:"staff_id"`
	BankType                string             `bson:"bank_type" json:"bank_type"`
	GSTStatus               string             `bson:"gst_status" json:"gst_status"`
	BusinessNature          string             `bson:"business_nature" json:"business_nature"`
	Documents               map[string]string  `bson:"documents" json:"documents"`
	Status                  EnquiryStatus      `bson:"status" json:"status"`
	Feedback                string             `bson:"feedback" json:"feedback"`
	CreatedAt               time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt               time.Time          `bson:"updated_at" json:"updated_at"`
}
