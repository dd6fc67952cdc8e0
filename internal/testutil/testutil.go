package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/businessguru/crm/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestEnquiry creates a webhook-sourced enquiry with sensible defaults.
func NewTestEnquiry(t testing.TB, mobileNumber string) *model.Enquiry {
	t.Helper()
	now := time.Now().UTC()
	return &model.Enquiry{
		WatiName:            "Test Customer",
		UserName:            "Test Customer",
		MobileNumber:        mobileNumber,
		Staff:               model.WebhookStaffName,
		Comments:            "New Enquiry - Interested",
		AdditionalComments:  `Received via WhatsApp: "I am interested"`,
		Source:              model.SourceWhatsAppWebhook,
		WhatsAppStatus:      "received",
		WhatsAppMessageID:   UniqueID("msg"),
		WhatsAppChatID:      mobileNumber + "@c.us",
		WhatsAppSenderName:  "Test Customer",
		WhatsAppMessageText: "I am interested",
		Date:                now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// NewTestClient creates a client record with sensible defaults.
func NewTestClient(t testing.TB, mobileNumber string) *model.Client {
	t.Helper()
	return &model.Client{
		UserName:           "Test Client",
		MobileNumber:       mobileNumber,
		Email:              "client@example.com",
		BusinessName:       "Test Exports",
		District:           "Chennai",
		RequiredLoanAmount: "500000",
		GSTStatus:          "active",
		Status:             model.EnquiryStatusPending,
		Documents:          map[string]string{},
	}
}

// UniqueMobile generates a unique Indian mobile number for tests.
func UniqueMobile() string {
	return fmt.Sprintf("91%010d", time.Now().UnixNano()%1e10)
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
