package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/businessguru/crm/internal/model"
	"github.com/businessguru/crm/internal/testutil"
)

// newTestRepository connects to the MongoDB instance named by
// MONGODB_TEST_URI, or skips the test if unset.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	uri := testutil.RequireEnv(t, "MONGODB_TEST_URI")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := New(ctx, uri, "business_guru_test")
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = repo.Close(ctx)
	})
	return repo
}

func TestRepository_CreateAndGetEnquiry(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	enquiry := testutil.NewTestEnquiry(t, testutil.UniqueMobile())
	if err := repo.CreateEnquiry(ctx, enquiry); err != nil {
		t.Fatalf("create enquiry: %v", err)
	}
	if enquiry.ID.IsZero() {
		t.Fatal("expected inserted ID to be set")
	}

	got, err := repo.GetEnquiry(ctx, enquiry.ID.Hex())
	if err != nil {
		t.Fatalf("get enquiry: %v", err)
	}

	if got.MobileNumber != enquiry.MobileNumber {
		t.Errorf("mobile number mismatch: got %s, want %s", got.MobileNumber, enquiry.MobileNumber)
	}
	if got.Staff != model.WebhookStaffName {
		t.Errorf("expected staff %q, got %q", model.WebhookStaffName, got.Staff)
	}
	if got.Source != model.SourceWhatsAppWebhook {
		t.Errorf("expected webhook source, got %q", got.Source)
	}
}

func TestRepository_DuplicateMessageIDRejected(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := testutil.NewTestEnquiry(t, testutil.UniqueMobile())
	if err := repo.CreateEnquiry(ctx, first); err != nil {
		t.Fatalf("create first enquiry: %v", err)
	}

	// Same mobile number and message ID simulates a gateway retry
	dup := testutil.NewTestEnquiry(t, first.MobileNumber)
	dup.WhatsAppMessageID = first.WhatsAppMessageID

	err := repo.CreateEnquiry(ctx, dup)
	if !errors.Is(err, ErrDuplicateEnquiry) {
		t.Fatalf("expected ErrDuplicateEnquiry, got %v", err)
	}
}

func TestRepository_FindEnquiryByMessageID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	enquiry := testutil.NewTestEnquiry(t, testutil.UniqueMobile())
	if err := repo.CreateEnquiry(ctx, enquiry); err != nil {
		t.Fatalf("create enquiry: %v", err)
	}

	got, err := repo.FindEnquiryByMessageID(ctx, enquiry.MobileNumber, enquiry.WhatsAppMessageID)
	if err != nil {
		t.Fatalf("find by message id: %v", err)
	}
	if got.ID != enquiry.ID {
		t.Errorf("expected enquiry %s, got %s", enquiry.ID.Hex(), got.ID.Hex())
	}

	_, err = repo.FindEnquiryByMessageID(ctx, enquiry.MobileNumber, "no-such-message")
	if !errors.Is(err, ErrEnquiryNotFound) {
		t.Fatalf("expected ErrEnquiryNotFound, got %v", err)
	}
}

func TestRepository_UpdateEnquiry(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	enquiry := testutil.NewTestEnquiry(t, testutil.UniqueMobile())
	if err := repo.CreateEnquiry(ctx, enquiry); err != nil {
		t.Fatalf("create enquiry: %v", err)
	}

	staff := "tmis.ramesh"
	comments := "Will Share Doc"
	got, err := repo.UpdateEnquiry(ctx, enquiry.ID.Hex(), EnquiryUpdate{
		Staff:    &staff,
		Comments: &comments,
	})
	if err != nil {
		t.Fatalf("update enquiry: %v", err)
	}

	if got.Staff != staff {
		t.Errorf("expected staff %q, got %q", staff, got.Staff)
	}
	if got.Comments != comments {
		t.Errorf("expected comments %q, got %q", comments, got.Comments)
	}
	// Untouched fields survive
	if got.WatiName != enquiry.WatiName {
		t.Errorf("wati_name changed unexpectedly: %q", got.WatiName)
	}
}

func TestRepository_GetEnquiry_InvalidID(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetEnquiry(context.Background(), "not-a-hex-id")
	if !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestRepository_DeleteEnquiry(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	enquiry := testutil.NewTestEnquiry(t, testutil.UniqueMobile())
	if err := repo.CreateEnquiry(ctx, enquiry); err != nil {
		t.Fatalf("create enquiry: %v", err)
	}

	if err := repo.DeleteEnquiry(ctx, enquiry.ID.Hex()); err != nil {
		t.Fatalf("delete enquiry: %v", err)
	}

	_, err := repo.GetEnquiry(ctx, enquiry.ID.Hex())
	if !errors.Is(err, ErrEnquiryNotFound) {
		t.Fatalf("expected ErrEnquiryNotFound after delete, got %v", err)
	}

	err = repo.DeleteEnquiry(ctx, enquiry.ID.Hex())
	if !errors.Is(err, ErrEnquiryNotFound) {
		t.Fatalf("expected ErrEnquiryNotFound for second delete, got %v", err)
	}
}

func TestRepository_EnquiryStats_TopComments(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	comment := "stats-" + testutil.UniqueID("comment")
	for i := 0; i < 3; i++ {
		enquiry := testutil.NewTestEnquiry(t, testutil.UniqueMobile())
		enquiry.Comments = comment
		if err := repo.CreateEnquiry(ctx, enquiry); err != nil {
			t.Fatalf("create enquiry %d: %v", i, err)
		}
	}

	stats, err := repo.EnquiryStats(ctx)
	if err != nil {
		t.Fatalf("enquiry stats: %v", err)
	}

	if stats.Total < 3 {
		t.Errorf("expected total >= 3, got %d", stats.Total)
	}
	if got := stats.ByComments[comment]; got != 3 {
		t.Errorf("expected %q count 3 in by_comments, got %d", comment, got)
	}
	if len(stats.ByComments) > 10 {
		t.Errorf("by_comments holds %d entries, expected at most 10", len(stats.ByComments))
	}
	if stats.BySource[model.SourceWhatsAppWebhook] < 3 {
		t.Errorf("expected webhook source count >= 3, got %d", stats.BySource[model.SourceWhatsAppWebhook])
	}
}
