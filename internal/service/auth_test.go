package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/businessguru/crm/internal/auth"
	"github.com/businessguru/crm/internal/model"
	"github.com/businessguru/crm/internal/repository"
)

func TestForgotPassword_UnknownEmailSucceedsSilently(t *testing.T) {
	users := newFakeUserStore()
	mailer := &fakeMailer{}
	svc := NewAuthService(users, mailer, "http://localhost:3000", discardLogger())

	if err := svc.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected nil for unknown email, got %v", err)
	}
	if len(mailer.resets) != 0 {
		t.Errorf("no reset email should be sent for unknown accounts")
	}
}

func TestForgotPassword_IssuesTokenAndEmail(t *testing.T) {
	users := newFakeUserStore()
	users.users["ravi@example.com"] = &model.User{
		ID:    primitive.NewObjectID(),
		Email: "ravi@example.com",
	}
	mailer := &fakeMailer{}
	svc := NewAuthService(users, mailer, "http://localhost:3000", discardLogger())

	if err := svc.ForgotPassword(context.Background(), "ravi@example.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}

	if users.tokenHash == "" {
		t.Fatal("reset token hash not stored")
	}
	if remaining := time.Until(users.expiry); remaining <= 0 || remaining > auth.ResetTokenTTL {
		t.Errorf("expiry out of range: %v", users.expiry)
	}
	if len(mailer.resets) != 1 {
		t.Fatalf("expected one reset email, got %d", len(mailer.resets))
	}

	// The emailed token must hash to the stored value.
	token := strings.SplitN(mailer.resets[0], "|", 2)[1]
	if auth.HashToken(token) != users.tokenHash {
		t.Error("stored hash does not match emailed token")
	}
}

func TestForgotPassword_MissingEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), &fakeMailer{}, "http://localhost:3000", discardLogger())
	if err := svc.ForgotPassword(context.Background(), ""); !errors.Is(err, ErrMissingEmail) {
		t.Errorf("expected ErrMissingEmail, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAuthService(users, &fakeMailer{}, "http://localhost:3000", discardLogger())

	if err := svc.ResetPassword(context.Background(), "tok", "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}

	if err := svc.ResetPassword(context.Background(), "tok", "a-long-enough-password"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if users.resetCall.tokenHash != auth.HashToken("tok") {
		t.Error("token must be hashed before the lookup")
	}
	if users.resetCall.passwordHash == "" || users.resetCall.passwordHash == "a-long-enough-password" {
		t.Error("password must be stored hashed")
	}

	users.resetErr = repository.ErrTokenExpired
	if err := svc.ResetPassword(context.Background(), "tok", "a-long-enough-password"); !errors.Is(err, repository.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired to pass through, got %v", err)
	}
}
