package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fintrack/fintrack-go/internal/domain"
	"github.com/fintrack/fintrack-go/internal/service"

	"go.uber.org/zap"
)

func newAuth(users *mockUserStore) *service.AuthService {
	return service.NewAuthService(users, "test-secret", time.Hour, zap.NewNop())
}

func TestRegister_IssuesToken(t *testing.T) {
	users := &mockUserStore{}
	svc := newAuth(users)

	resp, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "Alice@Example.com",
		Password: "correct horse",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a signed token")
	}
	if resp.User.Email != "alice@example.com" {
		t.Errorf("expected lowercased email, got %s", resp.User.Email)
	}
	if resp.User.PasswordHash == "correct horse" {
		t.Error("expected password to be hashed")
	}

	claims, err := svc.ValidateAccessToken(resp.Token)
	if err != nil {
		t.Fatalf("expected issued token to validate, got %v", err)
	}
	if claims.Sub != resp.User.ID {
		t.Errorf("expected sub %s, got %s", resp.User.ID, claims.Sub)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newAuth(&mockUserStore{})

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{Email: "not-an-email", Password: "long enough"})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) || verr.Field != "email" {
		t.Errorf("expected email validation error, got %v", err)
	}

	_, err = svc.Register(context.Background(), &domain.RegisterRequest{Email: "a@b.com", Password: "short"})
	if !errors.As(err, &verr) || verr.Field != "password" {
		t.Errorf("expected password validation error, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := &mockUserStore{}
	svc := newAuth(users)

	if _, err := svc.Register(context.Background(), &domain.RegisterRequest{Email: "a@b.com", Password: "password1"}); err != nil {
		t.Fatalf("expected first registration to succeed, got %v", err)
	}

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{Email: "a@b.com", Password: "password2"})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestLogin_RoundTrip(t *testing.T) {
	users := &mockUserStore{}
	svc := newAuth(users)

	if _, err := svc.Register(context.Background(), &domain.RegisterRequest{Email: "a@b.com", Password: "password1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "a@b.com", Password: "password1"})
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a signed token")
	}
}

func TestLogin_UniformFailure(t *testing.T) {
	users := &mockUserStore{}
	svc := newAuth(users)

	if _, err := svc.Register(context.Background(), &domain.RegisterRequest{Email: "a@b.com", Password: "password1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	var unauth *domain.ErrUnauthorized

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "nobody@b.com", Password: "password1"})
	if !errors.As(err, &unauth) {
		t.Errorf("expected unauthorized for unknown email, got %v", err)
	}
	unknownMsg := err.Error()

	_, err = svc.Login(context.Background(), &domain.LoginRequest{Email: "a@b.com", Password: "wrong"})
	if !errors.As(err, &unauth) {
		t.Errorf("expected unauthorized for wrong password, got %v", err)
	}
	if err.Error() != unknownMsg {
		t.Error("expected identical error messages for unknown email and wrong password")
	}
}

func TestValidateAccessToken_RejectsForgedToken(t *testing.T) {
	svc := newAuth(&mockUserStore{})
	other := service.NewAuthService(&mockUserStore{}, "other-secret", time.Hour, zap.NewNop())

	resp, err := other.Register(context.Background(), &domain.RegisterRequest{Email: "a@b.com", Password: "password1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	var unauth *domain.ErrUnauthorized
	if _, err := svc.ValidateAccessToken(resp.Token); !errors.As(err, &unauth) {
		t.Errorf("expected token signed with a different secret to be rejected, got %v", err)
	}

	if _, err := svc.ValidateAccessToken("not.a.token"); !errors.As(err, &unauth) {
		t.Errorf("expected garbage token to be rejected, got %v", err)
	}
}
