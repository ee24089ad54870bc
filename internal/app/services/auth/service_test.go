package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"spotaway/internal/infra/security"
	"spotaway/internal/infra/storage/memory"
)

func newService(ttl time.Duration) *Service {
	return &Service{
		Users:      memory.NewUserRepository(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: ttl,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(time.Hour)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterParams{
		Email:     "  Ada@Example.COM ",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "hunter22",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.User.Email != "ada@example.com" {
		t.Errorf("email = %q, want normalized", reg.User.Email)
	}
	if reg.Token == "" {
		t.Error("no session token issued")
	}

	login, err := svc.Login(ctx, LoginParams{Email: "ada@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Errorf("login resolved user %d, want %d", login.User.ID, reg.User.ID)
	}

	if _, err := svc.Login(ctx, LoginParams{Email: "ada@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, LoginParams{Email: "nobody@example.com", Password: "hunter22"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newService(time.Hour)
	ctx := context.Background()

	params := RegisterParams{Email: "ada@example.com", FirstName: "Ada", LastName: "L", Password: "hunter22"}
	if _, err := svc.Register(ctx, params); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, params); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate err = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newService(time.Hour)
	_, err := svc.Register(context.Background(), RegisterParams{
		Email: "ada@example.com", FirstName: "Ada", LastName: "L", Password: "short",
	})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("err = %v, want ErrPasswordTooShort", err)
	}
}

func TestResolveTokenRoundTrip(t *testing.T) {
	svc := newService(time.Hour)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterParams{
		Email: "ada@example.com", FirstName: "Ada", LastName: "L", Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	resolved, err := svc.ResolveToken(ctx, reg.Token)
	if err != nil {
		t.Fatalf("ResolveToken: %v", err)
	}
	if resolved.User.ID != reg.User.ID {
		t.Errorf("resolved user %d, want %d", resolved.User.ID, reg.User.ID)
	}

	if err := svc.Logout(ctx, reg.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.ResolveToken(ctx, reg.Token); err == nil {
		t.Error("revoked token still resolves")
	}
}

func TestResolveTokenExpired(t *testing.T) {
	svc := newService(time.Nanosecond)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterParams{
		Email: "ada@example.com", FirstName: "Ada", LastName: "L", Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := svc.ResolveToken(ctx, reg.Token); err == nil {
		t.Error("expired token still resolves")
	}
}
