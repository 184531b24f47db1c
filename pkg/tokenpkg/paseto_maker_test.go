package tokenpkg

import (
	"testing"
	"time"

	"github.com/go-petr/bank-backoffice/pkg/randompkg"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestPasetoMaker(t *testing.T) {
	t.Parallel()

	secretKey := randompkg.String(32)

	maker, err := NewPasetoMaker(secretKey)
	if err != nil {
		t.Fatalf("NewPasetoMaker(%v) returned error: %v", secretKey, err)
	}

	subject := randompkg.ID()
	duration := time.Minute

	token, payload, err := maker.CreateToken(subject, RoleAdmin, duration)
	if err != nil {
		t.Errorf("maker.CreateToken(%v, %v, %v) returned error: %v", subject, RoleAdmin, duration, err)
	}

	verified, err := maker.VerifyToken(token)
	if err != nil {
		t.Errorf("maker.VerifyToken(%v) returned error: %v", token, err)
	}

	want := &Payload{
		Subject:   subject,
		Role:      RoleAdmin,
		IssuedAt:  time.Now(),
		ExpiredAt: time.Now().Add(duration),
	}

	ignore := cmpopts.IgnoreFields(Payload{}, "ID")
	delta := cmpopts.EquateApproxTime(time.Minute)

	if diff := cmp.Diff(payload, want, ignore, delta); diff != "" {
		t.Errorf("maker.CreateToken(%v, %v, %v) returned unexpected diff: %v", subject, RoleAdmin, duration, diff)
	}

	if verified.Subject != subject || verified.Role != RoleAdmin {
		t.Errorf("maker.VerifyToken(%v) = %+v, want subject %v role %v", token, verified, subject, RoleAdmin)
	}
}

func TestExpiredPasetoToken(t *testing.T) {
	t.Parallel()

	secretKey := randompkg.String(32)

	maker, err := NewPasetoMaker(secretKey)
	if err != nil {
		t.Fatalf("NewPasetoMaker(%v) returned error: %v", secretKey, err)
	}

	subject := randompkg.ID()
	duration := -time.Minute

	token, _, err := maker.CreateToken(subject, RoleCustomer, duration)
	if err != nil {
		t.Errorf("maker.CreateToken(%v, %v, %v) returned error: %v", subject, RoleCustomer, duration, err)
	}

	_, err = maker.VerifyToken(token)
	if err != ErrExpiredToken {
		t.Errorf("maker.VerifyToken(%v) returned unexpected error: %v", token, err)
	}
}

func TestPasetoTokenFromOtherKey(t *testing.T) {
	t.Parallel()

	maker1, err := NewPasetoMaker(randompkg.String(32))
	if err != nil {
		t.Fatalf("NewPasetoMaker() returned error: %v", err)
	}

	maker2, err := NewPasetoMaker(randompkg.String(32))
	if err != nil {
		t.Fatalf("NewPasetoMaker() returned error: %v", err)
	}

	token, _, err := maker1.CreateToken(randompkg.ID(), RoleCustomer, time.Minute)
	if err != nil {
		t.Fatalf("maker1.CreateToken() returned error: %v", err)
	}

	_, err = maker2.VerifyToken(token)
	if err != ErrInvalidToken {
		t.Errorf("maker2.VerifyToken(%v) returned unexpected error: %v", token, err)
	}
}

func TestNewMakerKind(t *testing.T) {
	t.Parallel()

	key := randompkg.String(32)

	if _, err := New(KindPaseto, key); err != nil {
		t.Errorf("New(%q) returned error: %v", KindPaseto, err)
	}

	if _, err := New(KindJWT, key); err != nil {
		t.Errorf("New(%q) returned error: %v", KindJWT, err)
	}

	if _, err := New("unknown", key); err == nil {
		t.Errorf(`New("unknown") returned nil error`)
	}
}
