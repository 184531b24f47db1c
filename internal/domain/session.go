package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
)

var (
	// ErrBlockedSession indicates that the session is blocked.
	ErrBlockedSession = errorspkg.New(errorspkg.KindUnauthorized, "blocked_session", "blocked session")
	// ErrMismatchedRefreshToken indicates mismatch between the given token and the session token.
	ErrMismatchedRefreshToken = errorspkg.New(errorspkg.KindUnauthorized, "mismatched_refresh_token", "mismatched session token")
	// ErrInvalidSubject indicates that the session belongs to another subject.
	ErrInvalidSubject = errorspkg.New(errorspkg.KindUnauthorized, "invalid_session_subject", "incorrect session subject")
	// ErrExpiredSession indicates that the session has expired.
	ErrExpiredSession = errorspkg.New(errorspkg.KindUnauthorized, "expired_session", "expired session")
	// ErrSessionNotFound indicates that the session is not found.
	ErrSessionNotFound = errorspkg.New(errorspkg.KindNotFound, "session_not_found", "session not found")
	// ErrInvalidRefreshToken indicates that the refresh token could not be verified.
	ErrInvalidRefreshToken = errorspkg.New(errorspkg.KindUnauthorized, "invalid_refresh_token", "invalid refresh token")
)

// Session holds refresh token session data for a subject of a role.
type Session struct {
	ID           uuid.UUID `json:"id"`
	Subject      int64     `json:"subject"`
	Role         string    `json:"role"`
	RefreshToken string    `json:"refresh_token"`
	UserAgent    string    `json:"user_agent"`
	ClientIP     string    `json:"client_ip"`
	IsBlocked    bool      `json:"is_blocked"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateSessionParams holds data nedeed for Session creation.
type CreateSessionParams struct {
	ID           uuid.UUID
	Subject      int64
	Role         string
	RefreshToken string
	UserAgent    string
	ClientIP     string
	IsBlocked    bool
	ExpiresAt    time.Time
}
