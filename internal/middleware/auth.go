// Package middleware provides gin middlewares shared by every route group.
package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
	"github.com/go-petr/bank-backoffice/pkg/tokenpkg"
	"github.com/go-petr/bank-backoffice/pkg/web"
)

// Authorization header parts and the gin context key of the verified payload.
const (
	AuthHeaderKey  = "authorization"
	AuthTypeBearer = "bearer"
	AuthPayloadKey = "authorization_payload"
)

var (
	// ErrAuthHeaderNotFound indicates that the request has no authorization header.
	ErrAuthHeaderNotFound = errorspkg.New(errorspkg.KindUnauthorized, "missing_auth_header", "authorization header is not provided")
	// ErrBadAuthHeaderFormat indicates that the authorization header is malformed.
	ErrBadAuthHeaderFormat = errorspkg.New(errorspkg.KindUnauthorized, "bad_auth_header", "invalid authorization header format")
	// ErrUnsupportedAuthType indicates an authorization scheme other than bearer.
	ErrUnsupportedAuthType = errorspkg.New(errorspkg.KindUnauthorized, "unsupported_auth_type", "unsupported authorization type")
	// ErrInvalidAccessToken indicates that the access token could not be verified.
	ErrInvalidAccessToken = errorspkg.New(errorspkg.KindUnauthorized, "invalid_access_token", "invalid access token")
	// ErrExpiredAccessToken indicates that the access token has expired.
	ErrExpiredAccessToken = errorspkg.New(errorspkg.KindUnauthorized, "expired_access_token", "access token has expired")
	// ErrForbiddenRole indicates that the token role may not use the route.
	ErrForbiddenRole = errorspkg.New(errorspkg.KindForbidden, "forbidden_role", "role is not allowed")
)

// AddAuthorization creates a token for subject acting as role and sets it as
// the authorization header of r.
func AddAuthorization(
	r *http.Request,
	tokenMaker tokenpkg.Maker,
	authType string,
	subject int64,
	role string,
	duration time.Duration,
) error {
	token, _, err := tokenMaker.CreateToken(subject, role, duration)
	if err != nil {
		return err
	}

	r.Header.Set(AuthHeaderKey, fmt.Sprintf("%s %s", authType, token))

	return nil
}

// AuthMiddleware verifies the bearer access token and stores its payload
// under AuthPayloadKey.
func AuthMiddleware(tokenMaker tokenpkg.Maker) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		l := zerolog.Ctx(gctx.Request.Context())

		authHeader := gctx.GetHeader(AuthHeaderKey)
		if len(authHeader) == 0 {
			web.AbortWithError(gctx, ErrAuthHeaderNotFound)
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) != 2 {
			web.AbortWithError(gctx, ErrBadAuthHeaderFormat)
			return
		}

		if strings.ToLower(fields[0]) != AuthTypeBearer {
			web.AbortWithError(gctx, ErrUnsupportedAuthType)
			return
		}

		payload, err := tokenMaker.VerifyToken(fields[1])
		if err != nil {
			l.Info().Err(err).Send()

			if err == tokenpkg.ErrExpiredToken {
				web.AbortWithError(gctx, ErrExpiredAccessToken)
				return
			}

			web.AbortWithError(gctx, ErrInvalidAccessToken)

			return
		}

		gctx.Set(AuthPayloadKey, payload)
		gctx.Next()
	}
}

// RequireRole rejects requests whose token role differs from role.
// It must run after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		payload, ok := gctx.Get(AuthPayloadKey)
		if !ok {
			web.AbortWithError(gctx, ErrAuthHeaderNotFound)
			return
		}

		if p, ok := payload.(*tokenpkg.Payload); !ok || p.Role != role {
			zerolog.Ctx(gctx.Request.Context()).Info().Str("required_role", role).Msg("role rejected")
			web.AbortWithError(gctx, ErrForbiddenRole)

			return
		}

		gctx.Next()
	}
}
