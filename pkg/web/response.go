// Package web defines common components for a web application.
package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
)

// JSONError provides type for explicit json encoded error response.
type JSONError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response holds the common response type for all APIs.
type Response struct {
	AccessToken           string     `json:"access_token,omitempty"`
	AccessTokenExpiresAt  *time.Time `json:"access_token_expires_at,omitempty"`
	RefreshToken          string     `json:"refresh_token,omitempty"`
	RefreshTokenExpiresAt *time.Time `json:"refresh_token_expires_at,omitempty"`
	TokenType             string     `json:"token_type,omitempty"`
	Data                  any        `json:"data,omitempty"`
	Error                 *JSONError `json:"error,omitempty"`
}

// Error wraps a given err into json friendly response.
//
// Errors without a stable code are reported as internal so storage details never leak.
func Error(err error) Response {
	code := errorspkg.CodeOf(err)
	msg := err.Error()

	if errorspkg.KindOf(err) == errorspkg.KindInternal {
		code, msg = errorspkg.ErrInternal.Code, errorspkg.ErrInternal.Message
	}

	return Response{Error: &JSONError{Code: code, Message: msg}}
}

// InvalidInput wraps a request validation message into json friendly response.
func InvalidInput(msg string) Response {
	return Response{Error: &JSONError{Code: "invalid_input", Message: msg}}
}

var statuses = map[errorspkg.Kind]int{
	errorspkg.KindInternal:          http.StatusInternalServerError,
	errorspkg.KindNotFound:          http.StatusNotFound,
	errorspkg.KindForbidden:         http.StatusForbidden,
	errorspkg.KindUnauthorized:      http.StatusUnauthorized,
	errorspkg.KindInvalidInput:      http.StatusBadRequest,
	errorspkg.KindInvalidAmount:     http.StatusBadRequest,
	errorspkg.KindInsufficientFunds: http.StatusBadRequest,
	errorspkg.KindInvalidOperation:  http.StatusBadRequest,
	errorspkg.KindConflict:          http.StatusConflict,
}

// Status returns the http status code for err.
func Status(err error) int {
	if s, ok := statuses[errorspkg.KindOf(err)]; ok {
		return s
	}

	return http.StatusInternalServerError
}

// AbortWithError writes the error response for err and stops the handler chain.
func AbortWithError(gctx *gin.Context, err error) {
	gctx.AbortWithStatusJSON(Status(err), Error(err))
}
