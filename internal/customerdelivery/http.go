// Package customerdelivery manages delivery layer of customers.
package customerdelivery

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/middleware"
	"github.com/go-petr/bank-backoffice/pkg/tokenpkg"
	"github.com/go-petr/bank-backoffice/pkg/web"
)

// Service provides service layer interface needed by customer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package customerdelivery
type Service interface {
	Register(ctx context.Context, arg domain.CreateCustomerParams, password string) (domain.Customer, error)
	CheckPassword(ctx context.Context, email, password string) (domain.Customer, error)
	Get(ctx context.Context, id int64) (domain.Customer, error)
}

// SessionMaker facilitates session creation.
type SessionMaker interface {
	Create(ctx context.Context, arg domain.CreateSessionParams) (string, time.Time, domain.Session, error)
}

// Handler facilitates customer delivery layer logic.
type Handler struct {
	service      Service
	sessionMaker SessionMaker
}

// NewHandler returns customer handler.
func NewHandler(cs Service, sm SessionMaker) *Handler {
	return &Handler{
		service:      cs,
		sessionMaker: sm,
	}
}

type customerData struct {
	Customer domain.Customer `json:"customer"`
}

type registerRequest struct {
	FirstName   string `json:"first_name" binding:"required,max=100"`
	LastName    string `json:"last_name" binding:"required,max=100"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number" binding:"required,max=20"`
	Password    string `json:"password" binding:"required,min=6"`
}

// Register handles http request to register a customer.
func (h *Handler) Register(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req registerRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.InvalidInput(web.GetErrorMsg(err)))

		return
	}

	arg := domain.CreateCustomerParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}

	c, err := h.service.Register(ctx, arg, req.Password)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: customerData{c}})
}

// Form clients follow the OAuth2 password flow and send the email as username.
type loginRequest struct {
	Email    string `json:"email" form:"username" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login handles http login request and returns customer and session data.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req loginRequest
	if err := gctx.ShouldBind(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.InvalidInput(web.GetErrorMsg(err)))

		return
	}

	c, err := h.service.CheckPassword(ctx, req.Email, req.Password)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	arg := domain.CreateSessionParams{
		Subject:   c.ID,
		Role:      tokenpkg.RoleCustomer,
		UserAgent: gctx.Request.UserAgent(),
		ClientIP:  gctx.ClientIP(),
	}

	accessToken, accessTokenExpiresAt, session, err := h.sessionMaker.Create(ctx, arg)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  &accessTokenExpiresAt,
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: &session.ExpiresAt,
		TokenType:             middleware.AuthTypeBearer,
		Data:                  customerData{c},
	})
}

// Me handles http request to get the profile of the caller.
func (h *Handler) Me(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	c, err := h.service.Get(ctx, authPayload.Subject)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: customerData{c}})
}
