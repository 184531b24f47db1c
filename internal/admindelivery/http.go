// Package admindelivery manages delivery layer of the back-office admin API.
package admindelivery

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/middleware"
	"github.com/go-petr/bank-backoffice/pkg/tokenpkg"
	"github.com/go-petr/bank-backoffice/pkg/web"
)

// AdminService provides admin service layer interface needed by admin delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package admindelivery
type AdminService interface {
	Create(ctx context.Context, username, password string) (domain.Admin, error)
	Get(ctx context.Context, id int64) (domain.Admin, error)
	Delete(ctx context.Context, callerID, id int64) error
	CheckPassword(ctx context.Context, username, password string) (domain.Admin, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

// CustomerService provides customer management needed by admin delivery layer.
type CustomerService interface {
	Get(ctx context.Context, id int64) (domain.Customer, error)
	Search(ctx context.Context, query string, pageSize, pageID int32) ([]domain.Customer, error)
	SetStatus(ctx context.Context, id int64, status string) (domain.Customer, error)
	Delete(ctx context.Context, id int64) error
}

// AccountService provides account management needed by admin delivery layer.
type AccountService interface {
	GetAny(ctx context.Context, id int64) (domain.Account, error)
	SetStatus(ctx context.Context, id int64, status string) (domain.Account, error)
}

// Mover credits and debits accounts on behalf of an admin.
type Mover interface {
	Credit(ctx context.Context, adminID, accountID int64, amount decimal.Decimal) (domain.MovementResult, error)
	Debit(ctx context.Context, adminID, accountID int64, amount decimal.Decimal) (domain.MovementResult, error)
}

// SessionMaker facilitates session creation.
type SessionMaker interface {
	Create(ctx context.Context, arg domain.CreateSessionParams) (string, time.Time, domain.Session, error)
}

// Handler facilitates admin delivery layer logic.
type Handler struct {
	admins       AdminService
	customers    CustomerService
	accounts     AccountService
	mover        Mover
	sessionMaker SessionMaker
}

// NewHandler returns admin handler.
func NewHandler(as AdminService, cs CustomerService, acs AccountService, m Mover, sm SessionMaker) *Handler {
	return &Handler{
		admins:       as,
		customers:    cs,
		accounts:     acs,
		mover:        m,
		sessionMaker: sm,
	}
}

type adminData struct {
	Admin domain.Admin `json:"admin"`
}

type statsData struct {
	Stats domain.Stats `json:"stats"`
}

type customerData struct {
	Customer domain.Customer `json:"customer"`
}

type customersData struct {
	Customers []domain.Customer `json:"customers"`
}

type accountData struct {
	Account domain.Account `json:"account"`
}

type deletedData struct {
	ID int64 `json:"id"`
}

type idURI struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

func badRequest(gctx *gin.Context, err error) {
	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
	gctx.JSON(http.StatusBadRequest, web.InvalidInput(web.GetErrorMsg(err)))
}

func caller(gctx *gin.Context) int64 {
	return gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload).Subject
}

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login handles http admin login request and returns admin and session data.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req loginRequest
	if err := gctx.ShouldBind(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	a, err := h.admins.CheckPassword(ctx, req.Username, req.Password)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	arg := domain.CreateSessionParams{
		Subject:   a.ID,
		Role:      tokenpkg.RoleAdmin,
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
		Data:                  adminData{a},
	})
}

type createAdminRequest struct {
	Username string `json:"username" binding:"required,alphanum,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}

// CreateAdmin handles http request to create another admin.
func (h *Handler) CreateAdmin(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req createAdminRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	a, err := h.admins.Create(ctx, req.Username, req.Password)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: adminData{a}})
}

// GetAdmin handles http request to get an admin.
func (h *Handler) GetAdmin(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri idURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	a, err := h.admins.Get(ctx, uri.ID)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: adminData{a}})
}

// DeleteAdmin handles http request to delete an admin.
func (h *Handler) DeleteAdmin(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri idURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	if err := h.admins.Delete(ctx, caller(gctx), uri.ID); err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: deletedData{uri.ID}})
}

// Stats handles http request to get aggregate figures.
func (h *Handler) Stats(gctx *gin.Context) {
	s, err := h.admins.Stats(gctx.Request.Context())
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: statsData{s}})
}

type searchCustomersQuery struct {
	Query    string `form:"q" binding:"max=100"`
	PageID   int32  `form:"page_id,default=1" binding:"min=1"`
	PageSize int32  `form:"page_size,default=10" binding:"min=1,max=100"`
}

// SearchCustomers handles http request to find customers by name or email.
func (h *Handler) SearchCustomers(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req searchCustomersQuery
	if err := gctx.ShouldBindQuery(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	customers, err := h.customers.Search(ctx, req.Query, req.PageSize, req.PageID)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: customersData{customers}})
}

// GetCustomer handles http request to get a customer.
func (h *Handler) GetCustomer(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri idURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	c, err := h.customers.Get(ctx, uri.ID)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: customerData{c}})
}

type customerStatusRequest struct {
	Status string `json:"status" binding:"required,customer_status"`
}

// SetCustomerStatus handles http request to freeze or unfreeze a customer.
func (h *Handler) SetCustomerStatus(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri idURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	var req customerStatusRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	c, err := h.customers.SetStatus(ctx, uri.ID, req.Status)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: customerData{c}})
}

// DeleteCustomer handles http request to delete a customer with all of its accounts.
func (h *Handler) DeleteCustomer(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri idURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	if err := h.customers.Delete(ctx, uri.ID); err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: deletedData{uri.ID}})
}

// GetAccount handles http request to get any account.
func (h *Handler) GetAccount(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri idURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	acc, err := h.accounts.GetAny(ctx, uri.ID)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountData{acc}})
}

type accountStatusRequest struct {
	Status string `json:"status" binding:"required,account_status"`
}

// SetAccountStatus handles http request to change the status of an account.
func (h *Handler) SetAccountStatus(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri idURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	var req accountStatusRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	acc, err := h.accounts.SetStatus(ctx, uri.ID, req.Status)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountData{acc}})
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Credit handles http request to add money to an account.
func (h *Handler) Credit(gctx *gin.Context) {
	h.move(gctx, h.mover.Credit)
}

// Debit handles http request to take money from an account.
func (h *Handler) Debit(gctx *gin.Context) {
	h.move(gctx, h.mover.Debit)
}

func (h *Handler) move(
	gctx *gin.Context,
	fn func(ctx context.Context, adminID, accountID int64, amount decimal.Decimal) (domain.MovementResult, error),
) {
	ctx := gctx.Request.Context()

	var uri idURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	var req amountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	res, err := fn(ctx, caller(gctx), uri.ID, req.Amount)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: res})
}
