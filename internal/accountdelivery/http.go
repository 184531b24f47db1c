// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/middleware"
	"github.com/go-petr/bank-backoffice/pkg/tokenpkg"
	"github.com/go-petr/bank-backoffice/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Open(ctx context.Context, customerID int64, accountType string) (domain.Account, error)
	Get(ctx context.Context, customerID, id int64) (domain.Account, error)
	Lookup(ctx context.Context, number string) (domain.Account, error)
	List(ctx context.Context, customerID int64, pageSize, pageID int32) ([]domain.Account, error)
	History(ctx context.Context, customerID, id int64, pageSize, pageID int32) ([]domain.Transaction, error)
	Close(ctx context.Context, customerID, id int64) error
}

// Withdrawer moves money out of a customer account.
type Withdrawer interface {
	Withdraw(ctx context.Context, callerID, accountID int64, amount decimal.Decimal) (domain.MovementResult, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service    Service
	withdrawer Withdrawer
}

// NewHandler returns account handler.
func NewHandler(as Service, w Withdrawer) *Handler {
	return &Handler{
		service:    as,
		withdrawer: w,
	}
}

type accountData struct {
	Account domain.Account `json:"account"`
}

type accountsData struct {
	Accounts []domain.Account `json:"accounts"`
}

type transactionsData struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type accountURI struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type pageQuery struct {
	PageID   int32 `form:"page_id,default=1" binding:"min=1"`
	PageSize int32 `form:"page_size,default=10" binding:"min=1,max=100"`
}

func badRequest(gctx *gin.Context, err error) {
	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
	gctx.JSON(http.StatusBadRequest, web.InvalidInput(web.GetErrorMsg(err)))
}

type openRequest struct {
	AccountType string `json:"account_type" binding:"required,account_type"`
}

// Open handles http request to open an account for the caller.
func (h *Handler) Open(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req openRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	acc, err := h.service.Open(ctx, authPayload.Subject, req.AccountType)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountData{acc}})
}

// List handles http request to list accounts of the caller.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req pageQuery
	if err := gctx.ShouldBindQuery(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	accounts, err := h.service.List(ctx, authPayload.Subject, req.PageSize, req.PageID)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountsData{accounts}})
}

// Get handles http request to get an account of the caller.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	acc, err := h.service.Get(ctx, authPayload.Subject, uri.ID)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountData{acc}})
}

// History handles http request to list transactions of an account of the caller.
func (h *Handler) History(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	var req pageQuery
	if err := gctx.ShouldBindQuery(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	txs, err := h.service.History(ctx, authPayload.Subject, uri.ID, req.PageSize, req.PageID)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: transactionsData{txs}})
}

type withdrawRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Withdraw handles http request to withdraw money from an account of the caller.
func (h *Handler) Withdraw(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	var req withdrawRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	res, err := h.withdrawer.Withdraw(ctx, authPayload.Subject, uri.ID, req.Amount)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: res})
}

type closeData struct {
	AccountID int64 `json:"account_id"`
}

// Close handles http request to close an account of the caller.
func (h *Handler) Close(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	if err := h.service.Close(ctx, authPayload.Subject, uri.ID); err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: closeData{uri.ID}})
}

type lookupURI struct {
	Number string `uri:"number" binding:"required,numeric,len=9"`
}

// PublicAccount is the part of an account visible to any customer.
type PublicAccount struct {
	ID     int64  `json:"id"`
	Number string `json:"account_number"`
	Type   string `json:"account_type"`
	Status string `json:"status"`
}

type lookupData struct {
	Account PublicAccount `json:"account"`
}

// Lookup handles http request to find an account by its external number.
func (h *Handler) Lookup(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri lookupURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	acc, err := h.service.Lookup(ctx, uri.Number)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: lookupData{PublicAccount{
		ID:     acc.ID,
		Number: acc.Number,
		Type:   acc.Type,
		Status: acc.Status,
	}}})
}
