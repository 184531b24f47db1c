// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

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

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, callerID int64, arg domain.TransferParams) (domain.TransferResult, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

// The destination is given either by id or by external account number.
type request struct {
	FromAccountID   int64           `json:"from_account_id" binding:"required,min=1"`
	ToAccountID     int64           `json:"to_account_id" binding:"omitempty,min=1"`
	ToAccountNumber string          `json:"to_account_number" binding:"omitempty,numeric,len=9"`
	Amount          decimal.Decimal `json:"amount"`
}

type data struct {
	Transfer domain.TransferResult `json:"transfer"`
}

// Create handles http request to create a transfer between two accounts.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req request
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.InvalidInput(web.GetErrorMsg(err)))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	arg := domain.TransferParams{
		FromAccountID:   req.FromAccountID,
		ToAccountID:     req.ToAccountID,
		ToAccountNumber: req.ToAccountNumber,
		Amount:          req.Amount,
	}

	result, err := h.service.Transfer(ctx, authPayload.Subject, arg)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{result}})
}
