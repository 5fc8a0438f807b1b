// Package transactiondelivery manages delivery layer of balance changes and ledger history.
package transactiondelivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// AccountService provides the balance changes needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type AccountService interface {
	Deposit(ctx context.Context, number string, amount decimal.Decimal, description string) (decimal.Decimal, error)
	Withdraw(ctx context.Context, number string, amount decimal.Decimal, description string) (decimal.Decimal, error)
}

// ReportService provides the ledger history needed by transaction delivery layer.
type ReportService interface {
	GetHistory(ctx context.Context, number string, limit int32) (domain.History, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	accounts AccountService
	reports  ReportService
}

// NewHandler returns transaction handler.
func NewHandler(as AccountService, rs ReportService) Handler {
	return Handler{accounts: as, reports: rs}
}

// BalanceChangeResponse is returned by deposits and withdrawals.
type BalanceChangeResponse struct {
	AccountNumber string `json:"account_number"`
	Balance       string `json:"balance"`
}

// TransactionResponse is the public form of a ledger entry.
type TransactionResponse struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Amount      string    `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"transaction_date"`
}

// HistoryResponse is the public form of an account history.
type HistoryResponse struct {
	AccountNumber    string                `json:"account_number"`
	HolderName       string                `json:"holder_name"`
	Transactions     []TransactionResponse `json:"transactions"`
	TotalDeposits    string                `json:"total_deposits"`
	TotalWithdrawals string                `json:"total_withdrawals"`
	NetChange        string                `json:"net_change"`
}

func errorResponse(err error) (int, web.Response) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, web.Error(err)
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, web.Error(err)
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusConflict, web.Error(err)
	}

	return http.StatusInternalServerError, web.Error(errorspkg.ErrStorage)
}

type numberRequest struct {
	Number string `uri:"number" binding:"required,account_number"`
}

type balanceChangeRequest struct {
	Amount      json.Number `json:"amount" binding:"required,amount"`
	Description string      `json:"description" binding:"max=255"`
}

type balanceChange func(ctx context.Context, number string, amount decimal.Decimal, description string) (decimal.Decimal, error)

func (h *Handler) changeBalance(gctx *gin.Context, change balanceChange) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri numberRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	var req balanceChangeRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	amount, err := moneypkg.Parse(req.Amount.String())
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))

		return
	}

	balance, err := change(ctx, uri.Number, amount, req.Description)
	if err != nil {
		gctx.JSON(errorResponse(err))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		Data: BalanceChangeResponse{
			AccountNumber: uri.Number,
			Balance:       moneypkg.String(balance),
		},
	})
}

// Deposit handles http request to deposit money into the account.
func (h *Handler) Deposit(gctx *gin.Context) {
	h.changeBalance(gctx, h.accounts.Deposit)
}

// Withdraw handles http request to withdraw money from the account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	h.changeBalance(gctx, h.accounts.Withdraw)
}

type historyRequest struct {
	Limit int32 `form:"limit"`
}

// History handles http request to list the newest ledger entries of the account.
// Without a limit the whole ledger is returned.
func (h *Handler) History(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri numberRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	var req historyRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	history, err := h.reports.GetHistory(ctx, uri.Number, req.Limit)
	if err != nil {
		gctx.JSON(errorResponse(err))
		return
	}

	res := HistoryResponse{
		AccountNumber:    history.Number,
		HolderName:       history.HolderName,
		Transactions:     make([]TransactionResponse, 0, len(history.Transactions)),
		TotalDeposits:    moneypkg.String(history.TotalDeposits),
		TotalWithdrawals: moneypkg.String(history.TotalWithdrawals),
		NetChange:        moneypkg.String(history.NetChange),
	}

	for _, t := range history.Transactions {
		res.Transactions = append(res.Transactions, TransactionResponse{
			ID:          t.ID,
			Type:        string(t.Type),
			Amount:      moneypkg.String(t.Amount),
			Description: t.Description,
			Date:        t.Date,
		})
	}

	gctx.JSON(http.StatusOK, web.Response{Data: res})
}
