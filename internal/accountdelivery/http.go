// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

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

// AccountService provides the account writes needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type AccountService interface {
	CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
}

// ReportService provides the account reports needed by account delivery layer.
type ReportService interface {
	GetBalance(ctx context.Context, number string) (domain.BalanceView, error)
	ListAccounts(ctx context.Context) (domain.AccountList, error)
	Reconcile(ctx context.Context, number string) (domain.Reconciliation, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	accounts AccountService
	reports  ReportService
}

// NewHandler returns account handler.
func NewHandler(as AccountService, rs ReportService) Handler {
	return Handler{accounts: as, reports: rs}
}

// AccountResponse is the public form of an account. Amounts carry two decimals.
type AccountResponse struct {
	AccountNumber string    `json:"account_number"`
	HolderName    string    `json:"holder_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	Balance       string    `json:"balance"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewAccountResponse converts a into its public form.
func NewAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		AccountNumber: a.Number,
		HolderName:    a.HolderName,
		Email:         a.Email,
		Phone:         a.Phone,
		Address:       a.Address,
		Balance:       moneypkg.String(a.Balance),
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt,
	}
}

// BalanceResponse is the public form of a balance report.
type BalanceResponse struct {
	AccountNumber string `json:"account_number"`
	HolderName    string `json:"holder_name"`
	Status        string `json:"status"`
	Balance       string `json:"balance"`
}

// SummaryResponse is one line of the public account list.
type SummaryResponse struct {
	AccountNumber string    `json:"account_number"`
	HolderName    string    `json:"holder_name"`
	Balance       string    `json:"balance"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListResponse is the public form of the account list.
type ListResponse struct {
	Accounts     []SummaryResponse `json:"accounts"`
	TotalBalance string            `json:"total_balance"`
	Count        int               `json:"count"`
}

// ReconciliationResponse is the public form of a reconciliation.
type ReconciliationResponse struct {
	AccountNumber string `json:"account_number"`
	StoredBalance string `json:"stored_balance"`
	LedgerBalance string `json:"ledger_balance"`
	Consistent    bool   `json:"consistent"`
}

// errorResponse maps a service error to its status code and client message.
// Unknown errors are reported as storage failures without details.
func errorResponse(err error) (int, web.Response) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, web.Error(err)
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, web.Error(err)
	case errors.Is(err, domain.ErrGenerationExhausted):
		return http.StatusServiceUnavailable, web.Error(err)
	}

	return http.StatusInternalServerError, web.Error(errorspkg.ErrStorage)
}

type createRequest struct {
	HolderName     string      `json:"holder_name" binding:"required,max=100"`
	Email          string      `json:"email" binding:"max=100"`
	Phone          string      `json:"phone" binding:"max=20"`
	Address        string      `json:"address" binding:"max=255"`
	InitialDeposit json.Number `json:"initial_deposit" binding:"omitempty,amount"`
}

// Create handles http request to create account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	deposit := decimal.Zero
	if req.InitialDeposit != "" {
		var err error
		if deposit, err = moneypkg.Parse(req.InitialDeposit.String()); err != nil {
			l.Info().Err(err).Send()
			gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))

			return
		}
	}

	account, err := h.accounts.CreateAccount(ctx, domain.CreateAccountParams{
		HolderName:     req.HolderName,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		InitialDeposit: deposit,
	})
	if err != nil {
		gctx.JSON(errorResponse(err))
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{
		Data: gin.H{"account": NewAccountResponse(account)},
	})
}

type numberRequest struct {
	Number string `uri:"number" binding:"required,account_number"`
}

func bindNumber(gctx *gin.Context) (string, bool) {
	var req numberRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return "", false
	}

	return req.Number, true
}

// Get handles http request to get the account balance.
func (h *Handler) Get(gctx *gin.Context) {
	number, ok := bindNumber(gctx)
	if !ok {
		return
	}

	view, err := h.reports.GetBalance(gctx.Request.Context(), number)
	if err != nil {
		gctx.JSON(errorResponse(err))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		Data: gin.H{"balance": BalanceResponse{
			AccountNumber: view.Number,
			HolderName:    view.HolderName,
			Status:        string(view.Status),
			Balance:       moneypkg.String(view.Balance),
		}},
	})
}

// List handles http request to list all accounts.
func (h *Handler) List(gctx *gin.Context) {
	list, err := h.reports.ListAccounts(gctx.Request.Context())
	if err != nil {
		gctx.JSON(errorResponse(err))
		return
	}

	res := ListResponse{
		Accounts:     make([]SummaryResponse, 0, list.Count),
		TotalBalance: moneypkg.String(list.TotalBalance),
		Count:        list.Count,
	}

	for a := range list.All() {
		res.Accounts = append(res.Accounts, SummaryResponse{
			AccountNumber: a.Number,
			HolderName:    a.HolderName,
			Balance:       moneypkg.String(a.Balance),
			Status:        string(a.Status),
			CreatedAt:     a.CreatedAt,
		})
	}

	gctx.JSON(http.StatusOK, web.Response{Data: res})
}

// Reconcile handles http request to compare the account balance with its ledger.
func (h *Handler) Reconcile(gctx *gin.Context) {
	number, ok := bindNumber(gctx)
	if !ok {
		return
	}

	r, err := h.reports.Reconcile(gctx.Request.Context(), number)
	if err != nil {
		gctx.JSON(errorResponse(err))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		Data: gin.H{"reconciliation": ReconciliationResponse{
			AccountNumber: r.Number,
			StoredBalance: moneypkg.String(r.StoredBalance),
			LedgerBalance: moneypkg.String(r.LedgerBalance),
			Consistent:    r.Consistent,
		}},
	})
}
