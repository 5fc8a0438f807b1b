// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/accountdelivery"
	"github.com/go-petr/pet-ledger/internal/accountnumber"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/bankstore"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/reportservice"
	"github.com/go-petr/pet-ledger/internal/transactiondelivery"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	store := bankstore.NewSQLStore(conn)

	accountService := accountservice.New(store, accountnumber.New(config.AccountNumberAttempts))
	reportService := reportservice.New(store)

	accountHandler := accountdelivery.NewHandler(accountService, reportService)
	transactionHandler := transactiondelivery.NewHandler(accountService, reportService)

	rateLimiter, err := middleware.NewRateLimiter(config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("cannot create rate limiter: %w", err)
	}

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())
	engine.Use(middleware.RateLimit(rateLimiter))
	engine.Use(middleware.Timeout(config.RequestTimeout))

	engine.POST("/accounts", accountHandler.Create)
	engine.GET("/accounts", accountHandler.List)
	engine.GET("/accounts/:number", accountHandler.Get)
	engine.GET("/accounts/:number/reconciliation", accountHandler.Reconcile)

	engine.POST("/accounts/:number/deposits", transactionHandler.Deposit)
	engine.POST("/accounts/:number/withdrawals", transactionHandler.Withdraw)
	engine.GET("/accounts/:number/transactions", transactionHandler.History)

	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}

// RegisterValidators adds the custom binding tags used by the request types.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("account_number", accountdelivery.ValidAccountNumber); err != nil {
		return fmt.Errorf("cannot register account_number validator: %w", err)
	}

	if err := v.RegisterValidation("amount", moneypkg.ValidAmount); err != nil {
		return fmt.Errorf("cannot register amount validator: %w", err)
	}

	return nil
}
