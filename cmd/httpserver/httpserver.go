// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/bank-backoffice/internal/accountdelivery"
	"github.com/go-petr/bank-backoffice/internal/accountnumber"
	"github.com/go-petr/bank-backoffice/internal/accountrepo"
	"github.com/go-petr/bank-backoffice/internal/accountservice"
	"github.com/go-petr/bank-backoffice/internal/admindelivery"
	"github.com/go-petr/bank-backoffice/internal/adminrepo"
	"github.com/go-petr/bank-backoffice/internal/adminservice"
	"github.com/go-petr/bank-backoffice/internal/customerdelivery"
	"github.com/go-petr/bank-backoffice/internal/customerrepo"
	"github.com/go-petr/bank-backoffice/internal/customerservice"
	"github.com/go-petr/bank-backoffice/internal/ledgerrepo"
	"github.com/go-petr/bank-backoffice/internal/middleware"
	"github.com/go-petr/bank-backoffice/internal/notifier"
	"github.com/go-petr/bank-backoffice/internal/sessiondelivery"
	"github.com/go-petr/bank-backoffice/internal/sessionrepo"
	"github.com/go-petr/bank-backoffice/internal/sessionservice"
	"github.com/go-petr/bank-backoffice/internal/transactionrepo"
	"github.com/go-petr/bank-backoffice/internal/transferdelivery"
	"github.com/go-petr/bank-backoffice/internal/transferservice"
	"github.com/go-petr/bank-backoffice/pkg/accountpkg"
	"github.com/go-petr/bank-backoffice/pkg/configpkg"
	"github.com/go-petr/bank-backoffice/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB       *sql.DB
	Engine   *gin.Engine
	Config   configpkg.Config
	Admins   *adminservice.Service
	Notifier notifier.Notifier
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := accountpkg.RegisterValidations(v); err != nil {
			return nil, errors.New("cannot register account validators")
		}
	}

	customerRepo := customerrepo.NewRepoPGS(conn)
	accountRepo := accountrepo.NewRepoPGS(conn)
	transactionRepo := transactionrepo.NewRepoPGS(conn)
	adminRepo := adminrepo.NewRepoPGS(conn)
	sessionRepo := sessionrepo.NewRepoPGS(conn)
	store := ledgerrepo.NewRepoPGS(conn)

	tokenMaker, err := tokenpkg.New(config.TokenKind, config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	n := notifier.New(config.TransactionServiceURL, config.NotifierTimeout)

	customerService := customerservice.New(customerRepo, store, config.TxTimeout)
	accountService := accountservice.New(accountRepo, transactionRepo, store, accountnumber.New(accountRepo), config.TxTimeout)
	transferService := transferservice.New(store, n, config.TxTimeout)
	adminService := adminservice.New(adminRepo)

	sessionService, err := sessionservice.New(sessionRepo, config, tokenMaker)
	if err != nil {
		return nil, errors.New("cannot initialize session service")
	}

	customerHandler := customerdelivery.NewHandler(customerService, sessionService)
	accountHandler := accountdelivery.NewHandler(accountService, transferService)
	transferHandler := transferdelivery.NewHandler(transferService)
	sessionHandler := sessiondelivery.NewHandler(sessionService)
	adminHandler := admindelivery.NewHandler(adminService, customerService, accountService, transferService, sessionService)

	engine := gin.New()
	engine.Use(middleware.RequestLogger(logger))

	engine.POST("/customers/register", customerHandler.Register)
	engine.POST("/customers/login", customerHandler.Login)
	engine.POST("/admin/login", adminHandler.Login)
	engine.POST("/tokens/renew", sessionHandler.RenewAccessToken)

	auth := middleware.AuthMiddleware(tokenMaker)

	customers := engine.Group("/", auth, middleware.RequireRole(tokenpkg.RoleCustomer))

	customers.GET("/customers/me", customerHandler.Me)

	customers.POST("/accounts", accountHandler.Open)
	customers.GET("/accounts", accountHandler.List)
	customers.GET("/accounts/:id", accountHandler.Get)
	customers.GET("/accounts/:id/transactions", accountHandler.History)
	customers.POST("/accounts/:id/withdraw", accountHandler.Withdraw)
	customers.DELETE("/accounts/:id", accountHandler.Close)
	customers.GET("/accounts/lookup/:number", accountHandler.Lookup)
	customers.POST("/accounts/transfer", transferHandler.Create)

	admins := engine.Group("/admin", auth, middleware.RequireRole(tokenpkg.RoleAdmin))

	admins.POST("/admins", adminHandler.CreateAdmin)
	admins.GET("/admins/:id", adminHandler.GetAdmin)
	admins.DELETE("/admins/:id", adminHandler.DeleteAdmin)
	admins.GET("/stats", adminHandler.Stats)
	admins.GET("/customers", adminHandler.SearchCustomers)
	admins.GET("/customers/:id", adminHandler.GetCustomer)
	admins.PATCH("/customers/:id/status", adminHandler.SetCustomerStatus)
	admins.DELETE("/customers/:id", adminHandler.DeleteCustomer)
	admins.GET("/accounts/:id", adminHandler.GetAccount)
	admins.PATCH("/accounts/:id/status", adminHandler.SetAccountStatus)
	admins.POST("/accounts/:id/credit", adminHandler.Credit)
	admins.POST("/accounts/:id/debit", adminHandler.Debit)

	server := &Server{
		DB:       conn,
		Engine:   engine,
		Config:   config,
		Admins:   adminService,
		Notifier: n,
	}

	return server, nil
}
