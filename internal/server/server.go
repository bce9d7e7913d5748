package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	accountdomain "github.com/smallbiznis/storeledger/internal/account/domain"
	cashflowdomain "github.com/smallbiznis/storeledger/internal/cashflow/domain"
	"github.com/smallbiznis/storeledger/internal/config"
	financedomain "github.com/smallbiznis/storeledger/internal/financeoverview/domain"
	invoicedomain "github.com/smallbiznis/storeledger/internal/invoice/domain"
	"github.com/smallbiznis/storeledger/internal/observability"
	obslogger "github.com/smallbiznis/storeledger/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/storeledger/internal/observability/metrics"
	obstracing "github.com/smallbiznis/storeledger/internal/observability/tracing"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module serves the HTTP API. The domain modules it depends on are composed by the caller.
var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CORS(cfg.CORSAllowedOrigins))
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	accountSvc  accountdomain.Service
	invoiceSvc  invoicedomain.Service
	cashflowSvc cashflowdomain.Service
	financeSvc  financedomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	AccountSvc  accountdomain.Service
	InvoiceSvc  invoicedomain.Service
	CashflowSvc cashflowdomain.Service
	FinanceSvc  financedomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		accountSvc:  p.AccountSvc,
		invoiceSvc:  p.InvoiceSvc,
		cashflowSvc: p.CashflowSvc,
		financeSvc:  p.FinanceSvc,
	}

	svc.RegisterRoutes()
	return svc
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api")

	platform := api.Group("/platform")
	platform.GET("/accounts", s.ListPlatformAccounts)
	platform.POST("/accounts", s.CreatePlatformAccount)
	platform.GET("/accounts/:id", s.GetPlatformAccount)
	platform.POST("/accounts/:id/settle", s.SettlePlatformAccount)
	platform.POST("/accounts/:id/cancel", s.CancelPlatformAccount)

	tenant := api.Group("", OrgContext())

	tenant.GET("/accounts", s.ListAccounts)
	tenant.POST("/accounts", s.CreateAccount)
	tenant.GET("/accounts/:id", s.GetAccount)
	tenant.POST("/accounts/:id/settle", s.SettleAccount)
	tenant.POST("/accounts/:id/cancel", s.CancelAccount)

	tenant.GET("/invoices", s.ListInvoices)
	tenant.POST("/invoices", s.CreateInvoice)
	tenant.GET("/invoices/mrr", s.GetMRR)
	tenant.GET("/invoices/:id", s.GetInvoice)
	tenant.GET("/invoices/:id/pdf", s.GetInvoicePDF)
	tenant.POST("/invoices/:id/pay", s.PayInvoice)
	tenant.POST("/invoices/:id/cancel", s.CancelInvoice)

	tenant.GET("/cashflow/days", s.ListCashflowDays)
	tenant.POST("/cashflow/days", s.RecordCashflowDay)
	tenant.GET("/cashflow/days/:date", s.GetCashflowDay)
	tenant.POST("/cashflow/days/:date/transactions", s.AppendCashflowTransaction)
	tenant.GET("/cashflow/verify", s.VerifyCashflow)

	tenant.GET("/finance/summary", s.GetFinanceSummary)
}
