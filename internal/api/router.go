package api

import (
	"log/slog"
	"net/http"
	"time"

	"loanbook/internal/api/handler"
	mw "loanbook/internal/api/middleware"
	"loanbook/internal/config"
	"loanbook/internal/domain/loan"
	"loanbook/internal/domain/report"
	"loanbook/internal/export"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(ledgerService loan.LedgerService, reportService report.ReportService, exportService export.ExportService, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAuthRoutes(router, cfg, logger)
	setupLoanRoutes(router, ledgerService, cfg, logger)
	setupReportRoutes(router, reportService, cfg, logger)
	setupExportRoutes(router, exportService, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupAuthRoutes(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(*cfg, logger)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupLoanRoutes(router *chi.Mux, ledgerService loan.LedgerService, cfg *config.Config, logger *slog.Logger) {
	loanHandler := handler.NewLoanHandler(ledgerService, logger)

	router.Route("/loans", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", loanHandler.CreateLoan)
		r.Get("/", loanHandler.ListLoans)
		r.Post("/renewals", loanHandler.RenewLoan)
		r.Route("/{loanID}", func(r chi.Router) {
			r.Get("/", loanHandler.GetLoan)
			r.Put("/", loanHandler.UpdateLoan)
			r.Delete("/", loanHandler.DeleteLoan)
			r.Post("/installments", loanHandler.AddInstallment)
			r.Get("/installments", loanHandler.GetPaymentHistory)
		})
	})
}

func setupReportRoutes(router *chi.Mux, reportService report.ReportService, cfg *config.Config, logger *slog.Logger) {
	reportHandler := handler.NewReportHandler(reportService, logger)

	router.Route("/reports", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Get("/profit", reportHandler.GetProfitSummary)
		r.Get("/expense", reportHandler.GetExpenseSummary)
	})
}

func setupExportRoutes(router *chi.Mux, exportService export.ExportService, cfg *config.Config, logger *slog.Logger) {
	exportHandler := handler.NewExportHandler(exportService, logger)

	router.Route("/exports", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Get("/loans", exportHandler.ExportLoans)
		r.Get("/profit", exportHandler.ExportProfit)
		r.Get("/expense", exportHandler.ExportExpense)
	})
}
