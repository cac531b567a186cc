package handler

import (
	"net/http"
	"strconv"

	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/infra/observability"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router needs.
type Services struct {
	Ledger     *service.LedgerService
	Accounts   *service.AccountService
	Categories *service.CategoryService
	Auth       *service.AuthService
}

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract consumed by the money-manager SPA.
func NewRouter(svcs Services, metrics *observability.Metrics, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(requestCounterMiddleware(metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API ---
	r.Route("/api", func(r chi.Router) {

		// Public routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authRegisterHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
		})

		// The category catalog is shared and readable without a token.
		r.Get("/categories", listCategoriesHandler(svcs.Categories, logger))
		r.Get("/categories/{categoryId}", getCategoryHandler(svcs.Categories, logger))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// Accounts + transfers
			r.Get("/accounts", listAccountsHandler(svcs.Accounts, logger))
			r.Post("/accounts", createAccountHandler(svcs.Accounts, logger))
			r.Post("/accounts/transfer", transferHandler(svcs.Ledger, logger))
			r.Get("/accounts/transfers", listTransfersHandler(svcs.Ledger, logger))
			r.Get("/accounts/{accountId}", getAccountHandler(svcs.Accounts, logger))
			r.Put("/accounts/{accountId}", updateAccountHandler(svcs.Accounts, logger))
			r.Delete("/accounts/{accountId}", deleteAccountHandler(svcs.Accounts, logger))

			// Transactions
			r.Get("/transactions", listTransactionsHandler(svcs.Ledger, logger))
			r.Post("/transactions", createTransactionHandler(svcs.Ledger, logger))
			r.Get("/transactions/date-range", dateRangeHandler(svcs.Ledger, logger))
			r.Get("/transactions/{transactionId}", getTransactionHandler(svcs.Ledger, logger))
			r.Put("/transactions/{transactionId}", updateTransactionHandler(svcs.Ledger, logger))
			r.Delete("/transactions/{transactionId}", deleteTransactionHandler(svcs.Ledger, logger))

			// Category catalog management
			r.Post("/categories", createCategoryHandler(svcs.Categories, logger))
			r.Put("/categories/{categoryId}", updateCategoryHandler(svcs.Categories, logger))
			r.Delete("/categories/{categoryId}", deleteCategoryHandler(svcs.Categories, logger))

			// Ledger activity snapshot
			r.Get("/metrics/ledger", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, metrics.GetLedgerSnapshot())
			})
		})
	})

	return r
}

// requestCounterMiddleware counts every handled request by response status.
func requestCounterMiddleware(metrics *observability.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			metrics.IncrRequest(strconv.Itoa(ww.Status()))
		})
	}
}
