package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/domain"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ============================================================
// Transactions: /api/transactions
// ============================================================

func listTransactionsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/transactions")
		defer span.End()

		filter, err := parseTransactionFilter(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		transactions, err := svc.ListTransactions(ctx, UserIDFromContext(ctx), filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, transactions)
	}
}

func getTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/transactions/{transactionId}")
		defer span.End()

		tx, err := svc.GetTransaction(ctx, UserIDFromContext(ctx), chi.URLParam(r, "transactionId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

func createTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/transactions")
		defer span.End()

		var req domain.CreateTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		tx, err := svc.CreateTransaction(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	}
}

func updateTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/transactions/{transactionId}")
		defer span.End()

		var req domain.UpdateTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		tx, err := svc.UpdateTransaction(ctx, UserIDFromContext(ctx), chi.URLParam(r, "transactionId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

func deleteTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/transactions/{transactionId}")
		defer span.End()

		if err := svc.DeleteTransaction(ctx, UserIDFromContext(ctx), chi.URLParam(r, "transactionId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "transaction removed"})
	}
}

// dateRangeHandler mirrors GET /api/transactions/date-range: both bounds
// are required, other filters ignored.
func dateRangeHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/transactions/date-range")
		defer span.End()

		start, err1 := parseDate(r.URL.Query().Get("startDate"))
		end, err2 := parseDate(r.URL.Query().Get("endDate"))
		if err1 != nil || err2 != nil || start.IsZero() || end.IsZero() {
			writeError(w, http.StatusBadRequest, "please provide both startDate and endDate")
			return
		}

		transactions, err := svc.ListTransactions(ctx, UserIDFromContext(ctx), domain.TransactionFilter{
			StartDate: start,
			EndDate:   end,
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, transactions)
	}
}

// parseTransactionFilter builds a filter from query parameters:
// startDate, endDate, categories (csv), divisions (csv), type,
// minAmount, maxAmount.
func parseTransactionFilter(r *http.Request) (domain.TransactionFilter, error) {
	q := r.URL.Query()
	var filter domain.TransactionFilter

	var err error
	if filter.StartDate, err = parseDate(q.Get("startDate")); err != nil {
		return filter, &domain.ErrValidation{Field: "startDate", Message: "invalid date"}
	}
	if filter.EndDate, err = parseDate(q.Get("endDate")); err != nil {
		return filter, &domain.ErrValidation{Field: "endDate", Message: "invalid date"}
	}

	if v := q.Get("categories"); v != "" {
		filter.Categories = strings.Split(v, ",")
	}
	if v := q.Get("divisions"); v != "" {
		for _, d := range strings.Split(v, ",") {
			filter.Divisions = append(filter.Divisions, domain.Division(d))
		}
	}
	if v := q.Get("type"); v != "" && v != "all" {
		filter.Type = domain.TransactionType(v)
	}
	if v := q.Get("minAmount"); v != "" {
		min, err := decimal.NewFromString(v)
		if err != nil {
			return filter, &domain.ErrValidation{Field: "minAmount", Message: "invalid amount"}
		}
		filter.MinAmount = &min
	}
	if v := q.Get("maxAmount"); v != "" {
		max, err := decimal.NewFromString(v)
		if err != nil {
			return filter, &domain.ErrValidation{Field: "maxAmount", Message: "invalid amount"}
		}
		filter.MaxAmount = &max
	}

	return filter, nil
}

// parseDate accepts RFC3339 or plain YYYY-MM-DD. Empty input is fine.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
