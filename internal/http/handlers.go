package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopledger/internal/core"
)

// handleStats resolves the requested period and returns the aggregated
// summary. Results are memoized per period+date until the next write.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	period := core.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = core.PeriodMonth
	}

	var customDay core.Date
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := core.ParseDate(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		customDay = parsed
	}

	cacheKey := fmt.Sprintf("%s|%s", period, customDay.String())
	if cached, ok := s.statsCache.Get(cacheKey); ok {
		writeData(w, http.StatusOK, cached)
		return
	}

	summary, err := s.transactions.Stats(r.Context(), period, customDay)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.statsCache.Set(cacheKey, summary)
	writeData(w, http.StatusOK, summary)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := core.TransactionFilter{
		Type:     core.TransactionType(q.Get("type")),
		Category: q.Get("category"),
	}

	startRaw, endRaw := q.Get("startDate"), q.Get("endDate")
	if startRaw != "" || endRaw != "" {
		if startRaw == "" || endRaw == "" {
			writeError(w, r, core.ErrInvalidDate)
			return
		}
		start, err := core.ParseDate(startRaw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		end, err := core.ParseDate(endRaw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Range = &core.DateRange{Start: start, End: end}
	}

	transactions, err := s.transactions.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, transactions)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "invalid request body"})
		return
	}

	created, err := s.transactions.Create(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.statsCache.Purge()
	writeData(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.transactions.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	s.statsCache.Purge()
	writeData(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "invalid request body"})
		return
	}

	created, err := s.categories.Create(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.categories.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"id": id})
}

// handleInit seeds the default categories. Safe to call repeatedly.
func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	msg, err := s.categories.SeedDefaults(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"message": msg})
}

// handleMetrics reports process counters for operational dashboards.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]any{
		"http_requests_total": s.tracer.TotalRequests(),
		"active_clients":      s.limiter.ActiveClients(),
		"stats_cache_entries": s.statsCache.Size(),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}
