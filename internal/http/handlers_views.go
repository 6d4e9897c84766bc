package http

import (
	"net/http"
	"time"

	"contas/internal/core"
)

type summaryJSON struct {
	Year  int `json:"year"`
	Month int `json:"month"`

	TaskCount    int     `json:"task_count"`
	TaskTotal    float64 `json:"task_total"`
	PaidTotal    float64 `json:"paid_total"`
	PendingTotal float64 `json:"pending_total"`
	Income       float64 `json:"income"`

	PercentSpent  float64 `json:"percent_spent"`
	BudgetLevel   string  `json:"budget_level"`
	BudgetMessage string  `json:"budget_message"`

	PaidFormatted string `json:"paid_formatted"`
}

func summaryToJSON(s core.MonthSummary) summaryJSON {
	return summaryJSON{
		Year:          s.Year,
		Month:         s.Month,
		TaskCount:     s.TaskCount,
		TaskTotal:     s.TaskTotal.Reais(),
		PaidTotal:     s.PaidTotal.Reais(),
		PendingTotal:  s.PendingTotal.Reais(),
		Income:        s.IncomeTotal.Reais(),
		PercentSpent:  s.PercentSpent,
		BudgetLevel:   string(s.Budget.Level),
		BudgetMessage: s.Budget.Message,
		PaidFormatted: core.FormatBRL(s.PaidTotal.Cents),
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	month, year, err := parsePeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := s.service.Summary(r.Context(), userID(r), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryToJSON(summary))
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	month, year, err := parsePeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	analysis, err := s.service.Analysis(r.Context(), userID(r), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// The advisor's answer is forwarded verbatim.
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(analysis.Raw)
}

type rateJSON struct {
	Bid      string    `json:"bid"`
	Fallback bool      `json:"fallback"`
	At       time.Time `json:"at"`
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	q := s.service.Rate(r.Context())
	writeJSON(w, http.StatusOK, rateJSON{
		Bid:      q.Bid.String(),
		Fallback: q.Fallback,
		At:       q.At,
	})
}
