package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"contas/internal/core"
)

type incomeJSON struct {
	ID          string    `json:"id"`
	Description string    `json:"description,omitempty"`
	Value       float64   `json:"value"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

func incomeToJSON(i core.Income) incomeJSON {
	return incomeJSON{
		ID:          i.ID,
		Description: i.Description,
		Value:       i.Amount.Reais(),
		Month:       i.Month,
		Year:        i.Year,
		CreatedAt:   i.CreatedAt,
	}
}

func incomeFromJSON(in incomeJSON, userID string) core.Income {
	return core.Income{
		ID:          in.ID,
		UserID:      userID,
		Description: in.Description,
		Amount:      core.Money{Cents: core.CentsFromReais(in.Value)},
		Month:       in.Month,
		Year:        in.Year,
	}
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	month, year, err := parsePeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	incomes, err := s.service.Incomes(r.Context(), userID(r), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]incomeJSON, len(incomes))
	for i, inc := range incomes {
		out[i] = incomeToJSON(inc)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleIncomeByMonth returns the month-keyed income totals in reais.
// The map is sparse: months without income are absent, not zero.
func (s *Server) handleIncomeByMonth(w http.ResponseWriter, r *http.Request) {
	byMonth, err := s.service.IncomeByMonth(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make(map[string]float64, len(byMonth))
	for month, cents := range byMonth {
		out[strconv.Itoa(month)] = core.Money{Cents: cents}.Reais()
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var in incomeJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}

	income := incomeFromJSON(in, userID(r))
	income.ID = ""
	if err := income.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.service.CreateIncome(r.Context(), income)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, incomeToJSON(created))
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	var in incomeJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}

	income := incomeFromJSON(in, userID(r))
	income.ID = chi.URLParam(r, "id")
	if err := income.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.service.UpdateIncome(r.Context(), income)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, incomeToJSON(updated))
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteIncome(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
