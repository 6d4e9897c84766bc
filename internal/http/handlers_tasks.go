package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"contas/internal/auth"
	"contas/internal/core"
)

type taskJSON struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Price     *float64  `json:"price"`
	Status    string    `json:"status"`
	Type      string    `json:"type,omitempty"`
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func taskToJSON(t core.Task) taskJSON {
	out := taskJSON{
		ID:        t.ID,
		Title:     t.Title,
		Status:    string(t.Status),
		Type:      t.Type,
		Month:     t.Month,
		Year:      t.Year,
		CreatedAt: t.CreatedAt,
	}
	if t.Price != nil {
		reais := t.Price.Reais()
		out.Price = &reais
	}
	return out
}

func taskFromJSON(in taskJSON, userID string) core.Task {
	t := core.Task{
		ID:     in.ID,
		UserID: userID,
		Title:  in.Title,
		Status: core.TaskStatus(in.Status),
		Type:   in.Type,
		Month:  in.Month,
		Year:   in.Year,
	}
	if in.Price != nil {
		t.Price = &core.Money{Cents: core.CentsFromReais(*in.Price)}
	}
	return t
}

func userID(r *http.Request) string {
	claims, _ := auth.ClaimsFromContext(r.Context())
	return claims.UserID
}

// parsePeriod reads the mandatory month and year query parameters.
func parsePeriod(r *http.Request) (month, year int, err error) {
	month, err = strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, core.ErrInvalidMonth
	}
	year, err = strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < core.MinYear {
		return 0, 0, core.ErrInvalidYear
	}
	return month, year, nil
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	month, year, err := parsePeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tasks, err := s.service.Tasks(r.Context(), userID(r), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]taskJSON, len(tasks))
	for i, t := range tasks {
		out[i] = taskToJSON(t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in taskJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}

	t := taskFromJSON(in, userID(r))
	t.ID = ""
	if err := t.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.service.CreateTask(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, taskToJSON(created))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var in taskJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}

	t := taskFromJSON(in, userID(r))
	t.ID = chi.URLParam(r, "id")
	if err := t.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.service.UpdateTask(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskToJSON(updated))
}

func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}

	status := core.TaskStatus(in.Status)
	if !status.Valid() {
		writeError(w, r, core.ErrInvalidStatus)
		return
	}

	if err := s.service.UpdateTaskStatus(r.Context(), userID(r), chi.URLParam(r, "id"), status); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": in.Status})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteTask(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
