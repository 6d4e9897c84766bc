// Package rest is the remote record store backend: a thin client for
// the external REST surface that owns task and income persistence.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"contas/internal/auth"
	"contas/internal/core"
	"contas/internal/remote"
	"contas/internal/store"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// newRequest builds a request carrying the caller's bearer credential.
// It fails fast, before any network activity, when the context has no
// credential.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	token, ok := auth.TokenFromContext(ctx)
	if !ok {
		return nil, remote.ErrUnauthenticated
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return remote.NewError(remote.KindRemoteFailure, 0, err.Error())
	}
	return remote.DecodeJSON(resp, out)
}

// Wire shapes. The remote store speaks plain JSON numbers in reais;
// conversion to cents happens here, at the edge.
type (
	taskPayload struct {
		ID        string    `json:"id,omitempty"`
		Title     string    `json:"title"`
		Price     *float64  `json:"price"`
		Status    string    `json:"status"`
		Type      string    `json:"type,omitempty"`
		Month     int       `json:"month"`
		Year      int       `json:"year"`
		CreatedAt time.Time `json:"created_at,omitempty"`
	}

	incomePayload struct {
		ID          string    `json:"id,omitempty"`
		Description string    `json:"description,omitempty"`
		Value       float64   `json:"value"`
		Month       int       `json:"month"`
		Year        int       `json:"year"`
		CreatedAt   time.Time `json:"created_at,omitempty"`
	}

	statusPayload struct {
		Status string `json:"status"`
	}
)

func taskFromPayload(p taskPayload) core.Task {
	t := core.Task{
		ID:        p.ID,
		Title:     p.Title,
		Status:    core.TaskStatus(p.Status),
		Type:      p.Type,
		Month:     p.Month,
		Year:      p.Year,
		CreatedAt: p.CreatedAt,
	}
	if p.Price != nil {
		t.Price = &core.Money{Cents: core.CentsFromReais(*p.Price)}
	}
	return t
}

func taskToPayload(t core.Task) taskPayload {
	p := taskPayload{
		ID:     t.ID,
		Title:  t.Title,
		Status: string(t.Status),
		Type:   t.Type,
		Month:  t.Month,
		Year:   t.Year,
	}
	if t.Price != nil {
		reais := t.Price.Reais()
		p.Price = &reais
	}
	return p
}

func incomeFromPayload(p incomePayload) core.Income {
	return core.Income{
		ID:          p.ID,
		Description: p.Description,
		Amount:      core.Money{Cents: core.CentsFromReais(p.Value)},
		Month:       p.Month,
		Year:        p.Year,
		CreatedAt:   p.CreatedAt,
	}
}

func incomeToPayload(i core.Income) incomePayload {
	return incomePayload{
		ID:          i.ID,
		Description: i.Description,
		Value:       i.Amount.Reais(),
		Month:       i.Month,
		Year:        i.Year,
	}
}

func periodQuery(f store.Filter) url.Values {
	q := url.Values{}
	if f.Month != 0 {
		q.Set("month", strconv.Itoa(f.Month))
	}
	if f.Year != 0 {
		q.Set("year", strconv.Itoa(f.Year))
	}
	return q
}

func (c *Client) ListTasks(ctx context.Context, f store.Filter) ([]core.Task, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/tasks", periodQuery(f), nil)
	if err != nil {
		return nil, err
	}
	var payloads []taskPayload
	if err := c.do(req, &payloads); err != nil {
		return nil, err
	}
	tasks := make([]core.Task, len(payloads))
	for i, p := range payloads {
		tasks[i] = taskFromPayload(p)
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, t core.Task) (core.Task, error) {
	if err := t.Validate(); err != nil {
		return core.Task{}, remote.NewError(remote.KindValidation, 0, err.Error())
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/tasks", nil, taskToPayload(t))
	if err != nil {
		return core.Task{}, err
	}
	var p taskPayload
	if err := c.do(req, &p); err != nil {
		return core.Task{}, err
	}
	return taskFromPayload(p), nil
}

func (c *Client) UpdateTask(ctx context.Context, t core.Task) (core.Task, error) {
	if err := t.Validate(); err != nil {
		return core.Task{}, remote.NewError(remote.KindValidation, 0, err.Error())
	}
	req, err := c.newRequest(ctx, http.MethodPut, "/tasks/"+url.PathEscape(t.ID), nil, taskToPayload(t))
	if err != nil {
		return core.Task{}, err
	}
	var p taskPayload
	if err := c.do(req, &p); err != nil {
		return core.Task{}, err
	}
	return taskFromPayload(p), nil
}

func (c *Client) UpdateTaskStatus(ctx context.Context, _ string, id string, status core.TaskStatus) error {
	if !status.Valid() {
		return remote.NewError(remote.KindValidation, 0, core.ErrInvalidStatus.Error())
	}
	req, err := c.newRequest(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id)+"/status", nil, statusPayload{Status: string(status)})
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) DeleteTask(ctx context.Context, _ string, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) ListIncomes(ctx context.Context, f store.Filter) ([]core.Income, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/incomes", periodQuery(f), nil)
	if err != nil {
		return nil, err
	}
	var payloads []incomePayload
	if err := c.do(req, &payloads); err != nil {
		return nil, err
	}
	incomes := make([]core.Income, len(payloads))
	for i, p := range payloads {
		incomes[i] = incomeFromPayload(p)
	}
	return incomes, nil
}

func (c *Client) ListAllIncomes(ctx context.Context, _ string) ([]core.Income, error) {
	return c.ListIncomes(ctx, store.Filter{})
}

func (c *Client) CreateIncome(ctx context.Context, i core.Income) (core.Income, error) {
	if err := i.Validate(); err != nil {
		return core.Income{}, remote.NewError(remote.KindValidation, 0, err.Error())
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/incomes", nil, incomeToPayload(i))
	if err != nil {
		return core.Income{}, err
	}
	var p incomePayload
	if err := c.do(req, &p); err != nil {
		return core.Income{}, err
	}
	return incomeFromPayload(p), nil
}

func (c *Client) UpdateIncome(ctx context.Context, i core.Income) (core.Income, error) {
	if err := i.Validate(); err != nil {
		return core.Income{}, remote.NewError(remote.KindValidation, 0, err.Error())
	}
	req, err := c.newRequest(ctx, http.MethodPut, "/incomes/"+url.PathEscape(i.ID), nil, incomeToPayload(i))
	if err != nil {
		return core.Income{}, err
	}
	var p incomePayload
	if err := c.do(req, &p); err != nil {
		return core.Income{}, err
	}
	return incomeFromPayload(p), nil
}

func (c *Client) DeleteIncome(ctx context.Context, _ string, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/incomes/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}
