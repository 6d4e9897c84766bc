// Package advisor talks to the external budget-analysis endpoint. The
// service assembles the month's figures and forwards the advisor's
// answer verbatim; the payload shape belongs to the advisor, not to us.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"contas/internal/auth"
	"contas/internal/core"
	"contas/internal/remote"
)

// Request carries the figures the advisor needs. Amounts go over the
// wire in reais, matching the record store convention.
type Request struct {
	Month        int     `json:"month"`
	Year         int     `json:"year"`
	Income       float64 `json:"income"`
	PaidTotal    float64 `json:"paid_total"`
	PendingTotal float64 `json:"pending_total"`
	USDRate      string  `json:"usd_rate"`
}

// Analysis is the advisor's answer, kept opaque.
type Analysis struct {
	Raw json.RawMessage
}

type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// NewRequest builds the advisor payload from a month summary and the
// current exchange rate.
func NewRequest(s core.MonthSummary, usdRate string) Request {
	return Request{
		Month:        s.Month,
		Year:         s.Year,
		Income:       s.IncomeTotal.Reais(),
		PaidTotal:    s.PaidTotal.Reais(),
		PendingTotal: s.PendingTotal.Reais(),
		USDRate:      usdRate,
	}
}

// Analyze sends the figures to the advisor. It fails fast when the
// context carries no credential.
func (c *Client) Analyze(ctx context.Context, r Request) (Analysis, error) {
	token, ok := auth.TokenFromContext(ctx)
	if !ok {
		return Analysis{}, remote.ErrUnauthenticated
	}

	body, err := json.Marshal(r)
	if err != nil {
		return Analysis{}, fmt.Errorf("marshal analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Analysis{}, fmt.Errorf("build analysis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Analysis{}, remote.NewError(remote.KindRemoteFailure, 0, err.Error())
	}

	var raw json.RawMessage
	if err := remote.DecodeJSON(resp, &raw); err != nil {
		return Analysis{}, err
	}
	return Analysis{Raw: raw}, nil
}
