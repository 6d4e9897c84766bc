// Package rates fetches the USD/BRL exchange rate from a public quote
// API. Quotes are advisory: when the API is unreachable or returns
// garbage, the configured fallback rate is used and the failure is
// logged, never propagated.
package rates

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"contas/internal/log"
	"contas/internal/remote"
)

type Quote struct {
	Bid      decimal.Decimal
	Fallback bool
	At       time.Time
}

type Client struct {
	url      string
	fallback decimal.Decimal
	http     *http.Client
	logger   *slog.Logger
}

func NewClient(url, fallback string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	fb, err := decimal.NewFromString(fallback)
	if err != nil {
		fb = decimal.NewFromInt(5)
	}
	return &Client{
		url:      url,
		fallback: fb,
		http:     &http.Client{Timeout: timeout},
		logger:   slog.Default().With(log.FieldComponent, log.ComponentRates),
	}
}

// quotePayload matches the AwesomeAPI shape: a currency-pair keyed
// object whose bid is a decimal string.
type quotePayload struct {
	USDBRL struct {
		Bid string `json:"bid"`
	} `json:"USDBRL"`
}

// Current returns the latest quote, falling back to the configured
// rate on any failure.
func (c *Client) Current(ctx context.Context) Quote {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return c.fallbackQuote(ctx, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fallbackQuote(ctx, err)
	}

	var payload quotePayload
	if err := remote.DecodeJSON(resp, &payload); err != nil {
		return c.fallbackQuote(ctx, err)
	}

	bid, err := decimal.NewFromString(payload.USDBRL.Bid)
	if err != nil || bid.Sign() <= 0 {
		return c.fallbackQuote(ctx, remote.NewError(remote.KindMalformedResponse, resp.StatusCode, "invalid bid"))
	}

	return Quote{Bid: bid, At: time.Now()}
}

func (c *Client) fallbackQuote(ctx context.Context, cause error) Quote {
	c.logger.WarnContext(ctx, "rate fetch failed, using fallback",
		log.FieldError, cause,
		"fallback", c.fallback.String())
	return Quote{Bid: c.fallback, Fallback: true, At: time.Now()}
}
