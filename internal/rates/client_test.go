package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCurrentParsesBid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"USDBRL":{"code":"USD","codein":"BRL","bid":"5.4321"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "5.00", time.Second)
	q := c.Current(context.Background())
	if q.Fallback {
		t.Fatal("expected live quote, got fallback")
	}
	if q.Bid.String() != "5.4321" {
		t.Errorf("expected bid 5.4321, got %s", q.Bid)
	}
}

func TestCurrentFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "5.00", time.Second)
	q := c.Current(context.Background())
	if !q.Fallback {
		t.Fatal("expected fallback quote")
	}
	if q.Bid.String() != "5" {
		t.Errorf("expected fallback rate 5, got %s", q.Bid)
	}
}

func TestCurrentFallsBackOnGarbage(t *testing.T) {
	cases := []string{
		`not json`,
		`{"USDBRL":{"bid":"abc"}}`,
		`{"USDBRL":{"bid":"-1"}}`,
		`{"USDBRL":{}}`,
	}
	for _, body := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		c := NewClient(srv.URL, "4.90", time.Second)
		q := c.Current(context.Background())
		srv.Close()
		if !q.Fallback {
			t.Errorf("body %q: expected fallback", body)
		}
		if q.Bid.String() != "4.9" {
			t.Errorf("body %q: expected 4.9, got %s", body, q.Bid)
		}
	}
}

func TestCurrentFallsBackWhenUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "5.00", 200*time.Millisecond)
	q := c.Current(context.Background())
	if !q.Fallback {
		t.Fatal("expected fallback quote")
	}
}
