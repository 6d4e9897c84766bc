package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contas/internal/auth"
	"contas/internal/core"
	"contas/internal/remote"
)

func TestAnalyzeForwardsFiguresAndAnswer(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer header")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"advice":"reduce pending expenses","score":7}`))
	}))
	defer srv.Close()

	summary := core.Summarize(2025, 3, []core.Task{
		{Title: "Aluguel", Price: &core.Money{Cents: 15000}, Status: core.StatusPaid, Month: 3, Year: 2025},
		{Title: "Luz", Price: &core.Money{Cents: 5000}, Status: core.StatusPending, Month: 3, Year: 2025},
	}, 100000)

	c := NewClient(srv.URL, time.Second)
	ctx := auth.WithToken(context.Background(), "tok")
	a, err := c.Analyze(ctx, NewRequest(summary, "5.43"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Income != 1000 || got.PaidTotal != 150 || got.PendingTotal != 50 {
		t.Errorf("unexpected figures: %+v", got)
	}
	if got.USDRate != "5.43" {
		t.Errorf("unexpected rate: %q", got.USDRate)
	}

	var answer struct {
		Advice string `json:"advice"`
	}
	if err := json.Unmarshal(a.Raw, &answer); err != nil || answer.Advice == "" {
		t.Errorf("advisor answer not preserved: %s", a.Raw)
	}
}

func TestAnalyzeFailsFastWithoutCredential(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Analyze(context.Background(), Request{})
	if remote.KindOf(err) != remote.KindUnauthenticated {
		t.Errorf("expected unauthenticated kind, got %v", err)
	}
	if called {
		t.Error("no network call may happen without a credential")
	}
}

func TestAnalyzeRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Analyze(auth.WithToken(context.Background(), "tok"), Request{})
	if remote.KindOf(err) != remote.KindRemoteFailure {
		t.Errorf("expected remote failure kind, got %v", err)
	}
}
