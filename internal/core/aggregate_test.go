package core

import (
	"math"
	"testing"
)

func TestSumByMonthEmpty(t *testing.T) {
	got := SumByMonth(nil, func(Task) int { return 0 }, func(Task) int64 { return 0 })
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

func TestSumByMonthSingleMonth(t *testing.T) {
	price := func(c int64) *Money { return &Money{Cents: c} }
	tasks := []Task{
		{Month: 3, Price: price(10000)},
		{Month: 3, Price: nil}, // nil sums as zero
		{Month: 3, Price: price(5000)},
	}
	got := SumByMonth(tasks, func(t Task) int { return t.Month }, Task.PriceCents)
	if len(got) != 1 {
		t.Fatalf("expected single entry, got %v", got)
	}
	if got[3] != 15000 {
		t.Fatalf("expected 15000 for month 3, got %d", got[3])
	}
}

func TestSumByMonthSparse(t *testing.T) {
	incomes := []Income{
		{Month: 1, Amount: Money{Cents: 100}},
		{Month: 1, Amount: Money{Cents: 200}},
		{Month: 7, Amount: Money{Cents: 0}},
	}
	got := SumByMonth(incomes,
		func(i Income) int { return i.Month },
		func(i Income) int64 { return i.Amount.Cents })

	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %v", got)
	}
	if got[1] != 300 {
		t.Errorf("month 1: expected 300, got %d", got[1])
	}
	// A zero sum is still present; an absent month is not.
	if v, ok := got[7]; !ok || v != 0 {
		t.Errorf("month 7: expected present with 0, got %d (present=%v)", v, ok)
	}
	if _, ok := got[2]; ok {
		t.Errorf("month 2 should be absent from a sparse map")
	}
}

func TestPercentSpent(t *testing.T) {
	cases := []struct {
		paid, income int64
		want         float64
	}{
		{15000, 100000, 15},
		{5000, 100000, 5},
		{0, 100000, 0},
		{100000, 100000, 100},
		{50, 0, 0}, // zero income never yields NaN/Inf
		{0, 0, 0},
	}
	for i, tc := range cases {
		got := PercentSpent(tc.paid, tc.income)
		if got != tc.want {
			t.Errorf("case %d: PercentSpent(%d, %d) = %v, want %v", i, tc.paid, tc.income, got, tc.want)
		}
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("case %d: non-finite result %v", i, got)
		}
	}
}

func TestClassifyBudgetBoundaries(t *testing.T) {
	cases := []struct {
		percent float64
		want    BudgetLevel
	}{
		{0, BudgetExcellent},
		{49.999, BudgetExcellent},
		{50, BudgetGood},
		{69.999, BudgetGood},
		{70, BudgetWarning},
		{89.999, BudgetWarning},
		{90, BudgetCritical},
		{250, BudgetCritical},
	}
	for _, tc := range cases {
		got := ClassifyBudget(tc.percent)
		if got.Level != tc.want {
			t.Errorf("ClassifyBudget(%v) = %s, want %s", tc.percent, got.Level, tc.want)
		}
		if got.Message == "" {
			t.Errorf("ClassifyBudget(%v): empty message", tc.percent)
		}
	}
}

func TestSummarize(t *testing.T) {
	price := func(c int64) *Money { return &Money{Cents: c} }
	tasks := []Task{
		{Month: 3, Year: 2025, Status: StatusPaid, Price: price(10000)},
		{Month: 3, Year: 2025, Status: StatusPending, Price: nil},
		{Month: 3, Year: 2025, Status: StatusPaid, Price: price(5000)},
	}
	s := Summarize(2025, 3, tasks, 100000)

	if s.TaskCount != 3 {
		t.Errorf("expected 3 tasks, got %d", s.TaskCount)
	}
	if s.PaidTotal.Cents != 15000 {
		t.Errorf("expected paid total 15000, got %d", s.PaidTotal.Cents)
	}
	if s.PendingTotal.Cents != 0 {
		t.Errorf("expected pending total 0, got %d", s.PendingTotal.Cents)
	}
	if s.TaskTotal.Cents != 15000 {
		t.Errorf("expected task total 15000, got %d", s.TaskTotal.Cents)
	}
	if s.PercentSpent != 15 {
		t.Errorf("expected 15%% spent, got %v", s.PercentSpent)
	}
	if s.Budget.Level != BudgetExcellent {
		t.Errorf("expected Excellent, got %s", s.Budget.Level)
	}
}

func TestSummarizeFixedCountsInTotalOnly(t *testing.T) {
	price := func(c int64) *Money { return &Money{Cents: c} }
	tasks := []Task{
		{Month: 1, Year: 2025, Status: StatusFixed, Price: price(2000)},
		{Month: 1, Year: 2025, Status: StatusPending, Price: price(1000)},
	}
	s := Summarize(2025, 1, tasks, 0)
	if s.TaskTotal.Cents != 3000 {
		t.Errorf("expected task total 3000, got %d", s.TaskTotal.Cents)
	}
	if s.PaidTotal.Cents != 0 || s.PendingTotal.Cents != 1000 {
		t.Errorf("unexpected paid/pending: %d/%d", s.PaidTotal.Cents, s.PendingTotal.Cents)
	}
	if s.PercentSpent != 0 || s.Budget.Level != BudgetExcellent {
		t.Errorf("zero income must classify Excellent, got %v %s", s.PercentSpent, s.Budget.Level)
	}
}
