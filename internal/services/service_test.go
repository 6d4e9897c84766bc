package services

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"contas/internal/advisor"
	"contas/internal/amqp"
	"contas/internal/cache"
	"contas/internal/core"
	"contas/internal/rates"
	"contas/internal/store"
	"contas/internal/store/memory"
)

// countingStore counts list calls so tests can observe cache hits.
type countingStore struct {
	store.RecordStore
	listTasks      atomic.Int64
	listAllIncomes atomic.Int64
}

func (c *countingStore) ListTasks(ctx context.Context, f store.Filter) ([]core.Task, error) {
	c.listTasks.Add(1)
	return c.RecordStore.ListTasks(ctx, f)
}

func (c *countingStore) ListAllIncomes(ctx context.Context, userID string) ([]core.Income, error) {
	c.listAllIncomes.Add(1)
	return c.RecordStore.ListAllIncomes(ctx, userID)
}

type capturedEvents struct {
	msgs []*amqp.RecordEventMessage
}

func (c *capturedEvents) PublishRecordEvent(_ context.Context, msg *amqp.RecordEventMessage) error {
	c.msgs = append(c.msgs, msg)
	return nil
}

type fixedRates struct{ bid string }

func (f fixedRates) Current(context.Context) rates.Quote {
	d, _ := decimal.NewFromString(f.bid)
	return rates.Quote{Bid: d, At: time.Now()}
}

type echoAdvisor struct {
	calls atomic.Int64
}

func (e *echoAdvisor) Analyze(_ context.Context, r advisor.Request) (advisor.Analysis, error) {
	e.calls.Add(1)
	raw, _ := json.Marshal(r)
	return advisor.Analysis{Raw: raw}, nil
}

func testService(t *testing.T) (*Service, *countingStore, *capturedEvents) {
	t.Helper()
	records := &countingStore{RecordStore: memory.New()}
	events := &capturedEvents{}
	svc := New(records, Options{
		Cache:     cache.Options{FreshFor: time.Minute, RetainFor: 5 * time.Minute},
		Publisher: events,
		Rates:     fixedRates{bid: "5.00"},
		Advisor:   &echoAdvisor{},
	})
	return svc, records, events
}

func seedMonth(t *testing.T, svc *Service) []core.Task {
	t.Helper()
	ctx := context.Background()

	specs := []struct {
		title  string
		cents  *int64
		status core.TaskStatus
	}{
		{"Aluguel", ptr(int64(10000)), core.StatusPaid},
		{"Internet", nil, core.StatusPending},
		{"Luz", ptr(int64(5000)), core.StatusPaid},
	}
	var created []core.Task
	for _, s := range specs {
		task := core.Task{UserID: "u1", Title: s.title, Status: s.status, Month: 3, Year: 2025}
		if s.cents != nil {
			task.Price = &core.Money{Cents: *s.cents}
		}
		out, err := svc.CreateTask(ctx, task)
		if err != nil {
			t.Fatalf("create task %s: %v", s.title, err)
		}
		created = append(created, out)
	}

	_, err := svc.CreateIncome(ctx, core.Income{
		UserID: "u1", Description: "Salario",
		Amount: core.Money{Cents: 100000}, Month: 3, Year: 2025,
	})
	if err != nil {
		t.Fatalf("create income: %v", err)
	}
	return created
}

func ptr[T any](v T) *T { return &v }

func TestSummaryDerivation(t *testing.T) {
	svc, _, _ := testService(t)
	seedMonth(t, svc)
	ctx := context.Background()

	s, err := svc.Summary(ctx, "u1", 2025, 3)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.TaskCount != 3 {
		t.Errorf("expected 3 tasks, got %d", s.TaskCount)
	}
	if s.PaidTotal.Cents != 15000 {
		t.Errorf("expected paid 15000, got %d", s.PaidTotal.Cents)
	}
	if s.IncomeTotal.Cents != 100000 {
		t.Errorf("expected income 100000, got %d", s.IncomeTotal.Cents)
	}
	if s.PercentSpent != 15 {
		t.Errorf("expected 15%%, got %v", s.PercentSpent)
	}
	if s.Budget.Level != core.BudgetExcellent {
		t.Errorf("expected Excellent, got %v", s.Budget.Level)
	}
}

func TestSummaryRecomputesAfterDelete(t *testing.T) {
	svc, _, _ := testService(t)
	created := seedMonth(t, svc)
	ctx := context.Background()

	if _, err := svc.Summary(ctx, "u1", 2025, 3); err != nil {
		t.Fatalf("summary: %v", err)
	}

	// Drop the 100-real paid task; the cached summary must not survive.
	if err := svc.DeleteTask(ctx, "u1", created[0].ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}

	s, err := svc.Summary(ctx, "u1", 2025, 3)
	if err != nil {
		t.Fatalf("summary after delete: %v", err)
	}
	if s.PaidTotal.Cents != 5000 {
		t.Errorf("expected paid 5000 after delete, got %d", s.PaidTotal.Cents)
	}
	if s.PercentSpent != 5 {
		t.Errorf("expected 5%% after delete, got %v", s.PercentSpent)
	}
	if s.TaskCount != 2 {
		t.Errorf("expected 2 tasks after delete, got %d", s.TaskCount)
	}
}

func TestTasksAreCached(t *testing.T) {
	svc, records, _ := testService(t)
	seedMonth(t, svc)
	ctx := context.Background()

	records.listTasks.Store(0)
	for i := 0; i < 3; i++ {
		if _, err := svc.Tasks(ctx, "u1", 2025, 3); err != nil {
			t.Fatalf("tasks: %v", err)
		}
	}
	if n := records.listTasks.Load(); n != 1 {
		t.Errorf("expected a single backing list call, got %d", n)
	}
}

func TestTaskMutationLeavesIncomeCachesAlone(t *testing.T) {
	svc, records, _ := testService(t)
	seedMonth(t, svc)
	ctx := context.Background()

	if _, err := svc.IncomeByMonth(ctx, "u1"); err != nil {
		t.Fatalf("income by month: %v", err)
	}
	records.listAllIncomes.Store(0)

	if _, err := svc.CreateTask(ctx, core.Task{
		UserID: "u1", Title: "Agua", Status: core.StatusPending, Month: 3, Year: 2025,
	}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := svc.IncomeByMonth(ctx, "u1"); err != nil {
		t.Fatalf("income by month: %v", err)
	}
	if n := records.listAllIncomes.Load(); n != 0 {
		t.Errorf("task mutation must not drop income caches, got %d refetches", n)
	}
}

func TestIncomeMutationLeavesTaskCacheAlone(t *testing.T) {
	svc, records, _ := testService(t)
	seedMonth(t, svc)
	ctx := context.Background()

	if _, err := svc.Tasks(ctx, "u1", 2025, 3); err != nil {
		t.Fatalf("tasks: %v", err)
	}
	records.listTasks.Store(0)

	if _, err := svc.CreateIncome(ctx, core.Income{
		UserID: "u1", Description: "Extra",
		Amount: core.Money{Cents: 20000}, Month: 4, Year: 2025,
	}); err != nil {
		t.Fatalf("create income: %v", err)
	}

	if _, err := svc.Tasks(ctx, "u1", 2025, 3); err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if n := records.listTasks.Load(); n != 0 {
		t.Errorf("income mutation must not drop task caches, got %d refetches", n)
	}

	// The by-month aggregate, however, must refetch.
	byMonth, err := svc.IncomeByMonth(ctx, "u1")
	if err != nil {
		t.Fatalf("income by month: %v", err)
	}
	if byMonth[4] != 20000 {
		t.Errorf("expected new income visible, got %v", byMonth)
	}
}

func TestIncomeByMonthIsSparse(t *testing.T) {
	svc, _, _ := testService(t)
	seedMonth(t, svc)
	ctx := context.Background()

	byMonth, err := svc.IncomeByMonth(ctx, "u1")
	if err != nil {
		t.Fatalf("income by month: %v", err)
	}
	if _, ok := byMonth[1]; ok {
		t.Error("months without income must be absent, not zero")
	}
	if byMonth[3] != 100000 {
		t.Errorf("expected 100000 for March, got %d", byMonth[3])
	}
}

func TestMutationEventsPublished(t *testing.T) {
	svc, _, events := testService(t)
	created := seedMonth(t, svc)
	ctx := context.Background()

	if err := svc.UpdateTaskStatus(ctx, "u1", created[1].ID, core.StatusPaid); err != nil {
		t.Fatalf("update status: %v", err)
	}

	// 3 task creates + 1 income create + 1 status change.
	if len(events.msgs) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events.msgs))
	}
	last := events.msgs[len(events.msgs)-1]
	if last.Entity != amqp.EntityTask || last.Action != amqp.ActionStatusChanged {
		t.Errorf("unexpected event: %+v", last)
	}
}

func TestAnalysisUsesSummaryAndRate(t *testing.T) {
	adv := &echoAdvisor{}
	records := &countingStore{RecordStore: memory.New()}
	svc := New(records, Options{
		Cache:   cache.Options{FreshFor: time.Minute, RetainFor: 5 * time.Minute},
		Rates:   fixedRates{bid: "5.43"},
		Advisor: adv,
	})
	seedMonth(t, svc)
	ctx := context.Background()

	a, err := svc.Analysis(ctx, "u1", 2025, 3)
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}

	var req advisor.Request
	if err := json.Unmarshal(a.Raw, &req); err != nil {
		t.Fatalf("decode forwarded request: %v", err)
	}
	if req.PaidTotal != 150 || req.Income != 1000 {
		t.Errorf("unexpected figures: %+v", req)
	}
	if req.USDRate != "5.43" {
		t.Errorf("unexpected rate: %q", req.USDRate)
	}

	// Second read is served from cache.
	if _, err := svc.Analysis(ctx, "u1", 2025, 3); err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if n := adv.calls.Load(); n != 1 {
		t.Errorf("expected a single advisor call, got %d", n)
	}
}
