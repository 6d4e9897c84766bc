package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"contas/internal/core"
	"contas/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "contas.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestTaskRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateTask(ctx, core.Task{
		UserID: "u1",
		Title:  "Aluguel",
		Price:  &core.Money{Cents: 120000},
		Status: core.StatusPending,
		Month:  3,
		Year:   2025,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}

	tasks, err := repo.ListTasks(ctx, store.Filter{UserID: "u1", Month: 3, Year: 2025})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Aluguel" || tasks[0].PriceCents() != 120000 {
		t.Errorf("unexpected tasks: %+v", tasks)
	}

	if err := repo.UpdateTaskStatus(ctx, "u1", created.ID, core.StatusPaid); err != nil {
		t.Fatalf("update status: %v", err)
	}
	tasks, _ = repo.ListTasks(ctx, store.Filter{UserID: "u1"})
	if tasks[0].Status != core.StatusPaid {
		t.Errorf("expected Pago, got %s", tasks[0].Status)
	}

	if err := repo.DeleteTask(ctx, "u1", created.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	tasks, _ = repo.ListTasks(ctx, store.Filter{UserID: "u1"})
	if len(tasks) != 0 {
		t.Errorf("expected empty list, got %+v", tasks)
	}
}

func TestNullPriceSurvivesStorage(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateTask(ctx, core.Task{
		UserID: "u1",
		Title:  "Internet",
		Status: core.StatusPending,
		Month:  1,
		Year:   2025,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	tasks, err := repo.ListTasks(ctx, store.Filter{UserID: "u1"})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if tasks[0].Price != nil {
		t.Errorf("expected nil price, got %+v", tasks[0].Price)
	}
	if tasks[0].ID != created.ID {
		t.Errorf("id mismatch")
	}
}

func TestUserScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateTask(ctx, core.Task{
		UserID: "u1", Title: "Luz", Status: core.StatusPending, Month: 2, Year: 2025,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := repo.DeleteTask(ctx, "u2", created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected not found for foreign user, got %v", err)
	}
	if err := repo.UpdateTaskStatus(ctx, "u2", created.ID, core.StatusPaid); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected not found for foreign user, got %v", err)
	}
}

func TestIncomeRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateIncome(ctx, core.Income{
		UserID:      "u1",
		Description: "Salario",
		Amount:      core.Money{Cents: 500000},
		Month:       3,
		Year:        2025,
	})
	if err != nil {
		t.Fatalf("create income: %v", err)
	}

	created.Amount.Cents = 550000
	updated, err := repo.UpdateIncome(ctx, created)
	if err != nil {
		t.Fatalf("update income: %v", err)
	}
	if updated.Amount.Cents != 550000 {
		t.Errorf("expected 550000, got %d", updated.Amount.Cents)
	}

	all, err := repo.ListAllIncomes(ctx, "u1")
	if err != nil {
		t.Fatalf("list all incomes: %v", err)
	}
	if len(all) != 1 || all[0].Amount.Cents != 550000 {
		t.Errorf("unexpected incomes: %+v", all)
	}

	if err := repo.DeleteIncome(ctx, "u1", created.ID); err != nil {
		t.Fatalf("delete income: %v", err)
	}
}
