// Package services orchestrates record operations across the record
// store, the view caches, and the external collaborators.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/advisor"
	"contas/internal/amqp"
	"contas/internal/cache"
	"contas/internal/core"
	"contas/internal/log"
	"contas/internal/rates"
	"contas/internal/store"
)

// EventPublisher publishes record mutation events. A nil publisher
// disables eventing without disabling mutations.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, msg *amqp.RecordEventMessage) error
}

// RateSource yields the current USD/BRL quote.
type RateSource interface {
	Current(ctx context.Context) rates.Quote
}

// Analyzer produces a budget analysis from the month's figures.
type Analyzer interface {
	Analyze(ctx context.Context, r advisor.Request) (advisor.Analysis, error)
}

// Service holds one cache per derived view. Task and income mutations
// invalidate the views they can affect and leave the rest untouched.
type Service struct {
	records   store.RecordStore
	publisher EventPublisher
	rates     RateSource
	advisor   Analyzer
	logger    *slog.Logger

	tasks         *cache.Store[[]core.Task]
	incomes       *cache.Store[[]core.Income]
	incomeByMonth *cache.Store[map[int]int64]
	summaries     *cache.Store[core.MonthSummary]
	analyses      *cache.Store[advisor.Analysis]
}

// Options configures the service's caches and collaborators.
type Options struct {
	Cache     cache.Options
	Publisher EventPublisher
	Rates     RateSource
	Advisor   Analyzer
}

func New(records store.RecordStore, opts Options) *Service {
	return &Service{
		records:   records,
		publisher: opts.Publisher,
		rates:     opts.Rates,
		advisor:   opts.Advisor,
		logger:    slog.Default().With(log.FieldComponent, log.ComponentService),

		tasks:         cache.New[[]core.Task](opts.Cache),
		incomes:       cache.New[[]core.Income](opts.Cache),
		incomeByMonth: cache.New[map[int]int64](opts.Cache),
		summaries:     cache.New[core.MonthSummary](opts.Cache),
		analyses:      cache.New[advisor.Analysis](opts.Cache),
	}
}

// RegisterCaches adds every view cache to the manager's cleanup
// rotation.
func (s *Service) RegisterCaches(m *cache.Manager) {
	m.Register(s.tasks)
	m.Register(s.incomes)
	m.Register(s.incomeByMonth)
	m.Register(s.summaries)
	m.Register(s.analyses)
}

func periodKey(userID string, year, month int) string {
	return fmt.Sprintf("%s:%04d-%02d", userID, year, month)
}

// Tasks returns the month's tasks, cached.
func (s *Service) Tasks(ctx context.Context, userID string, year, month int) ([]core.Task, error) {
	return s.tasks.FetchOrUse(ctx, periodKey(userID, year, month), func(ctx context.Context) ([]core.Task, error) {
		return s.records.ListTasks(ctx, store.Filter{UserID: userID, Month: month, Year: year})
	})
}

func (s *Service) CreateTask(ctx context.Context, t core.Task) (core.Task, error) {
	created, err := s.records.CreateTask(ctx, t)
	if err != nil {
		return core.Task{}, err
	}
	s.invalidateTaskViews()
	s.publishEvent(ctx, amqp.NewRecordEventMessage(
		amqp.EntityTask, amqp.ActionCreated, created.ID, created.UserID, created.Month, created.Year))
	return created, nil
}

func (s *Service) UpdateTask(ctx context.Context, t core.Task) (core.Task, error) {
	updated, err := s.records.UpdateTask(ctx, t)
	if err != nil {
		return core.Task{}, err
	}
	s.invalidateTaskViews()
	s.publishEvent(ctx, amqp.NewRecordEventMessage(
		amqp.EntityTask, amqp.ActionUpdated, updated.ID, updated.UserID, updated.Month, updated.Year))
	return updated, nil
}

func (s *Service) UpdateTaskStatus(ctx context.Context, userID, id string, status core.TaskStatus) error {
	if err := s.records.UpdateTaskStatus(ctx, userID, id, status); err != nil {
		return err
	}
	s.invalidateTaskViews()
	s.publishEvent(ctx, amqp.NewRecordEventMessage(
		amqp.EntityTask, amqp.ActionStatusChanged, id, userID, 0, 0))
	return nil
}

func (s *Service) DeleteTask(ctx context.Context, userID, id string) error {
	if err := s.records.DeleteTask(ctx, userID, id); err != nil {
		return err
	}
	s.invalidateTaskViews()
	s.publishEvent(ctx, amqp.NewRecordEventMessage(
		amqp.EntityTask, amqp.ActionDeleted, id, userID, 0, 0))
	return nil
}

// Incomes returns the month's incomes, cached.
func (s *Service) Incomes(ctx context.Context, userID string, year, month int) ([]core.Income, error) {
	return s.incomes.FetchOrUse(ctx, periodKey(userID, year, month), func(ctx context.Context) ([]core.Income, error) {
		return s.records.ListIncomes(ctx, store.Filter{UserID: userID, Month: month, Year: year})
	})
}

// IncomeByMonth returns the user's income totals keyed by month. The
// aggregate is month-only: income from different years lands in the
// same bucket. Months with no income are absent from the map.
func (s *Service) IncomeByMonth(ctx context.Context, userID string) (map[int]int64, error) {
	return s.incomeByMonth.FetchOrUse(ctx, userID, func(ctx context.Context) (map[int]int64, error) {
		all, err := s.records.ListAllIncomes(ctx, userID)
		if err != nil {
			return nil, err
		}
		return core.SumByMonth(all,
			func(i core.Income) int { return i.Month },
			func(i core.Income) int64 { return i.Amount.Cents }), nil
	})
}

func (s *Service) CreateIncome(ctx context.Context, i core.Income) (core.Income, error) {
	created, err := s.records.CreateIncome(ctx, i)
	if err != nil {
		return core.Income{}, err
	}
	s.invalidateIncomeViews()
	s.publishEvent(ctx, amqp.NewRecordEventMessage(
		amqp.EntityIncome, amqp.ActionCreated, created.ID, created.UserID, created.Month, created.Year))
	return created, nil
}

func (s *Service) UpdateIncome(ctx context.Context, i core.Income) (core.Income, error) {
	updated, err := s.records.UpdateIncome(ctx, i)
	if err != nil {
		return core.Income{}, err
	}
	s.invalidateIncomeViews()
	s.publishEvent(ctx, amqp.NewRecordEventMessage(
		amqp.EntityIncome, amqp.ActionUpdated, updated.ID, updated.UserID, updated.Month, updated.Year))
	return updated, nil
}

func (s *Service) DeleteIncome(ctx context.Context, userID, id string) error {
	if err := s.records.DeleteIncome(ctx, userID, id); err != nil {
		return err
	}
	s.invalidateIncomeViews()
	s.publishEvent(ctx, amqp.NewRecordEventMessage(
		amqp.EntityIncome, amqp.ActionDeleted, id, userID, 0, 0))
	return nil
}

// Summary returns the month's derived summary, cached.
func (s *Service) Summary(ctx context.Context, userID string, year, month int) (core.MonthSummary, error) {
	return s.summaries.FetchOrUse(ctx, periodKey(userID, year, month), func(ctx context.Context) (core.MonthSummary, error) {
		tasks, err := s.Tasks(ctx, userID, year, month)
		if err != nil {
			return core.MonthSummary{}, err
		}
		byMonth, err := s.IncomeByMonth(ctx, userID)
		if err != nil {
			return core.MonthSummary{}, err
		}
		return core.Summarize(year, month, tasks, byMonth[month]), nil
	})
}

// Analysis sends the month's figures to the external advisor, cached.
func (s *Service) Analysis(ctx context.Context, userID string, year, month int) (advisor.Analysis, error) {
	if s.advisor == nil {
		return advisor.Analysis{}, fmt.Errorf("advisor not configured")
	}
	return s.analyses.FetchOrUse(ctx, periodKey(userID, year, month), func(ctx context.Context) (advisor.Analysis, error) {
		summary, err := s.Summary(ctx, userID, year, month)
		if err != nil {
			return advisor.Analysis{}, err
		}
		rate := "0"
		if s.rates != nil {
			rate = s.rates.Current(ctx).Bid.String()
		}
		return s.advisor.Analyze(ctx, advisor.NewRequest(summary, rate))
	})
}

// Rate returns the current USD/BRL quote. Quotes are not cached here;
// the rate client applies its own fallback.
func (s *Service) Rate(ctx context.Context) rates.Quote {
	if s.rates == nil {
		return rates.Quote{Fallback: true}
	}
	return s.rates.Current(ctx)
}

// SubscribeSummaries exposes summary cache change events.
func (s *Service) SubscribeSummaries() (<-chan cache.Event, func()) {
	return s.summaries.Subscribe()
}

// invalidateTaskViews drops every task, summary and analysis entry.
// Mutations carry no hint of which cached periods they touch (a task
// can move between months), so the whole view family goes. Income
// caches are untouched.
func (s *Service) invalidateTaskViews() {
	s.tasks.InvalidateAll()
	s.summaries.InvalidateAll()
	s.analyses.InvalidateAll()
}

// invalidateIncomeViews drops every income, by-month, summary and
// analysis entry. Task caches are untouched.
func (s *Service) invalidateIncomeViews() {
	s.incomes.InvalidateAll()
	s.incomeByMonth.InvalidateAll()
	s.summaries.InvalidateAll()
	s.analyses.InvalidateAll()
}

func (s *Service) publishEvent(ctx context.Context, msg *amqp.RecordEventMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordEvent(ctx, msg); err != nil {
		// Mutation already committed; a lost event degrades the
		// mirror, not the record set.
		s.logger.WarnContext(ctx, "failed to publish record event",
			log.FieldError, err,
			"entity", msg.Entity,
			"action", msg.Action,
			"id", msg.ID)
	}
}
