package core

// MonthSummary is the derived view for a specific year+month. It is
// computed on demand and never persisted.
type MonthSummary struct {
	Year  int
	Month int

	TaskCount    int
	TaskTotal    Money
	PaidTotal    Money
	PendingTotal Money

	// IncomeTotal is the by-month income aggregate. It is keyed by
	// month only: income from different years lands in the same
	// bucket.
	IncomeTotal Money

	PercentSpent float64
	Budget       BudgetStatus
}

// Summarize derives the month summary from a task set and the month's
// income total. Tasks with a nil price sum as zero. Paid and pending
// totals are filtered by status; fixed tasks contribute to the overall
// total only.
func Summarize(year, month int, tasks []Task, incomeCents int64) MonthSummary {
	s := MonthSummary{
		Year:        year,
		Month:       month,
		TaskCount:   len(tasks),
		IncomeTotal: Money{Cents: incomeCents},
	}
	for _, t := range tasks {
		cents := t.PriceCents()
		s.TaskTotal.Cents += cents
		switch t.Status {
		case StatusPaid:
			s.PaidTotal.Cents += cents
		case StatusPending:
			s.PendingTotal.Cents += cents
		}
	}
	s.PercentSpent = PercentSpent(s.PaidTotal.Cents, incomeCents)
	s.Budget = ClassifyBudget(s.PercentSpent)
	return s
}
