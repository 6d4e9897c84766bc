package core

// Budget classification levels, in increasing order of concern.
const (
	BudgetExcellent BudgetLevel = "Excellent"
	BudgetGood      BudgetLevel = "Good"
	BudgetWarning   BudgetLevel = "Warning"
	BudgetCritical  BudgetLevel = "Critical"
)

type (
	BudgetLevel string

	// BudgetStatus is the user-facing classification of a month's
	// spending relative to its income.
	BudgetStatus struct {
		Level   BudgetLevel
		Message string
	}
)

// SumByMonth groups records by their month and sums the value field.
//
// The returned map is sparse: months absent from the input are absent
// from the map, never zero-valued. Callers distinguish "no records that
// month" (missing key) from "records summing to zero" (key present with
// value 0) and must apply a default of 0 on lookup miss.
func SumByMonth[T any](records []T, month func(T) int, value func(T) int64) map[int]int64 {
	totals := make(map[int]int64, 12)
	for _, r := range records {
		totals[month(r)] += value(r)
	}
	return totals
}

// PercentSpent returns paid/income as a percentage.
//
// When income is zero the result is 0, never NaN or Inf: a month with
// no recorded income classifies as Excellent rather than poisoning the
// downstream status badge.
func PercentSpent(paidCents, incomeCents int64) float64 {
	if incomeCents == 0 {
		return 0
	}
	return float64(paidCents) / float64(incomeCents) * 100
}

// ClassifyBudget maps a percent-spent value to a budget status.
//
// Thresholds are half-open on the lower bound: exactly 50 is Good,
// exactly 70 is Warning, exactly 90 is Critical.
func ClassifyBudget(percent float64) BudgetStatus {
	switch {
	case percent < 50:
		return BudgetStatus{Level: BudgetExcellent, Message: "Spending is well under control this month."}
	case percent < 70:
		return BudgetStatus{Level: BudgetGood, Message: "Spending is on track, keep an eye on it."}
	case percent < 90:
		return BudgetStatus{Level: BudgetWarning, Message: "Spending is approaching your monthly income."}
	default:
		return BudgetStatus{Level: BudgetCritical, Message: "Spending has reached a critical share of your income."}
	}
}
