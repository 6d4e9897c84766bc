package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPending TaskStatus = "Pendente"
	StatusFixed   TaskStatus = "Fixo"
	StatusPaid    TaskStatus = "Pago"
)

// MinYear is the lowest year accepted on records.
const MinYear = 2000

type (
	TaskStatus string

	Money struct {
		Cents int64
	}

	// Task is an expense or obligation owned by a single user.
	// Price is nil when the amount is not known yet; aggregation
	// treats a nil price as zero.
	Task struct {
		ID        string
		UserID    string
		Title     string
		Price     *Money
		Status    TaskStatus
		Type      string // free-text category label, may be empty
		Month     int    // 1-12
		Year      int
		CreatedAt time.Time
	}

	Income struct {
		ID          string
		UserID      string
		Description string // optional
		Amount      Money
		Month       int
		Year        int
		CreatedAt   time.Time
	}
)

var (
	ErrEmptyTitle     = errors.New("empty title")
	ErrInvalidMonth   = errors.New("invalid month")
	ErrInvalidYear    = errors.New("invalid year")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("negative amount")
	ErrInvalidStatus  = errors.New("invalid status")
)

// Valid reports whether s is one of the known task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusFixed, StatusPaid:
		return true
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func validateMonthYear(month, year int) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	if year < MinYear {
		return ErrInvalidYear
	}
	return nil
}

func (t Task) Validate() error {
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if t.Price != nil {
		if err := t.Price.Validate(); err != nil {
			return err
		}
	}
	return validateMonthYear(t.Month, t.Year)
}

// PriceCents returns the task price in cents, or 0 when no price is set.
func (t Task) PriceCents() int64 {
	if t.Price == nil {
		return 0
	}
	return t.Price.Cents
}

func (i Income) Validate() error {
	if len(i.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	return validateMonthYear(i.Month, i.Year)
}
