// Package plan implements the financial calculation engine for loans and
// investors. Every function is a pure function of a record snapshot and an
// explicit "now" instant: no I/O, no clock reads, no shared state. The
// cached Status column on a record is never trusted here; callers persist
// the recomputed status after every transaction or payment mutation.
//
// Incomplete records (missing duration, nil rate, no transactions) degrade
// to zero values and nil dates rather than failing: a record mid-edit is a
// normal state for the surrounding bookkeeping UI.
package plan

import (
	"math"
	"sort"
	"time"

	"github.com/ravi5775/v1/internal/models"
)

// Epsilon is the tolerance below which a balance counts as fully settled.
// It guards float comparisons; amounts are entered to two decimal places.
const Epsilon = 0.01

// AmountPaid returns the sum of all repayments recorded on the loan.
func AmountPaid(loan *models.Loan) float64 {
	var sum float64
	for _, txn := range loan.Transactions {
		sum += txn.Amount
	}
	return sum
}

// FinalDueDate returns the date the full obligation is contractually due:
// the start date plus the type-specific duration. It returns nil when the
// relevant duration fields are missing or zero.
func FinalDueDate(loan *models.Loan) *time.Time {
	start := loan.StartDate
	switch loan.LoanType {
	case models.LoanTypeFinance:
		if intOrZero(loan.DurationInMonths) == 0 {
			return nil
		}
		return datePtr(start.AddDate(0, *loan.DurationInMonths, 0))
	case models.LoanTypeTender:
		if intOrZero(loan.DurationInDays) == 0 {
			return nil
		}
		return datePtr(start.AddDate(0, 0, *loan.DurationInDays))
	case models.LoanTypeInterestRate:
		if intOrZero(loan.DurationValue) == 0 || loan.DurationUnit == nil {
			return nil
		}
		switch *loan.DurationUnit {
		case models.DurationUnitDays:
			return datePtr(start.AddDate(0, 0, *loan.DurationValue))
		case models.DurationUnitWeeks:
			return datePtr(start.AddDate(0, 0, *loan.DurationValue*7))
		case models.DurationUnitMonths:
			return datePtr(start.AddDate(0, *loan.DurationValue, 0))
		}
		return nil
	}
	return nil
}

// TotalAmount returns the loan's total liability.
//
// Finance: principal plus flat monthly interest for the declared term,
// independent of how early the loan is repaid. Tender: the face value (the
// lender's margin is the gap between face value and the amount disbursed).
// InterestRate: dynamic, defined as current schedule balance plus whatever
// has already been paid.
func TotalAmount(loan *models.Loan, now time.Time) float64 {
	switch loan.LoanType {
	case models.LoanTypeFinance:
		monthlyInterest := loan.LoanAmount * (floatOrZero(loan.InterestRate) / 100)
		return loan.LoanAmount + monthlyInterest*float64(intOrZero(loan.DurationInMonths))
	case models.LoanTypeTender:
		return loan.LoanAmount
	case models.LoanTypeInterestRate:
		sched := interestRateSchedule(loan, now)
		return sched.Balance + AmountPaid(loan)
	}
	return 0
}

// Balance returns the amount still owed as of now.
func Balance(loan *models.Loan, now time.Time) float64 {
	if loan.LoanType == models.LoanTypeInterestRate {
		return interestRateSchedule(loan, now).Balance
	}
	return math.Max(0, TotalAmount(loan, now)-AmountPaid(loan))
}

// Profit returns the lender's profit net of the amount actually disbursed.
func Profit(loan *models.Loan, now time.Time) float64 {
	switch loan.LoanType {
	case models.LoanTypeFinance:
		return TotalAmount(loan, now) - loan.GivenAmount
	case models.LoanTypeTender:
		return loan.LoanAmount - loan.GivenAmount
	case models.LoanTypeInterestRate:
		given := loan.GivenAmount
		if given == 0 {
			given = loan.LoanAmount
		}
		return math.Max(0, TotalAmount(loan, now)-given)
	}
	return 0
}

// NextDueDate returns the next payment date, or nil once the loan is
// settled. Finance and Tender loans fall due in full on the final due
// date; InterestRate loans follow the monthly schedule.
func NextDueDate(loan *models.Loan, now time.Time) *time.Time {
	if Balance(loan, now) <= 0 {
		return nil
	}
	if loan.LoanType == models.LoanTypeInterestRate {
		return interestRateSchedule(loan, now).NextDueDate
	}
	return FinalDueDate(loan)
}

// Status derives the authoritative lifecycle state, checked in priority
// order: settled balances win over everything, then a passed final due
// date, then (for InterestRate loans) missed monthly interest.
func Status(loan *models.Loan, now time.Time) models.LoanStatus {
	if Balance(loan, now) <= Epsilon {
		return models.LoanStatusCompleted
	}

	today := truncateToDay(now)
	if due := FinalDueDate(loan); due != nil && truncateToDay(*due).Before(today) {
		return models.LoanStatusOverdue
	}

	if loan.LoanType == models.LoanTypeInterestRate {
		if interestRateSchedule(loan, now).Status == models.LoanStatusOverdue {
			return models.LoanStatusOverdue
		}
	}

	return models.LoanStatusActive
}

// scheduleResult is the outcome of the monthly compounding schedule for an
// InterestRate loan.
type scheduleResult struct {
	Balance     float64
	NextDueDate *time.Time
	Status      models.LoanStatus
}

// interestRateSchedule walks every fully elapsed calendar month since the
// loan began, folding (principal, hasOverdue) forward one month at a time:
// unpaid monthly interest compounds into principal, while payments beyond
// the month's interest amortize principal directly. Payments in the
// current, not-yet-closed month reduce principal without compounding.
//
// A large overpayment can push the running principal negative mid-fold and
// shrink later months' interest; only the final balance is clamped at zero.
// That matches the behavior the books were kept under.
func interestRateSchedule(loan *models.Loan, now time.Time) scheduleResult {
	txns := sortedByPaymentDate(loan.Transactions)

	if loan.LoanAmount <= 0 && len(txns) == 0 {
		return scheduleResult{Status: models.LoanStatusCompleted}
	}

	rate := floatOrZero(loan.InterestRate)
	principal := loan.LoanAmount
	hasOverdueInterest := false

	for _, monthStart := range monthStarts(loan.StartDate, now) {
		interestForMonth := principal * (rate / 100)
		paidThisMonth := sumPaidBetween(txns, monthStart, monthStart.AddDate(0, 1, 0))
		unpaid := interestForMonth - paidThisMonth
		principal += unpaid
		if unpaid > 0 {
			hasOverdueInterest = true
		}
	}

	currentMonthStart := firstOfMonth(now)
	principal -= sumPaidThrough(txns, currentMonthStart, now)

	balance := math.Max(0, principal)
	if balance < Epsilon {
		return scheduleResult{Status: models.LoanStatusCompleted}
	}

	status := models.LoanStatusActive
	if hasOverdueInterest {
		status = models.LoanStatusOverdue
	}
	next := nextMonthlyDueDate(loan.StartDate, now)
	return scheduleResult{Balance: balance, NextDueDate: &next, Status: status}
}

// monthStarts returns the first-of-month dates from the month containing
// start up to, but not including, the month containing now. Generating the
// boundaries up front keeps the fold free of hidden iterator state.
func monthStarts(start, now time.Time) []time.Time {
	first := firstOfMonth(start)
	currentMonth := firstOfMonth(now)
	var months []time.Time
	for m := first; m.Before(currentMonth); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
	}
	return months
}

// nextMonthlyDueDate returns the start date's day-of-month in the current
// month, rolled to the next month when that date is today or earlier.
// Day-of-month overflow (a loan started on the 31st, due in February)
// normalizes forward per time.Date.
func nextMonthlyDueDate(start, now time.Time) time.Time {
	due := time.Date(now.Year(), now.Month(), start.Day(), 0, 0, 0, 0, now.Location())
	if !due.After(now) {
		due = due.AddDate(0, 1, 0)
	}
	return due
}

func sortedByPaymentDate(txns []models.Transaction) []models.Transaction {
	sorted := append([]models.Transaction(nil), txns...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PaymentDate.Before(sorted[j].PaymentDate)
	})
	return sorted
}

// sumPaidBetween sums payments dated in the half-open interval [from, to).
func sumPaidBetween(txns []models.Transaction, from, to time.Time) float64 {
	var sum float64
	for _, txn := range txns {
		if !txn.PaymentDate.Before(from) && txn.PaymentDate.Before(to) {
			sum += txn.Amount
		}
	}
	return sum
}

// sumPaidThrough sums payments dated in the closed interval [from, now].
func sumPaidThrough(txns []models.Transaction, from, now time.Time) float64 {
	var sum float64
	for _, txn := range txns {
		if !txn.PaymentDate.Before(from) && !txn.PaymentDate.After(now) {
			sum += txn.Amount
		}
	}
	return sum
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func datePtr(t time.Time) *time.Time { return &t }

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
