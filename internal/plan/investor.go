package plan

import (
	"math"
	"time"

	"github.com/ravi5775/v1/internal/models"
)

// InvestorMetrics holds the derived financial state of a single investor.
// Amounts owed to investors accrue flat against the original principal and
// never compound; that asymmetry with the loan schedule is deliberate.
type InvestorMetrics struct {
	CurrentBalance    float64               `json:"currentBalance"`
	MonthlyProfit     float64               `json:"monthlyProfit"`
	AccumulatedProfit float64               `json:"accumulatedProfit"`
	TotalPaid         float64               `json:"totalPaid"`
	PendingProfit     float64               `json:"pendingProfit"`
	MissedMonths      int                   `json:"missedMonths"`
	Status            models.InvestorStatus `json:"status"`
}

// Metrics derives an investor's accrued profit, payout state, and status
// as of now.
//
// A Closed investor is terminal: accrual stops, the balance is zero, and
// whatever was paid beyond the principal counts as their realized profit.
func Metrics(investor *models.Investor, now time.Time) InvestorMetrics {
	if investor.Status == models.InvestorStatusClosed {
		totalPaid := totalPayments(investor.Payments)
		return InvestorMetrics{
			AccumulatedProfit: math.Max(0, totalPaid-investor.InvestmentAmount),
			TotalPaid:         totalPaid,
			Status:            models.InvestorStatusClosed,
		}
	}

	monthlyProfit := investor.InvestmentAmount * (investor.ProfitRate / 100)
	monthsCompleted := fullMonthsBetween(investor.StartDate, now)
	accumulatedProfit := monthlyProfit * float64(monthsCompleted)
	totalPaid := totalPayments(investor.Payments)
	pendingProfit := accumulatedProfit - totalPaid

	missedMonths := 0
	if monthlyProfit > 0 {
		missedMonths = int(math.Floor(math.Max(0, pendingProfit) / monthlyProfit))
	}

	status := models.InvestorStatusOnTrack
	if pendingProfit > Epsilon {
		status = models.InvestorStatusDelayed
	}

	return InvestorMetrics{
		CurrentBalance:    investor.InvestmentAmount + math.Max(0, pendingProfit),
		MonthlyProfit:     monthlyProfit,
		AccumulatedProfit: accumulatedProfit,
		TotalPaid:         totalPaid,
		PendingProfit:     pendingProfit,
		MissedMonths:      missedMonths,
		Status:            status,
	}
}

// InvestorSummary aggregates metrics across a set of investors. The
// reduction is order-independent. OverallProfitLoss is from the business's
// perspective: everything paid out to investors less everything taken in.
type InvestorSummary struct {
	TotalInvestors       int     `json:"totalInvestors"`
	TotalInvestment      float64 `json:"totalInvestment"`
	TotalProfitEarned    float64 `json:"totalProfitEarned"`
	TotalPaidToInvestors float64 `json:"totalPaidToInvestors"`
	TotalPendingProfit   float64 `json:"totalPendingProfit"`
	OverallProfitLoss    float64 `json:"overallProfitLoss"`
}

// Summary reduces per-investor metrics into collection-wide totals.
func Summary(investors []models.Investor, now time.Time) InvestorSummary {
	summary := InvestorSummary{TotalInvestors: len(investors)}

	for i := range investors {
		metrics := Metrics(&investors[i], now)
		summary.TotalInvestment += investors[i].InvestmentAmount
		summary.TotalProfitEarned += metrics.AccumulatedProfit
		summary.TotalPaidToInvestors += metrics.TotalPaid
		summary.TotalPendingProfit += math.Max(0, metrics.AccumulatedProfit-metrics.TotalPaid)
	}

	summary.OverallProfitLoss = summary.TotalPaidToInvestors - summary.TotalInvestment
	return summary
}

// fullMonthsBetween counts fully elapsed month-anniversaries of start as of
// now: the calendar-month difference, less one when today's day-of-month
// has not yet reached the start day, floored at zero.
func fullMonthsBetween(start, now time.Time) int {
	months := (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month())
	if now.Day() < start.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}
	return months
}

func totalPayments(payments []models.InvestorPayment) float64 {
	var sum float64
	for _, p := range payments {
		sum += p.Amount
	}
	return sum
}
