package plan

import (
	"testing"
	"time"

	"github.com/ravi5775/v1/internal/models"
)

func payment(amount float64, date time.Time) models.InvestorPayment {
	return models.InvestorPayment{
		Amount:      amount,
		PaymentDate: date,
		PaymentType: models.PaymentTypeProfit,
	}
}

func TestInvestorMetrics(t *testing.T) {
	t.Run("delayed_with_missed_months", func(t *testing.T) {
		// 100000 at 1%/month, five full months elapsed, 3000 paid out:
		// accrued 5000, pending 2000, two monthly payouts missed.
		inv := &models.Investor{
			Name:             "A",
			InvestmentAmount: 100000,
			ProfitRate:       1,
			InvestmentType:   models.InvestmentTypeFinance,
			StartDate:        time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			Status:           models.InvestorStatusOnTrack,
			Payments: []models.InvestorPayment{
				payment(1000, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)),
				payment(2000, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)),
			},
		}
		m := Metrics(inv, testNow)

		if !almostEqual(m.MonthlyProfit, 1000) {
			t.Errorf("expected monthly profit 1000, got %v", m.MonthlyProfit)
		}
		if !almostEqual(m.AccumulatedProfit, 5000) {
			t.Errorf("expected accumulated 5000, got %v", m.AccumulatedProfit)
		}
		if !almostEqual(m.TotalPaid, 3000) {
			t.Errorf("expected paid 3000, got %v", m.TotalPaid)
		}
		if !almostEqual(m.PendingProfit, 2000) {
			t.Errorf("expected pending 2000, got %v", m.PendingProfit)
		}
		if m.MissedMonths != 2 {
			t.Errorf("expected 2 missed months, got %d", m.MissedMonths)
		}
		if m.Status != models.InvestorStatusDelayed {
			t.Errorf("expected Delayed, got %s", m.Status)
		}
		if !almostEqual(m.CurrentBalance, 102000) {
			t.Errorf("expected balance 102000, got %v", m.CurrentBalance)
		}
	})

	t.Run("on_track_when_fully_paid_out", func(t *testing.T) {
		inv := &models.Investor{
			InvestmentAmount: 100000,
			ProfitRate:       1,
			StartDate:        time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			Status:           models.InvestorStatusDelayed, // cached, ignored
			Payments: []models.InvestorPayment{
				payment(5000, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)),
			},
		}
		m := Metrics(inv, testNow)
		if m.Status != models.InvestorStatusOnTrack {
			t.Errorf("expected On Track, got %s", m.Status)
		}
		if m.MissedMonths != 0 {
			t.Errorf("expected 0 missed months, got %d", m.MissedMonths)
		}
		if !almostEqual(m.CurrentBalance, 100000) {
			t.Errorf("expected balance 100000, got %v", m.CurrentBalance)
		}
	})

	t.Run("partial_month_does_not_accrue", func(t *testing.T) {
		// Started on the 20th; on the 15th the fifth month has not
		// completed yet.
		inv := &models.Investor{
			InvestmentAmount: 100000,
			ProfitRate:       1,
			StartDate:        time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		}
		m := Metrics(inv, testNow)
		if !almostEqual(m.AccumulatedProfit, 4000) {
			t.Errorf("expected accumulated 4000, got %v", m.AccumulatedProfit)
		}
	})

	t.Run("future_start_accrues_nothing", func(t *testing.T) {
		inv := &models.Investor{
			InvestmentAmount: 100000,
			ProfitRate:       1,
			StartDate:        testNow.AddDate(0, 2, 0),
		}
		m := Metrics(inv, testNow)
		if m.AccumulatedProfit != 0 {
			t.Errorf("expected 0 accrued, got %v", m.AccumulatedProfit)
		}
		if m.Status != models.InvestorStatusOnTrack {
			t.Errorf("expected On Track, got %s", m.Status)
		}
	})

	t.Run("zero_profit_rate", func(t *testing.T) {
		inv := &models.Investor{
			InvestmentAmount: 50000,
			ProfitRate:       0,
			StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		m := Metrics(inv, testNow)
		if m.MonthlyProfit != 0 || m.AccumulatedProfit != 0 {
			t.Errorf("expected zero accrual, got monthly=%v accumulated=%v", m.MonthlyProfit, m.AccumulatedProfit)
		}
		if m.MissedMonths != 0 {
			t.Errorf("expected 0 missed months, got %d", m.MissedMonths)
		}
	})

	t.Run("closed_short_circuits_accrual", func(t *testing.T) {
		inv := &models.Investor{
			InvestmentAmount: 100000,
			ProfitRate:       1,
			StartDate:        time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC),
			Status:           models.InvestorStatusClosed,
			Payments: []models.InvestorPayment{
				payment(104000, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)),
			},
		}
		m := Metrics(inv, testNow)
		if m.Status != models.InvestorStatusClosed {
			t.Errorf("expected Closed, got %s", m.Status)
		}
		if m.CurrentBalance != 0 {
			t.Errorf("expected balance 0, got %v", m.CurrentBalance)
		}
		if m.MissedMonths != 0 {
			t.Errorf("expected 0 missed months, got %d", m.MissedMonths)
		}
		// Realized profit is whatever was paid beyond the principal.
		if !almostEqual(m.AccumulatedProfit, 4000) {
			t.Errorf("expected accumulated 4000, got %v", m.AccumulatedProfit)
		}
		if m.MonthlyProfit != 0 {
			t.Errorf("expected monthly profit 0, got %v", m.MonthlyProfit)
		}
	})

	t.Run("closed_underpaid_has_zero_profit", func(t *testing.T) {
		inv := &models.Investor{
			InvestmentAmount: 100000,
			ProfitRate:       1,
			StartDate:        time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC),
			Status:           models.InvestorStatusClosed,
			Payments: []models.InvestorPayment{
				payment(60000, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)),
			},
		}
		m := Metrics(inv, testNow)
		if m.AccumulatedProfit != 0 {
			t.Errorf("expected 0, got %v", m.AccumulatedProfit)
		}
		if !almostEqual(m.TotalPaid, 60000) {
			t.Errorf("expected paid 60000, got %v", m.TotalPaid)
		}
	})

	t.Run("investment_type_does_not_alter_accrual", func(t *testing.T) {
		types := []models.InvestmentType{
			models.InvestmentTypeFinance,
			models.InvestmentTypeTender,
			models.InvestmentTypeInterestRatePlan,
		}
		var first InvestorMetrics
		for i, typ := range types {
			inv := &models.Investor{
				InvestmentAmount: 100000,
				ProfitRate:       1.5,
				InvestmentType:   typ,
				StartDate:        time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			}
			m := Metrics(inv, testNow)
			if i == 0 {
				first = m
				continue
			}
			if m != first {
				t.Errorf("metrics differ for type %s: %+v vs %+v", typ, m, first)
			}
		}
	})
}

func TestInvestorSummary(t *testing.T) {
	t.Run("aggregates_collection", func(t *testing.T) {
		investors := []models.Investor{
			{
				InvestmentAmount: 100000,
				ProfitRate:       1,
				StartDate:        time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
				Payments: []models.InvestorPayment{
					payment(3000, time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)),
				},
			},
			{
				InvestmentAmount: 50000,
				ProfitRate:       2,
				StartDate:        time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
				Payments: []models.InvestorPayment{
					payment(5000, time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)),
				},
			},
		}

		s := Summary(investors, testNow)
		if s.TotalInvestors != 2 {
			t.Errorf("expected 2, got %d", s.TotalInvestors)
		}
		if !almostEqual(s.TotalInvestment, 150000) {
			t.Errorf("expected 150000, got %v", s.TotalInvestment)
		}
		// 5 months x 1000 plus 2 months x 1000.
		if !almostEqual(s.TotalProfitEarned, 7000) {
			t.Errorf("expected 7000, got %v", s.TotalProfitEarned)
		}
		if !almostEqual(s.TotalPaidToInvestors, 8000) {
			t.Errorf("expected 8000, got %v", s.TotalPaidToInvestors)
		}
		// Overpaid investors do not offset underpaid ones.
		if !almostEqual(s.TotalPendingProfit, 2000) {
			t.Errorf("expected 2000, got %v", s.TotalPendingProfit)
		}
		if !almostEqual(s.OverallProfitLoss, 8000-150000) {
			t.Errorf("expected %v, got %v", 8000-150000, s.OverallProfitLoss)
		}
	})

	t.Run("empty_collection", func(t *testing.T) {
		s := Summary(nil, testNow)
		if s.TotalInvestors != 0 || s.TotalInvestment != 0 || s.OverallProfitLoss != 0 {
			t.Errorf("expected zero summary, got %+v", s)
		}
	})
}
