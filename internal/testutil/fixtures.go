package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ravi5775/v1/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }

// CreateTestFinanceLoan creates a Finance loan with the given principal,
// monthly interest rate, and term.
func CreateTestFinanceLoan(t *testing.T, db *gorm.DB, amount, rate float64, months int, start time.Time) *models.Loan {
	t.Helper()

	loan := &models.Loan{
		CustomerName:     fmt.Sprintf("Customer %d", nextID()),
		LoanType:         models.LoanTypeFinance,
		LoanAmount:       amount,
		GivenAmount:      amount,
		InterestRate:     FloatPtr(rate),
		DurationInMonths: IntPtr(months),
		StartDate:        start,
		Status:           models.LoanStatusActive,
	}
	if err := db.Create(loan).Error; err != nil {
		t.Fatalf("failed to create test finance loan: %v", err)
	}
	return loan
}

// CreateTestTenderLoan creates a Tender loan with the given face value and
// disbursed amount.
func CreateTestTenderLoan(t *testing.T, db *gorm.DB, amount, given float64, days int, start time.Time) *models.Loan {
	t.Helper()

	loan := &models.Loan{
		CustomerName:   fmt.Sprintf("Customer %d", nextID()),
		LoanType:       models.LoanTypeTender,
		LoanAmount:     amount,
		GivenAmount:    given,
		DurationInDays: IntPtr(days),
		StartDate:      start,
		Status:         models.LoanStatusActive,
	}
	if err := db.Create(loan).Error; err != nil {
		t.Fatalf("failed to create test tender loan: %v", err)
	}
	return loan
}

// CreateTestInterestRateLoan creates an InterestRate loan with no fixed term.
func CreateTestInterestRateLoan(t *testing.T, db *gorm.DB, amount, rate float64, start time.Time) *models.Loan {
	t.Helper()

	loan := &models.Loan{
		CustomerName: fmt.Sprintf("Customer %d", nextID()),
		LoanType:     models.LoanTypeInterestRate,
		LoanAmount:   amount,
		GivenAmount:  amount,
		InterestRate: FloatPtr(rate),
		StartDate:    start,
		Status:       models.LoanStatusActive,
	}
	if err := db.Create(loan).Error; err != nil {
		t.Fatalf("failed to create test interest rate loan: %v", err)
	}
	return loan
}

// CreateTestTransaction records a repayment on a loan.
func CreateTestTransaction(t *testing.T, db *gorm.DB, loanID uint, amount float64, date time.Time) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		LoanID:      loanID,
		Amount:      amount,
		PaymentDate: date,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}

// CreateTestInvestor creates an investor with the given principal and
// monthly profit rate.
func CreateTestInvestor(t *testing.T, db *gorm.DB, amount, rate float64, start time.Time) *models.Investor {
	t.Helper()

	investor := &models.Investor{
		Name:             fmt.Sprintf("Investor %d", nextID()),
		InvestmentAmount: amount,
		InvestmentType:   models.InvestmentTypeFinance,
		ProfitRate:       rate,
		StartDate:        start,
		Status:           models.InvestorStatusOnTrack,
	}
	if err := db.Create(investor).Error; err != nil {
		t.Fatalf("failed to create test investor: %v", err)
	}
	return investor
}

// CreateTestPayment records a payout to an investor.
func CreateTestPayment(t *testing.T, db *gorm.DB, investorID uint, amount float64, date time.Time) *models.InvestorPayment {
	t.Helper()

	pay := &models.InvestorPayment{
		InvestorID:  investorID,
		Amount:      amount,
		PaymentDate: date,
		PaymentType: models.PaymentTypeProfit,
	}
	if err := db.Create(pay).Error; err != nil {
		t.Fatalf("failed to create test payment: %v", err)
	}
	return pay
}
