package services

import (
	"time"

	"github.com/ravi5775/v1/internal/models"
	"github.com/ravi5775/v1/internal/pagination"
	"github.com/ravi5775/v1/internal/plan"
)

// LoanServicer defines the interface for loan business logic. Every
// transaction mutation recomputes the loan's derived status through the
// calculation engine and persists it back; the cached status column is
// never updated any other way.
type LoanServicer interface {
	CreateLoan(input CreateLoanInput) (*models.Loan, error)
	GetLoans(page pagination.PageRequest, loanType *models.LoanType, status *models.LoanStatus) (*pagination.PageResponse[models.Loan], error)
	GetLoanByID(loanID uint) (*models.Loan, error)
	UpdateLoan(loanID uint, input UpdateLoanInput) (*models.Loan, error)
	DeleteLoans(loanIDs []uint) error
	AddTransaction(loanID uint, amount float64, paymentDate time.Time) (*models.Loan, error)
	UpdateTransaction(loanID, transactionID uint, amount float64, paymentDate time.Time) (*models.Loan, error)
	DeleteTransaction(loanID, transactionID uint) (*models.Loan, error)
	GetLoanSummary() (*LoanSummary, error)
}

// InvestorServicer defines the interface for investor business logic.
// Payment mutations recompute the investor's derived status, except that a
// manually closed investor stays closed.
type InvestorServicer interface {
	CreateInvestor(input CreateInvestorInput) (*models.Investor, error)
	GetInvestors(page pagination.PageRequest, status *models.InvestorStatus) (*pagination.PageResponse[models.Investor], error)
	GetInvestorByID(investorID uint) (*models.Investor, error)
	UpdateInvestor(investorID uint, input UpdateInvestorInput) (*models.Investor, error)
	DeleteInvestor(investorID uint) error
	AddPayment(investorID uint, input PaymentInput) (*models.Investor, error)
	UpdatePayment(investorID, paymentID uint, input PaymentInput) (*models.Investor, error)
	DeletePayment(investorID, paymentID uint) (*models.Investor, error)
	GetInvestorMetrics(investorID uint) (*plan.InvestorMetrics, error)
	GetInvestorSummary() (*plan.InvestorSummary, error)
}
