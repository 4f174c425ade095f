package models

import "time"

// LoanType selects which duration fields and repayment schedule apply.
type LoanType string

const (
	LoanTypeFinance      LoanType = "Finance"
	LoanTypeTender       LoanType = "Tender"
	LoanTypeInterestRate LoanType = "InterestRate"
)

// LoanDurationUnit is the unit for an InterestRate loan's duration.
type LoanDurationUnit string

const (
	DurationUnitDays   LoanDurationUnit = "Days"
	DurationUnitWeeks  LoanDurationUnit = "Weeks"
	DurationUnitMonths LoanDurationUnit = "Months"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "Active"
	LoanStatusCompleted LoanStatus = "Completed"
	LoanStatusOverdue   LoanStatus = "Overdue"
)

// Loan represents money lent to a customer. Of the duration fields, only
// the ones relevant to Type are populated: DurationInMonths for Finance,
// DurationInDays for Tender, DurationValue/DurationUnit for InterestRate.
//
// Status is a cached value for listing and filtering; internal/plan
// recomputes the authoritative status and the services persist it back
// after every transaction mutation.
type Loan struct {
	Base
	CustomerName     string            `gorm:"not null" json:"customerName"`
	Phone            string            `json:"phone"`
	LoanType         LoanType          `gorm:"not null;index" json:"loanType"`
	LoanAmount       float64           `gorm:"type:decimal(15,2);not null" json:"loanAmount"`
	GivenAmount      float64           `gorm:"type:decimal(15,2);not null" json:"givenAmount"`
	InterestRate     *float64          `gorm:"type:decimal(5,2)" json:"interestRate,omitempty"`
	DurationInMonths *int              `json:"durationInMonths,omitempty"`
	DurationInDays   *int              `json:"durationInDays,omitempty"`
	DurationValue    *int              `json:"durationValue,omitempty"`
	DurationUnit     *LoanDurationUnit `json:"durationUnit,omitempty"`
	StartDate        time.Time         `gorm:"not null" json:"startDate"`
	Status           LoanStatus        `gorm:"not null;default:'Active'" json:"status"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:LoanID" json:"transactions"`
}

// Transaction is a repayment recorded against a loan.
type Transaction struct {
	Base
	LoanID      uint      `gorm:"not null;index" json:"loan_id"`
	Amount      float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaymentDate time.Time `gorm:"not null" json:"payment_date"`
}
