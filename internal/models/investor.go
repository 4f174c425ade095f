package models

import "time"

// InvestmentType records which product an investor's money backs. It is
// informational only: accrual is always flat-rate monthly regardless of type.
type InvestmentType string

const (
	InvestmentTypeFinance          InvestmentType = "Finance"
	InvestmentTypeTender           InvestmentType = "Tender"
	InvestmentTypeInterestRatePlan InvestmentType = "InterestRatePlan"
)

// InvestorStatus is the lifecycle state of an investor.
type InvestorStatus string

const (
	InvestorStatusOnTrack InvestorStatus = "On Track"
	InvestorStatusDelayed InvestorStatus = "Delayed"
	InvestorStatusClosed  InvestorStatus = "Closed"
)

// InvestorPaymentType classifies a payout made to an investor.
type InvestorPaymentType string

const (
	PaymentTypePrincipal InvestorPaymentType = "Principal"
	PaymentTypeProfit    InvestorPaymentType = "Profit"
	PaymentTypeInterest  InvestorPaymentType = "Interest"
)

// Investor represents a principal investment earning fixed monthly profit.
// Closed is a terminal, manually set status: once closed, no further profit
// accrues and internal/plan reports the record as settled.
type Investor struct {
	Base
	Name             string         `gorm:"not null" json:"name"`
	InvestmentAmount float64        `gorm:"type:decimal(15,2);not null" json:"investmentAmount"`
	InvestmentType   InvestmentType `gorm:"not null" json:"investmentType"`
	ProfitRate       float64        `gorm:"type:decimal(5,2);not null" json:"profitRate"`
	StartDate        time.Time      `gorm:"not null" json:"startDate"`
	Status           InvestorStatus `gorm:"not null;default:'On Track'" json:"status"`

	// Relationships
	Payments []InvestorPayment `gorm:"foreignKey:InvestorID" json:"payments"`
}

// InvestorPayment is a payout recorded against an investor.
type InvestorPayment struct {
	Base
	InvestorID  uint                `gorm:"not null;index" json:"investor_id"`
	Amount      float64             `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaymentDate time.Time           `gorm:"not null" json:"payment_date"`
	PaymentType InvestorPaymentType `gorm:"not null" json:"payment_type"`
	Remarks     string              `json:"remarks"`
}
