package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/ravi5775/v1/internal/errors"
	"github.com/ravi5775/v1/internal/models"
	"github.com/ravi5775/v1/internal/pagination"
	"github.com/ravi5775/v1/internal/plan"
)

// CreateLoanInput carries the fields for a new loan record. Only the
// duration fields relevant to the loan type should be set.
type CreateLoanInput struct {
	CustomerName     string
	Phone            string
	LoanType         models.LoanType
	LoanAmount       float64
	GivenAmount      float64
	InterestRate     *float64
	DurationInMonths *int
	DurationInDays   *int
	DurationValue    *int
	DurationUnit     *models.LoanDurationUnit
	StartDate        time.Time
}

// UpdateLoanInput carries optional field updates; nil fields are left
// untouched.
type UpdateLoanInput struct {
	CustomerName     *string
	Phone            *string
	LoanAmount       *float64
	GivenAmount      *float64
	InterestRate     *float64
	DurationInMonths *int
	DurationInDays   *int
	DurationValue    *int
	DurationUnit     *models.LoanDurationUnit
	StartDate        *time.Time
}

// LoanTypeBreakdown aggregates engine outputs for one loan type.
type LoanTypeBreakdown struct {
	Count        int     `json:"count"`
	TotalLoaned  float64 `json:"totalLoaned"`
	TotalGiven   float64 `json:"totalGiven"`
	TotalPaid    float64 `json:"totalPaid"`
	TotalBalance float64 `json:"totalBalance"`
	TotalProfit  float64 `json:"totalProfit"`
}

// LoanSummary is the per-type and overall aggregation of the loan book.
type LoanSummary struct {
	Totals LoanTypeBreakdown                      `json:"totals"`
	ByType map[models.LoanType]LoanTypeBreakdown `json:"byType"`
}

// loanService handles loan-related business logic.
type loanService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLoanService creates a new LoanServicer.
func NewLoanService(db *gorm.DB) LoanServicer {
	return &loanService{db: db, now: time.Now}
}

// CreateLoan stores a new loan record with status Active.
func (s *loanService) CreateLoan(input CreateLoanInput) (*models.Loan, error) {
	// DurationValue and DurationUnit only make sense together.
	if input.LoanType == models.LoanTypeInterestRate {
		if (input.DurationValue == nil) != (input.DurationUnit == nil) {
			return nil, apperrors.ErrInvalidLoanDuration
		}
	}

	loan := &models.Loan{
		CustomerName:     input.CustomerName,
		Phone:            input.Phone,
		LoanType:         input.LoanType,
		LoanAmount:       input.LoanAmount,
		GivenAmount:      input.GivenAmount,
		InterestRate:     input.InterestRate,
		DurationInMonths: input.DurationInMonths,
		DurationInDays:   input.DurationInDays,
		DurationValue:    input.DurationValue,
		DurationUnit:     input.DurationUnit,
		StartDate:        input.StartDate,
		Status:           models.LoanStatusActive,
		Transactions:     []models.Transaction{},
	}

	if err := s.db.Create(loan).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return loan, nil
}

// GetLoans returns a paginated list of loans, newest first, optionally
// filtered by type and cached status.
func (s *loanService) GetLoans(page pagination.PageRequest, loanType *models.LoanType, status *models.LoanStatus) (*pagination.PageResponse[models.Loan], error) {
	page.Defaults()

	query := s.db.Model(&models.Loan{})
	if loanType != nil {
		query = query.Where("loan_type = ?", *loanType)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var loans []models.Loan
	if err := query.Preload("Transactions").Order("created_at DESC").
		Scopes(pagination.Paginate(page)).Find(&loans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(loans, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetLoanByID returns a loan with its transactions.
func (s *loanService) GetLoanByID(loanID uint) (*models.Loan, error) {
	var loan models.Loan
	if err := s.db.Preload("Transactions").First(&loan, loanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &loan, nil
}

// UpdateLoan applies the non-nil fields of input and re-derives the cached
// status, since edited terms can change the loan's state.
func (s *loanService) UpdateLoan(loanID uint, input UpdateLoanInput) (*models.Loan, error) {
	loan, err := s.GetLoanByID(loanID)
	if err != nil {
		return nil, err
	}

	if input.CustomerName != nil {
		loan.CustomerName = *input.CustomerName
	}
	if input.Phone != nil {
		loan.Phone = *input.Phone
	}
	if input.LoanAmount != nil {
		loan.LoanAmount = *input.LoanAmount
	}
	if input.GivenAmount != nil {
		loan.GivenAmount = *input.GivenAmount
	}
	if input.InterestRate != nil {
		loan.InterestRate = input.InterestRate
	}
	if input.DurationInMonths != nil {
		loan.DurationInMonths = input.DurationInMonths
	}
	if input.DurationInDays != nil {
		loan.DurationInDays = input.DurationInDays
	}
	if input.DurationValue != nil {
		loan.DurationValue = input.DurationValue
	}
	if input.DurationUnit != nil {
		loan.DurationUnit = input.DurationUnit
	}
	if input.StartDate != nil {
		loan.StartDate = *input.StartDate
	}

	loan.Status = plan.Status(loan, s.now())

	if err := s.db.Save(loan).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return loan, nil
}

// DeleteLoans soft-deletes the given loans and their transactions.
func (s *loanService) DeleteLoans(loanIDs []uint) error {
	if len(loanIDs) == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "No loan ids given")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Where("loan_id IN ?", loanIDs).Delete(&models.Transaction{}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if txErr := tx.Where("id IN ?", loanIDs).Delete(&models.Loan{}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	return err
}

// AddTransaction records a repayment and re-derives the loan status.
func (s *loanService) AddTransaction(loanID uint, amount float64, paymentDate time.Time) (*models.Loan, error) {
	if _, err := s.GetLoanByID(loanID); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		LoanID:      loanID,
		Amount:      amount,
		PaymentDate: paymentDate,
	}
	if err := s.db.Create(txn).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.syncLoanStatus(loanID)
}

// UpdateTransaction edits a repayment and re-derives the loan status.
func (s *loanService) UpdateTransaction(loanID, transactionID uint, amount float64, paymentDate time.Time) (*models.Loan, error) {
	txn, err := s.getLoanTransaction(loanID, transactionID)
	if err != nil {
		return nil, err
	}

	txn.Amount = amount
	txn.PaymentDate = paymentDate
	if err := s.db.Save(txn).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.syncLoanStatus(loanID)
}

// DeleteTransaction removes a repayment and re-derives the loan status.
func (s *loanService) DeleteTransaction(loanID, transactionID uint) (*models.Loan, error) {
	txn, err := s.getLoanTransaction(loanID, transactionID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Delete(txn).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.syncLoanStatus(loanID)
}

// GetLoanSummary reduces the whole loan book into per-type totals.
func (s *loanService) GetLoanSummary() (*LoanSummary, error) {
	var loans []models.Loan
	if err := s.db.Preload("Transactions").Find(&loans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := s.now()
	summary := &LoanSummary{ByType: make(map[models.LoanType]LoanTypeBreakdown)}

	for i := range loans {
		loan := &loans[i]
		entry := summary.ByType[loan.LoanType]
		entry.Count++
		entry.TotalLoaned += loan.LoanAmount
		entry.TotalGiven += loan.GivenAmount
		entry.TotalPaid += plan.AmountPaid(loan)
		entry.TotalBalance += plan.Balance(loan, now)
		entry.TotalProfit += plan.Profit(loan, now)
		summary.ByType[loan.LoanType] = entry

		summary.Totals.Count++
		summary.Totals.TotalLoaned += loan.LoanAmount
		summary.Totals.TotalGiven += loan.GivenAmount
		summary.Totals.TotalPaid += plan.AmountPaid(loan)
		summary.Totals.TotalBalance += plan.Balance(loan, now)
		summary.Totals.TotalProfit += plan.Profit(loan, now)
	}

	return summary, nil
}

// getLoanTransaction fetches a transaction and verifies it belongs to the loan.
func (s *loanService) getLoanTransaction(loanID, transactionID uint) (*models.Transaction, error) {
	if _, err := s.GetLoanByID(loanID); err != nil {
		return nil, err
	}

	var txn models.Transaction
	if err := s.db.First(&txn, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if txn.LoanID != loanID {
		return nil, apperrors.ErrTransactionNotFound
	}
	return &txn, nil
}

// syncLoanStatus reloads the loan, re-runs the calculation engine, and
// persists the derived status when it changed. This is the write-back half
// of the engine contract: the cached column only ever holds engine output.
func (s *loanService) syncLoanStatus(loanID uint) (*models.Loan, error) {
	loan, err := s.GetLoanByID(loanID)
	if err != nil {
		return nil, err
	}

	derived := plan.Status(loan, s.now())
	if derived != loan.Status {
		if err := s.db.Model(loan).Update("status", derived).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		loan.Status = derived
	}
	return loan, nil
}
