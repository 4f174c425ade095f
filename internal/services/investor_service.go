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

// CreateInvestorInput carries the fields for a new investor record.
type CreateInvestorInput struct {
	Name             string
	InvestmentAmount float64
	InvestmentType   models.InvestmentType
	ProfitRate       float64
	StartDate        time.Time
}

// UpdateInvestorInput carries optional field updates; nil fields are left
// untouched. Setting Status to Closed is the manual, terminal close.
type UpdateInvestorInput struct {
	Name             *string
	InvestmentAmount *float64
	InvestmentType   *models.InvestmentType
	ProfitRate       *float64
	StartDate        *time.Time
	Status           *models.InvestorStatus
}

// PaymentInput carries the fields of an investor payout.
type PaymentInput struct {
	Amount      float64
	PaymentDate time.Time
	PaymentType models.InvestorPaymentType
	Remarks     string
}

// investorService handles investor-related business logic.
type investorService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewInvestorService creates a new InvestorServicer.
func NewInvestorService(db *gorm.DB) InvestorServicer {
	return &investorService{db: db, now: time.Now}
}

// CreateInvestor stores a new investor with status On Track.
func (s *investorService) CreateInvestor(input CreateInvestorInput) (*models.Investor, error) {
	investor := &models.Investor{
		Name:             input.Name,
		InvestmentAmount: input.InvestmentAmount,
		InvestmentType:   input.InvestmentType,
		ProfitRate:       input.ProfitRate,
		StartDate:        input.StartDate,
		Status:           models.InvestorStatusOnTrack,
		Payments:         []models.InvestorPayment{},
	}

	if err := s.db.Create(investor).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return investor, nil
}

// GetInvestors returns a paginated list of investors, newest first,
// optionally filtered by cached status.
func (s *investorService) GetInvestors(page pagination.PageRequest, status *models.InvestorStatus) (*pagination.PageResponse[models.Investor], error) {
	page.Defaults()

	query := s.db.Model(&models.Investor{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var investors []models.Investor
	if err := query.Preload("Payments").Order("created_at DESC").
		Scopes(pagination.Paginate(page)).Find(&investors).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(investors, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetInvestorByID returns an investor with their payments.
func (s *investorService) GetInvestorByID(investorID uint) (*models.Investor, error) {
	var investor models.Investor
	if err := s.db.Preload("Payments").First(&investor, investorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvestorNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &investor, nil
}

// UpdateInvestor applies the non-nil fields of input. Unless the investor
// is closed (manually here, or previously), the cached status is re-derived
// from the engine afterwards.
func (s *investorService) UpdateInvestor(investorID uint, input UpdateInvestorInput) (*models.Investor, error) {
	investor, err := s.GetInvestorByID(investorID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		investor.Name = *input.Name
	}
	if input.InvestmentAmount != nil {
		investor.InvestmentAmount = *input.InvestmentAmount
	}
	if input.InvestmentType != nil {
		investor.InvestmentType = *input.InvestmentType
	}
	if input.ProfitRate != nil {
		investor.ProfitRate = *input.ProfitRate
	}
	if input.StartDate != nil {
		investor.StartDate = *input.StartDate
	}
	if input.Status != nil {
		investor.Status = *input.Status
	}

	if investor.Status != models.InvestorStatusClosed {
		investor.Status = plan.Metrics(investor, s.now()).Status
	}

	if err := s.db.Save(investor).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return investor, nil
}

// DeleteInvestor soft-deletes an investor and their payments.
func (s *investorService) DeleteInvestor(investorID uint) error {
	if _, err := s.GetInvestorByID(investorID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Where("investor_id = ?", investorID).Delete(&models.InvestorPayment{}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if txErr := tx.Delete(&models.Investor{}, investorID).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
}

// AddPayment records a payout and re-derives the investor status.
func (s *investorService) AddPayment(investorID uint, input PaymentInput) (*models.Investor, error) {
	if _, err := s.GetInvestorByID(investorID); err != nil {
		return nil, err
	}

	pay := &models.InvestorPayment{
		InvestorID:  investorID,
		Amount:      input.Amount,
		PaymentDate: input.PaymentDate,
		PaymentType: input.PaymentType,
		Remarks:     input.Remarks,
	}
	if err := s.db.Create(pay).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.syncInvestorStatus(investorID)
}

// UpdatePayment edits a payout and re-derives the investor status.
func (s *investorService) UpdatePayment(investorID, paymentID uint, input PaymentInput) (*models.Investor, error) {
	pay, err := s.getInvestorPayment(investorID, paymentID)
	if err != nil {
		return nil, err
	}

	pay.Amount = input.Amount
	pay.PaymentDate = input.PaymentDate
	pay.PaymentType = input.PaymentType
	pay.Remarks = input.Remarks
	if err := s.db.Save(pay).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.syncInvestorStatus(investorID)
}

// DeletePayment removes a payout and re-derives the investor status.
func (s *investorService) DeletePayment(investorID, paymentID uint) (*models.Investor, error) {
	pay, err := s.getInvestorPayment(investorID, paymentID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Delete(pay).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.syncInvestorStatus(investorID)
}

// GetInvestorMetrics returns the engine's derived state for one investor.
func (s *investorService) GetInvestorMetrics(investorID uint) (*plan.InvestorMetrics, error) {
	investor, err := s.GetInvestorByID(investorID)
	if err != nil {
		return nil, err
	}
	metrics := plan.Metrics(investor, s.now())
	return &metrics, nil
}

// GetInvestorSummary reduces all investors into collection-wide totals.
func (s *investorService) GetInvestorSummary() (*plan.InvestorSummary, error) {
	var investors []models.Investor
	if err := s.db.Preload("Payments").Find(&investors).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	summary := plan.Summary(investors, s.now())
	return &summary, nil
}

// getInvestorPayment fetches a payment and verifies it belongs to the investor.
func (s *investorService) getInvestorPayment(investorID, paymentID uint) (*models.InvestorPayment, error) {
	if _, err := s.GetInvestorByID(investorID); err != nil {
		return nil, err
	}

	var pay models.InvestorPayment
	if err := s.db.First(&pay, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if pay.InvestorID != investorID {
		return nil, apperrors.ErrPaymentNotFound
	}
	return &pay, nil
}

// syncInvestorStatus reloads the investor and persists the engine-derived
// status. Closed is terminal and never overwritten.
func (s *investorService) syncInvestorStatus(investorID uint) (*models.Investor, error) {
	investor, err := s.GetInvestorByID(investorID)
	if err != nil {
		return nil, err
	}

	if investor.Status == models.InvestorStatusClosed {
		return investor, nil
	}

	derived := plan.Metrics(investor, s.now()).Status
	if derived != investor.Status {
		if err := s.db.Model(investor).Update("status", derived).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		investor.Status = derived
	}
	return investor, nil
}
