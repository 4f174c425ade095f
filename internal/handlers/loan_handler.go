package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ravi5775/v1/internal/errors"
	"github.com/ravi5775/v1/internal/models"
	"github.com/ravi5775/v1/internal/pagination"
	"github.com/ravi5775/v1/internal/plan"
	"github.com/ravi5775/v1/internal/services"
)

// LoanHandler handles loan-related requests.
type LoanHandler struct {
	loanService services.LoanServicer
	now         func() time.Time
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanService services.LoanServicer) *LoanHandler {
	return &LoanHandler{loanService: loanService, now: time.Now}
}

// CreateLoanRequest represents the request payload for creating a loan.
type CreateLoanRequest struct {
	CustomerName     string                   `json:"customerName" binding:"required,min=1,max=100"`
	Phone            string                   `json:"phone" binding:"omitempty,max=20"`
	LoanType         models.LoanType          `json:"loanType" binding:"required,loan_type"`
	LoanAmount       float64                  `json:"loanAmount" binding:"required,gt=0"`
	GivenAmount      float64                  `json:"givenAmount" binding:"omitempty,gte=0"`
	InterestRate     *float64                 `json:"interestRate" binding:"omitempty,gte=0"`
	DurationInMonths *int                     `json:"durationInMonths" binding:"omitempty,gt=0"`
	DurationInDays   *int                     `json:"durationInDays" binding:"omitempty,gt=0"`
	DurationValue    *int                     `json:"durationValue" binding:"omitempty,gt=0"`
	DurationUnit     *models.LoanDurationUnit `json:"durationUnit" binding:"omitempty,duration_unit"`
	StartDate        time.Time                `json:"startDate" binding:"required"`
}

// UpdateLoanRequest represents the request payload for updating a loan.
// Omitted fields are left unchanged.
type UpdateLoanRequest struct {
	CustomerName     *string                  `json:"customerName" binding:"omitempty,min=1,max=100"`
	Phone            *string                  `json:"phone" binding:"omitempty,max=20"`
	LoanAmount       *float64                 `json:"loanAmount" binding:"omitempty,gt=0"`
	GivenAmount      *float64                 `json:"givenAmount" binding:"omitempty,gte=0"`
	InterestRate     *float64                 `json:"interestRate" binding:"omitempty,gte=0"`
	DurationInMonths *int                     `json:"durationInMonths" binding:"omitempty,gt=0"`
	DurationInDays   *int                     `json:"durationInDays" binding:"omitempty,gt=0"`
	DurationValue    *int                     `json:"durationValue" binding:"omitempty,gt=0"`
	DurationUnit     *models.LoanDurationUnit `json:"durationUnit" binding:"omitempty,duration_unit"`
	StartDate        *time.Time               `json:"startDate"`
}

// TransactionRequest represents the request payload for recording or editing
// a repayment.
type TransactionRequest struct {
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	PaymentDate time.Time `json:"payment_date" binding:"required"`
}

// DeleteLoansRequest represents the request payload for bulk loan deletion.
type DeleteLoansRequest struct {
	LoanIDs []uint `json:"loanIds" binding:"required,min=1,dive,gt=0"`
}

// LoanResponse wraps a loan record with its derived values as of the time
// of the request. The stored record never holds these; clients always see
// freshly computed figures.
type LoanResponse struct {
	*models.Loan
	AmountPaid   float64    `json:"amountPaid"`
	TotalAmount  float64    `json:"totalAmount"`
	Balance      float64    `json:"balance"`
	Profit       float64    `json:"profit"`
	FinalDueDate *time.Time `json:"finalDueDate"`
	NextDueDate  *time.Time `json:"nextDueDate"`
}

func newLoanResponse(loan *models.Loan, now time.Time) LoanResponse {
	return LoanResponse{
		Loan:         loan,
		AmountPaid:   plan.AmountPaid(loan),
		TotalAmount:  plan.TotalAmount(loan, now),
		Balance:      plan.Balance(loan, now),
		Profit:       plan.Profit(loan, now),
		FinalDueDate: plan.FinalDueDate(loan),
		NextDueDate:  plan.NextDueDate(loan, now),
	}
}

func (h *LoanHandler) loanResponses(loans []models.Loan) []LoanResponse {
	now := h.now()
	responses := make([]LoanResponse, len(loans))
	for i := range loans {
		responses[i] = newLoanResponse(&loans[i], now)
	}
	return responses
}

// CreateLoan handles the creation of a new loan.
func (h *LoanHandler) CreateLoan(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	// Tender is the only type where the disbursed amount differs from the
	// face value; elsewhere an omitted givenAmount means the full amount.
	if req.GivenAmount == 0 {
		req.GivenAmount = req.LoanAmount
	}

	loan, err := h.loanService.CreateLoan(services.CreateLoanInput{
		CustomerName:     req.CustomerName,
		Phone:            req.Phone,
		LoanType:         req.LoanType,
		LoanAmount:       req.LoanAmount,
		GivenAmount:      req.GivenAmount,
		InterestRate:     req.InterestRate,
		DurationInMonths: req.DurationInMonths,
		DurationInDays:   req.DurationInDays,
		DurationValue:    req.DurationValue,
		DurationUnit:     req.DurationUnit,
		StartDate:        req.StartDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"loan": newLoanResponse(loan, h.now())})
}

// GetLoans handles listing loans with optional type and status filters.
func (h *LoanHandler) GetLoans(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var loanType *models.LoanType
	if v := c.Query("type"); v != "" {
		lt := models.LoanType(v)
		if lt != models.LoanTypeFinance && lt != models.LoanTypeTender && lt != models.LoanTypeInterestRate {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be 'Finance', 'Tender' or 'InterestRate'"))
			return
		}
		loanType = &lt
	}

	var status *models.LoanStatus
	if v := c.Query("status"); v != "" {
		st := models.LoanStatus(v)
		if st != models.LoanStatusActive && st != models.LoanStatusCompleted && st != models.LoanStatusOverdue {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be 'Active', 'Completed' or 'Overdue'"))
			return
		}
		status = &st
	}

	result, err := h.loanService.GetLoans(page, loanType, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	response := pagination.NewPageResponse(h.loanResponses(result.Data), result.Page, result.PageSize, result.TotalItems)
	c.JSON(http.StatusOK, response)
}

// GetLoan handles retrieving a specific loan with its derived values.
func (h *LoanHandler) GetLoan(c *gin.Context) {
	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	loan, err := h.loanService.GetLoanByID(loanID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": newLoanResponse(loan, h.now())})
}

// UpdateLoan handles updating an existing loan.
func (h *LoanHandler) UpdateLoan(c *gin.Context) {
	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	loan, err := h.loanService.UpdateLoan(loanID, services.UpdateLoanInput{
		CustomerName:     req.CustomerName,
		Phone:            req.Phone,
		LoanAmount:       req.LoanAmount,
		GivenAmount:      req.GivenAmount,
		InterestRate:     req.InterestRate,
		DurationInMonths: req.DurationInMonths,
		DurationInDays:   req.DurationInDays,
		DurationValue:    req.DurationValue,
		DurationUnit:     req.DurationUnit,
		StartDate:        req.StartDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": newLoanResponse(loan, h.now())})
}

// DeleteLoans handles bulk deletion of loans and their transactions.
func (h *LoanHandler) DeleteLoans(c *gin.Context) {
	var req DeleteLoansRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.loanService.DeleteLoans(req.LoanIDs); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": len(req.LoanIDs)})
}

// AddTransaction handles recording a repayment against a loan.
func (h *LoanHandler) AddTransaction(c *gin.Context) {
	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	loan, err := h.loanService.AddTransaction(loanID, req.Amount, req.PaymentDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"loan": newLoanResponse(loan, h.now())})
}

// UpdateTransaction handles editing a recorded repayment.
func (h *LoanHandler) UpdateTransaction(c *gin.Context) {
	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "transactionId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	loan, err := h.loanService.UpdateTransaction(loanID, transactionID, req.Amount, req.PaymentDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": newLoanResponse(loan, h.now())})
}

// DeleteTransaction handles removing a recorded repayment.
func (h *LoanHandler) DeleteTransaction(c *gin.Context) {
	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "transactionId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	loan, err := h.loanService.DeleteTransaction(loanID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": newLoanResponse(loan, h.now())})
}

// GetLoanSummary handles the loan book aggregation endpoint.
func (h *LoanHandler) GetLoanSummary(c *gin.Context) {
	summary, err := h.loanService.GetLoanSummary()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
