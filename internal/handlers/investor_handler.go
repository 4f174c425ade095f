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

// InvestorHandler handles investor-related requests.
type InvestorHandler struct {
	investorService services.InvestorServicer
	now             func() time.Time
}

// NewInvestorHandler creates a new InvestorHandler.
func NewInvestorHandler(investorService services.InvestorServicer) *InvestorHandler {
	return &InvestorHandler{investorService: investorService, now: time.Now}
}

// CreateInvestorRequest represents the request payload for creating an investor.
type CreateInvestorRequest struct {
	Name             string                `json:"name" binding:"required,min=1,max=100"`
	InvestmentAmount float64               `json:"investmentAmount" binding:"required,gt=0"`
	InvestmentType   models.InvestmentType `json:"investmentType" binding:"required,investment_type"`
	ProfitRate       float64               `json:"profitRate" binding:"omitempty,gte=0"`
	StartDate        time.Time             `json:"startDate" binding:"required"`
}

// UpdateInvestorRequest represents the request payload for updating an
// investor. Omitted fields are left unchanged; setting status to Closed is
// the manual, terminal close.
type UpdateInvestorRequest struct {
	Name             *string                `json:"name" binding:"omitempty,min=1,max=100"`
	InvestmentAmount *float64               `json:"investmentAmount" binding:"omitempty,gt=0"`
	InvestmentType   *models.InvestmentType `json:"investmentType" binding:"omitempty,investment_type"`
	ProfitRate       *float64               `json:"profitRate" binding:"omitempty,gte=0"`
	StartDate        *time.Time             `json:"startDate"`
	Status           *models.InvestorStatus `json:"status" binding:"omitempty,investor_status"`
}

// PaymentRequest represents the request payload for recording or editing a
// payout to an investor.
type PaymentRequest struct {
	Amount      float64                    `json:"amount" binding:"required,gt=0"`
	PaymentDate time.Time                  `json:"payment_date" binding:"required"`
	PaymentType models.InvestorPaymentType `json:"payment_type" binding:"required,payment_type"`
	Remarks     string                     `json:"remarks" binding:"omitempty,max=500"`
}

// InvestorResponse wraps an investor record with its derived metrics as of
// the time of the request.
type InvestorResponse struct {
	*models.Investor
	Metrics plan.InvestorMetrics `json:"metrics"`
}

func newInvestorResponse(investor *models.Investor, now time.Time) InvestorResponse {
	return InvestorResponse{
		Investor: investor,
		Metrics:  plan.Metrics(investor, now),
	}
}

func (h *InvestorHandler) investorResponses(investors []models.Investor) []InvestorResponse {
	now := h.now()
	responses := make([]InvestorResponse, len(investors))
	for i := range investors {
		responses[i] = newInvestorResponse(&investors[i], now)
	}
	return responses
}

// CreateInvestor handles the creation of a new investor.
func (h *InvestorHandler) CreateInvestor(c *gin.Context) {
	var req CreateInvestorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	investor, err := h.investorService.CreateInvestor(services.CreateInvestorInput{
		Name:             req.Name,
		InvestmentAmount: req.InvestmentAmount,
		InvestmentType:   req.InvestmentType,
		ProfitRate:       req.ProfitRate,
		StartDate:        req.StartDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"investor": newInvestorResponse(investor, h.now())})
}

// GetInvestors handles listing investors with an optional status filter.
func (h *InvestorHandler) GetInvestors(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.InvestorStatus
	if v := c.Query("status"); v != "" {
		st := models.InvestorStatus(v)
		if st != models.InvestorStatusOnTrack && st != models.InvestorStatusDelayed && st != models.InvestorStatusClosed {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be 'On Track', 'Delayed' or 'Closed'"))
			return
		}
		status = &st
	}

	result, err := h.investorService.GetInvestors(page, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	response := pagination.NewPageResponse(h.investorResponses(result.Data), result.Page, result.PageSize, result.TotalItems)
	c.JSON(http.StatusOK, response)
}

// GetInvestor handles retrieving a specific investor with derived metrics.
func (h *InvestorHandler) GetInvestor(c *gin.Context) {
	investorID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	investor, err := h.investorService.GetInvestorByID(investorID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investor": newInvestorResponse(investor, h.now())})
}

// UpdateInvestor handles updating an existing investor.
func (h *InvestorHandler) UpdateInvestor(c *gin.Context) {
	investorID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateInvestorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	investor, err := h.investorService.UpdateInvestor(investorID, services.UpdateInvestorInput{
		Name:             req.Name,
		InvestmentAmount: req.InvestmentAmount,
		InvestmentType:   req.InvestmentType,
		ProfitRate:       req.ProfitRate,
		StartDate:        req.StartDate,
		Status:           req.Status,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investor": newInvestorResponse(investor, h.now())})
}

// DeleteInvestor handles deleting an investor and their payment history.
func (h *InvestorHandler) DeleteInvestor(c *gin.Context) {
	investorID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.investorService.DeleteInvestor(investorID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": investorID})
}

// AddPayment handles recording a payout to an investor.
func (h *InvestorHandler) AddPayment(c *gin.Context) {
	investorID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	investor, err := h.investorService.AddPayment(investorID, services.PaymentInput{
		Amount:      req.Amount,
		PaymentDate: req.PaymentDate,
		PaymentType: req.PaymentType,
		Remarks:     req.Remarks,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"investor": newInvestorResponse(investor, h.now())})
}

// UpdatePayment handles editing a recorded payout.
func (h *InvestorHandler) UpdatePayment(c *gin.Context) {
	investorID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	paymentID, err := parsePathID(c, "paymentId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	investor, err := h.investorService.UpdatePayment(investorID, paymentID, services.PaymentInput{
		Amount:      req.Amount,
		PaymentDate: req.PaymentDate,
		PaymentType: req.PaymentType,
		Remarks:     req.Remarks,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investor": newInvestorResponse(investor, h.now())})
}

// DeletePayment handles removing a recorded payout.
func (h *InvestorHandler) DeletePayment(c *gin.Context) {
	investorID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	paymentID, err := parsePathID(c, "paymentId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	investor, err := h.investorService.DeletePayment(investorID, paymentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investor": newInvestorResponse(investor, h.now())})
}

// GetInvestorMetrics handles the per-investor derived metrics endpoint.
func (h *InvestorHandler) GetInvestorMetrics(c *gin.Context) {
	investorID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	metrics, err := h.investorService.GetInvestorMetrics(investorID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"metrics": metrics})
}

// GetInvestorSummary handles the collection-wide aggregation endpoint.
func (h *InvestorHandler) GetInvestorSummary(c *gin.Context) {
	summary, err := h.investorService.GetInvestorSummary()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
