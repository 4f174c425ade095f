// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("loan_type", validateLoanType)
		_ = v.RegisterValidation("loan_status", validateLoanStatus)
		_ = v.RegisterValidation("duration_unit", validateDurationUnit)
		_ = v.RegisterValidation("investment_type", validateInvestmentType)
		_ = v.RegisterValidation("investor_status", validateInvestorStatus)
		_ = v.RegisterValidation("payment_type", validatePaymentType)
	}
}

func validateLoanType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Finance", "Tender", "InterestRate":
		return true
	}
	return false
}

func validateLoanStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Active", "Completed", "Overdue":
		return true
	}
	return false
}

func validateDurationUnit(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Days", "Weeks", "Months":
		return true
	}
	return false
}

func validateInvestmentType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Finance", "Tender", "InterestRatePlan":
		return true
	}
	return false
}

func validateInvestorStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "On Track", "Delayed", "Closed":
		return true
	}
	return false
}

func validatePaymentType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Principal", "Profit", "Interest":
		return true
	}
	return false
}
