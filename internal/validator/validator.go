// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("hex_color", validateHexColor)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("category_type", validateCategoryType)
		_ = v.RegisterValidation("account_category", validateAccountCategory)
		_ = v.RegisterValidation("loan_type", validateLoanType)
		_ = v.RegisterValidation("interest_mode", validateInterestMode)
	}
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense", "transfer":
		return true
	}
	return false
}

func validateCategoryType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

func validateAccountCategory(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "bank", "cash", "credit_card", "investment", "loan_receivable", "loan_payable", "other":
		return true
	}
	return false
}

func validateLoanType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "given", "taken":
		return true
	}
	return false
}

func validateInterestMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "simple", "compound":
		return true
	}
	return false
}
