package handlers

import (
	"fmt"

	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the reconciliation specific binding tags on gin's validator.
//
//	reviewtag  canonical review tag or a legacy alias
//	txnside    BANK or GOAL, case-insensitive
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("reviewtag", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseReviewTag(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation("txnside", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseSide(fl.Field().String())
		return err == nil
	})
}
