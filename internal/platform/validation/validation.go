// Package validation holds the request validation rules shared by gin binding and the services.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// TagName matches the struct tag gin's binding engine reads.
const TagName = "binding"

// Helper validates DTOs outside of gin's binding step.
type Helper struct {
	validator *validator.Validate
}

// NewHelper creates a validator that understands the ledger's custom rules.
func NewHelper() *Helper {
	v := validator.New()
	v.SetTagName(TagName)
	if err := RegisterRules(v); err != nil {
		// Rules are static; a failure here is a programming error.
		panic(err)
	}
	return &Helper{validator: v}
}

// ValidateStruct validates a struct and returns validation errors.
func (h *Helper) ValidateStruct(s any) error {
	return h.validator.Struct(s)
}

// RegisterRules adds the custom tags to a validator instance.
func RegisterRules(v *validator.Validate) error {
	return v.RegisterValidation("bloodtype", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseBloodType(fl.Field().String())
		return ok
	})
}

// RegisterGinValidators installs the custom rules on gin's default binding engine.
func RegisterGinValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return RegisterRules(v)
}

// Describe flattens validator errors into a single readable message.
func Describe(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	parts := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		parts = append(parts, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
