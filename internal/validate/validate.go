// Package validate wraps struct validation for repository write paths.
// Local validation failures never reach the transport.
package validate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Helper provides shared validation functionality.
type Helper struct {
	validator *validator.Validate
}

func NewHelper() *Helper {
	v := validator.New()
	// phone_digits: normalized digit count within [9,15]. Separators and a
	// leading + are allowed in the raw value.
	v.RegisterValidation("phone_digits", func(fl validator.FieldLevel) bool {
		digits := 0
		for _, r := range fl.Field().String() {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		return digits >= 9 && digits <= 15
	})
	return &Helper{validator: v}
}

// Struct validates s and returns the raw validator error.
func (h *Helper) Struct(s any) error {
	return h.validator.Struct(s)
}

// Fields converts a validation error into a per-field message map for the
// failure taxonomy. Non-validator errors map to a single "_" entry.
func Fields(err error) map[string]string {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field()[:1])+fe.Field()[1:]] = fmt.Sprintf("failed on '%s' rule", fe.Tag())
	}
	return fields
}
