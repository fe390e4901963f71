// Package validation wraps go-playground/validator with the marketplace's
// custom rules so the HTTP API and the bot accept the same input.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^(\+7|7|8)?\(?[489][0-9]{2}\)?[0-9]{3}[0-9]{2}[0-9]{2}$`)

var shared = New()

// New returns a validator with the "phone" tag registered.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	return v
}

// IsPhone reports whether s looks like a Russian phone number.
// Spaces and dashes are ignored.
func IsPhone(s string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(s)
	return phonePattern.MatchString(cleaned)
}

// IsEmail reports whether s is a syntactically valid email address.
func IsEmail(s string) bool {
	return shared.Var(s, "required,email") == nil
}

// FormatErrors flattens validator errors into field -> message.
// Errors of other types yield nil.
func FormatErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	out := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		out[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return out
}
