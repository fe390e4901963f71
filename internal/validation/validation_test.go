package validation_test

import (
	"testing"

	"rukami/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPhone(t *testing.T) {
	valid := []string{"+79161234567", "89161234567", "+7 916 123-45-67", "(916)1234567", "9161234567"}
	for _, p := range valid {
		assert.True(t, validation.IsPhone(p), p)
	}

	invalid := []string{"", "12345", "+19161234567", "+7 116 123 45 67", "phone"}
	for _, p := range invalid {
		assert.False(t, validation.IsPhone(p), p)
	}
}

func TestIsEmail(t *testing.T) {
	assert.True(t, validation.IsEmail("maria@example.com"))
	assert.False(t, validation.IsEmail("maria@"))
	assert.False(t, validation.IsEmail(""))
}

func TestFormatErrors(t *testing.T) {
	type input struct {
		Phone string `validate:"required,phone"`
		Name  string `validate:"required,min=2"`
	}

	err := validation.New().Struct(input{Phone: "nope", Name: "A"})
	require.Error(t, err)

	errs := validation.FormatErrors(err)
	assert.Equal(t, "Field 'Phone' failed on the 'phone' tag", errs["Phone"])
	assert.Equal(t, "Field 'Name' failed on the 'min' tag", errs["Name"])

	assert.Nil(t, validation.FormatErrors(assert.AnError))
}
