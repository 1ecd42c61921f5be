package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email string `json:"businessemail" validate:"required,email"`
	Code  string `json:"currency" validate:"required,oneof=USD EUR"`
	Note  string
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(sample{Email: "shop@example.com", Code: "USD"}))

	errs := Validate(sample{Email: "nope", Code: "XXX"})
	assert.Equal(t, map[string]string{"businessemail": "email", "currency": "oneof"}, errs)

	errs = Validate(sample{})
	assert.Equal(t, "required", errs["businessemail"])
	assert.Equal(t, "required", errs["currency"])
}
