package accountdelivery

import (
	"github.com/go-petr/pet-ledger/internal/accountnumber"
	"github.com/go-playground/validator/v10"
)

// ValidAccountNumber validates whether the field is a well-formed account number.
var ValidAccountNumber validator.Func = func(fl validator.FieldLevel) bool {
	if n, ok := fl.Field().Interface().(string); ok {
		return accountnumber.Valid(n)
	}
	return false
}
