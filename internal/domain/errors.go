// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates a malformed or out-of-range argument.
	ErrInvalidInput = errors.New("invalid input")
	// ErrHolderNameRequired indicates an empty account holder name.
	ErrHolderNameRequired = fmt.Errorf("%w: holder name is required", ErrInvalidInput)
	// ErrHolderFieldTooLong indicates a holder name, email or phone above its storage limit.
	ErrHolderFieldTooLong = fmt.Errorf("%w: holder field is too long", ErrInvalidInput)
	// ErrBalanceLimit indicates a balance change whose result does not fit the balance column.
	ErrBalanceLimit = fmt.Errorf("%w: resulting balance exceeds the supported range", ErrInvalidInput)
	// ErrInvalidAmount indicates an amount that is not positive or does not fit two decimals.
	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrInvalidInput)
	// ErrNegativeInitialDeposit indicates an initial deposit below zero.
	ErrNegativeInitialDeposit = fmt.Errorf("%w: initial deposit cannot be negative", ErrInvalidInput)
	// ErrDescriptionTooLong indicates a description above the storage limit.
	ErrDescriptionTooLong = fmt.Errorf("%w: description is too long", ErrInvalidInput)
	// ErrInvalidLimit indicates a negative history limit.
	ErrInvalidLimit = fmt.Errorf("%w: limit cannot be negative", ErrInvalidInput)
)
