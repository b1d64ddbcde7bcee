package entity

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAddress  = errors.New("missing required field: address")
	ErrMissingMint     = errors.New("missing required field: mint")
	ErrInvalidAddress  = errors.New("invalid address")
	ErrAccountNotFound = errors.New("account not found")

	ErrInvalidTokenAccount     = errors.New("invalid token account data")
	ErrUnrecognizedAccountKind = errors.New("unrecognized account kind")

	// ErrBundleAborted matches every failure that must roll back the enclosing bundle.
	ErrBundleAborted         = errors.New("bundle aborted")
	ErrArityMismatch         = errors.New("account and balance list lengths differ")
	ErrClassificationFailure = errors.New("account classification failed")
	ErrBalanceViolation      = errors.New("balance below expected minimum")

	ErrEmptyBundle          = errors.New("bundle has no instructions")
	ErrTooManyAccounts      = errors.New("bundle references too many accounts")
	ErrUnknownInstruction   = errors.New("unknown instruction kind")
	ErrMissingSignature     = errors.New("missing required signature")
	ErrAccountNotWritable   = errors.New("account not writable")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrMintMismatch         = errors.New("token accounts belong to different mints")
	ErrAccountFrozen        = errors.New("token account is frozen")
	ErrInvalidAccountOwner  = errors.New("account has wrong owner")
	ErrInvalidInstruction   = errors.New("malformed instruction")
	ErrInvalidBalanceAmount = errors.New("invalid balance amount")
)

// ArityMismatchError is returned before any account is inspected when the
// account list and the expected balance list differ in length.
type ArityMismatchError struct {
	Accounts int
	Balances int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("%v: %d accounts, %d balances", ErrArityMismatch, e.Accounts, e.Balances)
}

func (e *ArityMismatchError) Is(target error) bool {
	return target == ErrArityMismatch || target == ErrBundleAborted
}

// ClassificationFailureError reports an account that is neither a native
// balance holder nor a fungible-asset record.
type ClassificationFailureError struct {
	Index   int
	Address Address
	Err     error
}

func (e *ClassificationFailureError) Error() string {
	return fmt.Sprintf("%v: index %d (%s): %v", ErrClassificationFailure, e.Index, e.Address, e.Err)
}

func (e *ClassificationFailureError) Is(target error) bool {
	return target == ErrClassificationFailure || target == ErrBundleAborted
}

func (e *ClassificationFailureError) Unwrap() error {
	return e.Err
}

// ViolationError reports the first account whose balance is below its threshold
type ViolationError struct {
	Index    int
	Expected uint64
	Actual   uint64
	Identity string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%v: index %d: expected at least %d for %s, got %d",
		ErrBalanceViolation, e.Index, e.Expected, e.Identity, e.Actual)
}

func (e *ViolationError) Is(target error) bool {
	return target == ErrBalanceViolation || target == ErrBundleAborted
}
