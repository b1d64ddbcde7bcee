package entity

import "fmt"

// BalanceKind tells which balance-bearing kind an account was classified as
type BalanceKind string

const (
	BalanceKindNative        BalanceKind = "native"
	BalanceKindFungibleAsset BalanceKind = "fungible_asset"
)

// BalanceRecord is the decoded balance of a classified account
type BalanceRecord struct {
	Kind   BalanceKind `json:"kind"`
	Amount uint64      `json:"amount"`
	// Mint is the asset identifier; nil for native balances.
	Mint     *Address `json:"mint,omitempty"`
	Identity string   `json:"identity"`
}

// NativeIdentity renders the diagnostic identity of a native balance holder
func NativeIdentity(addr Address) string {
	return "native " + addr.String()
}

// FungibleAssetIdentity renders the diagnostic identity of a token account
func FungibleAssetIdentity(addr, mint Address) string {
	return fmt.Sprintf("%s (mint %s)", addr, mint)
}

// BalanceCheck is one entry of the diagnostic trace emitted by the guard
type BalanceCheck struct {
	Index    int         `json:"index"`
	Address  Address     `json:"address"`
	Expected uint64      `json:"expected"`
	Actual   uint64      `json:"actual"`
	Identity string      `json:"identity,omitempty"`
	Kind     BalanceKind `json:"kind,omitempty"`
	// Classified is false when the account matched no balance-bearing kind.
	Classified bool `json:"classified"`
	Passed     bool `json:"passed"`
}

// Outcome is the aggregate result of a verification call
type Outcome string

const (
	OutcomeAllSatisfied          Outcome = "all_satisfied"
	OutcomeViolation             Outcome = "violation"
	OutcomeClassificationFailure Outcome = "classification_failure"
	OutcomeArityMismatch         Outcome = "arity_mismatch"
)

// VerificationReport collects every check performed by one verification call
type VerificationReport struct {
	Outcome Outcome        `json:"outcome"`
	Checks  []BalanceCheck `json:"checks"`
}

// Satisfied reports whether every check passed
func (r *VerificationReport) Satisfied() bool {
	return r != nil && r.Outcome == OutcomeAllSatisfied
}
