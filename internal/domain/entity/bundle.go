package entity

import "fmt"

// InstructionKind selects the program logic an instruction runs
type InstructionKind string

const (
	// InstructionSystemTransfer moves lamports.
	// Accounts: [source (signer, writable), destination (writable)].
	InstructionSystemTransfer InstructionKind = "system_transfer"
	// InstructionTokenTransfer moves a fungible-asset amount between accounts of one mint.
	// Accounts: [source (writable), destination (writable), authority (signer)].
	InstructionTokenTransfer InstructionKind = "token_transfer"
	// InstructionVerify is the balance guard. Accounts are read-only and are
	// paired positionally with Balances.
	InstructionVerify InstructionKind = "verify"
)

// Instruction is one step of an atomic bundle
type Instruction struct {
	Kind     InstructionKind    `json:"kind"`
	Accounts []AccountReference `json:"accounts"`
	Amount   uint64             `json:"amount,omitempty"`
	Balances []uint64           `json:"balances,omitempty"`
}

// Validate checks the static shape of the instruction. Verify arity is
// checked by the verification engine, not here.
func (i *Instruction) Validate() error {
	switch i.Kind {
	case InstructionSystemTransfer:
		if len(i.Accounts) != 2 {
			return fmt.Errorf("%w: %s takes 2 accounts, got %d", ErrInvalidInstruction, i.Kind, len(i.Accounts))
		}
	case InstructionTokenTransfer:
		if len(i.Accounts) != 3 {
			return fmt.Errorf("%w: %s takes 3 accounts, got %d", ErrInvalidInstruction, i.Kind, len(i.Accounts))
		}
	case InstructionVerify:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownInstruction, i.Kind)
	}
	return nil
}

// Bundle is an ordered list of instructions that commit together or not at all
type Bundle struct {
	Instructions []Instruction `json:"instructions"`
}

// Validate checks every instruction in the bundle
func (b *Bundle) Validate() error {
	if len(b.Instructions) == 0 {
		return ErrEmptyBundle
	}
	for idx := range b.Instructions {
		if err := b.Instructions[idx].Validate(); err != nil {
			return fmt.Errorf("instruction %d: %w", idx, err)
		}
	}
	return nil
}

// AccountCount returns the number of distinct accounts the bundle references
func (b *Bundle) AccountCount() int {
	seen := make(map[Address]struct{})
	for _, ix := range b.Instructions {
		for _, ref := range ix.Accounts {
			seen[ref.Address] = struct{}{}
		}
	}
	return len(seen)
}

// BundleStatus is the commit decision taken for a bundle
type BundleStatus string

const (
	BundleCommitted BundleStatus = "committed"
	BundleAborted   BundleStatus = "aborted"
	BundleSimulated BundleStatus = "simulated"
)

// VerificationTrace is the report of one verify instruction inside a bundle
type VerificationTrace struct {
	Instruction int `json:"instruction"`
	VerificationReport
}

// BundleReceipt describes what happened to a submitted bundle
type BundleReceipt struct {
	ID     string       `json:"id"`
	Status BundleStatus `json:"status"`
	// FailedInstruction is set when the bundle did not succeed.
	FailedInstruction *int                `json:"failed_instruction,omitempty"`
	Error             string              `json:"error,omitempty"`
	Trace             []VerificationTrace `json:"trace,omitempty"`
}

// PostBalance is the simulated balance of one account after a bundle ran
type PostBalance struct {
	Address Address        `json:"address"`
	Record  *BalanceRecord `json:"record,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// SimulationResult is the outcome of running a bundle without committing it
type SimulationResult struct {
	Receipt      *BundleReceipt `json:"receipt"`
	PostBalances []PostBalance  `json:"post_balances"`
}

// ExpectedBalances returns the simulated amounts in address order, ready to
// be used as the thresholds of a trailing verify instruction.
func (r *SimulationResult) ExpectedBalances() ([]uint64, error) {
	balances := make([]uint64, len(r.PostBalances))
	for i, pb := range r.PostBalances {
		if pb.Record == nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrUnrecognizedAccountKind, pb.Address, pb.Error)
		}
		balances[i] = pb.Record.Amount
	}
	return balances, nil
}
