package entity

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// AddressLength is the size in bytes of a ledger address
const AddressLength = 32

// Address identifies an account or a program on the ledger
type Address [AddressLength]byte

// ParseAddress decodes a base58 encoded address
func ParseAddress(s string) (Address, error) {
	var addr Address
	if s == "" {
		return addr, ErrMissingAddress
	}

	raw, err := base58.Decode(s)
	if err != nil {
		return addr, fmt.Errorf("%w: %s: %v", ErrInvalidAddress, s, err)
	}
	if len(raw) != AddressLength {
		return addr, fmt.Errorf("%w: %s decodes to %d bytes", ErrInvalidAddress, s, len(raw))
	}

	copy(addr[:], raw)
	return addr, nil
}

// MustParseAddress is like ParseAddress but panics on malformed input.
// Intended for well-known constants and tests.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// ParseAddresses decodes a list of base58 addresses, keeping their order
func ParseAddresses(values []string) ([]Address, error) {
	addrs := make([]Address, 0, len(values))
	for i, v := range values {
		addr, err := ParseAddress(v)
		if err != nil {
			return nil, fmt.Errorf("address %d: %w", i, err)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

// IsZero reports whether the address is all zero bytes
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ProgramIDs holds the well-known program identities the guard relies on.
// They are resolved once at startup from configuration.
type ProgramIDs struct {
	// System owns every account that holds only a native balance.
	System Address
	// Token owns fungible-asset balance records.
	Token Address
	// Zipper is the identity of the balance guard itself.
	Zipper Address
}

// Well-known default identities
const (
	DefaultSystemProgram = "11111111111111111111111111111111"
	DefaultTokenProgram  = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	DefaultZipperProgram = "Z1PctcuGZfcLVPWSCgi9nwhGNpvqH1AamRTEqSBzJoL"
)

// DefaultProgramIDs returns the identities used on public clusters
func DefaultProgramIDs() ProgramIDs {
	return ProgramIDs{
		System: MustParseAddress(DefaultSystemProgram),
		Token:  MustParseAddress(DefaultTokenProgram),
		Zipper: MustParseAddress(DefaultZipperProgram),
	}
}
