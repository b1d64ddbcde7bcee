package entity

import (
	"encoding/binary"
	"fmt"
)

// TokenAccountLen is the exact size of an encoded token account
const TokenAccountLen = 165

// Field offsets of the token account layout
const (
	offsetMint            = 0
	offsetOwner           = 32
	offsetAmount          = 64
	offsetDelegate        = 72
	offsetState           = 108
	offsetIsNative        = 109
	offsetDelegatedAmount = 121
	offsetCloseAuthority  = 129
)

// TokenAccountState is the lifecycle state byte of a token account
type TokenAccountState uint8

const (
	TokenAccountUninitialized TokenAccountState = iota
	TokenAccountInitialized
	TokenAccountFrozen
)

// TokenAccount is the decoded fungible-asset balance record
type TokenAccount struct {
	Mint            Address
	Owner           Address
	Amount          uint64
	Delegate        *Address
	State           TokenAccountState
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  *Address
}

// DecodeTokenAccount parses raw account data. It fails unless data has the
// exact layout length, well-formed option tags and an initialized state.
func DecodeTokenAccount(data []byte) (*TokenAccount, error) {
	if len(data) != TokenAccountLen {
		return nil, fmt.Errorf("%w: length %d, want %d", ErrInvalidTokenAccount, len(data), TokenAccountLen)
	}

	acc := &TokenAccount{
		Amount:          binary.LittleEndian.Uint64(data[offsetAmount:]),
		State:           TokenAccountState(data[offsetState]),
		DelegatedAmount: binary.LittleEndian.Uint64(data[offsetDelegatedAmount:]),
	}
	copy(acc.Mint[:], data[offsetMint:offsetOwner])
	copy(acc.Owner[:], data[offsetOwner:offsetAmount])

	switch acc.State {
	case TokenAccountInitialized, TokenAccountFrozen:
	default:
		return nil, fmt.Errorf("%w: state %d", ErrInvalidTokenAccount, acc.State)
	}

	var err error
	if acc.Delegate, err = decodeOptionAddress(data[offsetDelegate:offsetState]); err != nil {
		return nil, fmt.Errorf("delegate: %w", err)
	}
	if acc.CloseAuthority, err = decodeOptionAddress(data[offsetCloseAuthority:TokenAccountLen]); err != nil {
		return nil, fmt.Errorf("close authority: %w", err)
	}

	switch tag := binary.LittleEndian.Uint32(data[offsetIsNative:]); tag {
	case 0:
	case 1:
		reserve := binary.LittleEndian.Uint64(data[offsetIsNative+4:])
		acc.IsNative = &reserve
	default:
		return nil, fmt.Errorf("%w: is_native option tag %d", ErrInvalidTokenAccount, tag)
	}

	return acc, nil
}

// Encode serializes the record into the fixed on-ledger layout
func (t *TokenAccount) Encode() []byte {
	data := make([]byte, TokenAccountLen)
	copy(data[offsetMint:], t.Mint[:])
	copy(data[offsetOwner:], t.Owner[:])
	binary.LittleEndian.PutUint64(data[offsetAmount:], t.Amount)
	encodeOptionAddress(data[offsetDelegate:offsetState], t.Delegate)
	data[offsetState] = byte(t.State)
	if t.IsNative != nil {
		binary.LittleEndian.PutUint32(data[offsetIsNative:], 1)
		binary.LittleEndian.PutUint64(data[offsetIsNative+4:], *t.IsNative)
	}
	binary.LittleEndian.PutUint64(data[offsetDelegatedAmount:], t.DelegatedAmount)
	encodeOptionAddress(data[offsetCloseAuthority:TokenAccountLen], t.CloseAuthority)
	return data
}

func decodeOptionAddress(field []byte) (*Address, error) {
	switch tag := binary.LittleEndian.Uint32(field); tag {
	case 0:
		return nil, nil
	case 1:
		var addr Address
		copy(addr[:], field[4:4+AddressLength])
		return &addr, nil
	default:
		return nil, fmt.Errorf("%w: option tag %d", ErrInvalidTokenAccount, tag)
	}
}

func encodeOptionAddress(field []byte, addr *Address) {
	if addr == nil {
		return
	}
	binary.LittleEndian.PutUint32(field, 1)
	copy(field[4:], addr[:])
}
