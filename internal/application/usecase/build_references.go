package usecase

import "zipper.com/internal/domain/entity"

// BuildReferences converts addresses into read-only account references,
// preserving order so that position i still pairs with expected balance i.
func BuildReferences(addresses []entity.Address) []entity.AccountReference {
	refs := make([]entity.AccountReference, len(addresses))
	for i, addr := range addresses {
		refs[i] = entity.AccountReference{
			Address:    addr,
			IsSigner:   false,
			IsWritable: false,
		}
	}
	return refs
}

// NewVerifyInstruction assembles the trailing guard instruction of a bundle
func NewVerifyInstruction(addresses []entity.Address, balances []uint64) entity.Instruction {
	return entity.Instruction{
		Kind:     entity.InstructionVerify,
		Accounts: BuildReferences(addresses),
		Balances: append([]uint64(nil), balances...),
	}
}
