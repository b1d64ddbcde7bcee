package usecase

import (
	"fmt"

	"zipper.com/internal/domain/entity"
)

// Classifier inspects what an account actually is on the ledger rather than
// trusting a caller-declared kind.
type Classifier struct {
	programs entity.ProgramIDs
}

// NewClassifier creates a Classifier bound to the well-known program identities
func NewClassifier(programs entity.ProgramIDs) *Classifier {
	return &Classifier{programs: programs}
}

// Classify extracts the balance record of an account. A token account decode
// is attempted first; native balance holders are recognized by their owner.
func (c *Classifier) Classify(account *entity.Account) (entity.BalanceRecord, error) {
	if account == nil {
		return entity.BalanceRecord{}, entity.ErrAccountNotFound
	}

	if account.Owner == c.programs.Token {
		if token, err := entity.DecodeTokenAccount(account.Data); err == nil {
			mint := token.Mint
			return entity.BalanceRecord{
				Kind:     entity.BalanceKindFungibleAsset,
				Amount:   token.Amount,
				Mint:     &mint,
				Identity: entity.FungibleAssetIdentity(account.Address, token.Mint),
			}, nil
		}
	}

	if account.Owner == c.programs.System {
		return entity.BalanceRecord{
			Kind:     entity.BalanceKindNative,
			Amount:   account.Lamports,
			Identity: entity.NativeIdentity(account.Address),
		}, nil
	}

	return entity.BalanceRecord{}, fmt.Errorf("%w: %s owned by %s",
		entity.ErrUnrecognizedAccountKind, account.Address, account.Owner)
}
