package port

import (
	"context"

	"zipper.com/internal/domain/entity"
)

// AccountRepository is the port for ledger account storage
type AccountRepository interface {
	// GetAccount returns the account stored at addr, or nil and no error if none exists.
	GetAccount(ctx context.Context, addr entity.Address) (*entity.Account, error)
	// StoreAccounts writes all accounts in one atomic batch.
	StoreAccounts(ctx context.Context, accounts []*entity.Account) error
}
