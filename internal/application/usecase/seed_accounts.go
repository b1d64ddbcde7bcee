package usecase

import (
	"context"
	"fmt"

	"zipper.com/internal/domain/entity"
	"zipper.com/internal/domain/port"
)

// SeedAccountsUseCase creates genesis accounts on an empty ledger
type SeedAccountsUseCase struct {
	repository port.AccountRepository
	programs   entity.ProgramIDs
}

// NewSeedAccountsUseCase creates a new SeedAccountsUseCase
func NewSeedAccountsUseCase(repository port.AccountRepository, programs entity.ProgramIDs) *SeedAccountsUseCase {
	return &SeedAccountsUseCase{
		repository: repository,
		programs:   programs,
	}
}

// Execute stores every genesis account that does not exist yet and returns
// how many were created. Existing accounts are left untouched.
func (uc *SeedAccountsUseCase) Execute(ctx context.Context, genesis []entity.GenesisAccount) (int, error) {
	accounts := make([]*entity.Account, 0, len(genesis))
	for i := range genesis {
		if err := genesis[i].Validate(); err != nil {
			return 0, fmt.Errorf("genesis account %d: %w", i, err)
		}

		existing, err := uc.repository.GetAccount(ctx, genesis[i].Address)
		if err != nil {
			return 0, err
		}
		if existing != nil {
			continue
		}
		accounts = append(accounts, genesis[i].Account(uc.programs))
	}

	if len(accounts) == 0 {
		return 0, nil
	}
	if err := uc.repository.StoreAccounts(ctx, accounts); err != nil {
		return 0, err
	}
	return len(accounts), nil
}
