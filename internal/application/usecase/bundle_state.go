package usecase

import (
	"context"
	"fmt"
	"sort"

	"zipper.com/internal/domain/entity"
	"zipper.com/internal/domain/port"
)

// bundleState is the uncommitted view of the ledger while a bundle executes.
// Reads fall through to the repository once per account; writes stay local
// until the whole bundle succeeds.
type bundleState struct {
	repository port.AccountRepository
	accounts   map[entity.Address]*entity.Account
	dirty      map[entity.Address]struct{}
}

func newBundleState(repository port.AccountRepository) *bundleState {
	return &bundleState{
		repository: repository,
		accounts:   make(map[entity.Address]*entity.Account),
		dirty:      make(map[entity.Address]struct{}),
	}
}

// GetAccount returns the current uncommitted account, nil if it does not exist
func (s *bundleState) GetAccount(ctx context.Context, addr entity.Address) (*entity.Account, error) {
	if acc, ok := s.accounts[addr]; ok {
		return acc, nil
	}

	acc, err := s.repository.GetAccount(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", addr, err)
	}
	acc = acc.Clone()
	s.accounts[addr] = acc
	return acc, nil
}

// GetOrCreateSystemAccount loads addr or starts an empty system-owned account
func (s *bundleState) GetOrCreateSystemAccount(ctx context.Context, addr entity.Address, programs entity.ProgramIDs) (*entity.Account, error) {
	acc, err := s.GetAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		acc = entity.NewSystemAccount(addr, 0, programs)
		s.accounts[addr] = acc
	}
	return acc, nil
}

// MarkDirty records that acc must be written back on commit
func (s *bundleState) MarkDirty(acc *entity.Account) {
	s.accounts[acc.Address] = acc
	s.dirty[acc.Address] = struct{}{}
}

// Accounts resolves addrs in order against the uncommitted state
func (s *bundleState) Accounts(ctx context.Context, addrs []entity.Address) ([]*entity.Account, error) {
	accounts := make([]*entity.Account, len(addrs))
	for i, addr := range addrs {
		acc, err := s.GetAccount(ctx, addr)
		if err != nil {
			return nil, err
		}
		accounts[i] = acc
	}
	return accounts, nil
}

// UpdatedAccounts returns written accounts sorted by address
func (s *bundleState) UpdatedAccounts() []*entity.Account {
	updated := make([]*entity.Account, 0, len(s.dirty))
	for addr := range s.dirty {
		updated = append(updated, s.accounts[addr])
	}
	sort.Slice(updated, func(i, j int) bool {
		return updated[i].Address.String() < updated[j].Address.String()
	})
	return updated
}
