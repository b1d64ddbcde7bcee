package repository

import (
	"context"
	"sync"

	"zipper.com/internal/domain/entity"
	"zipper.com/internal/domain/port"
	"zipper.com/internal/infrastructure/logger"
)

// InMemoryLedger implements the AccountRepository port
type InMemoryLedger struct {
	mu       sync.RWMutex
	accounts map[entity.Address]*entity.Account
	batches  int
	logger   logger.Logger
}

// NewInMemoryLedger creates a new in-memory ledger
func NewInMemoryLedger(logger logger.Logger) port.AccountRepository {
	return &InMemoryLedger{
		accounts: make(map[entity.Address]*entity.Account),
		logger:   logger,
	}
}

// GetAccount returns a copy of the stored account, nil if it does not exist
func (l *InMemoryLedger) GetAccount(_ context.Context, addr entity.Address) (*entity.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	// Copy so callers cannot mutate ledger state outside a batch
	return l.accounts[addr].Clone(), nil
}

// StoreAccounts replaces all given accounts under a single lock
func (l *InMemoryLedger) StoreAccounts(ctx context.Context, accounts []*entity.Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, acc := range accounts {
		l.accounts[acc.Address] = acc.Clone()
	}
	l.batches++

	l.logger.LogInfo(ctx, "Accounts stored",
		"accounts", len(accounts),
		"batch", l.batches)

	return nil
}
