package usecase

import (
	"context"
	"io"

	"zipper.com/internal/domain/entity"
	"zipper.com/internal/infrastructure/logger"
	"zipper.com/internal/infrastructure/repository"
)

var testPrograms = entity.DefaultProgramIDs()

func testLogger() logger.Logger {
	return logger.NewWriterLogger(io.Discard)
}

// addr builds a deterministic non-zero address
func addr(n byte) entity.Address {
	var a entity.Address
	a[0] = 0xA0
	a[31] = n
	return a
}

func nativeAccount(n byte, lamports uint64) *entity.Account {
	return entity.NewSystemAccount(addr(n), lamports, testPrograms)
}

func tokenAccount(n, mint, authority byte, amount uint64) *entity.Account {
	return entity.NewTokenAccount(addr(n), addr(mint), addr(authority), amount, 2_039_280, testPrograms)
}

// mockAccountRepository implements port.AccountRepository
type mockAccountRepository struct {
	getAccountFunc    func(ctx context.Context, addr entity.Address) (*entity.Account, error)
	storeAccountsFunc func(ctx context.Context, accounts []*entity.Account) error
}

func (m *mockAccountRepository) GetAccount(ctx context.Context, addr entity.Address) (*entity.Account, error) {
	if m.getAccountFunc != nil {
		return m.getAccountFunc(ctx, addr)
	}
	return nil, nil
}

func (m *mockAccountRepository) StoreAccounts(ctx context.Context, accounts []*entity.Account) error {
	if m.storeAccountsFunc != nil {
		return m.storeAccountsFunc(ctx, accounts)
	}
	return nil
}

// countingClassifier records how often Classify is called
type countingClassifier struct {
	inner *Classifier
	calls int
}

func (c *countingClassifier) Classify(account *entity.Account) (entity.BalanceRecord, error) {
	c.calls++
	return c.inner.Classify(account)
}

func newLedger(accounts ...*entity.Account) *repository.InMemoryLedger {
	ledger := repository.NewInMemoryLedger(testLogger()).(*repository.InMemoryLedger)
	if len(accounts) > 0 {
		if err := ledger.StoreAccounts(context.Background(), accounts); err != nil {
			panic(err)
		}
	}
	return ledger
}
