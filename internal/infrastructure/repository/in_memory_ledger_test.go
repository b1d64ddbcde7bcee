package repository

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipper.com/internal/domain/entity"
	"zipper.com/internal/domain/port"
	"zipper.com/internal/infrastructure/logger"
)

var testPrograms = entity.DefaultProgramIDs()

func testAddr(n byte) entity.Address {
	var a entity.Address
	a[0] = 0xC0
	a[31] = n
	return a
}

// ledgerContract runs the AccountRepository behaviour shared by every driver
func ledgerContract(t *testing.T, newRepo func(t *testing.T) port.AccountRepository) {
	ctx := context.Background()

	tests := []struct {
		name      string
		batches   [][]*entity.Account
		checkFunc func(*testing.T, port.AccountRepository)
	}{
		{
			name: "missing account is nil",
			checkFunc: func(t *testing.T, repo port.AccountRepository) {
				acc, err := repo.GetAccount(ctx, testAddr(1))
				require.NoError(t, err)
				assert.Nil(t, acc)
			},
		},
		{
			name: "store and load native account",
			batches: [][]*entity.Account{
				{entity.NewSystemAccount(testAddr(1), 500, testPrograms)},
			},
			checkFunc: func(t *testing.T, repo port.AccountRepository) {
				acc, err := repo.GetAccount(ctx, testAddr(1))
				require.NoError(t, err)
				require.NotNil(t, acc)
				assert.Equal(t, testPrograms.System, acc.Owner)
				assert.Equal(t, uint64(500), acc.Lamports)
				assert.Empty(t, acc.Data)
			},
		},
		{
			name: "store and load token account",
			batches: [][]*entity.Account{
				{entity.NewTokenAccount(testAddr(2), testAddr(9), testAddr(1), 77, 2_039_280, testPrograms)},
			},
			checkFunc: func(t *testing.T, repo port.AccountRepository) {
				acc, err := repo.GetAccount(ctx, testAddr(2))
				require.NoError(t, err)
				require.NotNil(t, acc)
				assert.Equal(t, testPrograms.Token, acc.Owner)
				record, err := entity.DecodeTokenAccount(acc.Data)
				require.NoError(t, err)
				assert.Equal(t, uint64(77), record.Amount)
				assert.Equal(t, testAddr(9), record.Mint)
			},
		},
		{
			name: "later batch overwrites",
			batches: [][]*entity.Account{
				{entity.NewSystemAccount(testAddr(1), 500, testPrograms), entity.NewSystemAccount(testAddr(3), 1, testPrograms)},
				{entity.NewSystemAccount(testAddr(1), 20, testPrograms)},
			},
			checkFunc: func(t *testing.T, repo port.AccountRepository) {
				acc, err := repo.GetAccount(ctx, testAddr(1))
				require.NoError(t, err)
				assert.Equal(t, uint64(20), acc.Lamports)
				acc, err = repo.GetAccount(ctx, testAddr(3))
				require.NoError(t, err)
				assert.Equal(t, uint64(1), acc.Lamports)
			},
		},
		{
			name: "returned accounts are copies",
			batches: [][]*entity.Account{
				{entity.NewTokenAccount(testAddr(2), testAddr(9), testAddr(1), 77, 1, testPrograms)},
			},
			checkFunc: func(t *testing.T, repo port.AccountRepository) {
				acc, err := repo.GetAccount(ctx, testAddr(2))
				require.NoError(t, err)
				acc.Lamports = 0
				acc.Data[64] = 0xFF

				again, err := repo.GetAccount(ctx, testAddr(2))
				require.NoError(t, err)
				assert.Equal(t, uint64(1), again.Lamports)
				record, err := entity.DecodeTokenAccount(again.Data)
				require.NoError(t, err)
				assert.Equal(t, uint64(77), record.Amount)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRepo(t)
			for _, batch := range tt.batches {
				require.NoError(t, repo.StoreAccounts(ctx, batch))
			}
			tt.checkFunc(t, repo)
		})
	}
}

func TestInMemoryLedger_Contract(t *testing.T) {
	ledgerContract(t, func(*testing.T) port.AccountRepository {
		return NewInMemoryLedger(logger.NewWriterLogger(io.Discard))
	})
}

func TestInMemoryLedger_StoredAccountsAreCopies(t *testing.T) {
	ctx := context.Background()
	ledger := NewInMemoryLedger(logger.NewWriterLogger(io.Discard))

	acc := entity.NewSystemAccount(testAddr(1), 10, testPrograms)
	require.NoError(t, ledger.StoreAccounts(ctx, []*entity.Account{acc}))
	acc.Lamports = 99

	stored, err := ledger.GetAccount(ctx, testAddr(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), stored.Lamports)
}

func TestInMemoryLedger_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	ledger := NewInMemoryLedger(logger.NewWriterLogger(io.Discard)).(*InMemoryLedger)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n byte) {
			defer wg.Done()
			assert.NoError(t, ledger.StoreAccounts(ctx, []*entity.Account{
				entity.NewSystemAccount(testAddr(n), uint64(n), testPrograms),
			}))
		}(byte(i))
		go func(n byte) {
			defer wg.Done()
			_, err := ledger.GetAccount(ctx, testAddr(n))
			assert.NoError(t, err)
		}(byte(i))
	}
	wg.Wait()

	assert.Equal(t, 50, ledger.batches)
	assert.Len(t, ledger.accounts, 50)
}
