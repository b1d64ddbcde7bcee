package repository

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"zipper.com/internal/domain/entity"
	"zipper.com/internal/domain/port"
	"zipper.com/internal/infrastructure/logger"
)

var accountsBucket = []byte("accounts")

// Stored record layout: owner (32) | lamports (8, LE) | data
const recordHeaderLen = entity.AddressLength + 8

// BoltLedger implements the AccountRepository port on a bbolt file.
// StoreAccounts runs in one read-write transaction, so a batch is durable
// entirely or not at all.
type BoltLedger struct {
	db     *bolt.DB
	logger logger.Logger
}

// NewBoltLedger opens (or creates) the ledger database at path
func NewBoltLedger(path string, logger logger.Logger) (*BoltLedger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger db %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(accountsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create accounts bucket: %w", err)
	}

	return &BoltLedger{db: db, logger: logger}, nil
}

var _ port.AccountRepository = (*BoltLedger)(nil)

// GetAccount returns the stored account, nil if it does not exist
func (l *BoltLedger) GetAccount(_ context.Context, addr entity.Address) (*entity.Account, error) {
	var acc *entity.Account
	err := l.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(accountsBucket).Get(addr[:])
		if raw == nil {
			return nil
		}
		decoded, err := decodeRecord(addr, raw)
		if err != nil {
			return err
		}
		acc = decoded
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not get account %s from db: %w", addr, err)
	}
	return acc, nil
}

// StoreAccounts writes all accounts in one transaction
func (l *BoltLedger) StoreAccounts(ctx context.Context, accounts []*entity.Account) error {
	err := l.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(accountsBucket)
		for _, acc := range accounts {
			if err := bucket.Put(acc.Address[:], encodeRecord(acc)); err != nil {
				return fmt.Errorf("put %s: %w", acc.Address, err)
			}
		}
		return nil
	})
	if err != nil {
		l.logger.LogError(ctx, "Failed to store accounts", err, "accounts", len(accounts))
		return fmt.Errorf("failed to write batch of accounts to database: %w", err)
	}

	l.logger.LogInfo(ctx, "Accounts stored", "accounts", len(accounts))
	return nil
}

// Close releases the database file
func (l *BoltLedger) Close() error {
	return l.db.Close()
}

func encodeRecord(acc *entity.Account) []byte {
	buf := make([]byte, recordHeaderLen+len(acc.Data))
	copy(buf, acc.Owner[:])
	binary.LittleEndian.PutUint64(buf[entity.AddressLength:], acc.Lamports)
	copy(buf[recordHeaderLen:], acc.Data)
	return buf
}

func decodeRecord(addr entity.Address, raw []byte) (*entity.Account, error) {
	if len(raw) < recordHeaderLen {
		return nil, fmt.Errorf("corrupt account record: %d bytes", len(raw))
	}
	acc := &entity.Account{
		Address:  addr,
		Lamports: binary.LittleEndian.Uint64(raw[entity.AddressLength:]),
	}
	copy(acc.Owner[:], raw[:entity.AddressLength])
	if len(raw) > recordHeaderLen {
		// bolt memory is only valid inside the transaction
		acc.Data = append([]byte(nil), raw[recordHeaderLen:]...)
	}
	return acc, nil
}
