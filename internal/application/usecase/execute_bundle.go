package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"sync"

	"github.com/google/uuid"

	"zipper.com/internal/domain/entity"
	"zipper.com/internal/domain/port"
	"zipper.com/internal/infrastructure/logger"
)

// ExecuteBundleUseCase runs bundles against the ledger atomically: either every
// instruction succeeds and all writes are committed in one batch, or nothing is.
type ExecuteBundleUseCase struct {
	mu          sync.Mutex
	repository  port.AccountRepository
	verifier    *VerifyBalancesUseCase
	programs    entity.ProgramIDs
	maxAccounts int
	logger      logger.Logger
}

// NewExecuteBundleUseCase creates a new ExecuteBundleUseCase.
// maxAccounts bounds the distinct accounts per bundle; zero means unbounded.
func NewExecuteBundleUseCase(
	repository port.AccountRepository,
	verifier *VerifyBalancesUseCase,
	programs entity.ProgramIDs,
	maxAccounts int,
	logger logger.Logger,
) *ExecuteBundleUseCase {
	return &ExecuteBundleUseCase{
		repository:  repository,
		verifier:    verifier,
		programs:    programs,
		maxAccounts: maxAccounts,
		logger:      logger,
	}
}

// storageError marks failures of the underlying repository, as opposed to
// instruction failures that abort the bundle.
type storageError struct {
	err error
}

func (e *storageError) Error() string { return e.err.Error() }
func (e *storageError) Unwrap() error { return e.err }

// Execute runs the bundle and commits it if every instruction succeeds.
// An aborted bundle is reported through the receipt, not the error; the error
// is reserved for malformed bundles and storage failures.
func (uc *ExecuteBundleUseCase) Execute(ctx context.Context, bundle *entity.Bundle) (*entity.BundleReceipt, error) {
	if err := uc.checkBundle(bundle); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	receipt := &entity.BundleReceipt{ID: uuid.New().String()}
	state := newBundleState(uc.repository)

	trace, failed, err := uc.run(ctx, bundle, state)
	receipt.Trace = trace
	if err != nil {
		var storeErr *storageError
		if errors.As(err, &storeErr) {
			return nil, storeErr.err
		}
		uc.abort(ctx, receipt, failed, err)
		return receipt, nil
	}

	updated := state.UpdatedAccounts()
	if len(updated) > 0 {
		if err := uc.repository.StoreAccounts(ctx, updated); err != nil {
			return nil, fmt.Errorf("commit bundle %s: %w", receipt.ID, err)
		}
	}

	receipt.Status = entity.BundleCommitted
	uc.logger.LogInfo(ctx, "Bundle committed",
		"bundle_id", receipt.ID,
		"instructions", len(bundle.Instructions),
		"accounts_updated", len(updated))

	return receipt, nil
}

func (uc *ExecuteBundleUseCase) checkBundle(bundle *entity.Bundle) error {
	if bundle == nil {
		return entity.ErrEmptyBundle
	}
	if err := bundle.Validate(); err != nil {
		return err
	}
	if uc.maxAccounts > 0 && bundle.AccountCount() > uc.maxAccounts {
		return fmt.Errorf("%w: %d, max %d", entity.ErrTooManyAccounts, bundle.AccountCount(), uc.maxAccounts)
	}
	return nil
}

func (uc *ExecuteBundleUseCase) abort(ctx context.Context, receipt *entity.BundleReceipt, failed int, err error) {
	receipt.Status = entity.BundleAborted
	receipt.FailedInstruction = &failed
	receipt.Error = err.Error()

	uc.logger.LogWarning(ctx, "Bundle aborted",
		"bundle_id", receipt.ID,
		"failed_instruction", failed,
		"error", err.Error())
}

// run executes instructions in order on state and stops at the first failure,
// returning the index of the failing instruction.
func (uc *ExecuteBundleUseCase) run(
	ctx context.Context,
	bundle *entity.Bundle,
	state *bundleState,
) ([]entity.VerificationTrace, int, error) {
	var trace []entity.VerificationTrace
	for idx := range bundle.Instructions {
		ix := &bundle.Instructions[idx]

		var err error
		switch ix.Kind {
		case entity.InstructionSystemTransfer:
			err = uc.systemTransfer(ctx, state, ix)
		case entity.InstructionTokenTransfer:
			err = uc.tokenTransfer(ctx, state, ix)
		case entity.InstructionVerify:
			var report *entity.VerificationReport
			report, err = uc.verify(ctx, state, ix)
			if report != nil {
				trace = append(trace, entity.VerificationTrace{Instruction: idx, VerificationReport: *report})
			}
		default:
			err = fmt.Errorf("%w: %q", entity.ErrUnknownInstruction, ix.Kind)
		}

		if err != nil {
			return trace, idx, fmt.Errorf("instruction %d (%s): %w", idx, ix.Kind, err)
		}
	}
	return trace, -1, nil
}

func (uc *ExecuteBundleUseCase) verify(
	ctx context.Context,
	state *bundleState,
	ix *entity.Instruction,
) (*entity.VerificationReport, error) {
	accounts, err := state.Accounts(ctx, entity.Addresses(ix.Accounts))
	if err != nil {
		return nil, &storageError{err: err}
	}
	return uc.verifier.Execute(ctx, accounts, ix.Balances)
}

func (uc *ExecuteBundleUseCase) systemTransfer(ctx context.Context, state *bundleState, ix *entity.Instruction) error {
	from, to := ix.Accounts[0], ix.Accounts[1]
	if !from.IsSigner {
		return fmt.Errorf("%w: %s", entity.ErrMissingSignature, from.Address)
	}
	if !from.IsWritable || !to.IsWritable {
		return entity.ErrAccountNotWritable
	}

	src, err := state.GetAccount(ctx, from.Address)
	if err != nil {
		return &storageError{err: err}
	}
	if src == nil {
		return fmt.Errorf("%w: %s", entity.ErrAccountNotFound, from.Address)
	}
	if src.Owner != uc.programs.System {
		return fmt.Errorf("%w: %s is owned by %s", entity.ErrInvalidAccountOwner, src.Address, src.Owner)
	}
	if src.Lamports < ix.Amount {
		return fmt.Errorf("%w: %s has %d lamports, needs %d", entity.ErrInsufficientFunds, src.Address, src.Lamports, ix.Amount)
	}
	if from.Address == to.Address || ix.Amount == 0 {
		return nil
	}

	dst, err := state.GetOrCreateSystemAccount(ctx, to.Address, uc.programs)
	if err != nil {
		return &storageError{err: err}
	}
	sum, carry := bits.Add64(dst.Lamports, ix.Amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: lamport overflow on %s", entity.ErrInvalidInstruction, dst.Address)
	}

	src.Lamports -= ix.Amount
	dst.Lamports = sum
	state.MarkDirty(src)
	state.MarkDirty(dst)
	return nil
}

func (uc *ExecuteBundleUseCase) tokenTransfer(ctx context.Context, state *bundleState, ix *entity.Instruction) error {
	source, destination, authority := ix.Accounts[0], ix.Accounts[1], ix.Accounts[2]
	if !authority.IsSigner {
		return fmt.Errorf("%w: %s", entity.ErrMissingSignature, authority.Address)
	}
	if !source.IsWritable || !destination.IsWritable {
		return entity.ErrAccountNotWritable
	}

	srcAcc, srcToken, err := uc.loadTokenAccount(ctx, state, source.Address)
	if err != nil {
		return err
	}
	dstAcc, dstToken, err := uc.loadTokenAccount(ctx, state, destination.Address)
	if err != nil {
		return err
	}

	if srcToken.Mint != dstToken.Mint {
		return fmt.Errorf("%w: %s and %s", entity.ErrMintMismatch, srcToken.Mint, dstToken.Mint)
	}
	if srcToken.State == entity.TokenAccountFrozen || dstToken.State == entity.TokenAccountFrozen {
		return entity.ErrAccountFrozen
	}
	if srcToken.Owner != authority.Address {
		return fmt.Errorf("%w: %s is not the authority of %s", entity.ErrMissingSignature, authority.Address, source.Address)
	}
	if srcToken.Amount < ix.Amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", entity.ErrInsufficientFunds, source.Address, srcToken.Amount, ix.Amount)
	}
	if source.Address == destination.Address {
		return nil
	}

	sum, carry := bits.Add64(dstToken.Amount, ix.Amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: token amount overflow on %s", entity.ErrInvalidInstruction, destination.Address)
	}
	srcToken.Amount -= ix.Amount
	dstToken.Amount = sum

	srcAcc.Data = srcToken.Encode()
	dstAcc.Data = dstToken.Encode()
	state.MarkDirty(srcAcc)
	state.MarkDirty(dstAcc)
	return nil
}

func (uc *ExecuteBundleUseCase) loadTokenAccount(
	ctx context.Context,
	state *bundleState,
	addr entity.Address,
) (*entity.Account, *entity.TokenAccount, error) {
	acc, err := state.GetAccount(ctx, addr)
	if err != nil {
		return nil, nil, &storageError{err: err}
	}
	if acc == nil {
		return nil, nil, fmt.Errorf("%w: %s", entity.ErrAccountNotFound, addr)
	}
	if acc.Owner != uc.programs.Token {
		return nil, nil, fmt.Errorf("%w: %s is owned by %s", entity.ErrInvalidAccountOwner, addr, acc.Owner)
	}
	token, err := entity.DecodeTokenAccount(acc.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", addr, err)
	}
	return acc, token, nil
}
