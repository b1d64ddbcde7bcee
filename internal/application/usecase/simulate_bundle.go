package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"zipper.com/internal/domain/entity"
	"zipper.com/internal/domain/port"
)

// SimulateBundleUseCase runs a bundle on a throwaway view of the ledger and
// reports the resulting balances, from which a caller derives the expected
// minimums of the trailing verify instruction.
type SimulateBundleUseCase struct {
	executor   *ExecuteBundleUseCase
	classifier port.AccountClassifier
}

// NewSimulateBundleUseCase creates a new SimulateBundleUseCase
func NewSimulateBundleUseCase(executor *ExecuteBundleUseCase, classifier port.AccountClassifier) *SimulateBundleUseCase {
	return &SimulateBundleUseCase{
		executor:   executor,
		classifier: classifier,
	}
}

// Execute simulates bundle and classifies addrs in the post-bundle state.
// Nothing is written to the repository.
func (uc *SimulateBundleUseCase) Execute(
	ctx context.Context,
	bundle *entity.Bundle,
	addrs []entity.Address,
) (*entity.SimulationResult, error) {
	if err := uc.executor.checkBundle(bundle); err != nil {
		return nil, err
	}

	uc.executor.mu.Lock()
	defer uc.executor.mu.Unlock()

	receipt := &entity.BundleReceipt{ID: uuid.New().String(), Status: entity.BundleSimulated}
	state := newBundleState(uc.executor.repository)

	trace, failed, err := uc.executor.run(ctx, bundle, state)
	receipt.Trace = trace
	if err != nil {
		var storeErr *storageError
		if errors.As(err, &storeErr) {
			return nil, storeErr.err
		}
		uc.executor.abort(ctx, receipt, failed, err)
		// an aborted bundle leaves the ledger untouched
		state = newBundleState(uc.executor.repository)
	}

	accounts, err := state.Accounts(ctx, addrs)
	if err != nil {
		return nil, err
	}

	result := &entity.SimulationResult{
		Receipt:      receipt,
		PostBalances: make([]entity.PostBalance, len(addrs)),
	}
	for i, acc := range accounts {
		result.PostBalances[i].Address = addrs[i]
		record, err := uc.classifier.Classify(acc)
		if err != nil {
			result.PostBalances[i].Error = err.Error()
			continue
		}
		result.PostBalances[i].Record = &record
	}

	return result, nil
}
