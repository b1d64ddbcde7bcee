package usecase

import (
	"context"
	"errors"

	"zipper.com/internal/domain/entity"
	"zipper.com/internal/domain/port"
	"zipper.com/internal/infrastructure/logger"
)

// VerifyBalancesUseCase is the post-condition balance guard. It pairs accounts
// with expected minimum balances by position and fails if any account holds less.
type VerifyBalancesUseCase struct {
	classifier port.AccountClassifier
	logger     logger.Logger
}

// NewVerifyBalancesUseCase creates a new VerifyBalancesUseCase
func NewVerifyBalancesUseCase(classifier port.AccountClassifier, logger logger.Logger) *VerifyBalancesUseCase {
	return &VerifyBalancesUseCase{
		classifier: classifier,
		logger:     logger,
	}
}

// Execute checks every (account, expected) pair. All pairs are evaluated and
// traced; the returned error is the first failure by index and matches
// entity.ErrBundleAborted. The report is never nil.
func (uc *VerifyBalancesUseCase) Execute(
	ctx context.Context,
	accounts []*entity.Account,
	expected []uint64,
) (*entity.VerificationReport, error) {
	report := &entity.VerificationReport{Outcome: entity.OutcomeAllSatisfied}

	if len(accounts) != len(expected) {
		err := &entity.ArityMismatchError{Accounts: len(accounts), Balances: len(expected)}
		report.Outcome = entity.OutcomeArityMismatch
		uc.logger.LogError(ctx, "Balance verification rejected", err,
			"accounts", len(accounts),
			"balances", len(expected))
		return report, err
	}

	report.Checks = make([]entity.BalanceCheck, 0, len(accounts))
	var firstErr error
	for i, account := range accounts {
		check := entity.BalanceCheck{Index: i, Expected: expected[i]}
		if account != nil {
			check.Address = account.Address
		}

		record, err := uc.classifier.Classify(account)
		if err != nil {
			uc.logger.LogWarning(ctx, "Balance check",
				"index", i,
				"address", check.Address.String(),
				"expected", check.Expected,
				"classified", false,
				"error", err.Error())
			report.Checks = append(report.Checks, check)
			if firstErr == nil {
				firstErr = &entity.ClassificationFailureError{Index: i, Address: check.Address, Err: err}
				report.Outcome = entity.OutcomeClassificationFailure
			}
			continue
		}

		check.Actual = record.Amount
		check.Identity = record.Identity
		check.Kind = record.Kind
		check.Classified = true
		check.Passed = record.Amount >= expected[i]
		report.Checks = append(report.Checks, check)

		uc.logger.LogInfo(ctx, "Balance check",
			"index", i,
			"identity", record.Identity,
			"expected", check.Expected,
			"actual", check.Actual,
			"passed", check.Passed)

		if !check.Passed && firstErr == nil {
			firstErr = &entity.ViolationError{
				Index:    i,
				Expected: check.Expected,
				Actual:   check.Actual,
				Identity: record.Identity,
			}
			report.Outcome = entity.OutcomeViolation
		}
	}

	if firstErr != nil {
		uc.logger.LogError(ctx, "Balance verification failed", firstErr,
			"checks", len(report.Checks))
		return report, firstErr
	}

	return report, nil
}

// IsAbort reports whether err must roll back the enclosing bundle
func IsAbort(err error) bool {
	return errors.Is(err, entity.ErrBundleAborted)
}
