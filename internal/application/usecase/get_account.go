package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"zipper.com/internal/domain/entity"
	"zipper.com/internal/domain/port"
)

const lamportDecimals = 9

// GetAccountUseCase handles account retrieval
type GetAccountUseCase struct {
	repository port.AccountRepository
	classifier port.AccountClassifier
}

// NewGetAccountUseCase creates a new GetAccountUseCase
func NewGetAccountUseCase(repository port.AccountRepository, classifier port.AccountClassifier) *GetAccountUseCase {
	return &GetAccountUseCase{
		repository: repository,
		classifier: classifier,
	}
}

// Execute retrieves the account stored at addr together with its balance record
func (uc *GetAccountUseCase) Execute(ctx context.Context, addr entity.Address) (*entity.AccountView, error) {
	acc, err := uc.repository.GetAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrAccountNotFound, addr)
	}

	view := &entity.AccountView{
		Address:  acc.Address,
		Owner:    acc.Owner,
		Lamports: acc.Lamports,
		Sol:      LamportsToSol(acc.Lamports).String(),
	}
	if record, err := uc.classifier.Classify(acc); err == nil {
		view.Balance = &record
	}

	return view, nil
}

// LamportsToSol converts base units into whole native tokens without rounding
func LamportsToSol(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -lamportDecimals)
}
