package port

import "zipper.com/internal/domain/entity"

// AccountClassifier determines which balance-bearing kind an account is
// and extracts its balance.
type AccountClassifier interface {
	Classify(account *entity.Account) (entity.BalanceRecord, error)
}
