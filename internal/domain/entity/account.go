package entity

// LamportsPerSol is the number of base units in one native token
const LamportsPerSol = 1_000_000_000

// Account is the ledger-resident state of one address. The guard only ever
// reads the raw data, the owning program and the intrinsic native balance.
type Account struct {
	Address  Address `json:"address"`
	Owner    Address `json:"owner"`
	Lamports uint64  `json:"lamports"`
	Data     []byte  `json:"data,omitempty"`
}

// Clone returns a deep copy so that callers never share data slices
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.Data != nil {
		clone.Data = append([]byte(nil), a.Data...)
	}
	return &clone
}

// NewSystemAccount creates an account holding only a native balance
func NewSystemAccount(addr Address, lamports uint64, programs ProgramIDs) *Account {
	return &Account{
		Address:  addr,
		Owner:    programs.System,
		Lamports: lamports,
	}
}

// NewTokenAccount creates an initialized token account owned by the token program
func NewTokenAccount(addr, mint, authority Address, amount, lamports uint64, programs ProgramIDs) *Account {
	record := TokenAccount{
		Mint:   mint,
		Owner:  authority,
		Amount: amount,
		State:  TokenAccountInitialized,
	}
	return &Account{
		Address:  addr,
		Owner:    programs.Token,
		Lamports: lamports,
		Data:     record.Encode(),
	}
}

// AccountView is the read model of an account returned to API clients
type AccountView struct {
	Address  Address        `json:"address"`
	Owner    Address        `json:"owner"`
	Lamports uint64         `json:"lamports"`
	Sol      string         `json:"sol"`
	Balance  *BalanceRecord `json:"balance,omitempty"`
}
