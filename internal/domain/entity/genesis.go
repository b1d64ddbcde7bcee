package entity

// GenesisAccount describes an account to create when the ledger starts empty
type GenesisAccount struct {
	Address  Address
	Lamports uint64
	// Token makes the account a fungible-asset record instead of a native holder.
	Token *GenesisToken
}

// GenesisToken holds the token fields of a genesis account
type GenesisToken struct {
	Mint      Address
	Authority Address
	Amount    uint64
}

// Validate validates the genesis account
func (g *GenesisAccount) Validate() error {
	if g.Address.IsZero() {
		return ErrMissingAddress
	}
	if g.Token != nil && g.Token.Mint.IsZero() {
		return ErrMissingMint
	}
	return nil
}

// Account builds the ledger account described by g
func (g *GenesisAccount) Account(programs ProgramIDs) *Account {
	if g.Token != nil {
		return NewTokenAccount(g.Address, g.Token.Mint, g.Token.Authority, g.Token.Amount, g.Lamports, programs)
	}
	return NewSystemAccount(g.Address, g.Lamports, programs)
}
