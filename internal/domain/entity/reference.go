package entity

// AccountReference is the metadata form in which an instruction names an account
type AccountReference struct {
	Address    Address `json:"address"`
	IsSigner   bool    `json:"is_signer"`
	IsWritable bool    `json:"is_writable"`
}

// Addresses returns the referenced addresses in order
func Addresses(refs []AccountReference) []Address {
	addrs := make([]Address, len(refs))
	for i, ref := range refs {
		addrs[i] = ref.Address
	}
	return addrs
}
