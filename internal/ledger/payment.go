package ledger

import (
	"crypto/rand"
	"crypto/sha256"
)

// Payment is a value transfer into the ledger's custody together with the
// call data that tells the ledger what to do with it.
type Payment struct {
	From   Address `json:"from"`
	Amount int64   `json:"amount"`
	Data   []any   `json:"data"`
}

// DeriveAddress maps a label to a stable address.
func DeriveAddress(label string) Address {
	sum := sha256.Sum256([]byte(label))
	var a Address
	copy(a[:], sum[:AddressLen])
	return a
}

// RandomAddress returns a fresh random address.
func RandomAddress() (Address, error) {
	var a Address
	_, err := rand.Read(a[:])
	return a, err
}
