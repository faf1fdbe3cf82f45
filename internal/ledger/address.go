package ledger

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// AddressLen is the fixed byte length of an identity.
const AddressLen = 20

// Address is an opaque 20-byte identity. Its text form is standard base64.
type Address [AddressLen]byte

func (a Address) String() string { return base64.StdEncoding.EncodeToString(a[:]) }

// Hex returns the 0x-prefixed hex form.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) IsZero() bool { return a == Address{} }

func (a Address) Bytes() []byte { return append([]byte(nil), a[:]...) }

func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Address) UnmarshalText(b []byte) error {
	parsed, err := ParseAddress(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// AddressFromBytes requires exactly AddressLen bytes.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLen {
		return a, Validation("address", "identity must be %d bytes, got %d", AddressLen, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// ParseAddress accepts base64 (the canonical form) or 0x-prefixed hex.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}, Validation("address", "identity is empty")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		raw, err := hex.DecodeString(s[2:])
		if err != nil {
			return Address{}, Validation("address", "bad hex identity: %v", err)
		}
		return AddressFromBytes(raw)
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Address{}, Validation("address", "bad base64 identity: %v", err)
	}
	return AddressFromBytes(raw)
}
