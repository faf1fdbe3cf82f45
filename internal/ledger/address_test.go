package ledger

import (
	"encoding/json"
	"errors"
	"testing"
)

func addr(b byte) Address {
	var a Address
	for i := range a {
		a[i] = b
	}
	return a
}

func TestParseAddressForms(t *testing.T) {
	a := addr(0xab)
	for _, text := range []string{a.String(), a.Hex(), "  " + a.String() + " "} {
		got, err := ParseAddress(text)
		if err != nil {
			t.Fatalf("parse %q: %v", text, err)
		}
		if got != a {
			t.Fatalf("parse %q = %s", text, got)
		}
	}
}

func TestParseAddressRejects(t *testing.T) {
	for _, text := range []string{"", "0x1234", "AAAA", "not base64!", "0xzz"} {
		_, err := ParseAddress(text)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("parse %q: want validation error, got %v", text, err)
		}
	}
}

func TestAddressFromBytesLength(t *testing.T) {
	if _, err := AddressFromBytes(make([]byte, 19)); err == nil {
		t.Fatalf("19 bytes accepted")
	}
	if _, err := AddressFromBytes(make([]byte, 21)); err == nil {
		t.Fatalf("21 bytes accepted")
	}
	if _, err := AddressFromBytes(make([]byte, 20)); err != nil {
		t.Fatalf("20 bytes rejected: %v", err)
	}
}

func TestAddressJSONIsBase64(t *testing.T) {
	a := addr(1)
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"AQEBAQEBAQEBAQEBAQEBAQEBAQE="` {
		t.Fatalf("json: %s", b)
	}
	var back Address
	if err := json.Unmarshal(b, &back); err != nil || back != a {
		t.Fatalf("unmarshal: %v %s", err, back)
	}
}
