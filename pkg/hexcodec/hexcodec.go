// Package hexcodec converts digests to and from their hexadecimal string form.
// Input may carry a 0x prefix, output always does.
package hexcodec

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// ErrFormat is returned for strings that are not valid hexadecimal
var ErrFormat = errors.New("invalid hexadecimal string")

// Decode strips an optional 0x prefix and decodes the remaining digits.
// No implicit padding or truncation is applied, so odd length input is rejected.
// A digest is never empty: both "" and a bare "0x" are rejected.
func Decode(s string) ([]byte, error) {
	in := s
	if !Has0xPrefix(in) {
		in = "0x" + in
	}
	if len(in) == 2 {
		return nil, errors.Wrapf(ErrFormat, "%q: empty digest", s)
	}
	b, err := hexutil.Decode(in)
	if err != nil {
		return nil, errors.Wrapf(ErrFormat, "%q: %v", s, err)
	}
	return b, nil
}

// Encode returns the lowercase 0x prefixed encoding of b.
func Encode(b []byte) string {
	return hexutil.Encode(b)
}

// Normalize decodes and re-encodes s so equal digests compare equal as strings.
func Normalize(s string) (string, error) {
	b, err := Decode(s)
	if err != nil {
		return "", err
	}
	return Encode(b), nil
}

// Has0xPrefix reports whether s starts with 0x or 0X.
func Has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
