// Package numbering builds the human readable invoice number
// <premise>-<device>-<sequence> printed on every fiscal invoice.
package numbering

import (
	"strconv"
	"strings"

	ierr "github.com/flexprice/fiscal/internal/errors"
)

const (
	separator = '-'
	hexDigits = "0123456789ABCDEF"
)

// Format returns the invoice number for a premise, device and sequence.
// Every byte of the id parts outside [0-9A-Za-z] is written as %XX, so the
// separator never appears inside a part and distinct inputs never produce
// the same number. Alphanumeric ids, the only ones the authority accepts,
// pass through unchanged.
func Format(premiseAuthorityID, deviceExternalID string, sequence int64) string {
	var b strings.Builder
	b.Grow(len(premiseAuthorityID) + len(deviceExternalID) + 22)

	escape(&b, premiseAuthorityID)
	b.WriteByte(separator)
	escape(&b, deviceExternalID)
	b.WriteByte(separator)
	b.WriteString(strconv.FormatInt(sequence, 10))
	return b.String()
}

// Number is a parsed invoice number
type Number struct {
	PremiseAuthorityID string
	DeviceExternalID   string
	Sequence           int64
}

// Parse reverses Format
func Parse(number string) (Number, error) {
	parts := strings.SplitN(number, string(separator), 3)
	if len(parts) != 3 {
		return Number{}, invalid(number, "expected three parts")
	}

	premiseID, ok := unescape(parts[0])
	if !ok {
		return Number{}, invalid(number, "bad escape in premise id")
	}
	deviceID, ok := unescape(parts[1])
	if !ok {
		return Number{}, invalid(number, "bad escape in device id")
	}
	seq, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || parts[2] != strconv.FormatInt(seq, 10) {
		return Number{}, invalid(number, "sequence is not a canonical integer")
	}

	return Number{PremiseAuthorityID: premiseID, DeviceExternalID: deviceID, Sequence: seq}, nil
}

func isPlain(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z'
}

func escape(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isPlain(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
}

// unescape accepts only what escape produces: plain bytes and uppercase %XX
// sequences of bytes that would have been escaped
func unescape(s string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isPlain(c) {
			b.WriteByte(c)
			continue
		}
		if c != '%' || i+2 >= len(s) {
			return "", false
		}
		hi := strings.IndexByte(hexDigits, s[i+1])
		lo := strings.IndexByte(hexDigits, s[i+2])
		if hi < 0 || lo < 0 {
			return "", false
		}
		v := byte(hi<<4 | lo)
		if isPlain(v) {
			return "", false
		}
		b.WriteByte(v)
		i += 2
	}
	return b.String(), true
}

func invalid(number, reason string) error {
	return ierr.NewErrorf("invalid invoice number %q: %s", number, reason).
		WithHint("Invoice number is not valid").
		Mark(ierr.ErrValidation)
}
