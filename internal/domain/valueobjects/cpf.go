package valueobjects

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCPF is returned when a CPF cannot be built from the given input.
var ErrInvalidCPF = errors.New("invalid cpf")

const cpfLength = 11

// CPF is the Brazilian individual taxpayer registry number.
//
// The value is always kept normalized (11 digits, no separators). A CPF can only be
// obtained through NewCPF, so a non-zero CPF is always valid. The zero value means
// "no CPF".
type CPF struct {
	value string
}

// NewCPF strips every non-digit character from raw and validates the two mod-11
// check digits.
func NewCPF(raw string) (CPF, error) {
	if strings.TrimSpace(raw) == "" {
		return CPF{}, fmt.Errorf("%w: cpf cannot be empty", ErrInvalidCPF)
	}

	digits := onlyDigits(raw)
	if !validDigits(digits) {
		return CPF{}, fmt.Errorf("%w: %s", ErrInvalidCPF, raw)
	}
	return CPF{value: digits}, nil
}

// MustCPF is NewCPF for literals known to be valid. It panics otherwise.
func MustCPF(raw string) CPF {
	c, err := NewCPF(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// IsValidCPF reports whether raw would be accepted by NewCPF.
func IsValidCPF(raw string) bool {
	_, err := NewCPF(raw)
	return err == nil
}

// Value returns the normalized 11-digit string.
func (c CPF) Value() string {
	return c.value
}

// Formatted returns the display form ddd.ddd.ddd-dd.
func (c CPF) Formatted() string {
	if c.IsZero() {
		return ""
	}
	return c.value[0:3] + "." + c.value[3:6] + "." + c.value[6:9] + "-" + c.value[9:11]
}

func (c CPF) String() string {
	return c.Formatted()
}

func (c CPF) Equal(other CPF) bool {
	return c.value == other.value
}

func (c CPF) IsZero() bool {
	return c.value == ""
}

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validDigits(d string) bool {
	if len(d) != cpfLength {
		return false
	}
	if allSame(d) {
		return false
	}
	if int(d[9]-'0') != checkDigit(d[:9]) {
		return false
	}
	return int(d[10]-'0') == checkDigit(d[:10])
}

// checkDigit weights the digits from len(d)+1 down to 2.
func checkDigit(d string) int {
	weight := len(d) + 1
	sum := 0
	for i := 0; i < len(d); i++ {
		sum += int(d[i]-'0') * (weight - i)
	}
	dv := 11 - (sum % 11)
	if dv >= 10 {
		return 0
	}
	return dv
}

func allSame(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}
