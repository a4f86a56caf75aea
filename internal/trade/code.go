package trade

import (
	"fmt"
	"math/rand"
	"regexp"
)

// Exchange codes are 8 decimal digits. Generated codes avoid a leading zero
// so they survive numeric round-trips in front-ends; caller-supplied codes
// may carry leading zeros and are kept verbatim.
const (
	exchangeCodeMin = 10000000
	exchangeCodeMax = 99999999
)

var exchangeCodePattern = regexp.MustCompile(`^\d{8}$`)

// NewExchangeCode returns a random 8-digit code in [10000000, 99999999].
func NewExchangeCode() string {
	return fmt.Sprintf("%08d", exchangeCodeMin+rand.Intn(exchangeCodeMax-exchangeCodeMin+1))
}

// ValidExchangeCode reports whether a caller-supplied code is exactly
// 8 decimal digits.
func ValidExchangeCode(code string) bool {
	return exchangeCodePattern.MatchString(code)
}
