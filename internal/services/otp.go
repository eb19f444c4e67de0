package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateNumericOTP returns an n-digit, zero-padded code from crypto/rand.
func GenerateNumericOTP(n int) (string, error) {
	if n <= 0 {
		n = 6
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	num, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, num.Int64()), nil
}
