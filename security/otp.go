package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP draws a 6-digit code uniformly from 100000-999999 using
// the CSPRNG. Codes are not unique and not sequence-predictable;
// correctness comes from scoped single-use consumption, not from
// uniqueness.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
