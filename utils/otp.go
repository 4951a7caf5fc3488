package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// OTPDigits is the length of generated verification codes
const OTPDigits = 4

// GenerateOTP returns a random numeric code of OTPDigits digits with no leading zero
func GenerateOTP() (string, error) {
	low := int64(1)
	for i := 1; i < OTPDigits; i++ {
		low *= 10
	}
	n, err := rand.Int(rand.Reader, big.NewInt(low*9))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+low), nil
}
