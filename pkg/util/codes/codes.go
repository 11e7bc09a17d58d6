package codes

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var (
	ErrInvalidLength    = errors.New("invalid code length")
	ErrInvalidPIN       = errors.New("invalid pin")
	ErrInvalidPatientID = errors.New("invalid patient id")
)

const (
	MinPINLength = 4
	MaxPINLength = 8

	// TokenByteLength is the number of random bytes for tokens (produces 32 hex chars)
	TokenByteLength = 16
)

// Patient ids are short uppercase codes such as "P-014" or "BR_07".
var rePatientID = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{0,31}$`)

// NormalizeCode normalizes a code for comparison (uppercase, trim whitespace).
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizePatientID uppercases and trims id and checks its shape.
func NormalizePatientID(id string) (string, error) {
	id = NormalizeCode(id)
	if !rePatientID.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPatientID, id)
	}
	return id, nil
}

// GeneratePIN creates a numeric PIN of the given length.
func GeneratePIN(length int) (string, error) {
	if length < MinPINLength || length > MaxPINLength {
		return "", ErrInvalidLength
	}
	return GenerateNumericCode(length)
}

// ValidatePIN accepts 4 to 8 ASCII digits.
func ValidatePIN(pin string) error {
	if len(pin) < MinPINLength || len(pin) > MaxPINLength {
		return fmt.Errorf("%w: must have %d to %d digits", ErrInvalidPIN, MinPINLength, MaxPINLength)
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: digits only", ErrInvalidPIN)
		}
	}
	return nil
}

// GenerateSecureToken creates a cryptographically secure hex token.
// byteLength specifies the number of random bytes (output will be 2x this length in hex).
func GenerateSecureToken(byteLength int) (string, error) {
	if byteLength < 1 {
		return "", ErrInvalidLength
	}

	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(b), nil
}

// GenerateNumericCode creates a numeric-only code of specified length.
func GenerateNumericCode(length int) (string, error) {
	if length < 1 {
		return "", ErrInvalidLength
	}

	max := new(big.Int)
	max.Exp(big.NewInt(10), big.NewInt(int64(length)), nil)

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	format := fmt.Sprintf("%%0%dd", length)
	return fmt.Sprintf(format, n), nil
}
