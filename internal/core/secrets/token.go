package secrets

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// =============================================================================
// Token Generation
// =============================================================================

// TokenLength is the length of generated placeholder values.
const TokenLength = 20

// tokenAlphabet is the character set for generated values. Alphanumeric
// only, so values are safe to embed in environment entries and URLs.
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ErrGenerationFailed is returned when the randomness source is
// unavailable. This is fatal: the engine never substitutes a weaker or
// empty value.
var ErrGenerationFailed = errors.New("placeholder generation failed")

// GenerateToken generates a cryptographically random alphanumeric token
// of the given length.
func GenerateToken(length int) (string, error) {
	alphabetSize := big.NewInt(int64(len(tokenAlphabet)))
	token := make([]byte, length)
	for i := range token {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		token[i] = tokenAlphabet[n.Int64()]
	}
	return string(token), nil
}
