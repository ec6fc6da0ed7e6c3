package csrf

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"slices"
)

// checkForPRNG verifies that a cryptographically secure PRNG is available.
// If it is not available, the function panics.
func checkForPRNG() {
	buf := make([]byte, 1)
	_, err := io.ReadFull(rand.Reader, buf)

	if err != nil {
		panic(fmt.Sprintf("crypto/rand is unavailable: Read() failed with %#v", err))
	}
}

// generateToken generates a secure random token of the given length.
func generateToken(length int) []byte {
	bytes := make([]byte, length)

	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		panic(err)
	}

	return bytes
}

func encodeToken(token []byte) string {
	return base64.URLEncoding.EncodeToString(token)
}

func decodeToken(token string) ([]byte, error) {
	return base64.URLEncoding.DecodeString(token)
}

// maskToken XOR-masks a token with the given key. The returned slice contains
// the key in the first half and the masked token in the second half, so its
// length is len(token) * 2. The key must have the same length as the token.
func maskToken(token, key []byte) []byte {
	if len(token) != len(key) {
		panic("token and key must have the same length")
	}

	tokenLength := len(token)
	masked := make([]byte, tokenLength*2)
	for i := 0; i < tokenLength; i++ {
		masked[i] = key[i]
		masked[i+tokenLength] = token[i] ^ key[i]
	}

	return masked
}

// unmaskToken reverses maskToken. The returned slice has exactly half the
// length of the input slice.
func unmaskToken(masked []byte) []byte {
	tokenLength := len(masked) / 2
	token := make([]byte, tokenLength)
	for i := 0; i < tokenLength; i++ {
		token[i] = masked[i] ^ masked[i+tokenLength]
	}

	return token
}

// tokenEqual compares two masked tokens for logical equality.
func tokenEqual(a, b string) bool {
	decodedA, err := decodeToken(a)
	if err != nil {
		return false
	}
	decodedB, err := decodeToken(b)
	if err != nil {
		return false
	}

	return slices.Equal(unmaskToken(decodedA), unmaskToken(decodedB))
}
