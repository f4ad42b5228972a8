package task

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"time"
)

const (
	minIDLength = 3
	maxIDLength = 8
	nonceSize   = 16
)

// GenerateID derives a short base36 ID from the title, creation time and a
// random nonce. The shortest prefix that existsFn reports as free wins;
// prefixes grow from 3 to 8 characters.
func GenerateID(title string, createdAt time.Time, existsFn func(string) bool) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte(createdAt.Format(time.RFC3339Nano)))
	h.Write(nonce)
	encoded := new(big.Int).SetBytes(h.Sum(nil)).Text(36)

	for length := minIDLength; length <= maxIDLength && length <= len(encoded); length++ {
		candidate := encoded[:length]
		if !existsFn(candidate) {
			return candidate, nil
		}
	}
	return encoded[:maxIDLength], nil
}
