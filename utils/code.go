// utils/code.go - Short-code generation for puzzles
package utils

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

const codeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789" // no 0/O/1/I/L

var seededRand *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))

// GeneratePuzzleCode returns a random short code for puzzles created
// without an explicit one.
func GeneratePuzzleCode(length int) string {
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		sb.WriteByte(codeCharset[seededRand.Intn(len(codeCharset))])
	}
	return sb.String()
}

// GenerateGuestSuffix returns a short unique tag for guest usernames.
func GenerateGuestSuffix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
