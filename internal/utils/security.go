package contextutils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomToken returns n random bytes from crypto/rand, hex encoded.
// Used for collision-resistant stored filenames; never derived from user input.
func RandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", WrapError(err, "failed to read random bytes")
	}
	return hex.EncodeToString(buf), nil
}
