package common

import (
	"crypto/rand"
	"math/big"
)

// Base36 is the alphabet used for short link codes.
const Base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// WipeByteArray overwrites b with zeros. Used for passwords once they are no
// longer needed. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GenerateRandByteArray returns n bytes from crypto/rand.
// It panics if the system random source fails.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// RandomString returns n characters drawn uniformly from alphabet.
func RandomString(alphabet string, n int) (string, error) {
	if n <= 0 || alphabet == "" {
		return "", nil
	}
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}
