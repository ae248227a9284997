package cryptoutil

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"math/big"
)

const tokenCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Login token lengths are randomized within this range to deter guessing.
const (
	MinTokenLength = 4196
	MaxTokenLength = 6000
)

// ChunkIDLength is the length of CDN chunk identifiers.
const ChunkIDLength = 32

// RandomString returns n characters drawn uniformly from an alphanumeric
// charset using crypto/rand.
func RandomString(n int) string {
	out := make([]byte, n)
	// Rejection sampling keeps the distribution uniform: 62*4 = 248 is the
	// largest multiple of the charset size below 256.
	const limit = byte(248)
	buf := make([]byte, n)
	filled := 0
	for filled < n {
		if _, err := io.ReadFull(rand.Reader, buf[:n-filled]); err != nil {
			panic("cryptoutil: rand.Reader failed: " + err.Error())
		}
		for _, b := range buf[:n-filled] {
			if b >= limit {
				continue
			}
			out[filled] = tokenCharset[int(b)%len(tokenCharset)]
			filled++
		}
	}
	return string(out)
}

// RandomTokenLength returns a uniform length in [MinTokenLength, MaxTokenLength).
func RandomTokenLength() int {
	n, err := rand.Int(rand.Reader, big.NewInt(MaxTokenLength-MinTokenLength))
	if err != nil {
		panic("cryptoutil: rand.Reader failed: " + err.Error())
	}
	return MinTokenLength + int(n.Int64())
}

// Sha512Hex streams r through SHA-512 and returns the lowercase hex digest.
func Sha512Hex(r io.Reader) (string, error) {
	h := sha512.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
