package utils

import (
	"crypto/rand"
	"math/big"
)

// SlugLength is the length of generated document slugs.
const SlugLength = 10

const slugAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_-"

// NewSlug returns a random URL-safe slug of SlugLength characters.
func NewSlug() (string, error) {
	return randomString(SlugLength)
}

func randomString(n int) (string, error) {
	max := big.NewInt(int64(len(slugAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = slugAlphabet[idx.Int64()]
	}
	return string(out), nil
}
