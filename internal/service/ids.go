package service

import (
	"crypto/rand"
	"math/big"
)

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const idLength = 16

// generateID returns prefix followed by 16 random alphanumerics, e.g.
// "pay_KtQz7R2mX9aLc4Fp".
func generateID(prefix string) string {
	buf := make([]byte, idLength)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err) // crypto/rand failure is unrecoverable
		}
		buf[i] = idAlphabet[n.Int64()]
	}
	return prefix + string(buf)
}
