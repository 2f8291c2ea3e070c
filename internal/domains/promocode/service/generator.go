package service

import (
	"crypto/rand"
	"math/big"
)

// Không dùng 0/O, 1/I để mã dễ đọc khi đọc qua điện thoại
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeGenerator returns a candidate code; collisions are handled by the caller
type CodeGenerator func() (string, error)

func RandomCodeGenerator(length int) CodeGenerator {
	return func() (string, error) {
		max := big.NewInt(int64(len(codeAlphabet)))
		buf := make([]byte, length)
		for i := range buf {
			n, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", err
			}
			buf[i] = codeAlphabet[n.Int64()]
		}
		return string(buf), nil
	}
}
