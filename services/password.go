package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	tempPasswordLen = 12
	upperLetters    = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerLetters    = "abcdefghijkmnopqrstuvwxyz"
	digits          = "23456789"
	tempSymbols     = "!@#$%&*"
)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateSecurePassword returns a temporary password that satisfies ValidatePassword.
// Do not log the result.
func GenerateSecurePassword() (string, error) {
	pick := func(set string) (byte, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
		if err != nil {
			return 0, err
		}
		return set[n.Int64()], nil
	}

	out := make([]byte, 0, tempPasswordLen)
	for _, set := range []string{upperLetters, lowerLetters, digits, tempSymbols} {
		b, err := pick(set)
		if err != nil {
			return "", err
		}
		out = append(out, b)
	}
	all := upperLetters + lowerLetters + digits + tempSymbols
	for len(out) < tempPasswordLen {
		b, err := pick(all)
		if err != nil {
			return "", err
		}
		out = append(out, b)
	}

	for i := len(out) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("shuffle: %w", err)
		}
		j := int(n.Int64())
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}
