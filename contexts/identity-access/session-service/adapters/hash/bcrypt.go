package hash

import (
	"unionhub/contexts/identity-access/session-service/ports"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher matches the portal's stored hash format, so existing password
// hashes keep verifying.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h BcryptHasher) Compare(hashed string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
}

var _ ports.PasswordHasher = BcryptHasher{}
