package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/noryangjin/auction-server/internal/domain"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// BcryptSealer returns a credential sealer for account construction.
func BcryptSealer(cost int) domain.CredentialSealer {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return func(plain string) (string, error) {
		return HashPassword(plain, cost)
	}
}
