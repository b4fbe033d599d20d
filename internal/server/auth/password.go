package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted, cost-parameterized one-way hash of the
// plaintext password. The work factor is bcrypt.DefaultCost so it can be
// raised as hardware improves without touching callers.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored
// hash. A malformed hash is a mismatch, never an error for the caller.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
