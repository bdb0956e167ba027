package utils

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	internal_errors "github.com/itchan-dev/foro/shared/errors"
)

// NewId returns prefix_<uuid>, e.g. topic_3f2b…. Random ids stay unique however fast
// they are generated, unlike clock-derived ones.
func NewId(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", internal_errors.NewValidation("password", "Password is too long.")
		}
		return "", err
	}
	return string(hash), nil
}

// Matches compares password against a stored credential. Records written before
// hashing hold the plaintext password and are compared exactly.
func (h *BcryptHasher) Matches(stored, password string) bool {
	if IsBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

func IsBcryptHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
