package services

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters; keyLen matches the hex-encoded stored format
// "hex(key).hex(salt)".
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

type AuthService interface {
	HashPassword(password string) (string, error)
	// ComparePasswords never returns an error: a malformed stored hash or a
	// derivation failure is logged and treated as "no match".
	ComparePasswords(supplied, stored string) bool
}

type authService struct{}

func NewAuthService() AuthService {
	return &authService{}
}

func (s *authService) HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}
	return hex.EncodeToString(key) + "." + hex.EncodeToString(salt), nil
}

func (s *authService) ComparePasswords(supplied, stored string) bool {
	parts := strings.Split(stored, ".")
	if len(parts) != 2 {
		log.Printf("[auth][compare] malformed stored hash (parts=%d)", len(parts))
		return false
	}
	storedKey, err := hex.DecodeString(parts[0])
	if err != nil {
		log.Printf("[auth][compare] bad key hex: %v", err)
		return false
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		log.Printf("[auth][compare] bad salt hex: %v", err)
		return false
	}
	key, err := scrypt.Key([]byte(supplied), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		log.Printf("[auth][compare] derive failed: %v", err)
		return false
	}
	if len(key) != len(storedKey) {
		return false
	}
	return subtle.ConstantTimeCompare(key, storedKey) == 1
}
