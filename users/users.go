package users

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest input bcrypt accepts
	MaxPasswordBytes = 72
)

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
)

// RoleType is a user's role within a tenant
type RoleType string

const (
	RoleOwner RoleType = "OWNER"
	RoleAdmin RoleType = "ADMIN"
	RoleUser  RoleType = "USER"
)

// ParseRole returns the role named by s
func ParseRole(s string) (RoleType, bool) {
	switch r := RoleType(s); r {
	case RoleOwner, RoleAdmin, RoleUser:
		return r, true
	}
	return "", false
}

// ProviderType records how the account authenticates
type ProviderType string

const (
	ProviderCredentials ProviderType = "CREDENTIALS"
	ProviderGoogle      ProviderType = "GOOGLE"
)

type User struct {
	ID           string       `json:"id"`
	TenantID     string       `json:"tenantId"` // primary tenant, memberships are authoritative for access
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	PasswordHash string       `json:"-"` // empty for accounts created through federation
	Role         RoleType     `json:"role"`
	Provider     ProviderType `json:"provider"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// HasPassword reports whether the account can sign in with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// NormalizeEmail lowercases and trims an address for lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is a bare address
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidatePassword checks the password length against the bounds bcrypt can hash
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// NameFromEmail derives a display name from the local part of an address
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
