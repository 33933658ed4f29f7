package core

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

var ErrInvalidEmail = errors.New("invalid email")

// LedgerFilePrefix and LedgerFileExt frame the per-user ledger file name.
const (
	LedgerFilePrefix = "gastos_"
	LedgerFileExt    = ".csv"
)

// UserKey derives the storage key of a user from an email address.
// Case and surrounding whitespace are ignored.
func UserKey(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// LedgerName is the name of the per-user ledger, "gastos_{key}".
func LedgerName(key string) string {
	return LedgerFilePrefix + key
}

// LedgerFileName is the file name of the per-user ledger, "gastos_{key}.csv".
func LedgerFileName(key string) string {
	return LedgerName(key) + LedgerFileExt
}

// NormalizeEmail trims and lowercases an email and checks its shape.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidEmail)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return email, nil
}
