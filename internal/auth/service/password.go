package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const (
	MinPasswordLength = 8
	// bcrypt only looks at the first 72 bytes.
	MaxPasswordLength = 72
	passwordSymbols   = "!@#$%^&*"
)

// PasswordHasher wraps bcrypt and caps how many hashes run at once so a burst
// of logins cannot starve the rest of the process.
type PasswordHasher struct {
	cost int
	sem  *semaphore.Weighted

	// dummy matches no password; compared against for unknown usernames.
	dummy []byte
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy password hash: %v", err))
	}
	return &PasswordHasher{
		cost:  cost,
		sem:   semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
		dummy: dummy,
	}
}

func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare reports whether password matches hash. A malformed hash counts as a mismatch.
func (h *PasswordHasher) Compare(ctx context.Context, hash, password string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// CompareDummy runs a comparison against a hash no password matches. The
// hash uses the configured cost so it takes as long as a real Compare.
func (h *PasswordHasher) CompareDummy(ctx context.Context, password string) {
	_, _ = h.Compare(ctx, string(h.dummy), password)
}

// CheckPasswordPolicy reports whether password has an acceptable length and mixes
// lower case, upper case, digits and symbols.
func CheckPasswordPolicy(password string) bool {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return false
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}
