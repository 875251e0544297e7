package services

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBCryptCost = 12

	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt only reads the first 72 bytes
)

var (
	ErrPasswordEmpty     = errors.New("password cannot be empty")
	ErrPasswordTooShort  = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong   = fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
	ErrPasswordNoLetter  = errors.New("password must contain at least one letter")
	ErrPasswordNoNumber  = errors.New("password must contain at least one number")
	ErrPasswordAllSpaces = errors.New("password cannot be only whitespace")
)

// PasswordService hashes and checks account passwords with bcrypt
type PasswordService struct {
	cost int
}

// NewPasswordService creates a password service. A cost outside bcrypt's
// range falls back to DefaultBCryptCost.
func NewPasswordService(cost int) PasswordServiceInterface {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBCryptCost
	}
	return &PasswordService{cost: cost}
}

func (ps *PasswordService) ValidatePassword(password string) error {
	switch {
	case password == "":
		return ErrPasswordEmpty
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	}

	var letter, digit, visible bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
		if !unicode.IsSpace(r) {
			visible = true
		}
	}

	switch {
	case !visible:
		return ErrPasswordAllSpaces
	case !letter:
		return ErrPasswordNoLetter
	case !digit:
		return ErrPasswordNoNumber
	}
	return nil
}

// HashPassword validates password and returns its bcrypt hash.
func (ps *PasswordService) HashPassword(password string) (string, error) {
	if err := ps.ValidatePassword(password); err != nil {
		return "", fmt.Errorf("password validation failed: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), ps.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (ps *PasswordService) ComparePassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordStrength scores a password from 0 to 100 on length, character
// classes and repetition. It is advisory; ValidatePassword is the gate.
func (ps *PasswordService) PasswordStrength(password string) int {
	if password == "" {
		return 0
	}

	score := lengthScore(len(password)) + classScore(password) + varietyBonus(password)
	if score > 100 {
		score = 100
	}
	return score
}

func lengthScore(length int) int {
	score := 0
	for _, step := range []int{8, 12, 16, 20} {
		if length >= step {
			score += 10
		}
	}
	return score
}

func classScore(password string) int {
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}

	score := 0
	for _, present := range []bool{upper, lower, digit, symbol} {
		if present {
			score += 12
		}
	}
	return score
}

func varietyBonus(password string) int {
	unique := make(map[rune]struct{})
	total := 0
	for _, r := range password {
		unique[r] = struct{}{}
		total++
	}

	switch {
	case len(unique) > total*3/4:
		return 12
	case len(unique) > total/2:
		return 6
	default:
		return 0
	}
}
