package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

// PasswordServiceTestSuite defines the test suite for PasswordService
type PasswordServiceTestSuite struct {
	suite.Suite
	service PasswordServiceInterface
}

func (s *PasswordServiceTestSuite) SetupTest() {
	s.service = NewPasswordService(bcrypt.MinCost)
}

func TestPasswordServiceSuite(t *testing.T) {
	suite.Run(t, new(PasswordServiceTestSuite))
}

func (s *PasswordServiceTestSuite) TestValidatePassword_Accepts() {
	for _, pw := range []string{"budget2024", "Secure Pass 1", "रुपया12345", strings.Repeat("a1", 36)} {
		s.NoError(s.service.ValidatePassword(pw), pw)
	}
}

func (s *PasswordServiceTestSuite) TestValidatePassword_Rejects() {
	cases := map[string]error{
		"":                          ErrPasswordEmpty,
		"abc12":                     ErrPasswordTooShort,
		strings.Repeat("a1", 37):    ErrPasswordTooLong,
		"onlyletters":               ErrPasswordNoNumber,
		"1234567890":                ErrPasswordNoLetter,
		"          ":                ErrPasswordAllSpaces,
		"!!!!!!!!1":                 ErrPasswordNoLetter,
		"Passwords are long enough": ErrPasswordNoNumber,
	}
	for pw, want := range cases {
		s.ErrorIs(s.service.ValidatePassword(pw), want, "%q", pw)
	}
}

func (s *PasswordServiceTestSuite) TestHashPassword_RoundTrip() {
	hash, err := s.service.HashPassword("budget2024")
	s.Require().NoError(err)
	s.True(strings.HasPrefix(hash, "$2a$"))
	s.True(s.service.ComparePassword("budget2024", hash))
	s.False(s.service.ComparePassword("Budget2024", hash), "comparison is case sensitive")
	s.False(s.service.ComparePassword("", hash))
}

func (s *PasswordServiceTestSuite) TestHashPassword_Salted() {
	first, err := s.service.HashPassword("budget2024")
	s.Require().NoError(err)
	second, err := s.service.HashPassword("budget2024")
	s.Require().NoError(err)

	s.NotEqual(first, second)
	s.True(s.service.ComparePassword("budget2024", first))
	s.True(s.service.ComparePassword("budget2024", second))
}

func (s *PasswordServiceTestSuite) TestHashPassword_InvalidPassword() {
	_, err := s.service.HashPassword("short1")
	s.ErrorIs(err, ErrPasswordTooShort)
}

func (s *PasswordServiceTestSuite) TestComparePassword_BadHash() {
	s.False(s.service.ComparePassword("budget2024", "not-a-hash"))
	s.False(s.service.ComparePassword("budget2024", ""))
}

func (s *PasswordServiceTestSuite) TestNewPasswordService_ClampsCost() {
	svc := NewPasswordService(99).(*PasswordService)
	s.Equal(DefaultBCryptCost, svc.cost)

	svc = NewPasswordService(0).(*PasswordService)
	s.Equal(DefaultBCryptCost, svc.cost)
}

func (s *PasswordServiceTestSuite) TestPasswordStrength() {
	s.Equal(0, s.service.PasswordStrength(""))
	s.Equal(34, s.service.PasswordStrength("password"))
	s.Equal(80, s.service.PasswordStrength("SecurePass123!"))
	s.GreaterOrEqual(s.service.PasswordStrength("VerySecure$Pass123!WithManyChars"), 90)
	s.Less(s.service.PasswordStrength("aaaaaaaa"), s.service.PasswordStrength("password"))

	for _, pw := range []string{"x", "budget2024", strings.Repeat("Zz9!", 30)} {
		score := s.service.PasswordStrength(pw)
		s.GreaterOrEqual(score, 0)
		s.LessOrEqual(score, 100)
	}
}

func BenchmarkPasswordService_ComparePassword(b *testing.B) {
	svc := NewPasswordService(bcrypt.MinCost)
	hash, err := svc.HashPassword("budget2024")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		svc.ComparePassword("budget2024", hash)
	}
}
