package utils

import (
	"regexp"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const PasswordCost = 12

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,16}$`)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// StrongPassword requires at least 8 characters mixing upper and lower case
// letters, a digit and a special character.
func StrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && lower && digit && special
}

func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}
