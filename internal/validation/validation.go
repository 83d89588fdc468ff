// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"

	"mindsupport/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}

	return nil
}

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	// Cap unreasonable inputs before they hit bcrypt
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	hasLetter := false
	hasDigit := false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}

	return nil
}

// ValidateFullName checks display name length bounds
func ValidateFullName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 2 {
		return fmt.Errorf("full name must be at least 2 characters long")
	}
	if n > 100 {
		return fmt.Errorf("full name must not exceed 100 characters")
	}
	return nil
}

// ValidateStudentID checks student number format
func ValidateStudentID(id string) error {
	if len(id) < 5 {
		return fmt.Errorf("student ID must be at least 5 characters long")
	}
	if len(id) > 20 {
		return fmt.Errorf("student ID must not exceed 20 characters")
	}
	if !regexp.MustCompile(`^[a-zA-Z0-9\-]+$`).MatchString(id) {
		return fmt.Errorf("student ID can only contain letters, numbers, and hyphens")
	}
	return nil
}

// ValidateMood checks the mood against the accepted set
func ValidateMood(mood models.Mood) error {
	if !models.ValidMood(mood) {
		return fmt.Errorf("mood must be one of: Sad, NeedAdvice, Venting, Frustrated, Success")
	}
	return nil
}

// ValidatePostContent checks forum post body length
func ValidatePostContent(content string) error {
	n := utf8.RuneCountInString(content)
	if n < 10 {
		return fmt.Errorf("post content must be at least 10 characters long")
	}
	if n > 2000 {
		return fmt.Errorf("post content must not exceed 2000 characters")
	}
	return nil
}

// ValidateCommentContent checks comment body length
func ValidateCommentContent(content string) error {
	n := utf8.RuneCountInString(content)
	if n < 1 {
		return fmt.Errorf("comment content must not be empty")
	}
	if n > 500 {
		return fmt.Errorf("comment content must not exceed 500 characters")
	}
	return nil
}

// ValidateChatMessage checks a chat turn's length
func ValidateChatMessage(content string) error {
	n := utf8.RuneCountInString(content)
	if n < 1 {
		return fmt.Errorf("message must not be empty")
	}
	if n > 4000 {
		return fmt.Errorf("message must not exceed 4000 characters")
	}
	return nil
}
