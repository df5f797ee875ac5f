// Package validation holds request-field validation shared by handlers and
// the seed command.
package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// UsernamePattern defines the accepted username format: latin letters,
// digits, and underscores, 3-32 characters.
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

const (
	// MinUsernameLen is the minimum username length.
	MinUsernameLen = 3
	// MaxUsernameLen is the maximum username length.
	MaxUsernameLen = 32
	// MaxAppNameLen keeps derived bucket names within reason before the
	// 63-character S3 truncation kicks in.
	MaxAppNameLen = 64
)

// ValidateUsername checks that username matches UsernamePattern.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_)")
	}

	return nil
}

// ValidateAppName checks that an app name is non-empty, valid UTF-8, and not
// unreasonably long. The name itself may contain anything; bucket derivation
// normalizes it.
func ValidateAppName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if !utf8.ValidString(name) {
		return fmt.Errorf("name must be valid UTF-8")
	}

	if utf8.RuneCountInString(name) > MaxAppNameLen {
		return fmt.Errorf("name must not exceed %d characters", MaxAppNameLen)
	}

	return nil
}
