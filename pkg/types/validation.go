package types

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Compiled once; validation runs on every inbound frame.
var userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_.@-]+$`)

// MaxUserIDLength bounds identities coming from tokens and URLs.
const MaxUserIDLength = 128

// IsValidUserID checks if a user ID meets format requirements
func IsValidUserID(userID string) bool {
	if len(userID) < 1 || len(userID) > MaxUserIDLength {
		return false
	}
	return userIDRegex.MatchString(userID)
}

// IsBlank reports whether s is empty or only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateContent checks a message body against the configured rune limit.
// A limit of zero or less disables the length check.
func ValidateContent(content string, maxRunes int) error {
	if IsBlank(content) {
		return ErrBlankContent
	}
	if maxRunes > 0 && utf8.RuneCountInString(content) > maxRunes {
		return ErrContentTooLong
	}
	return nil
}

// Validate checks the fields a message must carry before it is persisted.
func (m *Message) Validate(maxRunes int) error {
	if m.SenderID == "" {
		return ErrMissingSender
	}
	if m.ReceiverID == "" {
		return ErrMissingReceiver
	}
	return ValidateContent(m.Content, maxRunes)
}
