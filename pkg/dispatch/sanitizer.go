package dispatch

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxMessageLength is the longest accepted chat message in characters.
	// LINE text messages carry at most 5000.
	DefaultMaxMessageLength = 5000
	// EnvMaxMessageLength overrides DefaultMaxMessageLength.
	EnvMaxMessageLength = "GROUPLOG_MAX_MESSAGE_LENGTH"
)

var (
	ErrMessageTooLong = errors.New("message exceeds maximum length")
	ErrInvalidUTF8    = errors.New("message contains invalid UTF-8 sequences")
)

// SanitizeText checks a chat message against maxLength characters and removes
// control characters other than newline, tab and carriage return.
func SanitizeText(text string, maxLength int) (string, error) {
	if !utf8.ValidString(text) {
		return "", ErrInvalidUTF8
	}
	if n := utf8.RuneCountInString(text); n > maxLength {
		return "", fmt.Errorf("%w: %d characters, limit %d", ErrMessageTooLong, n, maxLength)
	}
	return strings.Map(dropControl, text), nil
}

func dropControl(r rune) rune {
	switch r {
	case '\n', '\t', '\r':
		return r
	}
	if unicode.IsControl(r) {
		return -1
	}
	return r
}

func maxMessageLengthFromEnv() int {
	if val := os.Getenv(EnvMaxMessageLength); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return DefaultMaxMessageLength
}
