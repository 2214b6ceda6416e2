package dispatch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeText_LengthInCharacters(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"ascii under limit", strings.Repeat("a", 9), false},
		{"ascii at limit", strings.Repeat("a", 10), false},
		{"ascii over limit", strings.Repeat("a", 11), true},
		{"cjk at limit", strings.Repeat("記", 10), false},
		{"cjk over limit", strings.Repeat("記", 11), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SanitizeText(tt.text, 10)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMessageTooLong)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeText_PlatformMaximum(t *testing.T) {
	text := strings.Repeat("記", DefaultMaxMessageLength)
	got, err := SanitizeText(text, DefaultMaxMessageLength)
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestSanitizeText_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "買牛奶", "買牛奶"},
		{"line breaks and tabs kept", "第一行\n第二行\t縮排\r\n", "第一行\n第二行\t縮排\r\n"},
		{"escape removed", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"null removed", "Null\x00Byte", "NullByte"},
		{"bell removed", "Ding\x07", "Ding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeText(tt.input, DefaultMaxMessageLength)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizeText_InvalidUTF8(t *testing.T) {
	_, err := SanitizeText("\xbd\xb2\x3d\xbc\x20\xe2\x8c\x98", DefaultMaxMessageLength)
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestMaxMessageLengthFromEnv(t *testing.T) {
	t.Setenv(EnvMaxMessageLength, "10")
	assert.Equal(t, 10, maxMessageLengthFromEnv())

	t.Setenv(EnvMaxMessageLength, "-1")
	assert.Equal(t, DefaultMaxMessageLength, maxMessageLengthFromEnv())
}
