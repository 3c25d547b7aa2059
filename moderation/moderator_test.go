package moderation

import (
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

func TestModerator_Censor(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	mod, err := NewModerator([]string{"scam", "wire transfer", "western union"}, replacementChar, log)
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{
			name:     "Plain word",
			input:    "This listing is a scam",
			expected: "This listing is a ****",
			words:    []string{"scam"},
		},
		{
			name:     "Phrase spread over spaces",
			input:    "Pay by wire transfer please",
			expected: "Pay by ************* please",
			words:    []string{"wiretransfer"},
		},
		{
			name:     "Leet speak and punctuation inside the word",
			input:    "Use W3stern-Un1on only",
			expected: "Use ************* only",
			words:    []string{"westernunion"},
		},
		{
			name:     "Repeated word reported once",
			input:    "SCAM, scam, S.C.A.M",
			expected: "****, ****, *******",
			words:    []string{"scam"},
		},
		{
			name:     "Word inside a longer word",
			input:    "Scampi for dinner after the drop-off?",
			expected: "Scampi for dinner after the drop-off?",
			words:    nil,
		},
		{
			name:     "Accents around a match",
			input:    "Été: arnaque, scam!",
			expected: "Été: arnaque, ****!",
			words:    []string{"scam"},
		},
		{
			name:     "Nothing to censor",
			input:    "The tent is still available",
			expected: "The tent is still available",
			words:    nil,
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
			words:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			content, words := mod.Censor(tt.input)
			req.Equal(tt.expected, content)
			req.Equal(tt.words, words)
		})
	}
}

func TestModerator_Skips_Punctuation_Words(t *testing.T) {
	req := require.New(t)

	// Given a dictionary polluted with noise
	mod, err := NewModerator([]string{"...", ",,,", "", "scam"}, replacementChar, logs.GetLoggerFromLevel(slog.LevelDebug))
	req.NoError(err)

	// When censoring text made of noise
	content, words := mod.Censor("Hello ...")

	// Then nothing is masked
	req.Equal("Hello ...", content)
	req.Nil(words)
}
