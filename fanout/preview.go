package fanout

import (
	"strings"

	"rental-chat/moderation"

	"github.com/abadojack/whatlanggo"
)

const ellipsis = "…"

// Truncate keeps at most length runes and marks the cut with an ellipsis.
func Truncate(content string, length int) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if length <= 0 || len(runes) <= length {
		return content
	}
	return strings.TrimRight(string(runes[:length]), " ") + ellipsis
}

// PreviewBuilder prepares message content for templates sent outside the app.
type PreviewBuilder struct {
	moderator *moderation.Moderator
	length    int
}

func NewPreviewBuilder(moderator *moderation.Moderator, length int) PreviewBuilder {
	return PreviewBuilder{moderator: moderator, length: length}
}

func (b PreviewBuilder) Build(content string) string {
	if b.moderator != nil {
		content, _ = b.moderator.Censor(content)
	}
	return Truncate(content, b.length)
}

// DetectLocale guesses the language of a text. Unreliable guesses return fallback.
func DetectLocale(text, fallback string) string {
	if strings.TrimSpace(text) == "" {
		return fallback
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return fallback
	}
	if code := info.Lang.Iso6391(); code != "" {
		return code
	}
	return fallback
}
