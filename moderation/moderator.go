package moderation

import (
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// Moderator masks blacklisted words in notification previews before they
// leave the platform by email or push.
type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
	log          *slog.Logger
}

// folded is a message reduced to lowercase letters and digits, with the
// position of each kept rune in the original text.
type folded struct {
	runes     []rune
	positions []int
}

// NewModerator builds the Aho-Corasick automaton from the folded words.
// Words that fold to nothing (pure punctuation) are skipped.
func NewModerator(censoredWords []string, censoredChar rune, log *slog.Logger) (Moderator, error) {
	patterns := lo.FilterMap(censoredWords, func(word string, _ int) ([]rune, bool) {
		f := fold([]rune(word))
		return f.runes, len(f.runes) > 0
	})
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Moderator{}, err
	}
	log.Debug("Moderator ready", "patterns", len(patterns))
	return Moderator{matcher: m, censoredChar: censoredChar, log: log}, nil
}

// Censor masks every match with the censor rune and returns the matched
// dictionary words once each. A match glued to other letters ("scampi"
// for "scam") is left alone.
func (m *Moderator) Censor(original string) (string, []string) {
	text := []rune(original)
	f := fold(text)
	if len(f.runes) == 0 || m.matcher == nil {
		return original, nil
	}

	var words []string
	for _, term := range m.matcher.MultiPatternSearch(f.runes, false) {
		end := term.Pos + len(term.Word)
		if term.Pos < 0 || end > len(f.positions) {
			continue
		}
		from, to := f.positions[term.Pos], f.positions[end-1]+1
		if letterAt(text, from-1) || letterAt(text, to) {
			continue
		}
		for i := from; i < to; i++ {
			text[i] = m.censoredChar
		}
		words = append(words, string(term.Word))
	}
	if len(words) == 0 {
		return original, nil
	}
	return string(text), lo.Uniq(words)
}

func fold(input []rune) folded {
	f := folded{runes: make([]rune, 0, len(input)), positions: make([]int, 0, len(input))}
	for i, r := range input {
		r = unleet(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		f.runes = append(f.runes, unicode.ToLower(r))
		f.positions = append(f.positions, i)
	}
	return f
}

func letterAt(text []rune, i int) bool {
	return i >= 0 && i < len(text) && unicode.IsLetter(text[i])
}

// unleet maps common substitutions back to letters.
func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
