// Package runtime wires the workers of the messaging server and loads its embedded resources.
package runtime

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"

	"rental-chat/errors"
	"rental-chat/moderation"

	"github.com/samber/lo"
)

// Wordlists maps a locale ("fr.txt" gives "fr") to its censored words.
type Wordlists map[string][]string

func (w Wordlists) Locales() []string {
	locales := lo.Keys(w)
	slices.Sort(locales)
	return locales
}

// Words merges every locale, lowercase and without duplicates.
func (w Wordlists) Words() []string {
	words := lo.Uniq(lo.Map(lo.Flatten(lo.Values(w)), func(word string, _ int) string {
		return strings.ToLower(word)
	}))
	slices.Sort(words)
	return words
}

// loadWordlists reads every .txt file of dir, one word per line.
func loadWordlists(fsys fs.FS, dir string) (Wordlists, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	lists := make(Wordlists)
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".txt" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		// bufio handles \r\n files
		var words []string
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
				words = append(words, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		lists[strings.TrimSuffix(entry.Name(), ".txt")] = words
	}
	if len(lists.Words()) == 0 {
		return nil, errors.ErrEmptyWords
	}
	return lists, nil
}

// LoadModerator builds the preview censor from the embedded word lists.
func LoadModerator(log *slog.Logger, charReplacement rune) (*moderation.Moderator, error) {
	lists, err := loadWordlists(censoredFolder, "censored")
	if err != nil {
		return nil, err
	}
	words := lists.Words()
	log.Info("Censored words loaded", "locales", strings.Join(lists.Locales(), ","), "words", len(words))

	moderator, err := moderation.NewModerator(words, charReplacement, log)
	if err != nil {
		return nil, err
	}
	return &moderator, nil
}
