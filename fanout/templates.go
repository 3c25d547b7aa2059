package fanout

import (
	_ "embed"
	"fmt"
	"strings"

	"rental-chat/domain/notification"
	"rental-chat/errors"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultCatalogue []byte

// Template is the raw (type, channel, locale) entry. Subject may be empty.
type Template struct {
	Type    notification.Type    `yaml:"type"`
	Channel notification.Channel `yaml:"channel"`
	Locale  string               `yaml:"locale"`
	Subject string               `yaml:"subject"`
	Body    string               `yaml:"body"`
}

type TemplateResolver interface {
	Resolve(t notification.Type, channel notification.Channel, locale string) (Template, error)
}

type catalogueFile struct {
	DefaultLocale string     `yaml:"default_locale"`
	Templates     []Template `yaml:"templates"`
}

type templateKey struct {
	t       notification.Type
	channel notification.Channel
	locale  string
}

// Catalogue resolves templates by exact locale, then by base language
// ("fr-CA" -> "fr"), then by the default locale.
type Catalogue struct {
	defaultLocale string
	templates     map[templateKey]Template
}

func NewCatalogue(data []byte, defaultLocale string) (*Catalogue, error) {
	var file catalogueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("template catalogue: %w", err)
	}
	if defaultLocale == "" {
		defaultLocale = file.DefaultLocale
	}
	c := &Catalogue{defaultLocale: normalizeLocale(defaultLocale), templates: make(map[templateKey]Template)}
	for _, tpl := range file.Templates {
		if tpl.Body == "" {
			return nil, fmt.Errorf("template catalogue: empty body for %s/%s/%s", tpl.Type, tpl.Channel, tpl.Locale)
		}
		tpl.Locale = normalizeLocale(tpl.Locale)
		c.templates[templateKey{tpl.Type, tpl.Channel, tpl.Locale}] = tpl
	}
	return c, nil
}

// DefaultCatalogue loads the templates shipped with the binary.
func DefaultCatalogue(defaultLocale string) (*Catalogue, error) {
	return NewCatalogue(defaultCatalogue, defaultLocale)
}

func (c *Catalogue) Resolve(t notification.Type, channel notification.Channel, locale string) (Template, error) {
	locale = normalizeLocale(locale)
	candidates := []string{locale}
	if base, _, ok := strings.Cut(locale, "-"); ok {
		candidates = append(candidates, base)
	}
	candidates = append(candidates, c.defaultLocale)
	for _, l := range candidates {
		if tpl, ok := c.templates[templateKey{t, channel, l}]; ok {
			return tpl, nil
		}
	}
	return Template{}, fmt.Errorf("%w: no template for %s on %s (%s)", errors.ErrTemplateRender, t, channel, locale)
}

func normalizeLocale(locale string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
}
