package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Bundle serves messages from a go-i18n bundle. Message files follow the
// go-i18n naming ("en.toml", "active.de.yaml") and format; plural forms
// resolve to their "other" text.
type Bundle struct {
	bundle *i18n.Bundle

	mu      sync.Mutex
	tags    map[string]language.Tag
	locales []string
}

// NewBundle returns an empty Bundle whose fallback language is defaultLocale.
func NewBundle(defaultLocale string) (*Bundle, error) {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFile, err)
	}

	b := i18n.NewBundle(tag)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	b.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	b.RegisterUnmarshalFunc("yml", yaml.Unmarshal)

	return &Bundle{bundle: b, tags: map[string]language.Tag{}}, nil
}

// LoadFS loads the named message files from fsys.
func (b *Bundle) LoadFS(fsys fs.FS, paths ...string) error {
	for _, p := range paths {
		if _, err := b.bundle.LoadMessageFileFS(fsys, p); err != nil {
			return fmt.Errorf("%w: %q: %s", ErrInvalidFile, p, err)
		}
	}
	b.refresh()
	return nil
}

// LoadGlob loads every message file in fsys matching pattern.
func (b *Bundle) LoadGlob(fsys fs.FS, pattern string) error {
	paths, err := fs.Glob(fsys, pattern)
	if err != nil {
		return err
	}
	return b.LoadFS(fsys, paths...)
}

// Add registers plain messages for locale.
func (b *Bundle) Add(locale string, messages map[string]string) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidFile, err)
	}
	msgs := make([]*i18n.Message, 0, len(messages))
	for id, text := range messages {
		msgs = append(msgs, &i18n.Message{ID: id, Other: text})
	}
	if err := b.bundle.AddMessages(tag, msgs...); err != nil {
		return err
	}
	b.refresh()
	return nil
}

func (b *Bundle) refresh() {
	b.mu.Lock()
	defer b.mu.Unlock()

	tags := b.bundle.LanguageTags()
	b.tags = make(map[string]language.Tag, len(tags))
	b.locales = make([]string, 0, len(tags))
	for _, tag := range tags {
		s := tag.String()
		b.tags[s] = tag
		b.locales = append(b.locales, s)
	}
}

// Locales implements Store.
func (b *Bundle) Locales(context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locales, nil
}

// Get implements Store. Messages the bundle would serve from its default
// language are reported as misses so the caller's own fallback applies.
func (b *Bundle) Get(_ context.Context, locale, key string) (string, bool, error) {
	b.mu.Lock()
	tag, ok := b.tags[locale]
	b.mu.Unlock()
	if !ok {
		return "", false, nil
	}

	text, got, err := i18n.NewLocalizer(b.bundle, locale).LocalizeWithTag(&i18n.LocalizeConfig{MessageID: key})
	var notFound *i18n.MessageNotFoundErr
	if errors.As(err, &notFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("catalog: localize %s/%s: %w", locale, key, err)
	}
	if got != tag {
		return "", false, nil
	}
	return text, true, nil
}
