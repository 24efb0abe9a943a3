package language

import (
	"context"
	"fmt"

	"golang.org/x/text/language"

	"github.com/kailas-cloud/similar/internal/domain"
)

// Settings describes the languages a site is published in.
type Settings struct {
	codes   []string
	tags    []language.Tag
	def     string
	matcher language.Matcher
}

// New validates language codes. The default must be one of codes; an empty default picks the first.
// Zero or one code means a single-language site.
func New(codes []string, def string) (Settings, error) {
	s := Settings{}
	for _, c := range codes {
		tag, err := language.Parse(c)
		if err != nil {
			return Settings{}, fmt.Errorf("%w: language %q: %w", domain.ErrInvalidConfiguration, c, err)
		}
		s.codes = append(s.codes, tag.String())
		s.tags = append(s.tags, tag)
	}
	if len(s.tags) == 0 {
		return s, nil
	}
	s.matcher = language.NewMatcher(s.tags)

	if def == "" {
		s.def = s.codes[0]
		return s, nil
	}
	code, ok := s.Resolve(def)
	if !ok {
		return Settings{}, fmt.Errorf("%w: default language %q is not in %v", domain.ErrInvalidConfiguration, def, s.codes)
	}
	s.def = code
	return s, nil
}

// MultiLanguage reports whether more than one language is configured.
func (s Settings) MultiLanguage() bool { return len(s.codes) > 1 }

// Codes returns the configured codes in canonical form.
func (s Settings) Codes() []string {
	out := make([]string, len(s.codes))
	copy(out, s.codes)
	return out
}

// Default returns the default language code, "" on a site without languages.
func (s Settings) Default() string { return s.def }

// Resolve maps a requested code ("de-AT", "EN") to a configured one.
func (s Settings) Resolve(code string) (string, bool) {
	if s.matcher == nil || code == "" {
		return "", false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	_, idx, conf := s.matcher.Match(tag)
	if conf < language.High {
		return "", false
	}
	return s.codes[idx], true
}

// Active returns the language of the current request: the one stored in ctx when it is
// configured, otherwise the default. Single-language sites have no active language.
func (s Settings) Active(ctx context.Context) (string, bool) {
	if !s.MultiLanguage() {
		return "", false
	}
	if code, ok := ctx.Value(ctxKey{}).(string); ok {
		if resolved, ok := s.Resolve(code); ok {
			return resolved, true
		}
	}
	return s.def, s.def != ""
}

type ctxKey struct{}

// ContextWithLanguage stores the requested language code in the context.
func ContextWithLanguage(ctx context.Context, code string) context.Context {
	if code == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, code)
}
