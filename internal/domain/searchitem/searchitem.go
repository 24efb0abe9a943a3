package searchitem

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/similar/internal/domain"
	"github.com/kailas-cloud/similar/internal/domain/fieldspec"
	"github.com/kailas-cloud/similar/internal/domain/item"
)

// SearchItem is the reference item's token set for one field.
type SearchItem struct {
	field  string
	weight float64
	values []string
	set    map[string]struct{}
}

// New creates a search item from already split tokens.
func New(field string, weight float64, tokens []string) SearchItem {
	si := SearchItem{field: field, weight: weight, set: make(map[string]struct{}, len(tokens))}
	for _, t := range tokens {
		if _, ok := si.set[t]; ok {
			continue
		}
		si.set[t] = struct{}{}
		si.values = append(si.values, t)
	}
	return si
}

// Field returns the field name.
func (s *SearchItem) Field() string { return s.field }

// Weight returns the field weight.
func (s *SearchItem) Weight() float64 { return s.weight }

// Len returns the number of distinct tokens.
func (s *SearchItem) Len() int { return len(s.values) }

// Contains reports whether token is one of the reference values.
func (s *SearchItem) Contains(token string) bool {
	_, ok := s.set[token]
	return ok
}

// Items are the search items of one request, in field order.
type Items []SearchItem

// Split cuts raw at delim into distinct non-empty tokens, keeping first-seen order.
// Tokens are compared verbatim; surrounding whitespace is significant.
func Split(raw, delim string) []string {
	if raw == "" || delim == "" {
		return nil
	}
	parts := strings.Split(raw, delim)
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Extract builds the search items of ref for the given field spec.
// Fields with no values on ref are left out; an empty result means nothing can be compared.
func Extract(ref item.Item, spec fieldspec.Spec, delim string) (Items, error) {
	if spec.IsZero() {
		return nil, fmt.Errorf("%w: fields is required", domain.ErrInvalidConfiguration)
	}
	if delim == "" {
		return nil, fmt.Errorf("%w: delimiter must not be empty", domain.ErrInvalidConfiguration)
	}

	fields := spec.Fields()
	items := make(Items, 0, len(fields))
	for _, f := range fields {
		tokens := Split(ref.Field(f.Name), delim)
		if len(tokens) == 0 {
			continue
		}
		items = append(items, New(f.Name, f.Weight, tokens))
	}
	return items, nil
}
