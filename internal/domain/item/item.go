package item

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/kailas-cloud/similar/internal/domain"
)

// Kind is the content type of an item. Similarity is only ever computed within one kind.
type Kind string

const (
	// Page is a content page; its parent is the enclosing page path.
	Page Kind = "page"
	// File is a file attached to a page.
	File Kind = "file"
	// User is a site account.
	User Kind = "user"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case Page, File, User:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidItem, s)
	}
}

// Item is the read-only view of a content entry that similarity works against.
// Any item kind satisfies it; the scorer never sees concrete types.
type Item interface {
	ID() string
	Kind() Kind
	// Field returns the raw delimited value of a field, or "" when the field is absent.
	Field(name string) string
	TranslationExists(locale string) bool
}

// Record is a stored item.
type Record struct {
	kind         Kind
	id           string
	parent       string
	fields       map[string]string
	translations []string
}

var _ Item = (*Record)(nil)

// NewRecord validates and builds a record.
// An empty parent is derived from the id path ("blog/a" -> "blog"); users share a single root.
func NewRecord(kind Kind, id, parent string, fields map[string]string, translations []string) (Record, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Record{}, err
	}
	id = strings.Trim(id, "/")
	if id == "" {
		return Record{}, fmt.Errorf("%w: id is required", domain.ErrInvalidItem)
	}
	if parent == "" && kind != User {
		if dir := path.Dir(id); dir != "." {
			parent = dir
		}
	}

	fs := make(map[string]string, len(fields))
	for k, v := range fields {
		if k == "" {
			return Record{}, fmt.Errorf("%w: empty field name", domain.ErrInvalidItem)
		}
		fs[k] = v
	}

	var tr []string
	for _, code := range translations {
		if code = strings.TrimSpace(code); code != "" && !slices.Contains(tr, code) {
			tr = append(tr, code)
		}
	}

	return Record{kind: kind, id: id, parent: strings.Trim(parent, "/"), fields: fs, translations: tr}, nil
}

// ID returns the item identifier.
func (r *Record) ID() string { return r.id }

// Kind returns the item kind.
func (r *Record) Kind() Kind { return r.kind }

// Parent returns the parent path; items with the same parent are siblings.
func (r *Record) Parent() string { return r.parent }

// Field returns the raw field value.
func (r *Record) Field(name string) string { return r.fields[name] }

// Fields returns a copy of all fields.
func (r *Record) Fields() map[string]string {
	out := make(map[string]string, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

// Translations returns the locale codes the item is translated into.
func (r *Record) Translations() []string { return slices.Clone(r.translations) }

// TranslationExists reports whether the item has content in the given locale.
func (r *Record) TranslationExists(locale string) bool {
	return slices.ContainsFunc(r.translations, func(code string) bool {
		return strings.EqualFold(code, locale)
	})
}

// IsSibling reports whether other shares kind and parent with r and is not r itself.
func (r *Record) IsSibling(other *Record) bool {
	return other.kind == r.kind && other.parent == r.parent && other.id != r.id
}
