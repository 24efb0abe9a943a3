package catalog

import (
	"strings"

	"github.com/kailas-cloud/similar/internal/domain/item"
)

// Reserved hash fields. Content fields are stored under fieldPrefix so they never collide.
const (
	parentField       = "_parent"
	translationsField = "_translations"
	fieldPrefix       = "f:"
)

// buildHashFields converts a record into a flat map[string]string for HSET.
// _parent is always written so a stored item never has an empty hash.
func buildHashFields(rec *item.Record) map[string]string {
	fields := rec.Fields()
	m := make(map[string]string, 2+len(fields))
	m[parentField] = rec.Parent()
	if tr := rec.Translations(); len(tr) > 0 {
		m[translationsField] = strings.Join(tr, ",")
	}
	for k, v := range fields {
		m[fieldPrefix+k] = v
	}
	return m
}

// parseHashFields converts a stored hash back into a record.
func parseHashFields(kind item.Kind, id string, m map[string]string) (item.Record, error) {
	fields := make(map[string]string, len(m))
	var translations []string
	for k, v := range m {
		switch {
		case k == translationsField:
			if v != "" {
				translations = strings.Split(v, ",")
			}
		case strings.HasPrefix(k, fieldPrefix):
			fields[strings.TrimPrefix(k, fieldPrefix)] = v
		}
	}
	return item.NewRecord(kind, id, m[parentField], fields, translations)
}
