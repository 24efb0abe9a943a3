package similar

import "context"

// FilterByLanguage keeps the items translated into the active language.
// Single-language setups pass everything through.
func FilterByLanguage(ctx context.Context, langs Languages, ranked []ScoredItem) []ScoredItem {
	if langs == nil || !langs.MultiLanguage() {
		return ranked
	}
	code, ok := langs.Active(ctx)
	if !ok {
		return ranked
	}

	filtered := make([]ScoredItem, 0, len(ranked))
	for _, r := range ranked {
		if r.Item.TranslationExists(code) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
