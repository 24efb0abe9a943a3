package similar

import (
	"sort"

	"github.com/kailas-cloud/similar/internal/domain/item"
	"github.com/kailas-cloud/similar/internal/domain/searchitem"
)

// ScoredItem is a candidate with its similarity score.
type ScoredItem struct {
	Item  item.Item
	Score float64
}

// Rank scores every candidate, keeps those scoring at least threshold and orders them
// by score descending. Equal scores keep their index order.
func Rank(index []item.Item, items searchitem.Items, threshold float64, delim string) []ScoredItem {
	ranked := make([]ScoredItem, 0, len(index))
	for _, candidate := range index {
		score := Score(candidate, items, delim)
		if score >= threshold {
			ranked = append(ranked, ScoredItem{Item: candidate, Score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}
