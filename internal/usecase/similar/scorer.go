package similar

import (
	"math"

	"github.com/kailas-cloud/similar/internal/domain/item"
	"github.com/kailas-cloud/similar/internal/domain/searchitem"
)

// scorePrecision is the number of decimals each field term is rounded to before averaging.
const scorePrecision = 5

// Score returns the mean of the per-field weighted Jaccard indices between the
// reference search items and candidate. Fields whose union is empty do not count.
func Score(candidate item.Item, items searchitem.Items, delim string) float64 {
	var sum float64
	var n int

	for i := range items {
		si := &items[i]
		tokens := searchitem.Split(candidate.Field(si.Field()), delim)

		intersection := 0
		for _, t := range tokens {
			if si.Contains(t) {
				intersection++
			}
		}
		// |A ∪ B| = |A| + |B \ A|
		union := si.Len() + len(tokens) - intersection
		if union == 0 {
			continue
		}

		sum += round(float64(intersection)/float64(union)*si.Weight(), scorePrecision)
		n++
	}

	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
