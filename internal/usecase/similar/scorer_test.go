package similar

import (
	"testing"

	"github.com/kailas-cloud/similar/internal/domain/fieldspec"
	"github.com/kailas-cloud/similar/internal/domain/item"
	"github.com/kailas-cloud/similar/internal/domain/searchitem"
)

func extract(t *testing.T, ref item.Item, spec fieldspec.Spec) searchitem.Items {
	t.Helper()
	items, err := searchitem.Extract(ref, spec, ",")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return items
}

func mustWeighted(t *testing.T, w map[string]float64) fieldspec.Spec {
	t.Helper()
	s, err := fieldspec.NewWeighted(w)
	if err != nil {
		t.Fatalf("NewWeighted: %v", err)
	}
	return s
}

func TestScore_SingleField(t *testing.T) {
	ref := tagged(t, "blog/ref", "a,b")
	items := extract(t, ref, fieldspec.MustSingle("tags"))

	tests := []struct {
		name string
		tags string
		want float64
	}{
		{"identical", "a,b", 1},
		{"half overlap", "a", 0.5},
		{"third", "b,c", 0.33333},
		{"disjoint", "x,y", 0},
		{"missing field", "", 0},
		{"duplicates count once", "a,a,a", 0.5},
		{"whitespace is significant", "a, b", 0.33333},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tagged(t, "blog/c", tt.tags), items, ","); got != tt.want {
				t.Errorf("Score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_WeightedAggregate(t *testing.T) {
	ref := page(t, "blog/ref", map[string]string{"tags": "a,b", "category": "tech"})
	candidate := page(t, "blog/c", map[string]string{"tags": "a", "category": "tech"})

	// tags: 0.5 * 2 = 1.0, category: 1 * 1 = 1.0, mean 1.0
	items := extract(t, ref, mustWeighted(t, map[string]float64{"tags": 2, "category": 1}))
	if got := Score(candidate, items, ","); got != 1.0 {
		t.Errorf("Score = %v, want 1.0", got)
	}
}

func TestScore_MeanOverComparedFields(t *testing.T) {
	list, err := fieldspec.NewList("tags", "color", "category")
	if err != nil {
		t.Fatal(err)
	}
	// The reference has no color, so only tags and category are compared.
	ref := page(t, "blog/ref", map[string]string{"tags": "a,b", "category": "tech"})
	items := extract(t, ref, list)
	if len(items) != 2 {
		t.Fatalf("expected 2 search items, got %d", len(items))
	}

	// tags 0.5, category missing on the candidate counts as 0: (0.5 + 0) / 2
	candidate := page(t, "blog/c", map[string]string{"tags": "a", "color": "red"})
	if got := Score(candidate, items, ","); got != 0.25 {
		t.Errorf("Score = %v, want 0.25", got)
	}
}

func TestScore_NoSearchItems(t *testing.T) {
	if got := Score(tagged(t, "blog/c", "a"), nil, ","); got != 0 {
		t.Errorf("Score = %v, want 0", got)
	}
}

func TestScore_Symmetric(t *testing.T) {
	weighted := mustWeighted(t, map[string]float64{"tags": 2, "category": 1})

	tests := []struct {
		name string
		spec fieldspec.Spec
		a, b map[string]string
	}{
		{
			name: "single field partial overlap",
			spec: fieldspec.MustSingle("tags"),
			a:    map[string]string{"tags": "a,b"},
			b:    map[string]string{"tags": "b,c,d"},
		},
		{
			name: "single field reordered tokens",
			spec: fieldspec.MustSingle("tags"),
			a:    map[string]string{"tags": "c,a,b"},
			b:    map[string]string{"tags": "a,b,c"},
		},
		{
			name: "single field disjoint",
			spec: fieldspec.MustSingle("tags"),
			a:    map[string]string{"tags": "a"},
			b:    map[string]string{"tags": "z"},
		},
		{
			name: "weighted both fields",
			spec: weighted,
			a:    map[string]string{"tags": "a,b", "category": "tech"},
			b:    map[string]string{"tags": "b", "category": "tech,news"},
		},
		{
			name: "weighted reordered tokens",
			spec: weighted,
			a:    map[string]string{"tags": "go,rust,zig", "category": "news,tech"},
			b:    map[string]string{"tags": "zig,go,rust", "category": "tech,news"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := page(t, "blog/a", tt.a)
			b := page(t, "blog/b", tt.b)

			ab := Score(b, extract(t, a, tt.spec), ",")
			ba := Score(a, extract(t, b, tt.spec), ",")
			if ab != ba {
				t.Errorf("score(a,b) = %v, score(b,a) = %v", ab, ba)
			}
		})
	}
}
