package searchitem

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/similar/internal/domain"
	"github.com/kailas-cloud/similar/internal/domain/fieldspec"
	"github.com/kailas-cloud/similar/internal/domain/item"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		raw, delim string
		want       []string
	}{
		{"a,b,c", ",", []string{"a", "b", "c"}},
		{"a,,b,", ",", []string{"a", "b"}},
		{"a,b,a", ",", []string{"a", "b"}},
		{"a, b", ",", []string{"a", " b"}},
		{"a|b", "|", []string{"a", "b"}},
		{"a::b", "::", []string{"a", "b"}},
		{"", ",", nil},
		{"a", "", nil},
	}
	for _, tt := range tests {
		got := Split(tt.raw, tt.delim)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%q, %q) = %q, want %q", tt.raw, tt.delim, got, tt.want)
		}
	}
}

func TestNew_Dedup(t *testing.T) {
	si := New("tags", 2, []string{"b", "a", "b"})
	if si.Field() != "tags" || si.Weight() != 2 || si.Len() != 2 {
		t.Errorf("unexpected search item %+v", si)
	}
	if !reflect.DeepEqual(si.values, []string{"b", "a"}) {
		t.Errorf("values = %v, want first-seen order", si.values)
	}
	if !si.Contains("a") || si.Contains("c") {
		t.Error("Contains mismatch")
	}
}

func TestExtract(t *testing.T) {
	ref, err := item.NewRecord(item.Page, "blog/a", "", map[string]string{
		"tags":     "go,design",
		"category": "tech",
		"empty":    "",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	spec, _ := fieldspec.NewWeighted(map[string]float64{"tags": 2, "category": 1, "empty": 1, "missing": 3})
	items, err := Extract(&ref, spec, ",")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("fields without values must be dropped, got %d items", len(items))
	}
	if items[0].Field() != "category" || items[1].Field() != "tags" || items[1].Weight() != 2 {
		t.Errorf("unexpected items %+v", items)
	}
}

func TestExtract_Invalid(t *testing.T) {
	ref, _ := item.NewRecord(item.Page, "a", "", nil, nil)
	if _, err := Extract(&ref, fieldspec.Spec{}, ","); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Errorf("expected error for unset fields, got %v", err)
	}
	if _, err := Extract(&ref, fieldspec.MustSingle("tags"), ""); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Errorf("expected error for empty delimiter, got %v", err)
	}
}
