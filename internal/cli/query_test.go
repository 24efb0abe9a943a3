package cli

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestQueryCmd_RanksSiblings(t *testing.T) {
	setupCLI(t, blogContent)

	// b: 1/2 = 0.5; c: 2/3 = 0.66667; d: 0
	out, err := execute(t, "query", "page", "blog/a")
	if err != nil {
		t.Fatalf("query: %v\n%s", err, out)
	}
	if out != "1. blog/c\n2. blog/b\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestQueryCmd_BrokenFileDoesNotBlockRanking(t *testing.T) {
	setupCLI(t, withBrokenFile(blogContent))

	out, err := execute(t, "query", "page", "blog/a")
	if err != nil {
		t.Fatalf("query: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Warning:") || !strings.HasSuffix(out, "1. blog/c\n2. blog/b\n") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestQueryCmd_ThresholdExcludes(t *testing.T) {
	setupCLI(t, blogContent)

	out, err := execute(t, "query", "page", "blog/a", "--threshold", "0.6")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if out != "1. blog/c\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestQueryCmd_WeightedFieldsJSON(t *testing.T) {
	setupCLI(t, blogContent)

	// b: tags 0.5*2=1, category 1*1=1 -> 1.0; c: tags 0.66667*2=1.33333, category 0 -> 0.66667
	out, err := execute(t, "query", "page", "blog/a", "--fields", "tags:2,category:1", "--json", "--no-cache")
	if err != nil {
		t.Fatalf("query: %v\n%s", err, out)
	}

	var got []queryResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 2 || got[0].ID != "blog/b" || got[1].ID != "blog/c" || got[0].Kind != "page" {
		t.Errorf("unexpected results %+v", got)
	}
}

func TestQueryCmd_NoMatches(t *testing.T) {
	setupCLI(t, blogContent)

	out, err := execute(t, "query", "page", "blog/d")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !strings.Contains(out, "No similar items found.") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestQueryCmd_Errors(t *testing.T) {
	setupCLI(t, blogContent)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown kind", []string{"query", "post", "blog/a"}},
		{"missing item", []string{"query", "page", "blog/zzz"}},
		{"bad weight", []string{"query", "page", "blog/a", "--fields", "tags:x"}},
		{"missing args", []string{"query", "page"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetQueryFlags()
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}
