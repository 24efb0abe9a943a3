package cache

import (
	"testing"
	"time"

	"github.com/kailas-cloud/similar/internal/domain/fieldspec"
	"github.com/kailas-cloud/similar/internal/domain/options"
)

func derive(t *testing.T, in Input) string {
	t.Helper()
	k, err := Derive(in)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if len(k) != 64 {
		t.Fatalf("expected hex sha256, got %q", k)
	}
	return k
}

func TestDerive(t *testing.T) {
	base := Input{Version: "r2-dev", ReferenceID: "blog/a", Options: options.Defaults()}
	baseKey := derive(t, base)

	if derive(t, base) != baseKey {
		t.Fatal("Derive must be deterministic")
	}

	noCache := base
	noCache.Options.CacheEnabled = false
	noCache.Options.CacheTTLMinutes = 1
	if derive(t, noCache) != baseKey {
		t.Error("cache switches must not change the key")
	}

	locale := base
	locale.Locale = "de"
	if derive(t, locale) != baseKey {
		t.Error("locale must be ignored without the language filter")
	}

	weighted1, _ := fieldspec.NewWeighted(map[string]float64{"tags": 2, "category": 1})
	weighted2, _ := fieldspec.NewWeighted(map[string]float64{"category": 1, "tags": 2})
	w1, w2 := base, base
	w1.Options.Fields = weighted1
	w2.Options.Fields = weighted2
	if derive(t, w1) != derive(t, w2) {
		t.Error("equal weighted specs must produce equal keys")
	}

	differs := map[string]Input{}
	v := base
	v.Version = "r3-dev"
	differs["version"] = v
	r := base
	r.ReferenceID = "blog/b"
	differs["reference"] = r
	th := base
	th.Options.Threshold = 0.2
	differs["threshold"] = th
	w1.Options.Fields = weighted1
	differs["fields"] = w1
	lf := base
	lf.Options.LanguageFilter = true
	differs["language filter"] = lf
	idx := base
	idx.Index = []string{}
	differs["empty index"] = idx

	for name, in := range differs {
		if derive(t, in) == baseKey {
			t.Errorf("%s must change the key", name)
		}
	}
}

func TestDerive_LocaleWithFilter(t *testing.T) {
	in := Input{Version: "v", ReferenceID: "a", Options: options.Defaults()}
	in.Options.LanguageFilter = true

	en, de := in, in
	en.Locale = "en"
	de.Locale = "de"
	if derive(t, en) == derive(t, de) {
		t.Error("locale must change the key when the language filter is on")
	}
}

func TestDerive_IndexOrder(t *testing.T) {
	in := Input{Version: "v", ReferenceID: "a", Options: options.Defaults()}
	ab, ba := in, in
	ab.Index = []string{"a", "b"}
	ba.Index = []string{"b", "a"}
	if derive(t, ab) == derive(t, ba) {
		t.Error("index order decides tie order and must change the key")
	}
}

func TestEntry_Expired(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	forever := Entry{IDs: []string{"a"}}
	if forever.Expired(now.Add(100 * 365 * 24 * time.Hour)) {
		t.Error("zero ExpiresAt never expires")
	}

	e := Entry{ExpiresAt: now.Add(time.Minute)}
	if e.Expired(now) {
		t.Error("entry must be live before ExpiresAt")
	}
	if !e.Expired(now.Add(time.Minute)) {
		t.Error("entry must expire at ExpiresAt")
	}
}

func TestStatus_String(t *testing.T) {
	for s, want := range map[Status]string{Hit: "hit", Miss: "miss", Unavailable: "error"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
