package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// setupCLI points the root command at a fresh config and content dir and restores globals afterwards.
func setupCLI(t *testing.T, content map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	contentDir := filepath.Join(dir, "content")
	for name, body := range content {
		path := filepath.Join(contentDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	cfgPath := filepath.Join(dir, "similar.yaml")
	cfg := "database:\n  driver: memory\ncontent:\n  dir: " + contentDir + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}

	oldEnv, oldConfig := envName, configPath
	envName, configPath = "test", cfgPath
	t.Cleanup(func() {
		envName, configPath = oldEnv, oldConfig
		resetQueryFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return contentDir
}

func resetQueryFlags() {
	queryFields, queryThreshold, queryLang, queryNoCache, queryJSON = nil, 0, "", false, false
	for _, name := range []string{"fields", "threshold", "lang", "no-cache", "json"} {
		queryCmd.Flags().Lookup(name).Changed = false
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

var blogContent = map[string]string{
	"blog/a.yaml": "kind: page\nid: blog/a\nfields:\n  tags: [design, go]\n  category: tech\n",
	"blog/b.yaml": "kind: page\nid: blog/b\nfields:\n  tags: [design]\n  category: tech\n",
	"blog/c.yaml": "kind: page\nid: blog/c\nfields:\n  tags: [design, go, rust]\n  category: food\n",
	"blog/d.yaml": "kind: page\nid: blog/d\nfields:\n  tags: [cooking]\n",
}

// withBrokenFile returns content plus one file the importer rejects.
func withBrokenFile(content map[string]string) map[string]string {
	out := make(map[string]string, len(content)+1)
	for name, body := range content {
		out[name] = body
	}
	out["blog/broken.yaml"] = "kind: widget\nid: blog/broken\n"
	return out
}

// appendConfig adds top-level sections to the config written by setupCLI.
func appendConfig(t *testing.T, yaml string) {
	t.Helper()
	f, err := os.OpenFile(configPath, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(yaml); err != nil {
		t.Fatal(err)
	}
}
