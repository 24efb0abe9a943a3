package cli

import (
	"strings"
	"testing"
)

func TestListCmd(t *testing.T) {
	setupCLI(t, blogContent)

	out, err := execute(t, "list", "page")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out != "blog/a\nblog/b\nblog/c\nblog/d\n" {
		t.Errorf("unexpected output %q", out)
	}

	out, err = execute(t, "list", "user")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out != "No user items.\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestListCmd_UnknownKind(t *testing.T) {
	setupCLI(t, nil)

	if _, err := execute(t, "list", "widget"); err == nil || !strings.Contains(err.Error(), "widget") {
		t.Errorf("expected unknown kind error, got %v", err)
	}
}
