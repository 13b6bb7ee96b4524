package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("fleetsim %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestRunThenReport(t *testing.T) {
	db := filepath.Join(t.TempDir(), "fleet.db")

	out := execute(t, "run", "--ticks", "1440", "--db", db, "--ships", "2", "--crew", "16", "--workers", "2")
	if !strings.Contains(out, "1,440 ticks") {
		t.Errorf("run output = %q", out)
	}

	out = execute(t, "report", "--db", db, "--limit", "5")
	for _, want := range []string{"ships", "seats", "compliance tickets", "ship.captain"} {
		if !strings.Contains(strings.ToLower(out), want) {
			t.Errorf("report is missing %q:\n%s", want, out)
		}
	}
}

func TestDoctrinesBuiltIn(t *testing.T) {
	out := execute(t, "doctrines")
	for _, want := range []string{"admiralty", "free_traders", "crusade"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctrines output is missing %s:\n%s", want, out)
		}
	}
}

func TestDoctrinesRejectsInvalidCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	bad := "doctrines:\n  - name: broken\n    window:\n      law_min: 1\n      law_max: -1\n      good_min: -1\n      good_max: 1\n      integrity_min: -1\n      integrity_max: 1\n"
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"doctrines", "--catalog", path})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "min above max") {
		t.Fatalf("err = %v, want window validation error", err)
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "--ticks", "1", "--ships", "0", "--db", filepath.Join(t.TempDir(), "x.db")})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "ships must be positive") {
		t.Fatalf("err = %v", err)
	}
}
