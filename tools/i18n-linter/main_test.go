// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFlattenYAML(t *testing.T) {
	keys := map[string]struct{}{}
	flattenYAML("", map[string]any{
		"vm":     map[string]any{"none": "x", "list": []any{"a"}},
		"flat.k": "v",
	}, keys)
	for _, want := range []string{"vm.none", "vm.list[0]", "flat.k"} {
		if _, ok := keys[want]; !ok {
			t.Fatalf("expected %q in %v", want, keys)
		}
	}
}

func TestLintFindsUndefinedMissingAndOrphaned(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cmd", "a.go"), `package cmd
func f() {
	_ = i18n.T("vm.none")
	_ = i18n.T("vm.created", name, id)
	_ = i18n.T("host.v2_missing")
	show("Something the operator reads")
	logging.Infof("debug output is not translated")
}`)
	writeFile(t, filepath.Join(root, "_examples", "x.go"), `package x
func g() { _ = i18n.T("ignored.key") }`)
	writeFile(t, filepath.Join(root, localesDir, primaryLocale), `"vm.none": "No virtual machines."
"vm.created": "Created %s (id %d)"
"vm.unused": "Never shown"
`)
	writeFile(t, filepath.Join(root, localesDir, "active.de.yaml"), `"vm.none": "Keine."
"vm.unused": "Nie"
`)

	r, err := lint(root)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if !reflect.DeepEqual(r.Undefined, []string{"host.v2_missing"}) {
		t.Fatalf("unexpected undefined keys %v", r.Undefined)
	}
	if !reflect.DeepEqual(r.Orphaned, []string{"vm.unused"}) {
		t.Fatalf("unexpected orphaned keys %v", r.Orphaned)
	}
	if !reflect.DeepEqual(r.Missing["active.de.yaml"], []string{"vm.created"}) {
		t.Fatalf("unexpected missing keys %v", r.Missing)
	}
	if _, ok := r.Used["ignored.key"]; ok {
		t.Fatalf("underscore directories must not be scanned")
	}
	if _, ok := r.Untranslated["Something the operator reads"]; !ok {
		t.Fatalf("expected literal to be flagged, got %v", r.Untranslated)
	}
	if _, ok := r.Untranslated["debug output is not translated"]; ok {
		t.Fatalf("log calls must not be flagged")
	}
	if !r.Failed() {
		t.Fatalf("undefined and missing keys must fail")
	}

	var out bytes.Buffer
	printReport(&out, r)
	if !strings.Contains(out.String(), "host.v2_missing (") || !strings.Contains(out.String(), "FAIL") {
		t.Fatalf("unexpected report:\n%s", out.String())
	}
}

func TestRepositoryLocalesAreConsistent(t *testing.T) {
	r, err := lint(filepath.Join("..", ".."))
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(r.Undefined) > 0 {
		t.Fatalf("keys used but not defined: %v", r.Undefined)
	}
	for file, keys := range r.Missing {
		if len(keys) > 0 {
			t.Fatalf("%s lacks %v", file, keys)
		}
	}
}
