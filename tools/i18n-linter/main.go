// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks that every translation key used in the Go sources
// exists in the primary locale, that every other locale carries the same
// keys and that the primary locale has no orphaned entries.
//
// Usage:
//
//	go run ./tools/i18n-linter [root]
package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "active.en.yaml"
)

// Location stores the file and line number of a finding.
type Location struct {
	Filepath string
	Line     int
}

// report collects everything the linter found.
type report struct {
	Used      map[string]Location
	Primary   map[string]struct{}
	Undefined []string
	Orphaned  []string
	// Missing maps a secondary locale file to the keys it lacks.
	Missing      map[string][]string
	Untranslated map[string][]Location
}

// Failed reports whether the findings should fail CI. Orphaned keys and
// untranslated literals only warn.
func (r report) Failed() bool {
	if len(r.Undefined) > 0 {
		return true
	}
	for _, keys := range r.Missing {
		if len(keys) > 0 {
			return true
		}
	}
	return false
}

func main() {
	root := "."
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	r, err := lint(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "i18n-linter: %v\n", err)
		os.Exit(2)
	}
	printReport(os.Stdout, r)
	if r.Failed() {
		os.Exit(1)
	}
}

func lint(root string) (report, error) {
	r := report{Missing: map[string][]string{}}
	var err error

	if r.Used, err = findUsedKeys(root); err != nil {
		return r, fmt.Errorf("scan sources: %w", err)
	}
	dir := filepath.Join(root, localesDir)
	if r.Primary, err = loadKeysFromLocale(filepath.Join(dir, primaryLocale)); err != nil {
		return r, fmt.Errorf("load %s: %w", primaryLocale, err)
	}

	for key := range r.Used {
		if _, ok := r.Primary[key]; !ok {
			r.Undefined = append(r.Undefined, key)
		}
	}
	for key := range r.Primary {
		if _, ok := r.Used[key]; !ok {
			r.Orphaned = append(r.Orphaned, key)
		}
	}
	sort.Strings(r.Undefined)
	sort.Strings(r.Orphaned)

	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return r, err
	}
	for _, file := range files {
		if filepath.Base(file) == primaryLocale {
			continue
		}
		keys, err := loadKeysFromLocale(file)
		if err != nil {
			return r, fmt.Errorf("load %s: %w", file, err)
		}
		var missing []string
		for key := range r.Primary {
			if _, ok := keys[key]; !ok {
				missing = append(missing, key)
			}
		}
		sort.Strings(missing)
		r.Missing[filepath.Base(file)] = missing
	}

	if r.Untranslated, err = findUntranslatedStrings(root, r.Primary); err != nil {
		return r, fmt.Errorf("scan literals: %w", err)
	}
	return r, nil
}

func printReport(w io.Writer, r report) {
	fmt.Fprintf(w, "%d keys used in code, %d keys in %s\n\n", len(r.Used), len(r.Primary), primaryLocale)

	section := func(title string, items []string, describe func(string) string) {
		fmt.Fprintf(w, "--- %s ---\n", title)
		if len(items) == 0 {
			fmt.Fprintln(w, "  none")
		}
		for _, it := range items {
			fmt.Fprintf(w, "  - %s\n", describe(it))
		}
		fmt.Fprintln(w)
	}

	section("Undefined keys (used in code, missing from "+primaryLocale+")", r.Undefined, func(k string) string {
		loc := r.Used[k]
		return fmt.Sprintf("%s (%s:%d)", k, loc.Filepath, loc.Line)
	})
	section("Orphaned keys (in "+primaryLocale+", unused)", r.Orphaned, func(k string) string { return k })

	locales := make([]string, 0, len(r.Missing))
	for f := range r.Missing {
		locales = append(locales, f)
	}
	sort.Strings(locales)
	for _, f := range locales {
		section("Missing keys in "+f, r.Missing[f], func(k string) string { return k })
	}

	literals := make([]string, 0, len(r.Untranslated))
	for lit := range r.Untranslated {
		literals = append(literals, lit)
	}
	sort.Strings(literals)
	section("Possibly untranslated strings", literals, func(lit string) string {
		loc := r.Untranslated[lit][0]
		return fmt.Sprintf("%q (%s:%d)", lit, loc.Filepath, loc.Line)
	})

	if r.Failed() {
		fmt.Fprintln(w, "FAIL: translation files are inconsistent")
	} else {
		fmt.Fprintln(w, "OK")
	}
}

// skipDir reports directories the scan never enters: hidden and
// underscore-prefixed trees (ignored by the go tool as well) and tools/.
func skipDir(name string) bool {
	return name == "tools" || name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// walkSources calls fn for every non-test .go file below root.
func walkSources(root string, fn func(path string, content string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return fn(path, string(content))
	})
}

var usedKeyRe = regexp.MustCompile(`\bT\("([a-z0-9_]+(?:\.[a-z0-9_]+)+)"`)

// findUsedKeys returns every key passed to T() with the first place it
// appears.
func findUsedKeys(root string) (map[string]Location, error) {
	keys := make(map[string]Location)
	err := walkSources(root, func(path, content string) error {
		for i, line := range strings.Split(content, "\n") {
			for _, m := range usedKeyRe.FindAllStringSubmatch(line, -1) {
				if _, seen := keys[m[1]]; !seen {
					keys[m[1]] = Location{Filepath: path, Line: i + 1}
				}
			}
		}
		return nil
	})
	return keys, err
}

var (
	callLiteralRe = regexp.MustCompile(`([a-zA-Z0-9_]+\.)?([a-zA-Z0-9_]+)\("([^"]+)"`)
	keyLikeRe     = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)+$`)
	allCapsRe     = regexp.MustCompile(`^[A-Z0-9_]+$`)
	formatOnlyRe  = regexp.MustCompile(`^[\s%.,:;()#\d\w-]*%[\s\w-]*$`)
)

// ignoredCalls never produce user-facing text, or produce log lines that
// stay English.
var ignoredCalls = map[string]struct{}{
	"Debugf": {}, "Infof": {}, "Warnf": {}, "Errorf": {},
	"Getenv": {}, "Setenv": {}, "MustCompile": {}, "Parse": {},
	"Get": {}, "Post": {}, "Put": {}, "Delete": {}, "Route": {}, "Patch": {},
	"URLParam": {}, "Set": {}, "GetString": {}, "GetBool": {}, "GetInt": {},
	"GetDuration": {}, "GetFloat64": {}, "Changed": {}, "Where": {}, "Exec": {},
	"Join": {}, "Format": {}, "Sprintf": {}, "Fprintf": {}, "Sprint": {},
}

var sqlPrefixes = []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "TRUNCATE ", "PRAGMA ", "CREATE ", "ALTER ", "DROP ", "VACUUM", "ANALYZE", "OPTIMIZE "}

// findUntranslatedStrings flags string literals passed to calls that look
// like user-facing text.
func findUntranslatedStrings(root string, known map[string]struct{}) (map[string][]Location, error) {
	out := make(map[string][]Location)
	err := walkSources(root, func(path, content string) error {
		for i, line := range strings.Split(content, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "//") {
				continue
			}
			for _, m := range callLiteralRe.FindAllStringSubmatch(line, -1) {
				fn, lit := m[2], m[3]
				if _, skip := ignoredCalls[fn]; skip {
					continue
				}
				if looksLikeCode(lit, known) {
					continue
				}
				out[lit] = append(out[lit], Location{Filepath: path, Line: i + 1})
			}
		}
		return nil
	})
	return out, err
}

func looksLikeCode(lit string, known map[string]struct{}) bool {
	if _, ok := known[lit]; ok {
		return true
	}
	if len(lit) < 4 || keyLikeRe.MatchString(lit) || allCapsRe.MatchString(lit) {
		return true
	}
	if strings.HasPrefix(lit, "file:") || strings.HasPrefix(lit, "http") || strings.HasPrefix(lit, "/") || strings.HasPrefix(lit, "2006-") {
		return true
	}
	upper := strings.ToUpper(lit)
	for _, p := range sqlPrefixes {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	return formatOnlyRe.MatchString(lit) && !strings.Contains(lit, " ")
}

// loadKeysFromLocale reads a locale file and returns its keys, flattening
// nested maps with dots.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

func flattenYAML(prefix string, node any, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]any:
		for k, val := range v {
			next := k
			if prefix != "" {
				next = prefix + "." + k
			}
			flattenYAML(next, val, keys)
		}
	case []any:
		for i, val := range v {
			flattenYAML(fmt.Sprintf("%s[%d]", prefix, i), val, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}
