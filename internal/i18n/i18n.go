// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// Package i18n provides localized strings for the Stratus CLI and TUI.
// Translations live in embedded YAML files under locales/ and are loaded
// into a go-i18n bundle.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

var (
	mu        sync.RWMutex
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	current   string
)

// displayNames maps locale tags to the name shown in language pickers.
var displayNames = map[string]string{
	"en": "English",
	"de": "Deutsch",
}

// Init loads every embedded locale file and activates lang. Unknown
// languages fall back to English.
func Init(lang string) {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile(path.Join("locales", f.Name()))
		if err != nil {
			continue
		}
		_, _ = b.ParseMessageFileBytes(data, f.Name())
	}

	if lang == "" {
		lang = "en"
	}
	mu.Lock()
	bundle = b
	localizer = i18n.NewLocalizer(b, lang, "en")
	current = lang
	mu.Unlock()
}

// SetLang changes the active language.
func SetLang(lang string) {
	Init(lang)
}

// GetLang returns the active language tag.
func GetLang() string {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// GetAvailableLocales returns tag -> display name for every embedded locale.
func GetAvailableLocales() map[string]string {
	out := make(map[string]string)
	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		name := f.Name()
		// active.en.yaml -> en
		tag := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".yaml")
		if display, ok := displayNames[tag]; ok {
			out[tag] = display
		} else {
			out[tag] = tag
		}
	}
	return out
}

// T translates messageID. Extra args are applied fmt-style to the
// translated template. A missing ID is returned as-is.
func T(messageID string, args ...any) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()
	if l == nil {
		Init("en")
		mu.RLock()
		l = localizer
		mu.RUnlock()
	}

	msg, err := l.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		msg = messageID
	}
	if len(args) > 0 && strings.Contains(msg, "%") {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
