// Package settings holds the user preferences record that is persisted next
// to the task collection.
package settings

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"slices"
	"time"
	"unicode"

	"totwist/internal/storage"
)

const (
	DefaultTheme      = "lavanda"
	DefaultSoonWindow = 7
	MinSoonWindow     = 1
	MaxSoonWindow     = 90
)

// Shortcut action names.
const (
	ActionNewTask       = "newTask"
	ActionSearch        = "search"
	ActionToggleSidebar = "toggleSidebar"
	ActionNext          = "next"
	ActionPrev          = "prev"
	ActionCycleView     = "cycleView"
)

// Theme is one entry of the fixed colour palette.
type Theme struct {
	Background string
	Card       string
	Primary    string
	Accent     string
}

var themes = map[string]Theme{
	"lavanda":    {Background: "#f5f1ff", Card: "#ffffff", Primary: "#7c75f2", Accent: "#cabffb"},
	"frambuesa":  {Background: "#fff1f5", Card: "#ffffff", Primary: "#ff6b9e", Accent: "#ffd0e1"},
	"mandarina":  {Background: "#fff7ed", Card: "#ffffff", Primary: "#ff8a3d", Accent: "#ffe1c7"},
	"verdelima":  {Background: "#f3fff4", Card: "#ffffff", Primary: "#3fbf6f", Accent: "#c9f2d9"},
	"lunapiedra": {Background: "#eef2ff", Card: "#ffffff", Primary: "#647acb", Accent: "#dbe4ff"},
}

// ThemeNames lists the palette keys in a stable order.
func ThemeNames() []string {
	return slices.Sorted(maps.Keys(themes))
}

// LookupTheme returns the named theme, or the default one for unknown names.
func LookupTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[DefaultTheme]
}

type Settings struct {
	Theme          string            `json:"theme"`
	SidebarOpen    bool              `json:"sidebarOpen"`
	StartOfWeek    int               `json:"startOfWeek"`
	TimeFormat     int               `json:"timeFormat"`
	DateFormat     string            `json:"dateFormat"`
	SoonWindowDays int               `json:"soonWindowDays"`
	SmartParse     bool              `json:"smartParse"`
	Shortcuts      map[string]string `json:"shortcuts"`
}

func Default() Settings {
	return Settings{
		Theme:          DefaultTheme,
		SidebarOpen:    true,
		StartOfWeek:    int(time.Monday),
		TimeFormat:     24,
		DateFormat:     "DD/MM/YYYY",
		SoonWindowDays: DefaultSoonWindow,
		SmartParse:     true,
		Shortcuts: map[string]string{
			ActionNewTask:       "n",
			ActionSearch:        "/",
			ActionToggleSidebar: "h",
			ActionNext:          "j",
			ActionPrev:          "k",
			ActionCycleView:     "v",
		},
	}
}

// Normalize clamps out-of-range values and fills missing shortcuts.
func (s Settings) Normalize() Settings {
	switch {
	case s.SoonWindowDays == 0:
		s.SoonWindowDays = DefaultSoonWindow
	case s.SoonWindowDays < MinSoonWindow:
		s.SoonWindowDays = MinSoonWindow
	case s.SoonWindowDays > MaxSoonWindow:
		s.SoonWindowDays = MaxSoonWindow
	}
	if s.StartOfWeek != int(time.Sunday) {
		s.StartOfWeek = int(time.Monday)
	}
	if s.TimeFormat != 12 {
		s.TimeFormat = 24
	}
	if s.DateFormat == "" {
		s.DateFormat = "DD/MM/YYYY"
	}
	keys := make(map[string]string, len(s.Shortcuts))
	for action, key := range Default().Shortcuts {
		keys[action] = key
	}
	for action, key := range s.Shortcuts {
		if ValidKey(key) {
			keys[action] = key
		}
	}
	s.Shortcuts = keys
	return s
}

// Actions lists the shortcut action names in a stable order.
func Actions() []string {
	return slices.Sorted(maps.Keys(Default().Shortcuts))
}

// ValidKey reports whether key can be bound to a shortcut: a single
// character that is not a digit, since digits pick routes.
func ValidKey(key string) bool {
	r := []rune(key)
	return len(r) == 1 && !unicode.IsDigit(r[0]) && !unicode.IsSpace(r[0])
}

func (s Settings) WeekStart() time.Weekday {
	return time.Weekday(s.StartOfWeek)
}

func (s Settings) Palette() Theme {
	return LookupTheme(s.Theme)
}

// ActionFor returns the action bound to key, if any.
func (s Settings) ActionFor(key string) (string, bool) {
	for _, action := range slices.Sorted(maps.Keys(s.Shortcuts)) {
		if s.Shortcuts[action] == key {
			return action, true
		}
	}
	return "", false
}

// UnmarshalJSON decodes on top of Default so fields missing from older
// blobs keep their default values.
func (s *Settings) UnmarshalJSON(b []byte) error {
	type plain Settings
	p := plain(Default())
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*s = Settings(p)
	return nil
}

// Load reads the settings blob; missing or unreadable blobs yield Default.
func Load(ctx context.Context, blobs storage.Blobs, logger *slog.Logger) Settings {
	return storage.Load(ctx, blobs, storage.SettingsKey, Default(), logger).Normalize()
}

func Save(ctx context.Context, blobs storage.Blobs, s Settings, logger *slog.Logger) {
	storage.Save(ctx, blobs, storage.SettingsKey, s, logger)
}
