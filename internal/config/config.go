package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "totwist.db"
	DefaultLogName        = "totwist.log"
	appDirName            = "totwist"
)

// Keymap binds the terminal keys that are not user shortcuts. The
// shortcuts themselves (new task, search, sidebar, next, prev, view) live
// in the settings record.
type Keymap struct {
	Quit         string `toml:"quit"`
	Toggle       string `toml:"toggle"`
	Select       string `toml:"select"`
	SelectAll    string `toml:"select_all"`
	ClearSelect  string `toml:"clear_selection"`
	Bulk         string `toml:"bulk"`
	Edit         string `toml:"edit"`
	Delete       string `toml:"delete"`
	Restore      string `toml:"restore"`
	Subtask      string `toml:"subtask"`
	Confirm      string `toml:"confirm"`
	Cancel       string `toml:"cancel"`
	Settings     string `toml:"settings"`
	PriorityUp   string `toml:"priority_up"`
	PriorityDown string `toml:"priority_down"`
	CalendarMode string `toml:"calendar_mode"`
	CalendarPrev string `toml:"calendar_prev"`
	CalendarNext string `toml:"calendar_next"`
}

type Config struct {
	DBPath       string `toml:"db_path"`
	LogPath      string `toml:"log_path"`
	LogLevel     string `toml:"log_level"`
	DefaultRoute string `toml:"default_route"`
	DefaultView  string `toml:"default_view"`
	Keys         Keymap `toml:"keys"`
}

// ResolveConfigPath returns $XDG_CONFIG_HOME/totwist/config.toml, falling
// back to ~/.config and finally to the working directory.
func ResolveConfigPath() string {
	return filepath.Join(configDir(), DefaultConfigFileName)
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appDirName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", appDirName)
	}
	return "."
}

// LoadOrCreate reads the config at path. On first run the defaults are
// written there. Relative db and log paths are resolved against the
// config's directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg.resolve(path), err
		}
		return cfg.resolve(path), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg.resolve(path), err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg.resolve(path), fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg.resolve(path), nil
}

func (c *Config) fillDefaults() {
	def := defaultConfig()
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.LogPath == "" {
		c.LogPath = def.LogPath
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.DefaultRoute == "" {
		c.DefaultRoute = def.DefaultRoute
	}
	if c.DefaultView == "" {
		c.DefaultView = def.DefaultView
	}
	keys := []struct {
		got  *string
		want string
	}{
		{&c.Keys.Quit, def.Keys.Quit},
		{&c.Keys.Toggle, def.Keys.Toggle},
		{&c.Keys.Select, def.Keys.Select},
		{&c.Keys.SelectAll, def.Keys.SelectAll},
		{&c.Keys.ClearSelect, def.Keys.ClearSelect},
		{&c.Keys.Bulk, def.Keys.Bulk},
		{&c.Keys.Edit, def.Keys.Edit},
		{&c.Keys.Delete, def.Keys.Delete},
		{&c.Keys.Restore, def.Keys.Restore},
		{&c.Keys.Subtask, def.Keys.Subtask},
		{&c.Keys.Confirm, def.Keys.Confirm},
		{&c.Keys.Cancel, def.Keys.Cancel},
		{&c.Keys.Settings, def.Keys.Settings},
		{&c.Keys.PriorityUp, def.Keys.PriorityUp},
		{&c.Keys.PriorityDown, def.Keys.PriorityDown},
		{&c.Keys.CalendarMode, def.Keys.CalendarMode},
		{&c.Keys.CalendarPrev, def.Keys.CalendarPrev},
		{&c.Keys.CalendarNext, def.Keys.CalendarNext},
	}
	for _, k := range keys {
		if *k.got == "" {
			*k.got = k.want
		}
	}
}

func (c Config) resolve(path string) Config {
	dir := filepath.Dir(path)
	c.DBPath = resolvePath(dir, c.DBPath)
	c.LogPath = resolvePath(dir, c.LogPath)
	return c
}

func resolvePath(dir, p string) string {
	if p == "" || strings.HasPrefix(p, "file:") || filepath.IsAbs(p) {
		return p
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return filepath.Join(dir, p)
}

// SlogLevel maps log_level to a slog level. Unknown names mean info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:       DefaultDBName,
		LogPath:      DefaultLogName,
		LogLevel:     "info",
		DefaultRoute: "today",
		DefaultView:  "list",
		Keys: Keymap{
			Quit:         "q",
			Toggle:       " ",
			Select:       "x",
			SelectAll:    "A",
			ClearSelect:  "c",
			Bulk:         "b",
			Edit:         "e",
			Delete:       "d",
			Restore:      "r",
			Subtask:      "s",
			Confirm:      "enter",
			Cancel:       "esc",
			Settings:     ",",
			PriorityUp:   "+",
			PriorityDown: "-",
			CalendarMode: "m",
			CalendarPrev: "[",
			CalendarNext: "]",
		},
	}
}
