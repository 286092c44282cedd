package settings

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totwist/internal/storage"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestLoadFirstRunYieldsDefaults(t *testing.T) {
	got := Load(context.Background(), storage.NewMemory(), discard())
	assert.Equal(t, Default(), got)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	blobs := storage.NewMemory()
	ctx := context.Background()
	s := Default()
	s.Theme = "mandarina"
	s.SidebarOpen = false
	s.StartOfWeek = int(time.Sunday)
	s.SoonWindowDays = 14
	s.SmartParse = false
	s.Shortcuts[ActionNewTask] = "a"

	Save(ctx, blobs, s, discard())
	assert.Equal(t, s, Load(ctx, blobs, discard()))
}

func TestLoadFillsMissingFields(t *testing.T) {
	blobs := storage.NewMemory()
	ctx := context.Background()
	require.NoError(t, blobs.Put(ctx, storage.SettingsKey, []byte(`{"theme":"verdelima","shortcuts":{"search":"s"}}`)))

	got := Load(ctx, blobs, discard())
	assert.Equal(t, "verdelima", got.Theme)
	assert.True(t, got.SmartParse)
	assert.True(t, got.SidebarOpen)
	assert.Equal(t, DefaultSoonWindow, got.SoonWindowDays)
	assert.Equal(t, "s", got.Shortcuts[ActionSearch])
	assert.Equal(t, "n", got.Shortcuts[ActionNewTask])
}

func TestLoadCorruptYieldsDefaults(t *testing.T) {
	blobs := storage.NewMemory()
	ctx := context.Background()
	require.NoError(t, blobs.Put(ctx, storage.SettingsKey, []byte(`{"theme":`)))

	assert.Equal(t, Default(), Load(ctx, blobs, discard()))
}

func TestNormalizeClampsWindow(t *testing.T) {
	cases := map[int]int{0: 7, -3: 1, 1: 1, 45: 45, 90: 90, 365: 90}
	for in, want := range cases {
		s := Default()
		s.SoonWindowDays = in
		assert.Equal(t, want, s.Normalize().SoonWindowDays, "window %d", in)
	}
}

func TestNormalizeRejectsMultiCharShortcut(t *testing.T) {
	s := Default()
	s.Shortcuts[ActionSearch] = "ctrl+f"
	s.StartOfWeek = 4

	n := s.Normalize()
	assert.Equal(t, "/", n.Shortcuts[ActionSearch])
	assert.Equal(t, time.Monday, n.WeekStart())
}

func TestNormalizeRejectsRouteDigits(t *testing.T) {
	s := Default()
	s.Shortcuts[ActionNewTask] = "3"
	s.Shortcuts[ActionNext] = " "
	s.Shortcuts[ActionPrev] = "ñ"

	n := s.Normalize()
	assert.Equal(t, "n", n.Shortcuts[ActionNewTask])
	assert.Equal(t, "j", n.Shortcuts[ActionNext])
	assert.Equal(t, "ñ", n.Shortcuts[ActionPrev])

	assert.True(t, ValidKey("x"))
	assert.False(t, ValidKey("1"))
	assert.False(t, ValidKey(""))
	assert.False(t, ValidKey("ab"))
}

func TestThemeFallback(t *testing.T) {
	s := Default()
	s.Theme = "inexistente"
	assert.Equal(t, LookupTheme(DefaultTheme), s.Palette())
	assert.Equal(t, "#ff6b9e", LookupTheme("frambuesa").Primary)
	assert.Equal(t, []string{"frambuesa", "lavanda", "lunapiedra", "mandarina", "verdelima"}, ThemeNames())
}

func TestActionFor(t *testing.T) {
	s := Default()
	action, ok := s.ActionFor("/")
	require.True(t, ok)
	assert.Equal(t, ActionSearch, action)

	_, ok = s.ActionFor("z")
	assert.False(t, ok)
}
