package cli

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Shaykeh/ShayQuickNote/internal/config"
	"github.com/Shaykeh/ShayQuickNote/pkg/prefs"
)

func testApp(t *testing.T, dir string) *app {
	t.Helper()
	return &app{
		cfg: config.Config{
			DataDir:  dir,
			DBFile:   filepath.Join(dir, "quicknote.db"),
			PrefFile: filepath.Join(dir, "prefs.db"),
		},
		log: zerolog.Nop(),
	}
}

func TestOpenReadsThemeAtStartup(t *testing.T) {
	dir := t.TempDir()

	a := testApp(t, dir)
	if err := a.open(); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if a.theme != prefs.ThemeSystem {
		t.Errorf("Fresh startup theme = %q, want %q", a.theme, prefs.ThemeSystem)
	}
	if err := a.prefs.SetTheme(prefs.ThemeDark); err != nil {
		t.Fatalf("SetTheme failed: %v", err)
	}
	a.close()

	a = testApp(t, dir)
	if err := a.open(); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer a.close()
	if a.theme != prefs.ThemeDark {
		t.Errorf("Startup theme after reopen = %q, want %q", a.theme, prefs.ThemeDark)
	}
}
