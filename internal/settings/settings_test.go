package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/verte-zerg/typer/internal/model"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stop_on_error: true\ntheme: carbon\n"), 0o644))
	s, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.StopOnError = true
	want.Theme = "carbon"
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadNormalizesInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	doc := "caret_style: zigzag\ntheme: neon\nsound_volume: 4\ntext_category: poems\ncapitalization: shouting\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadCorruptFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: [unterminated\n"), 0o644))
	s, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), s)

	st := Open(path, zaptest.NewLogger(t))
	assert.Equal(t, Default(), st.Get())
}

func TestStoreUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	st := Open(path, zaptest.NewLogger(t))
	got := st.Update(func(s *Settings) {
		s.ForgiveErrors = true
		s.TextCategory = model.CategoryQuotes
		s.CaretStyle = NextCaret(s.CaretStyle)
	})
	assert.Equal(t, CaretBlock, got.CaretStyle)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, got, reloaded)
}

func TestCycles(t *testing.T) {
	assert.Equal(t, CaretLine, NextCaret(CaretOff))
	assert.Equal(t, CaretLine, NextCaret("bogus"))
	assert.Equal(t, "serika", NextTheme("midnight"))
	assert.Equal(t, "midnight", NextTheme("cyberpunk"))
}
