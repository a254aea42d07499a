package styles_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotstow/pkg/ui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedStyles(t *testing.T) {
	for _, name := range []string{"Header", "Package", "Success", "Warning", "Error", "Muted", "FilePath", "Bold"} {
		t.Run(name, func(t *testing.T) {
			_, ok := styles.StyleRegistry[name]
			assert.True(t, ok, "style %s should be registered", name)
		})
	}
}

func TestGetStyle_Unknown(t *testing.T) {
	assert.Equal(t, lipgloss.NewStyle(), styles.GetStyle("NoSuchStyle"))
	assert.Equal(t, lipgloss.NewStyle(), styles.GetStyle(""))
}

func TestGetStyle_Renders(t *testing.T) {
	rendered := styles.GetStyle("Success").Render("done")
	assert.Contains(t, rendered, "done")
}

func TestLoadStylesFromData(t *testing.T) {
	saved := styles.StyleRegistry
	t.Cleanup(func() { styles.StyleRegistry = saved })

	data := []byte(`
colors:
  accent:
    light: "#000000"
    dark: "#FFFFFF"
styles:
  Accent:
    bold: true
    foreground: accent
`)
	require.NoError(t, styles.LoadStylesFromData(data))
	require.Len(t, styles.StyleRegistry, 1)
	assert.True(t, styles.GetStyle("Accent").GetBold())
}

func TestLoadStylesFromData_Invalid(t *testing.T) {
	saved := styles.StyleRegistry
	t.Cleanup(func() { styles.StyleRegistry = saved })

	err := styles.LoadStylesFromData([]byte("styles: [unclosed"))
	require.Error(t, err)
	assert.Equal(t, saved, styles.StyleRegistry)
}

func TestLoadStyles_File(t *testing.T) {
	saved := styles.StyleRegistry
	t.Cleanup(func() { styles.StyleRegistry = saved })

	path := filepath.Join(t.TempDir(), "styles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("styles:\n  Only:\n    italic: true\n"), 0644))

	require.NoError(t, styles.LoadStyles(path))
	assert.True(t, styles.GetStyle("Only").GetItalic())

	assert.Error(t, styles.LoadStyles(filepath.Join(t.TempDir(), "missing.yaml")))
}
