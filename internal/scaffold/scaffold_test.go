package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	root := t.TempDir()
	layout := Layout{
		TemplateDir: filepath.Join(root, "templates"),
		AssetsDir:   filepath.Join(root, "assets"),
		ContentDir:  filepath.Join(root, "content"),
	}

	res, err := Write(layout, false)
	require.NoError(t, err)
	require.Empty(t, res.Kept)

	for _, p := range []string{
		"templates/base.html",
		"templates/home.html",
		"templates/topic.html",
		"assets/css/style.css",
		"assets/js/main.js",
		"content/getting-started/_meta.json",
		"content/getting-started/welcome.md",
		"content/notes/first-note.md",
	} {
		require.FileExists(t, filepath.Join(root, filepath.FromSlash(p)))
	}

	custom := filepath.Join(layout.TemplateDir, "base.html")
	require.NoError(t, os.WriteFile(custom, []byte("mine"), 0o600))

	res, err = Write(layout, false)
	require.NoError(t, err)
	require.Empty(t, res.Written)
	data, err := os.ReadFile(custom)
	require.NoError(t, err)
	require.Equal(t, "mine", string(data))

	_, err = Write(layout, true)
	require.NoError(t, err)
	data, err = os.ReadFile(custom)
	require.NoError(t, err)
	require.Contains(t, string(data), "<!DOCTYPE html>")
}

func TestTemplate(t *testing.T) {
	data, err := Template("topic.html")
	require.NoError(t, err)
	require.Contains(t, string(data), "{{.Sidebar}}")

	_, err = Template("absent.html")
	require.Error(t, err)
}
