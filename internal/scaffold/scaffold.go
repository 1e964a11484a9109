// Package scaffold holds the starter templates, assets and sample content
// written by `pillarsite init`.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed all:files
var files embed.FS

// Layout maps each scaffold tree onto a target directory.
type Layout struct {
	TemplateDir string
	AssetsDir   string
	ContentDir  string
}

// Result lists what Write did, by destination path.
type Result struct {
	Written []string
	Kept    []string
}

// Write copies the embedded scaffold into the layout. Existing files are
// kept unless force is set.
func Write(layout Layout, force bool) (Result, error) {
	roots := map[string]string{
		"templates": layout.TemplateDir,
		"assets":    layout.AssetsDir,
		"content":   layout.ContentDir,
	}

	var res Result
	err := fs.WalkDir(files, "files", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel := strings.TrimPrefix(p, "files/")
		top, rest, _ := strings.Cut(rel, "/")
		base, ok := roots[top]
		if !ok || base == "" {
			return nil
		}
		dest := filepath.Join(base, filepath.FromSlash(rest))

		if _, statErr := os.Stat(dest); statErr == nil && !force {
			res.Kept = append(res.Kept, dest)
			return nil
		}
		data, err := files.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
		}
		if err := os.WriteFile(dest, data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", dest, err)
		}
		res.Written = append(res.Written, dest)
		return nil
	})
	return res, err
}

// Template returns an embedded default page template by file name.
func Template(name string) ([]byte, error) {
	return files.ReadFile(path.Join("files", "templates", name))
}
