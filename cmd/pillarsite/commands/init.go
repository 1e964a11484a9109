package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pillarsite/internal/config"
	ferrors "git.home.luguber.info/inful/pillarsite/internal/foundation/errors"
	"git.home.luguber.info/inful/pillarsite/internal/scaffold"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Dir   string `default:"." help:"Directory to scaffold into"`
	Force bool   `help:"Overwrite existing files"`
}

func (i *InitCmd) Run(g *Global, _ *CLI) error {
	if err := os.MkdirAll(i.Dir, 0o750); err != nil {
		return ferrors.FileSystemError("cannot create project directory").
			WithCause(err).
			WithContext("dir", i.Dir).
			Build()
	}

	cfgPath := filepath.Join(i.Dir, config.DefaultPath)
	if _, err := os.Stat(cfgPath); err == nil && !i.Force {
		slog.Info("Keeping existing configuration", "path", cfgPath)
	} else {
		if err := config.Init(cfgPath, i.Force); err != nil {
			return ferrors.ConfigError("cannot write configuration").
				WithCause(err).
				WithContext("path", cfgPath).
				Build()
		}
		_, _ = fmt.Fprintf(g.out(), "created %s\n", cfgPath)
	}

	res, err := scaffold.Write(scaffold.Layout{
		TemplateDir: filepath.Join(i.Dir, "templates"),
		AssetsDir:   filepath.Join(i.Dir, "assets"),
		ContentDir:  filepath.Join(i.Dir, "content"),
	}, i.Force)
	if err != nil {
		return ferrors.FileSystemError("cannot write scaffold").
			WithCause(err).
			WithContext("dir", i.Dir).
			Build()
	}
	for _, p := range res.Written {
		_, _ = fmt.Fprintf(g.out(), "created %s\n", p)
	}
	for _, p := range res.Kept {
		_, _ = fmt.Fprintf(g.out(), "kept %s\n", p)
	}
	return nil
}
