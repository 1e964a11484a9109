// Package gitstamp derives creation and modification times of files from
// the history of the git repository that contains them.
package gitstamp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNoHistory is returned when a file is outside any repository or has no commits.
var ErrNoHistory = errors.New("no git history for file")

// Provider looks up file timestamps. Repositories are opened once and
// lookups against the same repository are serialized.
type Provider struct {
	mu     sync.Mutex
	byDir  map[string]*repository
	byRoot map[string]*repository
}

type repository struct {
	mu   sync.Mutex
	repo *git.Repository
	root string
}

// New returns an empty provider.
func New() *Provider {
	return &Provider{
		byDir:  make(map[string]*repository),
		byRoot: make(map[string]*repository),
	}
}

// Times returns the author time of the first and the latest commit that
// touched path.
func (p *Provider) Times(ctx context.Context, path string) (created, modified time.Time, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("resolve %s: %w", path, err)
	}

	r, err := p.open(filepath.Dir(abs))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	rel, err := filepath.Rel(r.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return time.Time{}, time.Time{}, ErrNoHistory
	}
	rel = filepath.ToSlash(rel)

	r.mu.Lock()
	defer r.mu.Unlock()

	iter, err := r.repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s: %w", ErrNoHistory, rel, err)
	}
	defer iter.Close()

	err = iter.ForEach(func(c *object.Commit) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		when := c.Author.When
		if created.IsZero() || when.Before(created) {
			created = when
		}
		if modified.IsZero() || when.After(modified) {
			modified = when
		}
		return nil
	})
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("walk history of %s: %w", rel, err)
	}
	if created.IsZero() {
		return time.Time{}, time.Time{}, ErrNoHistory
	}
	return created, modified, nil
}

// open returns the repository enclosing dir, caching both hits and misses.
func (p *Provider) open(dir string) (*repository, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r, ok := p.byDir[dir]; ok {
		if r == nil {
			return nil, ErrNoHistory
		}
		return r, nil
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		p.byDir[dir] = nil
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNoHistory
		}
		return nil, fmt.Errorf("%w: open repository at %s: %w", ErrNoHistory, dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		p.byDir[dir] = nil
		return nil, fmt.Errorf("%w: %w", ErrNoHistory, err)
	}

	root := wt.Filesystem.Root()
	if r, ok := p.byRoot[root]; ok {
		p.byDir[dir] = r
		return r, nil
	}
	r := &repository{repo: repo, root: root}
	p.byRoot[root] = r
	p.byDir[dir] = r
	return r, nil
}
