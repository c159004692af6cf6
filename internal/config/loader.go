package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/scope"
	"github.com/solverlab/formula/internal/vid"
)

// Loader owns the library-configuration collaborators a running engine is
// built from (spec.md §3: "LS: created at library configuration,
// immortal") and loads them from the on-disk fragments described in
// SPEC_FULL.md §10.3.
type Loader struct {
	Manager  *scope.Manager
	Library  *vid.Library
	Registry *format.Registry
	Logger   *log.Logger
}

// NewLoader returns a Loader over the given collaborators. mgr and lib are
// typically freshly constructed; Registry should already have
// format.RegisterPrimitives applied.
func NewLoader(mgr *scope.Manager, lib *vid.Library, registry *format.Registry) *Loader {
	return &Loader{Manager: mgr, Library: lib, Registry: registry, Logger: log.Default()}
}

// LoadAll loads the legal scope tree from scopeTreePath, then every
// variable-assertion fragment in variablePaths, and returns the resolved
// scope-name table (useful for a caller that wants to look scopes up by
// name afterward, e.g. to Open scope instances).
func (l *Loader) LoadAll(scopeTreePath string, variablePaths []string) (map[string]*scope.Legal, error) {
	scopesByName, err := LoadScopeTreeFile(l.Manager, scopeTreePath)
	if err != nil {
		return nil, err
	}
	if err := l.loadVariableFragments(scopesByName, variablePaths); err != nil {
		return nil, err
	}
	return scopesByName, nil
}

// loadVariableFragments reads every fragment in paths concurrently
// (golang.org/x/sync/errgroup, a teacher dependency) since file I/O is the
// only part of this that parallelizes safely, then applies each fragment's
// assertions to the Library serially and in input order so the result is
// deterministic regardless of which read finished first — the Library
// itself is not safe for concurrent mutation (spec.md §5).
func (l *Loader) loadVariableFragments(scopesByName map[string]*scope.Legal, paths []string) error {
	contents := make([][]byte, len(paths))
	g, _ := errgroup.WithContext(context.Background())
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			data, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("config: reading %s: %w", p, err)
			}
			contents[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, data := range contents {
		if err := LoadVariableAssertions(l.Library, l.Registry, scopesByName, data); err != nil {
			return fmt.Errorf("%s: %w", paths[i], err)
		}
	}
	return nil
}

// Watch watches scopeTreePath and every path in variablePaths with
// fsnotify (a teacher dependency, used the same way as
// cmd/bd/show_display.go's watch loop: debounce rapid writes, re-run the
// load, report errors instead of exiting). After each debounced write it
// re-runs LoadAll and passes the resulting error (nil on success) to
// onReload — re-asserting an unchanged (LS, name, F) triple is idempotent
// (spec.md §3), but a *changed* format or a scope removed out from under a
// live VID cannot be safely retracted, so onReload decides what to do with
// a reload error (log, surface to an operator, or ignore) instead of the
// watcher panicking.
//
// Watch blocks until ctx is cancelled.
func (l *Loader) Watch(ctx context.Context, scopeTreePath string, variablePaths []string, onReload func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, p := range append([]string{scopeTreePath}, variablePaths...) {
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("config: watching %s: %w", p, err)
		}
	}

	const debounceDelay = 250 * time.Millisecond
	var debounce *time.Timer
	reload := func() {
		l.Logger.Printf("config: reloading after change")
		_, err := l.LoadAll(scopeTreePath, variablePaths)
		onReload(err)
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.Logger.Printf("config: watcher error: %v", err)
		}
	}
}
