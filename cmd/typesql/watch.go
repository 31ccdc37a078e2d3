package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow absorbs editors that emit several write events for a
// single save (truncate, then write, then chmod).
const debounceWindow = 200 * time.Millisecond

// watch re-runs generateOnce whenever a matching .sql file changes. The
// fsnotify event loop runs in the calling goroutine, and one debounce
// timer shared by all watched files coalesces a burst of events into a
// single regeneration of every file.
func (p *pipeline) watch(ctx context.Context, maxConcurrency int) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dirs, err := queryDirs(p.cfg.Queries)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	p.log.Info().Strs("dirs", dirs).Msg("typesql: watching for changes")

	if err := p.generateOnce(ctx, maxConcurrency); err != nil {
		p.log.Error().Err(err).Msg("typesql: initial generate failed")
	}

	var timer *time.Timer
	debounced := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(ev.Name) != ".sql" {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(debounceWindow, func() {
					select {
					case debounced <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounceWindow)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.log.Warn().Err(err).Msg("typesql: watcher error")

		case <-debounced:
			if err := p.generateOnce(ctx, maxConcurrency); err != nil {
				p.log.Error().Err(err).Msg("typesql: generate failed")
			}
		}
	}
}

// queryDirs returns the distinct directories containing cfg.Queries'
// glob patterns, since fsnotify watches directories rather than patterns.
func queryDirs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		dir := filepath.Dir(pattern)
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		if !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
	}
	return out, nil
}
