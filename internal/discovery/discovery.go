// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"cabar-cli/pkg/component"

	"github.com/charmbracelet/log"
)

const (
	// SourceSearchPath indicates the manifest was found under a search path entry.
	SourceSearchPath Source = iota
	// SourceGroup indicates the manifest was found through a component group.
	SourceGroup
)

// ErrNoSearchPath is returned when Discover is called without directories.
var ErrNoSearchPath = errors.New("no search path configured")

type (
	// Source represents where a manifest was found.
	Source int

	// DiscoveredFile is one manifest and what became of it.
	DiscoveredFile struct {
		// Path is the absolute path of the cabar.cue file.
		Path string
		// Source indicates how the file was reached.
		Source Source
		// Manifest is nil when parsing failed.
		Manifest *Manifest
		// Component is nil when the manifest was skipped or was a duplicate.
		Component *component.Component
		// Error holds the parse or build failure.
		Error error
	}

	// Result bundles the discovered components with diagnostics.
	Result struct {
		Components  *component.Set
		Files       []*DiscoveredFile
		Diagnostics []Diagnostic
	}

	// Discovery scans search directories for manifests.
	Discovery struct {
		searchPath []string
		logger     *log.Logger
	}

	// Option configures a Discovery.
	Option func(*Discovery)

	scan struct {
		result      *Result
		seenFiles   map[string]bool
		seenDirs    map[string]bool
		identities  map[*component.Component]string
		queue       []queued
		discoverer  *Discovery
		cancelCheck func() error
	}

	queued struct {
		dir    string
		source Source
	}
)

// String returns a human-readable source name
func (s Source) String() string {
	switch s {
	case SourceSearchPath:
		return "search path"
	case SourceGroup:
		return "component group"
	default:
		return "unknown"
	}
}

// WithLogger sets the debug logger.
func WithLogger(logger *log.Logger) Option {
	return func(d *Discovery) {
		d.logger = logger
	}
}

// New creates a Discovery over the given directories, scanned in order.
func New(searchPath []string, opts ...Option) *Discovery {
	d := &Discovery{
		searchPath: append([]string(nil), searchPath...),
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover scans every search directory. Unreadable or invalid manifests
// become diagnostics; the first component found for a name/version pair wins.
func (d *Discovery) Discover(ctx context.Context) (*Result, error) {
	if len(d.searchPath) == 0 {
		return nil, ErrNoSearchPath
	}

	s := &scan{
		result:      &Result{Components: component.NewSet()},
		seenFiles:   map[string]bool{},
		seenDirs:    map[string]bool{},
		identities:  map[*component.Component]string{},
		discoverer:  d,
		cancelCheck: ctx.Err,
	}
	for _, dir := range d.searchPath {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("search path %s: %w", dir, err)
		}
		if !isDir(abs) {
			s.result.Diagnostics = append(s.result.Diagnostics,
				warning(CodeSearchPathMissing, abs, "search path directory not found", nil))
			continue
		}
		s.queue = append(s.queue, queued{dir: abs, source: SourceSearchPath})
	}

	for len(s.queue) > 0 {
		if err := s.cancelCheck(); err != nil {
			return nil, fmt.Errorf("discovery canceled: %w", err)
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.walk(next)
	}

	d.logger.Debug("discovery finished",
		"components", s.result.Components.Len(),
		"files", len(s.result.Files),
		"diagnostics", len(s.result.Diagnostics))
	return s.result, nil
}

// walk visits dir, its children and its grandchildren.
func (s *scan) walk(root queued) {
	if s.seenDirs[root.dir] {
		return
	}
	s.seenDirs[root.dir] = true

	level := []string{root.dir}
	for depth := 0; depth < 3; depth++ {
		var next []string
		for _, dir := range level {
			s.visit(filepath.Join(dir, ManifestFileName), root.source)
			if depth < 2 {
				next = append(next, subdirs(dir)...)
			}
		}
		level = next
	}
}

func (s *scan) visit(path string, source Source) {
	if s.seenFiles[path] || !isFile(path) {
		return
	}
	s.seenFiles[path] = true

	file := &DiscoveredFile{Path: path, Source: source}
	s.result.Files = append(s.result.Files, file)
	logger := s.discoverer.logger

	m, err := ParseManifest(path)
	if err != nil {
		file.Error = err
		s.result.Diagnostics = append(s.result.Diagnostics,
			warning(CodeManifestSkipped, path, "manifest skipped", err))
		logger.Debug("manifest skipped", "path", path, "err", err)
		return
	}
	file.Manifest = m

	c, err := m.Build(filepath.Dir(path))
	if err != nil {
		file.Error = err
		s.result.Diagnostics = append(s.result.Diagnostics,
			warning(CodeManifestSkipped, path, "manifest skipped", err))
		logger.Debug("manifest skipped", "path", path, "err", err)
		return
	}

	identity := c.String()
	if existing := s.result.Components.Find(c.Name(), c.Version()); existing != nil {
		first := s.identities[existing]
		s.result.Diagnostics = append(s.result.Diagnostics,
			warning(CodeDuplicateComponent, path, fmt.Sprintf("%s already defined in %s", identity, first), nil))
		logger.Debug("duplicate component ignored", "component", identity, "path", path, "first", first)
		return
	}
	s.identities[c] = path
	file.Component = c
	s.result.Components.Add(c)
	logger.Debug("component discovered", "component", identity, "path", path, "source", source)

	for _, f := range c.Facets() {
		group, ok := f.(*component.ComponentGroupFacet)
		if !ok {
			continue
		}
		for _, dir := range group.Dirs() {
			if !isDir(dir) {
				s.result.Diagnostics = append(s.result.Diagnostics,
					warning(CodeGroupMissing, dir, "component group directory of "+identity+" not found", nil))
				continue
			}
			s.queue = append(s.queue, queued{dir: filepath.Clean(dir), source: SourceGroup})
		}
	}
}

// subdirs lists the visible subdirectories of dir in name order.
func subdirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !isDirEntry(dir, e) || e.Name()[0] == '.' {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out
}

func isDirEntry(parent string, e fs.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink != 0 {
		return isDir(filepath.Join(parent, e.Name()))
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
