// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"slices"

	"cabar-cli/internal/config"
	"cabar-cli/internal/discovery"
	"cabar-cli/internal/issue"
	"cabar-cli/pkg/component"
	"cabar-cli/pkg/resolver"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. Cobra handlers receive
	// an App and never reach for process globals directly.
	App struct {
		Config  ConfigProvider
		Environ func() []string
		Getenv  func(string) string
		WorkDir string
		stdout  io.Writer
		stderr  io.Writer

		issueStyle string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config  ConfigProvider
		Environ func() []string
		Getenv  func(string) string
		WorkDir string
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// rootFlags holds the persistent flags shared by every command.
	rootFlags struct {
		verbose      bool
		configFile   string
		paths        []string
		unresolvedOK bool
		noEnv        bool
	}

	// session is one loaded configuration plus the discovered components.
	session struct {
		cfg       *config.Config
		logger    *log.Logger
		available *component.Set
		verbose   bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Environ == nil {
		deps.Environ = os.Environ
	}
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}
	return &App{
		Config:  deps.Config,
		Environ: deps.Environ,
		Getenv:  deps.Getenv,
		WorkDir: deps.WorkDir,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,

		issueStyle: issueStyle(config.ColorSchemeAuto),
	}
}

// newLogger returns the stderr logger: debug level when verbose, warnings otherwise.
func (a *App) newLogger(verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{Prefix: "cabar", Level: level})
}

func (a *App) loadOptions(flags *rootFlags) config.LoadOptions {
	return config.LoadOptions{
		ConfigFilePath: flags.configFile,
		WorkDir:        a.WorkDir,
		Getenv:         a.Getenv,
	}
}

// open loads the configuration and discovers the available components.
func (a *App) open(ctx context.Context, flags *rootFlags) (*session, error) {
	cfg, err := a.Config.Load(ctx, a.loadOptions(flags))
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, verbose: flags.verbose || cfg.UI.Verbose}
	a.issueStyle = issueStyle(cfg.UI.ColorScheme)
	s.logger = a.newLogger(s.verbose)

	searchPath := slices.Concat(flags.paths, cfg.SearchPath)
	if len(searchPath) == 0 {
		return nil, issue.NewErrorContext().
			WithOperation("discover components").
			WithSuggestion("Pass a directory with --path").
			WithSuggestion("Set search_path in the configuration or CABAR_PATH in the environment").
			WithIssue(issue.NoComponentsFoundId).
			Wrap(discovery.ErrNoSearchPath).
			BuildError()
	}

	result, err := discovery.New(searchPath, discovery.WithLogger(s.logger)).Discover(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range result.Diagnostics {
		kv := []any{"code", d.Code, "path", d.Path}
		if d.Cause != nil {
			kv = append(kv, "err", d.Cause)
		}
		if d.Severity == discovery.SeverityError {
			s.logger.Error(d.Message, kv...)
			continue
		}
		s.logger.Warn(d.Message, kv...)
	}
	if result.Components.Len() == 0 {
		return nil, issue.NewErrorContext().
			WithOperation("discover components").
			WithResource(searchPath[0]).
			WithSuggestion("Check that the search path holds cabar.cue manifests").
			WithIssue(issue.NoComponentsFoundId).
			Wrap(errNoComponents).
			BuildError()
	}
	s.available = result.Components
	s.logger.Debug("components discovered", "count", s.available.Len(), "search_path", searchPath)
	return s, nil
}

// resolve builds a resolver over the session's components, applies the
// configured select constraints and requires the configured and extra
// constraints.
func (a *App) resolve(s *session, flags *rootFlags, extra []string) (*resolver.Resolver, error) {
	defaults, err := s.cfg.DefaultVersionRequirements()
	if err != nil {
		return nil, err
	}
	opts := []resolver.Option{
		resolver.WithLogger(s.logger),
		resolver.WithDefaultVersions(defaults),
		resolver.WithUnresolvedOK(flags.unresolvedOK || s.cfg.UnresolvedOK),
		resolver.WithEnviron(a.Environ),
	}
	if flags.noEnv || !s.cfg.EnvOverlay {
		opts = append(opts, resolver.WithoutEnvironment())
	}

	r := resolver.New(s.available, opts...)
	if err := r.Select(s.cfg.Select...); err != nil {
		return nil, err
	}

	specs := slices.Concat(s.cfg.Require, extra)
	if len(specs) == 0 {
		return nil, issue.NewErrorContext().
			WithOperation("resolve components").
			WithSuggestion("Name components on the command line, e.g. 'cabar resolve ruby/~> 1.9'").
			WithSuggestion("Set require in the configuration or CABAR_REQUIRE in the environment").
			Wrap(errNothingRequired).
			BuildError()
	}
	if err := r.Require(specs...); err != nil {
		return r, err
	}
	return r, nil
}

// warnUnresolved logs the entries left unresolved under unresolved_ok.
func warnUnresolved(s *session, r *resolver.Resolver) {
	for _, entry := range r.Unresolved().All() {
		s.logger.Warn("unresolved component",
			"constraint", entry.Constraint,
			"requested_by", entry.RequestedBy,
			"available", entry.AvailableVersions)
	}
}

// compose runs open, resolve and facet composition in sequence. The returned
// verbosity reflects the configuration once it is loaded.
func (a *App) compose(ctx context.Context, flags *rootFlags, extra []string) (*session, *resolver.Resolver, *resolver.FacetMap, error) {
	s, err := a.open(ctx, flags)
	if err != nil {
		return nil, nil, nil, err
	}
	r, err := a.resolve(s, flags, extra)
	if err != nil {
		return s, nil, nil, err
	}
	m, err := r.ComposeFacets()
	if err != nil {
		return s, r, nil, err
	}
	warnUnresolved(s, r)
	return s, r, m, nil
}

// isVerbose reports the effective verbosity for error rendering.
func (s *session) isVerbose(flags *rootFlags) bool {
	if s == nil {
		return flags.verbose
	}
	return s.verbose
}
