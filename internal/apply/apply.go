// Package apply configures a package repository with a template: it records the
// repository in the registry, rewrites the managed files, runs the tests and
// commits the result on the configuration branch.
package apply

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/conn-castle/config-package/internal/confirm"
	"github.com/conn-castle/config-package/internal/install"
	"github.com/conn-castle/config-package/internal/messages"
	"github.com/conn-castle/config-package/internal/metadata"
	"github.com/conn-castle/config-package/internal/pyversions"
	"github.com/conn-castle/config-package/internal/registry"
	"github.com/conn-castle/config-package/internal/templates"
	"github.com/conn-castle/config-package/internal/vcs"
	"github.com/conn-castle/config-package/internal/workdir"
)

const workflowPath = ".github/workflows/tests.yml"

// stagedFiles are added to the configuration commit on every run.
var stagedFiles = []string{
	"setup.cfg",
	"tox.ini",
	".gitignore",
	workflowPath,
	"MANIFEST.in",
	".editorconfig",
	metadata.FileName,
}

// legacyFiles are removed through git when present.
var legacyFiles = []string{"bootstrap.py", ".travis.yml"}

// ErrNotWorkingCopy is returned when the target path is not a git clone.
var ErrNotWorkingCopy = errors.New(messages.ApplyNotWorkingCopy)

// AbortError reports a run stopped by the operator after a failed command.
// Code mirrors the exit status of that command.
type AbortError struct {
	Code int
	Err  error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf(messages.ApplyAbortedFmt, e.Code, e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

// Options controls a configuration run.
type Options struct {
	// Path is the target repository.
	Path string
	Type templates.Type

	NoPush              bool
	WithPyPy            bool
	SupportLegacyPython bool
	MinVersion          pyversions.Version

	// Templates is the template source; nil selects the embedded templates.
	Templates fs.FS
	// TemplatesDir is the on-disk template checkout, if any. Its HEAD commit
	// is recorded as commit-id.
	TemplatesDir string
	// TemplateRevision is recorded as commit-id when TemplatesDir is not a git clone.
	TemplateRevision string

	RegistryDir string
	Remote      string
	// TestCommand runs the test matrix. A relative executable path containing a
	// separator is resolved against the working directory the run started in.
	TestCommand []string

	ShowDiff     bool
	DiffMaxLines int

	System install.System
	Runner vcs.Runner
	In     io.Reader
	Out    io.Writer
}

// Result summarizes a completed run.
type Result struct {
	Updating bool
	Branch   string
	Registry registry.Status
	Versions []pyversions.Version
	Record   metadata.Record
	Changes  []install.Change
}

type run struct {
	opts   Options
	repo   string
	name   string
	sys    install.System
	runner vcs.Runner
	gate   *confirm.Gate
	out    io.Writer
	source fs.FS
	copier *install.Copier
	git    *vcs.Git

	store         *metadata.Store
	record        metadata.Record
	addCoveragerc bool
	rmCoveragerc  bool
	result        Result
}

// Run executes the configuration sequence. It returns ErrNotWorkingCopy
// (wrapped) before touching anything when Path is not a git clone, and an
// *AbortError when the operator declines to continue past a failed command.
func Run(ctx context.Context, opts Options) (*Result, error) {
	r, err := newRun(opts)
	if err != nil {
		return nil, err
	}
	if err := r.execute(ctx); err != nil {
		return nil, err
	}
	return &r.result, nil
}

func newRun(opts Options) (*run, error) {
	if opts.Path == "" {
		return nil, errors.New(messages.ApplyPathRequired)
	}
	if _, err := templates.ParseType(string(opts.Type)); err != nil {
		return nil, err
	}
	if opts.RegistryDir == "" {
		return nil, errors.New(messages.ApplyRegistryDirRequired)
	}
	if len(opts.TestCommand) == 0 {
		return nil, errors.New(messages.ApplyTestCommandRequired)
	}
	if opts.System == nil {
		return nil, errors.New(messages.ApplySystemRequired)
	}
	if opts.Runner == nil {
		return nil, errors.New(messages.ApplyRunnerRequired)
	}
	repo, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, fmt.Errorf(messages.ApplyResolvePathFmt, opts.Path, err)
	}
	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	source := opts.Templates
	if source == nil {
		source = templates.Embedded()
	}
	if opts.Remote == "" {
		opts.Remote = vcs.DefaultRemote
	}
	return &run{
		opts:   opts,
		repo:   repo,
		name:   filepath.Base(repo),
		sys:    opts.System,
		runner: opts.Runner,
		gate:   confirm.NewGate(in, out),
		out:    out,
		source: source,
		copier: install.NewCopier(opts.System, source, string(opts.Type)),
		git:    vcs.New(opts.Runner, repo),
		result: Result{Branch: vcs.BranchName(string(opts.Type))},
	}, nil
}

// check gates err through the operator prompt.
func (r *run) check(err error) error {
	if r.gate.Check(err) == confirm.Aborted {
		return &AbortError{Code: vcs.ExitCode(err), Err: err}
	}
	return nil
}

func (r *run) execute(ctx context.Context) (err error) {
	if !vcs.IsWorkingCopy(r.repo) {
		return fmt.Errorf("%w: %s", ErrNotWorkingCopy, r.repo)
	}

	status, err := registry.Ensure(r.sys, r.out, r.opts.RegistryDir, string(r.opts.Type), r.name)
	if err != nil {
		return err
	}
	r.result.Registry = status

	if err := r.loadMetadata(ctx); err != nil {
		return err
	}
	if err := r.copyFixedFiles(); err != nil {
		return err
	}

	// The version set follows this run's flags; only universal_wheel is sticky.
	versions := pyversions.Supported(r.opts.MinVersion, r.opts.SupportLegacyPython)
	r.result.Versions = versions
	if err := r.renderConfigs(versions); err != nil {
		return err
	}
	r.result.Changes = r.copier.Changes()
	if r.opts.ShowDiff {
		r.printDiffs()
	}

	scope, err := workdir.Enter(r.repo)
	if err != nil {
		return err
	}
	defer func() {
		if restoreErr := scope.Restore(); restoreErr != nil && err == nil {
			err = restoreErr
		}
	}()

	if err := r.removeLegacyFiles(ctx); err != nil {
		return err
	}
	if err := r.runTests(ctx, scope.Previous()); err != nil {
		return err
	}

	metaPath := filepath.Join(r.repo, metadata.FileName)
	if err := r.store.Write(r.sys, metaPath, r.record, install.MetaHint(string(r.opts.Type))); err != nil {
		return err
	}
	r.result.Record = r.record

	if err := r.switchBranch(ctx); err != nil {
		return err
	}
	if err := r.commit(ctx); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(r.out)
	_, _ = color.New(color.Bold).Fprintln(r.out, messages.ApplyFinishedHeader)
	if r.result.Updating {
		_, _ = fmt.Fprintln(r.out, messages.ApplyUpdatedPR)
	} else {
		_, _ = fmt.Fprintln(r.out, messages.ApplyCreatePR)
	}
	return nil
}

func (r *run) loadMetadata(ctx context.Context) error {
	store, err := metadata.Load(r.sys, filepath.Join(r.repo, metadata.FileName))
	if err != nil {
		return err
	}
	commitID, err := r.templateRevision(ctx)
	if err != nil {
		return err
	}
	r.store = store
	r.record = store.Record().Merge(metadata.Overrides{
		Template:            string(r.opts.Type),
		CommitID:            commitID,
		WithPyPy:            r.opts.WithPyPy,
		SupportLegacyPython: r.opts.SupportLegacyPython,
	})
	return nil
}

// templateRevision returns the commit the templates come from.
func (r *run) templateRevision(ctx context.Context) (string, error) {
	if r.opts.TemplatesDir == "" || !vcs.IsWorkingCopy(r.opts.TemplatesDir) {
		return r.opts.TemplateRevision, nil
	}
	commitID, err := vcs.New(r.runner, r.opts.TemplatesDir).HeadCommit(ctx)
	if err != nil {
		if checkErr := r.check(err); checkErr != nil {
			return "", checkErr
		}
		return r.opts.TemplateRevision, nil
	}
	return commitID, nil
}

func (r *run) copyFixedFiles() error {
	typeName := string(r.opts.Type)
	fixed := []struct {
		source string
		dest   string
	}{
		{templates.Path(templates.DefaultDir, "MANIFEST.in"), "MANIFEST.in"},
		{templates.Path(templates.DefaultDir, "editorconfig"), ".editorconfig"},
		{templates.Path(templates.DefaultDir, "gitignore"), ".gitignore"},
	}
	for _, f := range fixed {
		if err := r.copier.Copy(f.source, filepath.Join(r.repo, f.dest), nil); err != nil {
			return err
		}
	}

	coveragerc := templates.Path(typeName, "coveragerc")
	dest := filepath.Join(r.repo, ".coveragerc")
	if templates.Exists(r.source, coveragerc) {
		if err := r.copier.CopyAs(install.Brace, coveragerc, dest, map[string]string{"package_name": r.name}); err != nil {
			return err
		}
		r.addCoveragerc = true
		return nil
	}
	if r.exists(dest) {
		r.rmCoveragerc = true
	}
	return nil
}

func (r *run) renderConfigs(versions []pyversions.Version) error {
	typeName := string(r.opts.Type)

	universalWheel := "0"
	if r.record.SupportLegacyPython {
		universalWheel = "1"
	}
	if err := r.copier.Copy(templates.Path(typeName, "setup.cfg"), filepath.Join(r.repo, "setup.cfg"),
		map[string]string{"universal_wheel": universalWheel}); err != nil {
		return err
	}

	additionalEnvirons := ""
	additionalConfig := ""
	if r.record.WithPyPy {
		additionalEnvirons = pyversions.ToxPyPyEnvs
		additionalConfig = pyversions.TestMatrixPyPy
	}
	if err := r.copier.Copy(templates.Path(typeName, "tox.ini.in"), filepath.Join(r.repo, "tox.ini"),
		map[string]string{
			"coverage_report_options": "--fail-under=" + r.record.FailUnder,
			"python_environs":         pyversions.ToxEnvs(versions),
			"additional_environs":     additionalEnvirons,
		}); err != nil {
		return err
	}

	return r.copier.Copy(templates.Path(templates.DefaultDir, "tests.yml.in"), filepath.Join(r.repo, filepath.FromSlash(workflowPath)),
		map[string]string{
			"version_config":    pyversions.TestMatrix(versions),
			"additional_config": additionalConfig,
		})
}

func (r *run) printDiffs() {
	for _, preview := range install.BuildDiffPreviews(r.repo, r.result.Changes, r.opts.DiffMaxLines) {
		_, _ = fmt.Fprintf(r.out, messages.ApplyDiffHeaderFmt, preview.Path)
		_, _ = fmt.Fprint(r.out, preview.UnifiedDiff)
	}
}

func (r *run) removeLegacyFiles(ctx context.Context) error {
	for _, name := range legacyFiles {
		if !r.exists(filepath.Join(r.repo, name)) {
			continue
		}
		if err := r.check(r.git.Remove(ctx, name)); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) runTests(ctx context.Context, origin string) error {
	command := append([]string(nil), r.opts.TestCommand...)
	if !filepath.IsAbs(command[0]) && filepath.Base(command[0]) != command[0] {
		command[0] = filepath.Join(origin, command[0])
	}
	return r.check(r.runner.Run(ctx, r.repo, command[0], command[1:]...))
}

func (r *run) switchBranch(ctx context.Context) error {
	branches, err := r.git.Branches(ctx)
	if err := r.check(err); err != nil {
		return err
	}
	for _, branch := range branches {
		if branch == r.result.Branch {
			r.result.Updating = true
			return r.check(r.git.Checkout(ctx, r.result.Branch))
		}
	}
	return r.check(r.git.CheckoutNew(ctx, r.result.Branch))
}

func (r *run) commit(ctx context.Context) error {
	if err := r.check(r.git.Add(ctx, stagedFiles...)); err != nil {
		return err
	}
	if r.rmCoveragerc {
		if err := r.check(r.git.Remove(ctx, ".coveragerc")); err != nil {
			return err
		}
	}
	if r.addCoveragerc {
		if err := r.check(r.git.Add(ctx, ".coveragerc")); err != nil {
			return err
		}
	}
	if err := r.check(r.git.Commit(ctx, vcs.CommitMessage(string(r.opts.Type)))); err != nil {
		return err
	}
	if r.opts.NoPush {
		return nil
	}
	return r.check(r.git.Push(ctx, r.opts.Remote, r.result.Branch))
}

func (r *run) exists(path string) bool {
	_, err := r.sys.Stat(path)
	return err == nil
}
