package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/conn-castle/config-package/internal/apply"
	"github.com/conn-castle/config-package/internal/config"
	"github.com/conn-castle/config-package/internal/install"
	"github.com/conn-castle/config-package/internal/messages"
	"github.com/conn-castle/config-package/internal/pyversions"
	"github.com/conn-castle/config-package/internal/templates"
	"github.com/conn-castle/config-package/internal/terminal"
	"github.com/conn-castle/config-package/internal/vcs"
	"github.com/conn-castle/config-package/internal/wizard"
)

var applyRun = apply.Run
var isTerminal = terminal.IsInteractive
var statPath = os.Stat

var newTypeSelector = func() wizard.TypeSelector {
	return wizard.NewHuhSelector(isTerminal)
}

var newRunner = func(stdin io.Reader, stdout io.Writer, stderr io.Writer, logger *log.Logger) vcs.Runner {
	return vcs.LoggingRunner{
		Next:   vcs.ExecRunner{Stdin: stdin, Stdout: stdout, Stderr: stderr},
		Logger: logger,
	}
}

// newLogger writes command traces to stderr; they are shown only with --verbose.
func newLogger(stderr io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(stderr, log.Options{Prefix: "config-package", Level: level})
}

// minVersionFlag binds a --with-pyXY(-plus) flag to the minimum version it selects.
type minVersionFlag struct {
	name    string
	usage   string
	version pyversions.Version
	set     bool
}

type rootFlags struct {
	noPush       bool
	withPyPy     bool
	withPy27     bool
	showDiff     bool
	verbose      bool
	configPath   string
	registryDir  string
	templatesDir string
	minVersions  []*minVersionFlag
}

func newMinVersionFlags() []*minVersionFlag {
	return []*minVersionFlag{
		{name: "with-py35", usage: messages.FlagWithPy35, version: pyversions.Version{Major: 3, Minor: 5}},
		{name: "with-py36-plus", usage: messages.FlagWithPy36Plus, version: pyversions.Version{Major: 3, Minor: 6}},
		{name: "with-py37-plus", usage: messages.FlagWithPy37Plus, version: pyversions.Version{Major: 3, Minor: 7}},
		{name: "with-py38-plus", usage: messages.FlagWithPy38Plus, version: pyversions.Version{Major: 3, Minor: 8}},
		{name: "with-py39-plus", usage: messages.FlagWithPy39Plus, version: pyversions.Version{Major: 3, Minor: 9}},
	}
}

// minVersion returns the version of the selected flag, or the default.
func (f *rootFlags) minVersion() pyversions.Version {
	for _, flag := range f.minVersions {
		if flag.set {
			return flag.version
		}
	}
	return pyversions.DefaultMin
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{minVersions: newMinVersionFlags()}

	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          fmt.Sprintf(messages.RootLong, strings.Join(templates.TypeNames(), ", ")),
		Args:          rootArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, flags, args)
		},
	}

	cmd.SetGlobalNormalizationFunc(normalizeFlagName)
	cmd.Flags().BoolP("version", "v", false, messages.RootVersionFlag)
	cmd.Flags().BoolVar(&flags.noPush, "no-push", false, messages.FlagNoPush)
	cmd.Flags().BoolVar(&flags.withPyPy, "with-pypy", false, messages.FlagWithPyPy)
	cmd.Flags().BoolVar(&flags.withPy27, "with-py27", false, messages.FlagWithPy27)
	names := make([]string, 0, len(flags.minVersions))
	for _, flag := range flags.minVersions {
		cmd.Flags().BoolVar(&flag.set, flag.name, false, flag.usage)
		names = append(names, flag.name)
	}
	cmd.MarkFlagsMutuallyExclusive(names...)
	cmd.Flags().BoolVar(&flags.showDiff, "diff", false, messages.FlagDiff)
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, messages.FlagVerbose)
	cmd.Flags().StringVar(&flags.configPath, "config", "", messages.FlagConfig)
	cmd.Flags().StringVar(&flags.registryDir, "registry-dir", "", messages.FlagRegistryDir)
	cmd.Flags().StringVar(&flags.templatesDir, "templates-dir", "", messages.FlagTemplatesDir)

	return cmd
}

// flagAliases maps alternate spellings onto the flag they set.
var flagAliases = map[string]string{
	"py3-only": "with-py35",
}

func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if target, ok := flagAliases[name]; ok {
		name = target
	}
	return pflag.NormalizedName(name)
}

func rootArgs(_ *cobra.Command, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf(messages.RootArgsCountFmt, len(args))
	}
	return nil
}

func runRoot(cmd *cobra.Command, flags *rootFlags, args []string) error {
	configType, err := resolveType(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	var source fs.FS
	if cfg.TemplatesDir != "" {
		source = templates.Dir(cfg.TemplatesDir)
	}
	if _, err := statPath(cfg.RegistryDir); errors.Is(err, os.ErrNotExist) {
		_, _ = color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), messages.RootWarnRegistryMissing, cfg.RegistryDir)
	}

	logger := newLogger(cmd.ErrOrStderr(), flags.verbose)
	logger.Debug("config", "registry", cfg.RegistryDir, "templates", cfg.TemplatesDir, "remote", cfg.Remote)
	_, err = applyRun(cmd.Context(), apply.Options{
		Path:                args[0],
		Type:                configType,
		NoPush:              flags.noPush,
		WithPyPy:            flags.withPyPy,
		SupportLegacyPython: flags.withPy27,
		MinVersion:          flags.minVersion(),
		Templates:           source,
		TemplatesDir:        cfg.TemplatesDir,
		TemplateRevision:    templateRevision(),
		RegistryDir:         cfg.RegistryDir,
		Remote:              cfg.Remote,
		TestCommand:         cfg.Test.Command,
		ShowDiff:            flags.showDiff,
		DiffMaxLines:        cfg.Diff.MaxLines,
		System:              install.RealSystem{},
		Runner:              newRunner(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), logger),
		In:                  cmd.InOrStdin(),
		Out:                 cmd.OutOrStdout(),
	})
	return err
}

// resolveType parses the type argument or asks for it on a terminal.
func resolveType(args []string) (templates.Type, error) {
	if len(args) > 1 {
		return templates.ParseType(args[1])
	}
	if !isTerminal() {
		return "", fmt.Errorf(messages.RootTypeRequiredFmt, strings.Join(templates.TypeNames(), ", "))
	}
	return newTypeSelector().SelectType(templates.PurePython)
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	path := flags.configPath
	explicit := path != ""
	if !explicit {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return nil, err
	}
	if flags.registryDir != "" {
		dir, err := config.ResolveDir(flags.registryDir, "")
		if err != nil {
			return nil, err
		}
		cfg.RegistryDir = dir
	}
	if flags.templatesDir != "" {
		dir, err := config.ResolveDir(flags.templatesDir, "")
		if err != nil {
			return nil, err
		}
		cfg.TemplatesDir = dir
	}
	return cfg, nil
}
