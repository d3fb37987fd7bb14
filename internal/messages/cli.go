package messages

// CLI messages for the config-package command.
const (
	// RootUse is the command usage line.
	RootUse   = "config-package [flags] <path> [type]"
	RootShort = "Configure a package repository from a meta template"
	RootLong  = `Apply a configuration template to a package repository.

The repository is recorded in the registry for the template type, the
managed files are rewritten, the test suite is run, and the result is
committed on the config-with-<type> branch and pushed.

Template types: %s`
	RootVersionFlag = "Print version and exit"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	RootArgsCountFmt        = "accepts a repository path and an optional template type, received %d argument(s)"
	RootTypeRequiredFmt     = "template type is required (one of %s)"
	RootGetwdFailedFmt      = "failed to resolve working directory: %w"
	RootWarnRegistryMissing = "Warning: registry directory %s does not exist yet; it will be created.\n"

	FlagNoPush       = "Do not push the configuration branch"
	FlagWithPyPy     = "Also test with PyPy"
	FlagWithPy27     = "Also support Python 2.7"
	FlagWithPy35     = "Support Python 3.5 and newer (alias --py3-only)"
	FlagWithPy36Plus = "Support Python 3.6 and newer (default)"
	FlagWithPy37Plus = "Support Python 3.7 and newer"
	FlagWithPy38Plus = "Support Python 3.8 and newer"
	FlagWithPy39Plus = "Support Python 3.9 and newer"
	FlagDiff         = "Print a diff of every file the template changes"
	FlagVerbose      = "Log every git and test command that is run"
	FlagConfig       = "Path to the config-package TOML configuration"
	FlagRegistryDir  = "Directory holding the per-type package registries"
	FlagTemplatesDir = "Directory holding the templates (defaults to the built-in set)"
)
