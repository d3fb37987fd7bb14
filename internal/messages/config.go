package messages

// Config messages for loading and validating the tool configuration.
const (
	// ConfigMissingFileFmt formats missing config file errors.
	ConfigMissingFileFmt       = "missing config file %s: %w"
	ConfigInvalidConfigFmt     = "invalid config %s: %w"
	ConfigUnrecognizedKeysFmt  = "%s: unrecognized keys: %s"
	ConfigUserDirFailedFmt     = "failed to resolve user config dir: %w"
	ConfigExpandPathFailedFmt  = "failed to expand path %s: %w"
	ConfigEmptyTestCommandFmt  = "%s: test command must not be empty"
	ConfigNegativeDiffLinesFmt = "%s: diff.max_lines must not be negative (got %d)"
	ConfigInvalidRemoteFmt     = "%s: remote %q must not contain whitespace"
)
