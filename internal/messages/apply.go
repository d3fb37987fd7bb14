package messages

// Apply messages for the configuration run.
const (
	ApplyPathRequired        = "repository path is required"
	ApplyRegistryDirRequired = "registry directory is required"
	ApplyTestCommandRequired = "test command is required"
	ApplySystemRequired      = "apply system is required"
	ApplyRunnerRequired      = "command runner is required"
	ApplyResolvePathFmt      = "failed to resolve path %s: %w"
	// ApplyNotWorkingCopy is the usage error for a path without a git clone.
	ApplyNotWorkingCopy = "path is not a git working copy"
	ApplyAbortedFmt     = "aborted (exit %d): %v"

	ApplyDiffHeaderFmt  = "\nChanges to %s:\n"
	ApplyFinishedHeader = "If everything went fine up to here:"
	ApplyUpdatedPR      = "Updated the previously created PR."
	ApplyCreatePR       = "Create a PR, using the URL shown above."

	// ConfirmAborting is printed in red when a command fails.
	ConfirmAborting      = "ABORTING: Please fix the errors shown above."
	ConfirmProceedPrompt = "Proceed anyway (y/N)? "
)
