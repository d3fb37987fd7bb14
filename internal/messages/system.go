package messages

// System messages for process-level operations.
const (
	WorkdirGetwdFailedFmt   = "failed to resolve working directory: %w"
	WorkdirChdirFailedFmt   = "failed to change directory to %s: %w"
	WorkdirRestoreFailedFmt = "failed to restore working directory %s: %w"
)
