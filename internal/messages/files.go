package messages

// Template, registry and metadata file messages.
const (
	TemplatesUnknownTypeFmt = "unknown template type %q (expected one of %s)"

	InstallFailedReadFmt         = "failed to read %s: %w"
	InstallFailedReadTemplateFmt = "failed to read template %s: %w"
	InstallRenderTemplateFmt     = "failed to render template %s: %w"
	InstallFailedCreateDirForFmt = "failed to create directory for %s: %w"
	InstallFailedWriteFmt        = "failed to write %s: %w"
	InstallMissingPlaceholderFmt = "no value for placeholder(s): %s"

	RegistryReadFailedFmt      = "failed to read registry %s: %w"
	RegistryCreateDirFailedFmt = "failed to create registry directory for %s: %w"
	RegistryWriteFailedFmt     = "failed to update registry %s: %w"
	RegistryUpdatingFmt        = "%s is already configured for this config type, updating.\n"
	RegistryAddingFmt          = "%s is not yet configured for this config type, adding.\n"

	MetadataReadFailedFmt   = "failed to read metadata %s: %w"
	MetadataParseFailedFmt  = "failed to parse metadata %s: %w"
	MetadataInvalidBoolFmt  = "meta.%s: invalid boolean %q"
	MetadataSetKeyFailedFmt = "failed to set meta.%s: %w"
	MetadataWriteFailedFmt  = "failed to write metadata %s: %w"
)
