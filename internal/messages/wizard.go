package messages

// Wizard messages for interactive prompts.
const (
	WizardRequiresTerminal      = "template type selection requires an interactive terminal; pass the type as the second argument"
	WizardSelectTypeTitle       = "Template type"
	WizardSelectTypeDescription = "Configuration profile to apply to the repository"
	WizardCancelled             = "template selection cancelled"
)
