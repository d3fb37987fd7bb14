// Package config loads the config-package tool settings from TOML.
package config

// Config is the tool configuration. Zero values are replaced by defaults on load.
type Config struct {
	// RegistryDir holds one <type>/packages.txt registry per template type.
	RegistryDir string `toml:"registry_dir"`
	// TemplatesDir replaces the embedded templates when set.
	TemplatesDir string `toml:"templates_dir"`
	// Remote is the git remote configuration branches are pushed to.
	Remote string     `toml:"remote"`
	Test   TestConfig `toml:"test"`
	Diff   DiffConfig `toml:"diff"`
}

// TestConfig configures the test matrix run that gates the commit.
type TestConfig struct {
	Command []string `toml:"command"`
}

// DiffConfig configures --diff previews.
type DiffConfig struct {
	MaxLines int `toml:"max_lines"`
}
