// Package file provides filesystem-backed implementations of driven ports.
//
// Adapters:
//   - ConfigStore: settings file (TOML by default, YAML by extension)
//   - PromptStore: user-editable chat prompt templates
package file
