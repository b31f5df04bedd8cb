// Package memory provides in-memory implementations of the record,
// blob and config store ports. They back tests and the --ephemeral CLI mode;
// nothing survives the process.
package memory
