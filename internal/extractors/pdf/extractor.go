// Package pdf extracts text from PDF uploads using poppler's pdftotext.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/extractors/plaintext"
)

var _ driven.TextExtractor = (*Extractor)(nil)

// ErrPDFToolNotFound is returned when pdftotext is not on PATH.
var ErrPDFToolNotFound = errors.New("pdftotext not found: install poppler")

const toolName = "pdftotext"

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

// Extractor writes the PDF to a temp file and reads pdftotext's stdout.
type Extractor struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// New returns an extractor that runs the real pdftotext binary.
func New() *Extractor {
	return NewWithRunner(execRunner{})
}

// NewWithRunner injects the command runner, mostly for tests.
func NewWithRunner(r CommandRunner) *Extractor {
	return &Extractor{runner: r, lookPath: exec.LookPath}
}

func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf", "application/x-pdf"}
}

func (e *Extractor) Extract(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if _, err := e.lookPath(toolName); err != nil {
		return "", ErrPDFToolNotFound
	}

	tmp, err := os.CreateTemp("", "docrag-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	// "-" sends the text to stdout.
	out, err := e.runner.Run(ctx, toolName, "-enc", "UTF-8", "-layout", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}

	// pdftotext separates pages with form feeds.
	text := strings.ReplaceAll(plaintext.Clean(string(out)), "\f", "\n\n")
	return strings.TrimSpace(text), nil
}

// CheckAvailable reports whether pdftotext can be found.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions is shown by the CLI when CheckAvailable fails.
func InstallInstructions() string {
	return `PDF extraction requires pdftotext from poppler.

  macOS:          brew install poppler
  Debian/Ubuntu:  sudo apt install poppler-utils
  Fedora:         sudo dnf install poppler-utils`
}
