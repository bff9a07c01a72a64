// Package pdftotext provides a fallback PDF text extractor that shells out
// to poppler's pdftotext.
package pdftotext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH; " + InstallInstructions())

const binaryName = "pdftotext"

// CommandRunner executes external commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

// Run executes the command and returns its stdout.
// Stderr is folded into the error on failure.
func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Extractor extracts PDF text with pdftotext.
type Extractor struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// New creates an extractor that runs the real pdftotext binary.
func New() *Extractor {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates an extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{
		runner:   runner,
		lookPath: exec.LookPath,
	}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return domain.ExtractorPDFToText
}

// Available reports whether pdftotext is on PATH.
func (e *Extractor) Available() bool {
	_, err := e.lookPath(binaryName)
	return err == nil
}

// Extract writes the PDF to a temporary file and returns pdftotext's output.
func (e *Extractor) Extract(ctx context.Context, content []byte) (string, error) {
	if !e.Available() {
		return "", ErrPDFToolNotFound
	}

	tmp, err := os.CreateTemp("", "sercha-ingest-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	out, err := e.runner.Run(ctx, binaryName, "-enc", "UTF-8", "-q", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}

	// pdftotext separates pages with form feeds.
	return strings.ReplaceAll(string(out), "\f", "\n\n"), nil
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(binaryName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform-specific installation instructions.
func InstallInstructions() string {
	return "install poppler to provide pdftotext: " +
		"brew install poppler (macOS), " +
		"apt install poppler-utils (Debian/Ubuntu), " +
		"dnf install poppler-utils (Fedora)"
}
