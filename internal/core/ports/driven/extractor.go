package driven

import "context"

// TextExtractor is a fallback strategy for PDFs whose primary parse yields
// too little text.
type TextExtractor interface {
	// Name identifies the extractor in configuration and logs.
	Name() string

	// Available reports whether the extractor can run in this process
	// (external binary present, native library compiled in).
	Available() bool

	// Extract returns the full text of the PDF.
	// Errors are recovered by the caller and treated as empty output.
	Extract(ctx context.Context, content []byte) (string, error)
}
