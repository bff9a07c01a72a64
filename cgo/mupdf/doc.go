// Package mupdf provides the MuPDF fallback PDF text extractor through
// go-fitz. It implements the driven.TextExtractor interface.
//
// Build requires:
//   - CGO enabled (go-fitz links MuPDF statically on common platforms)
//
// Without CGO the stub reports the extractor as unavailable.
package mupdf
