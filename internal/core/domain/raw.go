package domain

// RawDocument represents opaque uploaded bytes.
// It is the input to the format dispatcher, before any parsing.
type RawDocument struct {
	// Filename is the original file name, if the caller knows it.
	Filename string

	// MIMEType is the declared content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// UploadContext carries provenance for a single ingestion call.
// It is created once per call and never shared between calls.
type UploadContext struct {
	// UploadID is the join key carried by every chunk produced from the upload.
	UploadID string

	// MIMEType is the canonical declared MIME type.
	MIMEType string

	// Metadata is the sanitised caller-supplied metadata.
	Metadata map[string]any
}

// NewUploadContext builds an UploadContext with a canonical MIME type and a
// private copy of the caller metadata.
func NewUploadContext(uploadID, mimeType string, metadata map[string]any) UploadContext {
	md := CloneMetadata(metadata)
	if md == nil {
		md = make(map[string]any)
	}
	return UploadContext{
		UploadID: uploadID,
		MIMEType: CanonicalMIMEType(mimeType),
		Metadata: md,
	}
}
