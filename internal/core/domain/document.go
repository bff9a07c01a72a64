package domain

// Document is an intermediate (text, metadata) record produced by a parser
// or by a fallback extractor, prior to chunking.
type Document struct {
	// Content is the extracted text.
	Content string

	// Metadata contains parser and caller supplied key-value pairs.
	// Values are JSON-like: strings, numbers, booleans, nil, []any and map[string]any.
	Metadata map[string]any
}

// Chunk represents a size-bounded unit of text produced from a Document.
// Chunks from the same Document are returned in reading order.
type Chunk struct {
	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the source document.
	Position int

	// Metadata contains the source document metadata plus upload_id.
	Metadata map[string]any
}
