// Package backend defines the retrieval backend boundary: the external
// embedding/similarity engine that holds a derived copy of chunk content.
// The index store remains the source of truth for chunk boundaries.
package backend

import "context"

// Metadata is the denormalized chunk metadata stored alongside each document.
type Metadata struct {
	FilePath     string   `json:"file_path"`
	StartLine    int      `json:"start_line"`
	EndLine      int      `json:"end_line"`
	Language     string   `json:"language"`
	ChunkType    string   `json:"chunk_type"`
	Name         string   `json:"name"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Document is one publishable chunk: the embeddable text plus metadata,
// keyed by a deterministic ID derived by the caller.
type Document struct {
	ID       string
	Text     string
	Metadata Metadata
}

// AddResult reports a batch publish.
type AddResult struct {
	Added          int
	TotalDocuments int
}

// DeleteResult reports a retraction.
type DeleteResult struct {
	Deleted int
}

// Backend is the retrieval backend contract. Implementations embed and
// store documents; they do not retry internally.
type Backend interface {
	// AddDocuments embeds and stores a batch. Existing IDs are replaced.
	AddDocuments(ctx context.Context, docs []Document) (AddResult, error)
	// DeleteDocuments removes documents by ID. Unknown IDs are ignored.
	DeleteDocuments(ctx context.Context, ids []string) (DeleteResult, error)
}

// Embedder computes embedding vectors for a batch of texts. The returned
// slice has the same length and order as the input.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
