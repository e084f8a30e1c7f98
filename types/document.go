package types

// Document is one uploaded PDF. It only lives for the duration of a single
// upload-processing request.
type Document struct {
	Name  string // Original file name
	Data  []byte // Raw file bytes
	Pages int    // Page count, filled in during extraction
}

// Extraction is the result of running the text extractor over one batch.
type Extraction struct {
	Text         string // Concatenated text of every page, no separators
	Pages        int    // Total pages seen across all documents
	SkippedPages int    // Pages that yielded no text
}

// DocumentServiceConfig contains configuration options for chunking
type DocumentServiceConfig struct {
	MaxChunkSize int // Maximum size for text chunks, in characters
	OverlapSize  int // Size of overlap between chunks, in characters
}

// IndexedChunk is a chunk paired with its embedding, ready to be indexed.
type IndexedChunk struct {
	Position int       `bson:"position" json:"position"`
	Content  string    `bson:"content" json:"content"`
	Vector   []float32 `bson:"vector" json:"-"`
}

// RetrievedChunk is a search hit. Lower distance means more similar.
type RetrievedChunk struct {
	Position int     `json:"position"`
	Content  string  `json:"content"`
	Distance float32 `json:"distance"`
}

// IndexInfo describes the persisted index. A session keeps the IndexInfo of
// its last build as its index handle.
type IndexInfo struct {
	BuildID   string `bson:"build_id" json:"build_id"`
	Model     string `bson:"model" json:"model"`
	Dimension int    `bson:"dimension" json:"dimension"`
	Chunks    int    `bson:"chunks" json:"chunks"`
	BuiltAt   int64  `bson:"built_at" json:"built_at"`
}
