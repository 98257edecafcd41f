package document

// BlockKind distinguishes prose from tabular content in an extracted document.
type BlockKind string

const (
	BlockText  BlockKind = "text"
	BlockTable BlockKind = "table"
)

// Block is a contiguous run of extracted document text. Blocks tile the
// document text exactly: concatenating Block.Text in order reproduces
// Extracted.Text, and Start/End are the block's offsets within it.
type Block struct {
	Kind    BlockKind
	TableID string // Set for table blocks only, stable per document ("t0", "t1", ...)
	Text    string
	Start   int
	End     int
}

// Extracted is a document as returned by the layout extraction service,
// segmented into text and table blocks.
type Extracted struct {
	ID          string  // UUID of the document record
	Source      string  // Source file name (e.g. "q3-report.pdf")
	Title       string  // Extracted from the first markdown heading
	Text        string  // Full layout markdown
	Blocks      []Block // Ordered, tiling Text
	PageOffsets []int   // Character offset where each page begins
}

// Chunk is a bounded slice of document text prepared for embedding and
// indexing. Chunks are created once per document pass and are immutable.
type Chunk struct {
	DocumentID string
	Index      int      // 0-based position within the document
	Text       string   // Seeded overlap (if any) followed by fresh content
	TableIDs   []string // Tables contributing fresh content to this chunk
	Start      int      // Offset of the first fresh character in the source text
	End        int      // Offset past the last fresh character
	TableSplit bool     // True if this chunk holds rows of a table that exceeded the size limit
}
