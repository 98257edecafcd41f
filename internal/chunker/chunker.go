// Package chunker splits extracted documents into retrieval-sized chunks
// while keeping markdown tables intact. It is a pure transformation: no I/O,
// no shared state, safe to call concurrently across documents.
package chunker

import (
	"fmt"
	"strings"

	"findex/internal/document"
)

// Config controls chunking behavior. Sizes are in bytes of markdown text.
type Config struct {
	MaxChunkChars  int  // Upper bound on chunk length
	OverlapChars   int  // Trailing characters of a chunk re-seeded into the next
	PreserveTables bool // Keep table blocks whole, splitting only at row boundaries
}

// DefaultConfig returns the defaults used by the ingestion pipeline.
// Both sizes are deliberately configurable via environment; nothing in the
// pipeline assumes these exact values.
func DefaultConfig() Config {
	return Config{
		MaxChunkChars:  2000,
		OverlapChars:   200,
		PreserveTables: true,
	}
}

// Validate checks the chunking parameters.
func (c Config) Validate() error {
	if c.MaxChunkChars <= 0 {
		return fmt.Errorf("%w: max_chunk_chars must be positive, got %d", ErrConfig, c.MaxChunkChars)
	}
	if c.OverlapChars < 0 {
		return fmt.Errorf("%w: overlap_chars must be non-negative, got %d", ErrConfig, c.OverlapChars)
	}
	if c.OverlapChars >= c.MaxChunkChars {
		return fmt.Errorf("%w: overlap_chars (%d) must be less than max_chunk_chars (%d)",
			ErrConfig, c.OverlapChars, c.MaxChunkChars)
	}
	return nil
}

// Split walks the document's blocks in order and produces chunks whose
// concatenation, minus the seeded overlap windows, reconstructs the source
// text exactly. Chunks close at block boundaries where possible; a table
// block rides with the current chunk whole (even past MaxChunkChars) unless
// the table alone exceeds the limit, in which case it is split at row
// boundaries and every resulting chunk is marked TableSplit.
//
// Split never emits a partial result: on error the chunk set is discarded.
func Split(doc document.Extracted, cfg Config) ([]document.Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := splitter{doc: doc, cfg: cfg}
	for _, b := range doc.Blocks {
		if b.Kind == document.BlockTable && cfg.PreserveTables {
			if len(b.Text) > cfg.MaxChunkChars {
				if err := s.appendTableRows(b); err != nil {
					return nil, err
				}
				continue
			}
			s.appendWholeTable(b)
			continue
		}
		s.appendFlowing(b)
	}
	s.emit()
	return s.chunks, nil
}

// splitter accumulates one chunk at a time while walking blocks.
type splitter struct {
	doc    document.Extracted
	cfg    Config
	chunks []document.Chunk

	buf        strings.Builder // seeded overlap followed by fresh content
	freshStart int             // source offset of the first fresh byte
	freshLen   int
	tableIDs   []string
	tableSplit bool
}

// appendFlowing adds prose (or, with PreserveTables off, table text) to the
// working buffer, closing chunks as the size limit is reached. The chunk
// closes at the preceding block boundary when the whole block does not fit;
// a block larger than a chunk's capacity is cut at whitespace when feasible.
func (s *splitter) appendFlowing(b document.Block) {
	if s.freshLen > 0 && s.buf.Len()+len(b.Text) > s.cfg.MaxChunkChars {
		s.emit()
	}

	text := b.Text
	offset := b.Start
	for len(text) > 0 {
		capacity := s.cfg.MaxChunkChars - s.buf.Len()
		if capacity <= 0 {
			s.emit()
			continue
		}
		if len(text) <= capacity {
			s.append(text, offset, b)
			return
		}
		cut := cutPoint(text, capacity)
		s.append(text[:cut], offset, b)
		s.emit()
		text = text[cut:]
		offset += cut
	}
}

// appendWholeTable extends the current chunk with an entire table, even if
// that pushes the chunk past MaxChunkChars.
func (s *splitter) appendWholeTable(b document.Block) {
	s.append(b.Text, b.Start, b)
	if s.buf.Len() >= s.cfg.MaxChunkChars {
		s.emit()
	}
}

// appendTableRows handles a table that exceeds MaxChunkChars on its own:
// the current chunk closes at the block boundary and the table is packed
// into dedicated chunks split at row boundaries, each marked TableSplit.
// A single row longer than the limit is emitted oversized rather than cut.
func (s *splitter) appendTableRows(b document.Block) error {
	rows := splitRows(b.Text)
	if len(rows) < 2 {
		return &MalformedDocumentError{
			DocumentID: s.doc.ID,
			TableID:    b.TableID,
			Reason:     "table exceeds max chunk size but has no row delimiters",
		}
	}

	s.emit()
	offset := b.Start
	for _, row := range rows {
		if s.freshLen > 0 && s.buf.Len()+len(row) > s.cfg.MaxChunkChars {
			s.emit()
		}
		s.append(row, offset, b)
		s.tableSplit = true
		offset += len(row)
	}
	// Close so trailing prose never shares a TableSplit chunk.
	s.emit()
	return nil
}

// append adds text to the working buffer and records provenance.
func (s *splitter) append(text string, start int, b document.Block) {
	if text == "" {
		return
	}
	if s.freshLen == 0 {
		s.freshStart = start
	}
	s.buf.WriteString(text)
	s.freshLen += len(text)

	if b.Kind == document.BlockTable {
		if n := len(s.tableIDs); n == 0 || s.tableIDs[n-1] != b.TableID {
			s.tableIDs = append(s.tableIDs, b.TableID)
		}
	}
}

// emit closes the working chunk, if it holds any fresh content, and seeds
// the next chunk's buffer with the trailing OverlapChars of its text.
func (s *splitter) emit() {
	if s.freshLen == 0 {
		return
	}

	text := s.buf.String()
	s.chunks = append(s.chunks, document.Chunk{
		DocumentID: s.doc.ID,
		Index:      len(s.chunks),
		Text:       text,
		TableIDs:   s.tableIDs,
		Start:      s.freshStart,
		End:        s.freshStart + s.freshLen,
		TableSplit: s.tableSplit,
	})

	seed := ""
	if s.cfg.OverlapChars > 0 {
		seed = text
		if len(seed) > s.cfg.OverlapChars {
			seed = seed[len(seed)-s.cfg.OverlapChars:]
		}
	}
	s.buf.Reset()
	s.buf.WriteString(seed)
	s.freshStart = 0
	s.freshLen = 0
	s.tableIDs = nil
	s.tableSplit = false
}

// cutPoint finds where to cut text so the leading piece is at most limit
// bytes, preferring the last whitespace inside the window so words stay
// whole. Falls back to a hard cut when the window has no whitespace.
func cutPoint(text string, limit int) int {
	window := text[:limit]
	if i := strings.LastIndexAny(window, " \n\t"); i > 0 {
		return i + 1 // whitespace stays with the leading piece
	}
	return limit
}

// splitRows splits table markdown after each newline so that concatenating
// the rows reproduces the input exactly.
func splitRows(text string) []string {
	var rows []string
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			rows = append(rows, text)
			break
		}
		rows = append(rows, text[:i+1])
		text = text[i+1:]
	}
	return rows
}
