package document

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Segment splits layout markdown into an ordered run of text and table
// blocks. A line shaped like a markdown pipe row (`| ... |`) counts as
// tabular; consecutive table lines form one table block. Blocks tile the
// input exactly, so concatenating their text reproduces markdown unchanged.
func Segment(docID, source, markdown string) Extracted {
	doc := Extracted{
		ID:     docID,
		Source: source,
		Title:  ExtractTitle(markdown, source),
		Text:   markdown,
	}
	if markdown == "" {
		return doc
	}

	var blocks []Block
	tableCount := 0
	offset := 0
	blockStart := 0
	blockIsTable := isTableLine(firstLine(markdown))

	flush := func(end int) {
		if end == blockStart {
			return
		}
		b := Block{
			Kind:  BlockText,
			Text:  markdown[blockStart:end],
			Start: blockStart,
			End:   end,
		}
		if blockIsTable {
			b.Kind = BlockTable
			b.TableID = fmt.Sprintf("t%d", tableCount)
			tableCount++
		}
		blocks = append(blocks, b)
		blockStart = end
	}

	for offset < len(markdown) {
		lineEnd := strings.IndexByte(markdown[offset:], '\n')
		if lineEnd < 0 {
			lineEnd = len(markdown)
		} else {
			lineEnd = offset + lineEnd + 1 // keep the newline with its line
		}

		table := isTableLine(markdown[offset:lineEnd])
		if table != blockIsTable {
			flush(offset)
			blockIsTable = table
		}
		offset = lineEnd
	}
	flush(len(markdown))

	doc.Blocks = blocks
	return doc
}

// isTableLine reports whether a raw line (possibly with trailing newline)
// looks like a markdown table row: pipe-delimited cells, optionally indented.
func isTableLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= 2 && strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// markdownParser is shared; goldmark parsers are safe for concurrent use.
var markdownParser = goldmark.New(goldmark.WithExtensions(extension.Table))

// ExtractTitle extracts the document title from layout markdown:
// first level-1 heading, else first level-2 heading, else the source
// filename without extension with words capitalized.
func ExtractTitle(markdown, source string) string {
	if markdown != "" {
		reader := text.NewReader([]byte(markdown))
		root := markdownParser.Parser().Parse(reader)

		var firstH1, firstH2 string
		_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}
			heading, ok := n.(*ast.Heading)
			if !ok {
				return ast.WalkContinue, nil
			}
			headingText := nodeText(heading, []byte(markdown))
			if heading.Level == 1 && firstH1 == "" {
				firstH1 = headingText
				return ast.WalkStop, nil
			}
			if heading.Level == 2 && firstH2 == "" {
				firstH2 = headingText
			}
			return ast.WalkContinue, nil
		})

		if firstH1 != "" {
			return firstH1
		}
		if firstH2 != "" {
			return firstH2
		}
	}
	return titleFromFilename(source)
}

// nodeText collects the plain text beneath an AST node.
func nodeText(n ast.Node, content []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(content))
		case *ast.String:
			sb.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// titleFromFilename derives a readable title from a file name.
func titleFromFilename(source string) string {
	name := filepath.Base(source)
	if ext := filepath.Ext(name); ext != "" {
		name = name[:len(name)-len(ext)]
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)

	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
