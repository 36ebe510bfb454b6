// Package markdown splits knowledge-base documents into retrieval chunks.
// Documents are divided into sections at ATX heading boundaries, then each
// section is split into word-bounded chunks that respect paragraph and
// sentence boundaries.
package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"

	"github.com/verdantscape/knowledge-engine/internal/knowledge"
	"github.com/verdantscape/knowledge-engine/internal/metadata"
)

const (
	// MinSectionWords is the smallest section that carries independent
	// meaning. Thinner sections are silently dropped, not merged.
	MinSectionWords = 50

	// MinChunkWords is the smallest chunk worth storing.
	MinChunkWords = 30

	// IntroductionTitle names the implicit section formed by content that
	// appears before the first heading.
	IntroductionTitle = "Introduction"
)

// ChunkingStrategy configures how section content is split into chunks.
type ChunkingStrategy struct {
	TargetSize        int  // Target chunk size in words
	Overlap           int  // Overlap between consecutive chunks, in words
	RespectBoundaries bool // Prefer paragraph/sentence boundaries over fixed windows
}

// DefaultStrategy returns the production chunking configuration.
func DefaultStrategy() ChunkingStrategy {
	return ChunkingStrategy{TargetSize: 300, Overlap: 50, RespectBoundaries: true}
}

// Section is a titled span of document text between two headings.
type Section struct {
	Title   string
	Content string
}

// Chunker parses markdown and produces classified document chunks.
type Chunker struct {
	parser   goldmark.Markdown
	strategy ChunkingStrategy
}

// NewChunker creates a chunker with the given strategy. A nil strategy uses
// DefaultStrategy.
func NewChunker(strategy *ChunkingStrategy) *Chunker {
	s := DefaultStrategy()
	if strategy != nil {
		s = *strategy
		if s.TargetSize <= 0 {
			s.TargetSize = DefaultStrategy().TargetSize
		}
		if s.Overlap < 0 {
			s.Overlap = 0
		}
	}
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &Chunker{parser: md, strategy: s}
}

// ChunkCorpus chunks a full document set, assigning corpus-wide chunk
// indexes and back-filling TotalChunks once the final size is known. The
// corpus this produces is the immutable input to the vector store.
func (c *Chunker) ChunkCorpus(docs []knowledge.Document) ([]knowledge.DocumentChunk, error) {
	var corpus []knowledge.DocumentChunk
	for _, doc := range docs {
		chunks, err := c.ChunkDocument([]byte(doc.Content), doc.Name, len(corpus))
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", doc.Name, err)
		}
		corpus = append(corpus, chunks...)
	}
	for i := range corpus {
		corpus[i].Metadata.TotalChunks = len(corpus)
	}
	return corpus, nil
}

// ChunkDocument splits one markdown document into classified chunks.
// startIndex is the corpus-wide index of the document's first chunk; chunk
// IDs are "{source}_{index}". TotalChunks is left zero for ChunkCorpus to
// back-fill. An empty or whitespace-only document yields no chunks and no
// error.
func (c *Chunker) ChunkDocument(source []byte, sourceID string, startIndex int) ([]knowledge.DocumentChunk, error) {
	sections, err := c.Sections(source)
	if err != nil {
		return nil, err
	}

	var chunks []knowledge.DocumentChunk
	index := startIndex
	for _, section := range sections {
		if countWords(section.Content) < MinSectionWords {
			continue // Too thin to carry independent meaning
		}
		for _, content := range c.splitSection(section.Content) {
			wordCount := countWords(content)
			if wordCount < MinChunkWords {
				continue
			}
			chunks = append(chunks, knowledge.DocumentChunk{
				ID:        fmt.Sprintf("%s_%d", sourceID, index),
				Content:   content,
				Metadata:  metadata.Classify(content, section.Title, sourceID, index, 0),
				WordCount: wordCount,
			})
			index++
		}
	}
	return chunks, nil
}

// Sections splits a document at heading lines (H1 through H6). Content
// before the first heading becomes an "Introduction" section, as does a
// document with no headings at all.
func (c *Chunker) Sections(source []byte) ([]Section, error) {
	if len(strings.TrimSpace(string(source))) == 0 {
		return nil, nil
	}

	reader := text.NewReader(source)
	doc := c.parser.Parser().Parse(reader)

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1), // Include H1
		toc.MaxDepth(6), // Every heading level is a section boundary
		toc.Compact(true),
	)
	if err != nil {
		return nil, fmt.Errorf("inspect TOC: %w", err)
	}

	// Flatten the TOC tree into document order.
	var headings []headingRef
	flattenItems(doc, tree.Items, &headings)

	if len(headings) == 0 {
		return []Section{{Title: IntroductionTitle, Content: strings.TrimSpace(string(source))}}, nil
	}

	var sections []Section

	// Leading content before the first heading.
	firstStart := lineStart(source, headings[0].segment.Start)
	if intro := strings.TrimSpace(string(source[:firstStart])); intro != "" {
		sections = append(sections, Section{Title: IntroductionTitle, Content: intro})
	}

	for i, h := range headings {
		start := lineEnd(source, h.segment.Stop)
		end := len(source)
		if i+1 < len(headings) {
			end = lineStart(source, headings[i+1].segment.Start)
		}
		sections = append(sections, Section{
			Title:   h.title,
			Content: strings.TrimSpace(string(source[start:end])),
		})
	}
	return sections, nil
}

type headingRef struct {
	title   string
	segment text.Segment
}

// flattenItems walks TOC items depth-first, which matches document order,
// resolving each item to its heading node's line segment.
func flattenItems(doc ast.Node, items toc.Items, out *[]headingRef) {
	for _, item := range items {
		if node := findHeadingByID(doc, string(item.ID)); node != nil {
			*out = append(*out, headingRef{
				title:   string(item.Title),
				segment: node.Lines().At(0),
			})
		}
		if len(item.Items) > 0 {
			flattenItems(doc, item.Items, out)
		}
	}
}

// findHeadingByID locates a heading node by its auto-generated ID.
func findHeadingByID(node ast.Node, id string) ast.Node {
	var found ast.Node
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindHeading {
			headingID, ok := n.AttributeString("id")
			if ok && string(headingID.([]byte)) == id {
				found = n
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return found
}

// splitSection splits one section's content into chunk texts according to
// the configured strategy.
func (c *Chunker) splitSection(content string) []string {
	if countWords(content) <= c.strategy.TargetSize {
		return []string{content}
	}
	if !c.strategy.RespectBoundaries {
		return c.slidingWindow(content)
	}
	return c.paragraphChunks(content)
}

// paragraphChunks greedily accumulates whole paragraphs until the target
// size would be exceeded, carrying the last paragraph of a closed chunk
// forward as overlap. Paragraphs larger than 1.5x the target are pre-split
// at sentence boundaries.
func (c *Chunker) paragraphChunks(content string) []string {
	var chunks []string
	var current []string
	currentWords := 0

	for _, para := range splitParagraphs(content) {
		w := countWords(para)

		// An oversized paragraph is split at sentence boundaries on its
		// own, independent of the surrounding paragraph accumulation.
		if w > c.strategy.TargetSize*3/2 {
			if len(current) > 0 {
				chunks = append(chunks, strings.Join(current, "\n\n"))
				current = nil
				currentWords = 0
			}
			chunks = append(chunks, c.sentenceChunks(para)...)
			continue
		}

		if currentWords > 0 && currentWords+w > c.strategy.TargetSize {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			if c.strategy.Overlap > 0 {
				// Paragraph-granularity overlap: the closed chunk's last
				// paragraph opens the next chunk.
				last := current[len(current)-1]
				current = []string{last}
				currentWords = countWords(last)
			} else {
				current = nil
				currentWords = 0
			}
		}
		current = append(current, para)
		currentWords += w
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n\n"))
	}
	return chunks
}

// sentenceChunks splits an oversized paragraph at sentence boundaries using
// the same greedy accumulation rule.
func (c *Chunker) sentenceChunks(paragraph string) []string {
	var chunks []string
	var current []string
	currentWords := 0
	for _, sentence := range splitSentences(paragraph) {
		w := countWords(sentence)
		if currentWords > 0 && currentWords+w > c.strategy.TargetSize {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			currentWords = 0
		}
		current = append(current, sentence)
		currentWords += w
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// slidingWindow chunks by fixed word windows of TargetSize, advancing
// TargetSize-Overlap words each step. No boundary awareness.
func (c *Chunker) slidingWindow(content string) []string {
	words := strings.Fields(content)
	step := c.strategy.TargetSize - c.strategy.Overlap
	if step <= 0 {
		step = c.strategy.TargetSize
	}

	var chunks []string
	for start := 0; start < len(words); start += step {
		end := min(start+c.strategy.TargetSize, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

var (
	paragraphSplit = regexp.MustCompile(`\n\s*\n`)
	sentenceSplit  = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

func splitParagraphs(content string) []string {
	var paragraphs []string
	for _, p := range paragraphSplit.Split(content, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

func splitSentences(paragraph string) []string {
	var sentences []string
	for _, s := range sentenceSplit.FindAllString(paragraph, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

// lineStart walks back from pos to the start of its line.
func lineStart(source []byte, pos int) int {
	for pos > 0 && source[pos-1] != '\n' {
		pos--
	}
	return pos
}

// lineEnd walks forward from pos to just past the end of its line.
func lineEnd(source []byte, pos int) int {
	for pos < len(source) && source[pos] != '\n' {
		pos++
	}
	if pos < len(source) {
		pos++
	}
	return pos
}
