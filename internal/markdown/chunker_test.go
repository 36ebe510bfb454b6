package markdown

import (
	"fmt"
	"strings"
	"testing"

	"github.com/verdantscape/knowledge-engine/internal/knowledge"
)

// sentenceOf builds a sentence of exactly n words ("w000 w001 ... .").
// The final word carries the period so word counts stay exact.
func sentenceOf(prefix string, n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("%s%03d", prefix, i)
	}
	return strings.Join(words, " ") + "."
}

func TestSections(t *testing.T) {
	source := []byte(`Leading text before any heading sits in the implicit intro.

# Overview

Overview body text.

## Details

Details body text.

### Fine Print

Fine print body text.
`)

	chunker := NewChunker(nil)
	sections, err := chunker.Sections(source)
	if err != nil {
		t.Fatalf("Sections: %v", err)
	}

	wantTitles := []string{IntroductionTitle, "Overview", "Details", "Fine Print"}
	if len(sections) != len(wantTitles) {
		t.Fatalf("got %d sections, want %d", len(sections), len(wantTitles))
	}
	for i, want := range wantTitles {
		if sections[i].Title != want {
			t.Errorf("section %d title = %q, want %q", i, sections[i].Title, want)
		}
	}
	if !strings.Contains(sections[1].Content, "Overview body") {
		t.Errorf("Overview content = %q, missing body text", sections[1].Content)
	}
	if strings.Contains(sections[1].Content, "Details body") {
		t.Errorf("Overview content leaked into next section: %q", sections[1].Content)
	}
}

func TestSectionsNoHeadings(t *testing.T) {
	chunker := NewChunker(nil)
	sections, err := chunker.Sections([]byte("Just a plain paragraph with no headings at all."))
	if err != nil {
		t.Fatalf("Sections: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	if sections[0].Title != IntroductionTitle {
		t.Errorf("title = %q, want %q", sections[0].Title, IntroductionTitle)
	}
}

func TestSectionsEmptyDocument(t *testing.T) {
	chunker := NewChunker(nil)
	for _, source := range []string{"", "   \n\n  \t"} {
		sections, err := chunker.Sections([]byte(source))
		if err != nil {
			t.Fatalf("Sections(%q): %v", source, err)
		}
		if len(sections) != 0 {
			t.Errorf("Sections(%q) = %d sections, want 0", source, len(sections))
		}
	}
}

func TestChunkDocumentDropsThinSections(t *testing.T) {
	// A 20-word section is below MinSectionWords and yields no chunks.
	source := []byte("# Thin\n\n" + sentenceOf("w", 20))

	chunks, err := NewChunker(nil).ChunkDocument(source, "thin", 0)
	if err != nil {
		t.Fatalf("ChunkDocument: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("got %d chunks from a thin section, want 0", len(chunks))
	}
}

func TestChunkDocumentIDsAndCounts(t *testing.T) {
	source := []byte("# Pricing\n\n" + sentenceOf("w", 60))

	chunks, err := NewChunker(nil).ChunkDocument(source, "pricing-guide", 7)
	if err != nil {
		t.Fatalf("ChunkDocument: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}

	chunk := chunks[0]
	if chunk.ID != "pricing-guide_7" {
		t.Errorf("ID = %q, want %q", chunk.ID, "pricing-guide_7")
	}
	if chunk.WordCount != 60 {
		t.Errorf("WordCount = %d, want 60", chunk.WordCount)
	}
	if chunk.Metadata.Source != "pricing-guide" {
		t.Errorf("Source = %q, want %q", chunk.Metadata.Source, "pricing-guide")
	}
	if chunk.Metadata.Section != "Pricing" {
		t.Errorf("Section = %q, want %q", chunk.Metadata.Section, "Pricing")
	}
	if chunk.Metadata.ChunkIndex != 7 {
		t.Errorf("ChunkIndex = %d, want 7", chunk.Metadata.ChunkIndex)
	}
	if chunk.Metadata.TotalChunks != 0 {
		t.Errorf("TotalChunks = %d, want 0 before corpus back-fill", chunk.Metadata.TotalChunks)
	}
}

func TestChunkCorpusBackfillsTotals(t *testing.T) {
	docs := []knowledge.Document{
		{Name: "one", Content: "# A\n\n" + sentenceOf("a", 60)},
		{Name: "two", Content: "# B\n\n" + sentenceOf("b", 60)},
	}

	corpus, err := NewChunker(nil).ChunkCorpus(docs)
	if err != nil {
		t.Fatalf("ChunkCorpus: %v", err)
	}
	if len(corpus) != 2 {
		t.Fatalf("got %d chunks, want 2", len(corpus))
	}
	if corpus[0].ID != "one_0" || corpus[1].ID != "two_1" {
		t.Errorf("IDs = %q, %q, want one_0, two_1", corpus[0].ID, corpus[1].ID)
	}
	for i, chunk := range corpus {
		if chunk.Metadata.ChunkIndex != i {
			t.Errorf("chunk %d ChunkIndex = %d", i, chunk.Metadata.ChunkIndex)
		}
		if chunk.Metadata.TotalChunks != 2 {
			t.Errorf("chunk %d TotalChunks = %d, want 2", i, chunk.Metadata.TotalChunks)
		}
	}
}

func TestParagraphChunksOverlap(t *testing.T) {
	// Four 40-word paragraphs against a 60-word target: each closed chunk's
	// last paragraph must reappear as the next chunk's first paragraph.
	paragraphs := []string{
		sentenceOf("alpha", 40),
		sentenceOf("beta", 40),
		sentenceOf("gamma", 40),
		sentenceOf("delta", 40),
	}
	content := strings.Join(paragraphs, "\n\n")

	chunker := NewChunker(&ChunkingStrategy{TargetSize: 60, Overlap: 10, RespectBoundaries: true})
	chunks := chunker.splitSection(content)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}

	for i := 0; i < len(chunks)-1; i++ {
		parasA := splitParagraphs(chunks[i])
		parasB := splitParagraphs(chunks[i+1])
		if parasA[len(parasA)-1] != parasB[0] {
			t.Errorf("chunk %d last paragraph != chunk %d first paragraph", i, i+1)
		}
	}

	// Every source paragraph must appear somewhere.
	joined := strings.Join(chunks, "\n\n")
	for i, p := range paragraphs {
		if !strings.Contains(joined, p) {
			t.Errorf("paragraph %d missing from chunk output", i)
		}
	}
}

func TestParagraphChunksNoOverlap(t *testing.T) {
	content := sentenceOf("alpha", 40) + "\n\n" + sentenceOf("beta", 40)

	chunker := NewChunker(&ChunkingStrategy{TargetSize: 60, Overlap: 0, RespectBoundaries: true})
	chunks := chunker.splitSection(content)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if strings.Contains(chunks[1], "alpha000") {
		t.Errorf("zero overlap but chunk 1 repeats chunk 0 content")
	}
}

func TestOversizedParagraphSplitsAtSentences(t *testing.T) {
	// One 120-word paragraph of 12-word sentences against a 60-word target
	// (1.5x threshold is 90) splits into sentence-bounded chunks.
	var sentences []string
	for i := 0; i < 10; i++ {
		sentences = append(sentences, sentenceOf(fmt.Sprintf("s%d", i), 12))
	}
	content := strings.Join(sentences, " ")

	chunker := NewChunker(&ChunkingStrategy{TargetSize: 60, Overlap: 10, RespectBoundaries: true})
	chunks := chunker.splitSection(content)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	for i, chunk := range chunks {
		if got := countWords(chunk); got != 60 {
			t.Errorf("chunk %d has %d words, want 60", i, got)
		}
		if !strings.HasSuffix(strings.TrimSpace(chunk), ".") {
			t.Errorf("chunk %d does not end at a sentence boundary: %q", i, chunk)
		}
	}
}

func TestSlidingWindow(t *testing.T) {
	words := make([]string, 100)
	for i := range words {
		words[i] = fmt.Sprintf("w%03d", i)
	}
	content := strings.Join(words, " ")

	chunker := NewChunker(&ChunkingStrategy{TargetSize: 50, Overlap: 10, RespectBoundaries: false})
	chunks := chunker.splitSection(content)

	// Windows start at 0, 40, 80: [0,50), [40,90), [80,100).
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	wantFirst := []string{"w000", "w040", "w080"}
	wantLen := []int{50, 50, 20}
	for i, chunk := range chunks {
		fields := strings.Fields(chunk)
		if fields[0] != wantFirst[i] {
			t.Errorf("window %d starts at %q, want %q", i, fields[0], wantFirst[i])
		}
		if len(fields) != wantLen[i] {
			t.Errorf("window %d has %d words, want %d", i, len(fields), wantLen[i])
		}
	}
}

func TestChunkDocumentDropsThinChunks(t *testing.T) {
	// Section is wide enough to keep (100 words) and splits under a 50-word
	// window into [50, 50... ] via sliding windows; the trailing 20-word
	// window falls under MinChunkWords and is dropped.
	words := make([]string, 100)
	for i := range words {
		words[i] = fmt.Sprintf("w%03d", i)
	}
	source := []byte("# Wide\n\n" + strings.Join(words, " "))

	chunker := NewChunker(&ChunkingStrategy{TargetSize: 50, Overlap: 10, RespectBoundaries: false})
	chunks, err := chunker.ChunkDocument(source, "wide", 0)
	if err != nil {
		t.Fatalf("ChunkDocument: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2 (trailing thin window dropped)", len(chunks))
	}
	for _, chunk := range chunks {
		if chunk.WordCount < MinChunkWords {
			t.Errorf("kept a chunk with %d words, below minimum %d", chunk.WordCount, MinChunkWords)
		}
	}
}

func TestNewChunkerDefaults(t *testing.T) {
	if got := NewChunker(nil).strategy; got != DefaultStrategy() {
		t.Errorf("nil strategy = %+v, want default %+v", got, DefaultStrategy())
	}
	got := NewChunker(&ChunkingStrategy{TargetSize: -1, Overlap: -5}).strategy
	if got.TargetSize != DefaultStrategy().TargetSize {
		t.Errorf("TargetSize = %d, want default %d", got.TargetSize, DefaultStrategy().TargetSize)
	}
	if got.Overlap != 0 {
		t.Errorf("Overlap = %d, want 0", got.Overlap)
	}
}
