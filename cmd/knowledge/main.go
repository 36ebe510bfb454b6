// Package main provides the knowledge CLI for inspecting and querying the
// landscape knowledge base.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/verdantscape/knowledge-engine/internal/embedding"
	"github.com/verdantscape/knowledge-engine/internal/engine"
	"github.com/verdantscape/knowledge-engine/internal/knowledge"
	"github.com/verdantscape/knowledge-engine/internal/markdown"
	"github.com/verdantscape/knowledge-engine/internal/retrieval"
	"github.com/verdantscape/knowledge-engine/internal/source"
	"github.com/verdantscape/knowledge-engine/internal/store"
)

var (
	docsDir     string
	strategyArg string
	topK        int
	categoryArg string
)

var rootCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Landscape knowledge base tooling",
	Long:  "CLI tool for inspecting and querying the landscaping knowledge retrieval engine",
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Chunk and classify the knowledge base, print corpus statistics",
	Long: `Runs the chunking pipeline over the docs directory without embedding
anything, then prints chunk counts by source document and category.
Useful for checking how knowledge documents will be split before
paying for an embedding pass.`,
	RunE: runStats,
}

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Bootstrap the engine and run one retrieval",
	Long: `Loads the docs directory, builds the vector store (requires
OPENAI_API_KEY), and runs a single query, printing the ranked results.

Environment variables:
  OPENAI_API_KEY      OpenAI API key for embeddings (required)
  KNOWLEDGE_DOCS_DIR  Default docs directory (overridden by --docs)`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

var pricingCmd = &cobra.Command{
	Use:   "pricing [query]",
	Short: "Bootstrap the engine and extract pricing context for a query",
	Args:  cobra.ExactArgs(1),
	RunE:  runPricing,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&docsDir, "docs", "", "docs directory (default $KNOWLEDGE_DOCS_DIR or docs/knowledge)")
	queryCmd.Flags().StringVar(&strategyArg, "strategy", "hybrid", "retrieval strategy: semantic, keyword, or hybrid")
	queryCmd.Flags().IntVar(&topK, "top-k", 5, "number of results")
	queryCmd.Flags().StringVar(&categoryArg, "category", "", "exact-match category filter")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(pricingCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveDocsDir() string {
	if docsDir != "" {
		return docsDir
	}
	if v := os.Getenv("KNOWLEDGE_DOCS_DIR"); v != "" {
		return v
	}
	return "docs/knowledge"
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	docs, err := source.NewDirLoader(resolveDocsDir()).Load(ctx)
	if err != nil {
		return err
	}

	chunks, err := markdown.NewChunker(nil).ChunkCorpus(docs)
	if err != nil {
		return err
	}

	bySource := make(map[string]int)
	byCategory := make(map[knowledge.Category]int)
	totalWords := 0
	for _, chunk := range chunks {
		bySource[chunk.Metadata.Source]++
		byCategory[chunk.Metadata.Category]++
		totalWords += chunk.WordCount
	}

	fmt.Printf("Documents: %d\n", len(docs))
	fmt.Printf("Chunks:    %d\n", len(chunks))
	if len(chunks) > 0 {
		fmt.Printf("Avg words: %d\n", totalWords/len(chunks))
	}

	fmt.Println("\nBy source:")
	for _, name := range sortedKeys(bySource) {
		fmt.Printf("  %-30s %d\n", name, bySource[name])
	}

	fmt.Println("\nBy category:")
	categories := make(map[string]int, len(byCategory))
	for c, n := range byCategory {
		categories[string(c)] = n
	}
	for _, name := range sortedKeys(categories) {
		fmt.Printf("  %-30s %d\n", name, categories[name])
	}
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	var filter *store.Filter
	if categoryArg != "" {
		filter = &store.Filter{Category: knowledge.Category(categoryArg)}
	}

	rc, err := svc.Retrieve(ctx, args[0], retrieval.Options{
		Strategy: knowledge.Strategy(strategyArg),
		TopK:     topK,
		Filter:   filter,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%d results in %s (strategy: %s)\n", rc.TotalResults, rc.RetrievalTime.Round(time.Millisecond), rc.Strategy)
	if rc.Degraded {
		fmt.Println("warning: hybrid ranking degraded to keyword-only")
	}
	for i, r := range rc.Results {
		fmt.Printf("\n%d. [%.3f] %s (%s / %s)\n", i+1, r.Score, r.Chunk.ID, r.Chunk.Metadata.Category, r.Chunk.Metadata.Section)
		fmt.Printf("   %s\n", firstLine(r.Chunk.Content, 160))
	}
	return nil
}

func runPricing(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	pc, err := svc.RetrievePricingContext(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Service:     %s\n", pc.Service)
	if pc.PriceRange.High > 0 {
		fmt.Printf("Price range: $%.2f - $%.2f (avg $%.2f)\n", pc.PriceRange.Low, pc.PriceRange.High, pc.PriceRange.Average)
	} else {
		fmt.Println("Price range: not found")
	}
	if pc.Unit != "" {
		fmt.Printf("Unit:        %s\n", pc.Unit)
	}
	if len(pc.Factors) > 0 {
		fmt.Printf("Factors:     %v\n", pc.Factors)
	}
	return nil
}

func bootstrap(ctx context.Context) (*retrieval.Service, error) {
	embeddingClient, err := embedding.NewClient()
	if err != nil {
		return nil, err
	}

	eng := engine.New()
	err = eng.Init(ctx, engine.Config{
		Loader:   source.NewDirLoader(resolveDocsDir()),
		Provider: embedding.NewEmbedder(embeddingClient, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return eng.Service()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstLine(s string, max int) string {
	if i := len(s); i > max {
		s = s[:max] + "..."
	}
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
