// Package main provides the MCP server entry point for the landscape
// knowledge retrieval engine.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/verdantscape/knowledge-engine/internal/embedding"
	"github.com/verdantscape/knowledge-engine/internal/engine"
	mcpserver "github.com/verdantscape/knowledge-engine/internal/mcp"
	"github.com/verdantscape/knowledge-engine/internal/source"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	port := getEnv("PORT", "8080")

	loader, err := buildLoader()
	if err != nil {
		log.Fatalf("failed to configure document source: %v", err)
	}

	embeddingClient, err := embedding.NewClient()
	if err != nil {
		log.Fatalf("failed to create embedding client: %v", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, 0) // Use default batch size

	// Bootstrap in the background so /health can report readiness while the
	// embedding pass runs. Tool calls before completion fail fast with the
	// engine's not-initialized error.
	eng := engine.Default()
	go func() {
		if err := eng.Init(ctx, engine.Config{Loader: loader, Provider: embedder}); err != nil {
			log.Fatalf("bootstrap failed: %v", err)
		}
		result := eng.BuildResult()
		log.Printf("knowledge base ready: %d documents, %d chunks in %s",
			result.TotalDocs, result.TotalChunks, result.Duration.Round(time.Millisecond))
	}()

	server := mcpserver.NewServer(&mcpserver.Config{Engine: eng})

	mux := http.NewServeMux()
	mux.HandleFunc("/", mcpserver.NewLandingHandler())
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(eng))
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	// Check if running in server mode (HTTP) or stdio mode (local development)
	serverMode := getEnv("SERVER_MODE", "false") == "true"

	if serverMode {
		addr := "0.0.0.0:" + port
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run MCP server over stdin/stdout for local clients
		// Also start HTTP health endpoint in background for local testing
		go func() {
			addr := "0.0.0.0:" + port
			log.Printf("Starting health server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("Health server error: %v", err)
			}
		}()

		log.Println("Starting Landscape Knowledge MCP Server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

// buildLoader selects the document source: a GitHub repository when
// KNOWLEDGE_GITHUB_REPO ("owner/repo") is set, otherwise a local directory.
func buildLoader() (source.Loader, error) {
	if repo := os.Getenv("KNOWLEDGE_GITHUB_REPO"); repo != "" {
		parts := strings.SplitN(repo, "/", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("KNOWLEDGE_GITHUB_REPO must be owner/repo, got %q", repo)
		}
		return source.NewGitHubLoader(parts[0], parts[1], getEnv("KNOWLEDGE_GITHUB_PATH", "docs/knowledge"))
	}
	return source.NewDirLoader(getEnv("KNOWLEDGE_DOCS_DIR", "docs/knowledge")), nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
