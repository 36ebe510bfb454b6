package source

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v81/github"

	"github.com/verdantscape/knowledge-engine/internal/knowledge"
)

// GitHubLoader fetches knowledge documents from a directory of a GitHub
// repository, for teams that keep the knowledge base next to the
// marketing-site content instead of bundling it with the deploy.
type GitHubLoader struct {
	client   *github.Client
	owner    string
	repo     string
	basePath string
}

// NewGitHubLoader creates a loader for owner/repo rooted at basePath.
// If GITHUB_TOKEN is set the client is authenticated for higher rate
// limits; rate limiting is handled transparently either way.
func NewGitHubLoader(owner, repo, basePath string) (*GitHubLoader, error) {
	rateLimiter, err := github_ratelimit.NewRateLimitWaiterClient(nil)
	if err != nil {
		return nil, fmt.Errorf("create rate limiter: %w", err)
	}
	client := github.NewClient(rateLimiter)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHubLoader{
		client:   client,
		owner:    owner,
		repo:     repo,
		basePath: basePath,
	}, nil
}

// Load lists and fetches every markdown file under basePath. Any listing or
// fetch failure aborts the load with an error naming the path.
func (l *GitHubLoader) Load(ctx context.Context) ([]knowledge.Document, error) {
	paths, err := l.listRecursive(ctx, l.basePath, "")
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no markdown documents found in %s/%s under %s", l.owner, l.repo, l.basePath)
	}

	docs := make([]knowledge.Document, 0, len(paths))
	for _, relPath := range paths {
		content, err := l.fetch(ctx, relPath)
		if err != nil {
			return nil, err
		}
		docs = append(docs, knowledge.Document{
			Name:    strings.TrimSuffix(relPath, ".md"),
			Content: content,
		})
	}
	return docs, nil
}

// listRecursive traverses the repository directory tree collecting .md paths.
func (l *GitHubLoader) listRecursive(ctx context.Context, fullPath, relativePath string) ([]string, error) {
	var docs []string

	_, dirContents, _, err := l.client.Repositories.GetContents(ctx, l.owner, l.repo, fullPath, nil)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", fullPath, err)
	}

	for _, item := range dirContents {
		if item.Type == nil || item.Name == nil {
			continue
		}
		itemRelPath := path.Join(relativePath, *item.Name)

		switch *item.Type {
		case "file":
			if strings.HasSuffix(*item.Name, ".md") {
				docs = append(docs, itemRelPath)
			}
		case "dir":
			subDocs, err := l.listRecursive(ctx, path.Join(fullPath, *item.Name), itemRelPath)
			if err != nil {
				return nil, err
			}
			docs = append(docs, subDocs...)
		}
	}
	return docs, nil
}

// fetch downloads and decodes one markdown file.
func (l *GitHubLoader) fetch(ctx context.Context, relativePath string) (string, error) {
	fullPath := path.Join(l.basePath, relativePath)

	fileContent, _, _, err := l.client.Repositories.GetContents(ctx, l.owner, l.repo, fullPath, nil)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", fullPath, err)
	}
	if fileContent == nil || fileContent.Content == nil {
		return "", fmt.Errorf("no file content returned for %s", fullPath)
	}

	content, err := base64.StdEncoding.DecodeString(*fileContent.Content)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", fullPath, err)
	}
	return string(content), nil
}
