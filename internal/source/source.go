// Package source loads raw knowledge-base documents for bootstrap. The
// hosting application decides where its documents live: a local directory
// bundled with the deploy, or the marketing-site GitHub repository.
package source

import (
	"context"

	"github.com/verdantscape/knowledge-engine/internal/knowledge"
)

// Loader delivers the full document set for one corpus build. A load
// failure is fatal to bootstrap: the engine never proceeds with a partial
// corpus.
type Loader interface {
	Load(ctx context.Context) ([]knowledge.Document, error)
}
