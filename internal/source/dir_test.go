package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirLoaderLoad(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pricing"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "services.md"), []byte("# Services\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pricing", "sod.md"), []byte("# Sod\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0o644))

	docs, err := NewDirLoader(root).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	names := []string{docs[0].Name, docs[1].Name}
	assert.Contains(t, names, "services")
	assert.Contains(t, names, "pricing/sod")
	for _, doc := range docs {
		assert.NotEmpty(t, doc.Content)
	}
}

func TestDirLoaderMissingDir(t *testing.T) {
	_, err := NewDirLoader(filepath.Join(t.TempDir(), "nope")).Load(context.Background())
	assert.Error(t, err)
}

func TestDirLoaderEmptyDir(t *testing.T) {
	_, err := NewDirLoader(t.TempDir()).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no markdown documents")
}

func TestDirLoaderCanceledContext(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "doc.md"), []byte("# Doc\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDirLoader(root).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
