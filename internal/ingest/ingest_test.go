package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDirectory(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "walmart.txt"), "WALMART TOTAL $12.00")
	write(t, filepath.Join(root, "copy-of-walmart.pdf"), "WALMART TOTAL $12.00")
	write(t, filepath.Join(root, "notes.md"), "not a receipt")
	write(t, filepath.Join(root, ".cache", "old.txt"), "hidden")
	write(t, filepath.Join(root, "2024", "shell.png"), "png bytes")

	var got []string
	results, stats, err := Directory(context.Background(), root, DirOptions{SkipHidden: true},
		func(_ context.Context, path string) error {
			got = append(got, filepath.Base(path))
			return nil
		})
	require.NoError(t, err)

	sort.Strings(got)
	assert.Len(t, got, 2, "duplicate content goes to the sink once")
	assert.Contains(t, got, "shell.png")
	assert.Equal(t, uint32(3), stats.Matched)
	assert.Equal(t, uint32(3), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Deduplicated)
	assert.Zero(t, stats.Failed)
	assert.Len(t, results, 3)
}

func TestDirectory_SharedHashesAndFailures(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.txt"), "alpha")
	write(t, filepath.Join(root, "b.txt"), "beta")

	seen := NewHashSet()
	sinkErr := errors.New("store unavailable")
	_, stats, err := Directory(context.Background(), root, DirOptions{Seen: seen},
		func(_ context.Context, path string) error {
			if filepath.Base(path) == "b.txt" {
				return sinkErr
			}
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), stats.Failed)
	assert.Equal(t, 1, seen.Len(), "failed files are forgotten so they can be retried")

	var retried []string
	_, stats, err = Directory(context.Background(), root, DirOptions{Seen: seen},
		func(_ context.Context, path string) error {
			retried = append(retried, filepath.Base(path))
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt"}, retried)
	assert.Equal(t, uint32(1), stats.Deduplicated)
}

func TestDirectory_RequiresRoot(t *testing.T) {
	_, _, err := Directory(context.Background(), " ", DirOptions{}, nil)
	assert.Error(t, err)
}

func TestExtSetAndHidden(t *testing.T) {
	exts := ExtSet([]string{".PDF", " txt ", ""})
	assert.True(t, AllowedExt(".pdf", exts))
	assert.True(t, AllowedExt("TXT", exts))
	assert.False(t, AllowedExt("png", exts))
	assert.True(t, AllowedExt("png", ExtSet(nil)))

	assert.True(t, IsHidden("/a/.git"))
	assert.False(t, IsHidden("/a/b.txt"))
	assert.False(t, IsHidden("."))
}

func TestWatch(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "existing.txt"), "already here")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := Watch(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		Debounce:    20 * time.Millisecond,
	})
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, "existing.txt", filepath.Base(p))
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan did not emit")
	}

	write(t, filepath.Join(root, "ignored.md"), "skip me")
	write(t, filepath.Join(root, "new.txt"), "CVS TOTAL $3.00")

	select {
	case p := <-events:
		assert.Equal(t, "new.txt", filepath.Base(p))
	case <-time.After(2 * time.Second):
		t.Fatal("new file was not emitted")
	}

	cancel()
	for range events {
	}
}

func TestWatch_NoRoots(t *testing.T) {
	_, _, err := Watch(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
