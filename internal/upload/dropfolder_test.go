package upload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDropFolderPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	folder, err := WatchDropFolder(dir, 50*time.Millisecond)
	ok(t, err)
	defer folder.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	picked := make(chan string, 4)
	go folder.Run(ctx, func(path string) { picked <- path })

	ok(t, os.WriteFile(filepath.Join(dir, ".hidden.png"), pngBytes(t, 2, 2), 0644))
	path := filepath.Join(dir, "leaf.png")
	ok(t, os.WriteFile(path, pngBytes(t, 4, 4), 0644))

	select {
	case got := <-picked:
		equals(t, got, path)
	case <-time.After(5 * time.Second):
		t.Fatal("drop folder never picked up the file")
	}

	select {
	case got := <-picked:
		t.Fatalf("unexpected second pick: %s", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchDropFolderNeedsDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	ok(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := WatchDropFolder(file, 0)
	notEquals(t, err, nil)

	_, err = WatchDropFolder(filepath.Join(t.TempDir(), "missing"), 0)
	notEquals(t, err, nil)
}
