package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultSettleDelay is how long a file in the drop folder has to stay
// quiet before it is picked up. Copies usually arrive as one create
// followed by several writes.
const DefaultSettleDelay = 250 * time.Millisecond

// DropFolder turns files landing in a directory into single-file drops.
type DropFolder struct {
	dir         string
	settleDelay time.Duration
	watcher     *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func WatchDropFolder(dir string, settleDelay time.Duration) (*DropFolder, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't access drop folder")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("drop folder %s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create watcher")
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "couldn't watch %s", dir)
	}

	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}

	return &DropFolder{
		dir:         dir,
		settleDelay: settleDelay,
		watcher:     watcher,
		pending:     make(map[string]*time.Timer),
	}, nil
}

// Run calls fn with the path of every file that settles in the folder
// until ctx is done. fn runs on a timer goroutine.
func (d *DropFolder) Run(ctx context.Context, fn func(path string)) error {
	log.Debug("[DropFolder] Watching ", d.dir)
	defer d.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-d.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			d.schedule(event.Name, fn)
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("[DropFolder] Watcher error: ", err.Error())
		}
	}
}

func (d *DropFolder) schedule(path string, fn func(path string)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.pending[path]; ok {
		t.Reset(d.settleDelay)
		return
	}

	d.pending[path] = time.AfterFunc(d.settleDelay, func() {
		d.mu.Lock()
		delete(d.pending, path)
		d.mu.Unlock()

		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return
		}
		log.Debug("[DropFolder] Picked up ", path)
		fn(path)
	})
}

func (d *DropFolder) stopTimers() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.pending {
		t.Stop()
		delete(d.pending, path)
	}
}

func (d *DropFolder) Close() error {
	return d.watcher.Close()
}
