package voices

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/notevox/notevox/tts"
)

// voiceExt is the file extension of Kokoro voice tensors.
const voiceExt = ".pt"

// WithDiscovered returns a new table containing the receiver's entries
// plus every voice file found in dir. The receiver is not modified.
func (t *Table) WithDiscovered(dir string) (*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", tts.ErrVoicesDirNotFound, dir)
		}
		return nil, fmt.Errorf("read voices directory: %w", err)
	}

	c := t.clone()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), voiceExt) {
			continue
		}
		c.register(strings.TrimSuffix(name, filepath.Ext(name)))
	}
	return c, nil
}

// Watcher re-scans a voices directory whenever voice files change and
// hands a fresh table snapshot to its callback. The engine keeps using
// whatever snapshot it was given; swapping in the new one is the host's
// call.
type Watcher struct {
	base     *Table
	dir      string
	onChange func(*Table)

	fw       *fsnotify.Watcher
	done     chan struct{}
	closeMu  sync.Mutex
	closed   bool
}

// Watch starts watching dir for voice file changes. The callback runs on
// the watcher's goroutine; it must not block for long.
func Watch(dir string, base *Table, onChange func(*Table)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		base:     base,
		dir:      dir,
		onChange: onChange,
		fw:       fw,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !isVoiceFileEvent(event) {
				continue
			}
			if table, err := w.base.WithDiscovered(w.dir); err == nil {
				w.onChange(table)
			}
		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			// Watch errors are transient; the next event triggers a rescan.
		}
	}
}

func isVoiceFileEvent(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), voiceExt) {
		return false
	}
	return event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Remove) ||
		event.Op.Has(fsnotify.Rename)
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	w.closeMu.Lock()
	defer w.closeMu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	close(w.done)
	return w.fw.Close()
}
