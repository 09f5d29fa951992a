package cli

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

// ScenarioWatcher reports changes to one scenario file.
//
// It watches the file's directory rather than the file itself: editors that
// save by writing a temp file and renaming it replace the watched inode.
type ScenarioWatcher struct {
	File    string
	Changes <-chan string // Read-only external channel

	changes chan string
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewScenarioWatcher creates a watcher for path.
func NewScenarioWatcher(path string) (*ScenarioWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan string, 1)
	return &ScenarioWatcher{
		File:    abs,
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}, nil
}

// Start begins watching. After a failed Start, Stop only releases
// resources.
func (w *ScenarioWatcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.File)); err != nil {
		close(w.done)
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and its channel.
func (w *ScenarioWatcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *ScenarioWatcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(watchDebounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.File {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.Now()
			}

		case now := <-ticker.C:
			if !pending.IsZero() && now.Sub(pending) >= watchDebounce {
				pending = time.Time{}
				w.emit()
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

// emit signals a change without blocking; one queued change is enough to
// trigger the next run.
func (w *ScenarioWatcher) emit() {
	select {
	case w.changes <- w.File:
	default:
	}
}
