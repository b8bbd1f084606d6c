// Package watch reports filesystem changes beneath a directory
// and coalesces bursts of them.
package watch

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/rjeczalik/notify"
)

// EventType is the kind of change an Event reports.
type EventType int

const (
	Add EventType = iota
	AddDir
	Change
	Unlink
	UnlinkDir
)

func (t EventType) String() string {
	switch t {
	case Add:
		return "add"
	case AddDir:
		return "addDir"
	case Change:
		return "change"
	case Unlink:
		return "unlink"
	case UnlinkDir:
		return "unlinkDir"
	}
	return "unknown"
}

// IsDeletion tells whether t reports something going away.
func (t EventType) IsDeletion() bool {
	return t == Unlink || t == UnlinkDir
}

// Event is a single filesystem change.
type Event struct {
	Type EventType
	Path string
}

// Watcher reports changes beneath a root directory on its Events channel.
type Watcher struct {
	root   string
	fsch   chan notify.EventInfo
	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	// Directories known to exist,
	// so that removals can be reported as Unlink or UnlinkDir.
	dirs map[string]bool
}

// New starts watching root and everything beneath it.
// Event paths are absolute.
// Call Close to stop.
func New(root string) (*Watcher, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", root)
	}

	w := &Watcher{
		root:   root,
		fsch:   make(chan notify.EventInfo, 100),
		events: make(chan Event),
		done:   make(chan struct{}),
		dirs:   make(map[string]bool),
	}

	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			w.dirs[path] = true
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", root)
	}

	err = notify.Watch(root+"/...", w.fsch, notify.All)
	if err != nil {
		return nil, errors.Wrapf(err, "watching %s/...", root)
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// Events is the channel of changes.
// It is closed after Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Root is the directory being watched.
func (w *Watcher) Root() string {
	return w.root
}

// Close stops the watcher.
// It is safe to call more than once.
func (w *Watcher) Close() error {
	w.once.Do(func() {
		notify.Stop(w.fsch)
		close(w.done)
	})
	w.wg.Wait()
	return nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	defer close(w.events)

	for {
		select {
		case <-w.done:
			return

		case ei := <-w.fsch:
			ev, ok := w.translate(ei)
			if !ok {
				continue
			}
			select {
			case <-w.done:
				return
			case w.events <- ev:
			}
		}
	}
}

// translate converts a notify event to an Event,
// keeping track of which paths are directories.
func (w *Watcher) translate(ei notify.EventInfo) (Event, bool) {
	path := ei.Path()

	switch ei.Event() {
	case notify.Create:
		return w.added(path)

	case notify.Write:
		return Event{Type: Change, Path: path}, true

	case notify.Remove:
		return w.removed(path), true

	case notify.Rename:
		// Notify reports both ends of a rename the same way.
		if _, err := os.Stat(path); err == nil {
			return w.added(path)
		}
		return w.removed(path), true
	}

	log.Printf("ignoring %s event for %s", ei.Event(), path)
	return Event{}, false
}

func (w *Watcher) added(path string) (Event, bool) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		// Already gone again.
		return Event{}, false
	}
	if err == nil && info.IsDir() {
		w.dirs[path] = true
		return Event{Type: AddDir, Path: path}, true
	}
	return Event{Type: Add, Path: path}, true
}

func (w *Watcher) removed(path string) Event {
	if w.dirs[path] {
		delete(w.dirs, path)
		return Event{Type: UnlinkDir, Path: path}
	}
	return Event{Type: Unlink, Path: path}
}
