package dsync

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/bobg/scaffold/watch"
)

// Watch watches c.Root and runs a cycle each time something beneath it changes
// (see Run).
// The watcher is closed when Watch returns.
func (c *Coordinator) Watch(ctx context.Context) error {
	w, err := watch.New(c.Root)
	if err != nil {
		return errors.Wrapf(err, "starting watcher on %s", c.Root)
	}
	defer w.Close()

	log.Printf("watching %s (%s)", w.Root(), c.Policy)

	return c.run(ctx, w.Events(), w.Root())
}

// Run consumes change events until ctx is canceled or events is closed,
// running a cycle after each debounced burst.
// The cycle is rooted at the directory containing the burst's last event
// (or its first, for leading-edge debouncing),
// but never above c.Root.
//
// Deletions are logged and otherwise ignored:
// nothing is ever removed from the repository.
//
// Under the Persistent policy a failed cycle is logged and watching continues.
// Under OneShot, Run returns after the first cycle,
// with that cycle's error if it failed.
func (c *Coordinator) Run(ctx context.Context, events <-chan watch.Event) error {
	return c.run(ctx, events, c.Root)
}

func (c *Coordinator) run(ctx context.Context, events <-chan watch.Event, root string) error {
	var (
		triggers = make(chan string)
		done     = make(chan struct{})
	)
	defer close(done)

	d := watch.NewDebouncer(c.Wait, c.Leading, func(ev watch.Event) {
		dir := triggerDir(root, ev.Path)

		// The leading-edge callback runs inside Notify, on this goroutine,
		// so the send must not block it.
		go func() {
			select {
			case <-done:
			case triggers <- dir:
			}
		}()
	})
	defer d.Cancel()

	for {
		select {
		case <-ctx.Done():
			log.Print("context canceled, exiting sync loop")
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				log.Print("events channel closed, exiting sync loop")
				return nil
			}
			if ev.Type.IsDeletion() {
				log.Printf("not importing deletion: %s %s", ev.Type, ev.Path)
				continue
			}
			d.Notify(ev)

		case dir := <-triggers:
			n, err := c.Cycle(ctx, dir)
			if c.Policy == OneShot {
				return errors.Wrapf(err, "syncing %s", dir)
			}
			if err != nil {
				log.Printf("ERROR syncing %s (%d files imported): %s", dir, n, err)
				continue
			}
			log.Printf("synced %s, %d files imported", dir, n)
		}
	}
}

// triggerDir is the directory containing path,
// or root if that is outside root.
func triggerDir(root, path string) string {
	dir := filepath.Dir(path)
	if root == "" {
		return dir
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return root
	}
	return dir
}
