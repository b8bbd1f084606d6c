// Package dsync keeps a content repository in step with a local content tree.
//
// A Coordinator crawls a directory,
// puts its files in import order,
// and submits them to a repository one at a time,
// each submission finishing before the next begins.
// It can do this once (Cycle)
// or each time the tree changes (Run, Watch).
package dsync

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/bobg/scaffold"
	"github.com/bobg/scaffold/tree"
)

// Policy says what a Coordinator does after a triggered cycle.
type Policy int

const (
	// Persistent keeps watching after each cycle.
	Persistent Policy = iota

	// OneShot stops after the first triggered cycle.
	OneShot
)

func (p Policy) String() string {
	if p == OneShot {
		return "one-shot"
	}
	return "persistent"
}

// Coordinator submits local files to a repository in import order.
// At most one submission is in flight at any time,
// no matter how many cycles are triggered or by whom.
type Coordinator struct {
	// R receives the submissions.
	R scaffold.Submitter

	// Root is the directory Watch observes.
	// Triggered cycles never reach above it.
	Root string

	// Wait is the debounce window for Run and Watch.
	// Zero means watch.DefaultWait.
	Wait time.Duration

	// Leading selects leading-edge debouncing:
	// a cycle begins on the first change of a burst
	// rather than after the last.
	Leading bool

	Policy Policy

	mu sync.Mutex // held for the whole of a cycle
}

// Cycle submits every file beneath dir to c.R in import order
// and reports how many were submitted.
//
// The first rejected submission ends the cycle with an error of kind scaffold.SubmissionFailure.
// It is not retried and earlier submissions are not undone.
// Canceling ctx ends the cycle between submissions.
// If dir does not exist the error has kind scaffold.NotFound.
//
// Concurrent calls run one after another.
func (c *Coordinator) Cycle(ctx context.Context, dir string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	paths, err := tree.Crawl(dir)
	if err != nil {
		return 0, err
	}

	var (
		q = newQueue(tree.Order(paths))
		n int
	)
	for {
		path, ok := q.pop()
		if !ok {
			return n, nil
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := c.R.Submit(ctx, path); err != nil {
			if !scaffold.Is(err, scaffold.SubmissionFailure) {
				err = scaffold.E(scaffold.SubmissionFailure, path, err)
			}
			if q.len() > 0 {
				log.Printf("abandoning %d queued files", q.len())
			}
			return n, err
		}
		log.Printf("imported %s", path)
		n++
	}
}
