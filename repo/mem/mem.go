// Package mem implements an in-memory content repository.
// Besides holding nodes it records every submission,
// which makes it the repository of choice for tests.
package mem

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/bobg/scaffold"
	"github.com/bobg/scaffold/repo"
)

var _ scaffold.Submitter = &Repo{}

// Repo is a memory-based content repository.
type Repo struct {
	// Delay, if set, is how long each submission takes.
	Delay time.Duration

	// Strict, if set, makes a submission fail
	// when the parent of its node does not exist yet.
	Strict bool

	mu          sync.Mutex
	nodes       map[string][]byte
	calls       []string
	failOn      map[string]error
	inFlight    int
	maxInFlight int
}

// New produces a new Repo containing the root node and the given nodes.
func New(seed ...string) *Repo {
	r := &Repo{
		nodes:  map[string][]byte{"/": nil},
		failOn: make(map[string]error),
	}
	for _, path := range seed {
		r.nodes[path] = nil
	}
	return r
}

// FailOn makes the submission of the local file at path fail with err.
func (r *Repo) FailOn(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOn[path] = err
}

// Submit implements scaffold.Submitter.
func (r *Repo) Submit(ctx context.Context, path string) error {
	r.mu.Lock()
	r.calls = append(r.calls, path)
	r.inFlight++
	if r.inFlight > r.maxInFlight {
		r.maxInFlight = r.inFlight
	}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.inFlight--
		r.mu.Unlock()
	}()

	if r.Delay > 0 {
		timer := time.NewTimer(r.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	node, err := repo.Locate(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err, ok := r.failOn[path]; ok {
		return scaffold.E(scaffold.SubmissionFailure, path, err)
	}
	if r.Strict && node.Parent != "" {
		if _, ok := r.nodes[node.Parent]; !ok {
			return scaffold.E(scaffold.SubmissionFailure, path, errors.Errorf("parent node %s does not exist", node.Parent))
		}
	}
	r.nodes[node.Path] = data
	return nil
}

// Get returns the data last submitted for the node at path.
func (r *Repo) Get(_ context.Context, path string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.nodes[path]
	if !ok {
		return nil, scaffold.E(scaffold.NotFound, path, nil)
	}
	return data, nil
}

// Nodes lists the paths of all nodes in lexicographic order.
func (r *Repo) Nodes() []string {
	r.mu.Lock()
	result := make([]string, 0, len(r.nodes))
	for path := range r.nodes {
		result = append(result, path)
	}
	r.mu.Unlock()

	sort.Strings(result)
	return result
}

// Calls lists the local paths of all submissions, in the order they began.
func (r *Repo) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// MaxInFlight is the greatest number of submissions ever running at once.
func (r *Repo) MaxInFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxInFlight
}

func init() {
	repo.Register("mem", func(_ context.Context, conf map[string]interface{}) (scaffold.Submitter, error) {
		r := New()
		r.Strict, _ = conf["strict"].(bool)
		return r, nil
	})
}
