// Package lru implements a content repository decorator
// that skips submissions of files unchanged since they were last submitted.
// It remembers the most recently submitted files, up to a limit.
// Passing a changed descriptor through forgets everything beneath it,
// so the node's children are submitted again after it.
package lru

import (
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/bobg/scaffold"
	"github.com/bobg/scaffold/repo"
)

var _ scaffold.Submitter = &Repo{}

// Repo passes submissions through to a nested repository
// unless the file's content is the same as when it was last passed through.
type Repo struct {
	c *lru.Cache // path -> [sha256.Size]byte
	r scaffold.Submitter
}

// New produces a new Repo in front of r remembering up to size files.
func New(r scaffold.Submitter, size int) (*Repo, error) {
	c, err := lru.New(size)
	return &Repo{r: r, c: c}, err
}

// Submit implements scaffold.Submitter.
func (r *Repo) Submit(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	sum := sha256.Sum256(data)

	if got, ok := r.c.Get(path); ok && got.([sha256.Size]byte) == sum {
		return nil
	}
	if err := r.r.Submit(ctx, path); err != nil {
		r.c.Remove(path)
		return err
	}
	if filepath.Base(path) == repo.Descriptor {
		// Importing a descriptor replaces its node, children included.
		r.forgetUnder(filepath.Dir(path))
	}
	r.c.Add(path, sum)
	return nil
}

func (r *Repo) forgetUnder(dir string) {
	prefix := dir + string(filepath.Separator)
	for _, k := range r.c.Keys() {
		if p, ok := k.(string); ok && strings.HasPrefix(p, prefix) {
			r.c.Remove(p)
		}
	}
}

// Forget makes the next submission of path pass through.
func (r *Repo) Forget(path string) {
	r.c.Remove(path)
}

func init() {
	repo.Register("lru", func(ctx context.Context, conf map[string]interface{}) (scaffold.Submitter, error) {
		var size int
		switch s := conf["size"].(type) {
		case int:
			size = s
		case float64:
			size = int(s)
		default:
			return nil, errors.New(`missing "size" parameter`)
		}
		nested, err := repo.Nested(ctx, conf, "nested")
		if err != nil {
			return nil, err
		}
		return New(nested, size)
	})
}
