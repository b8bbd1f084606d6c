// Package multi implements a content repository that submits to several nested repositories.
package multi

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bobg/scaffold"
	"github.com/bobg/scaffold/repo"
)

var _ scaffold.Submitter = &Repo{}

// Repo submits each file to all of its nested repositories at once,
// returning when all of them have finished.
// It still handles only one file at a time,
// so each nested repository sees the files in the order they were submitted.
type Repo struct {
	rs []scaffold.Submitter
}

// New produces a new Repo.
func New(rs ...scaffold.Submitter) *Repo {
	return &Repo{rs: rs}
}

// Submit implements scaffold.Submitter.
// It fails if any nested repository fails;
// the others are not undone.
func (r *Repo) Submit(ctx context.Context, path string) error {
	eg, ctx := errgroup.WithContext(ctx)
	for i, s := range r.rs {
		i, s := i, s
		eg.Go(func() error {
			return errors.Wrapf(s.Submit(ctx, path), "submitting to repository %d", i)
		})
	}
	return eg.Wait()
}

func init() {
	repo.Register("multi", func(ctx context.Context, conf map[string]interface{}) (scaffold.Submitter, error) {
		nested, ok := conf["nested"].([]interface{})
		if !ok || len(nested) == 0 {
			return nil, errors.New(`missing "nested" parameter`)
		}
		var rs []scaffold.Submitter
		for i, n := range nested {
			s, err := repo.Nested(ctx, map[string]interface{}{"repo": n}, "repo")
			if err != nil {
				return nil, errors.Wrapf(err, "nested repository %d", i)
			}
			rs = append(rs, s)
		}
		return New(rs...), nil
	})
}
