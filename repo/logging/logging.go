// Package logging implements a content repository that delegates to a nested repository,
// logging submissions as they happen.
package logging

import (
	"context"
	"log"
	"time"

	"github.com/bobg/scaffold"
	"github.com/bobg/scaffold/repo"
)

var _ scaffold.Submitter = &Repo{}

type Repo struct {
	r scaffold.Submitter
}

func New(r scaffold.Submitter) *Repo {
	return &Repo{r: r}
}

func (r *Repo) Submit(ctx context.Context, path string) error {
	start := time.Now()
	err := r.r.Submit(ctx, path)
	if err != nil {
		log.Printf("ERROR Submit %s: %s", path, err)
	} else {
		log.Printf("Submit %s (%s)", path, time.Since(start))
	}
	return err
}

func init() {
	repo.Register("logging", func(ctx context.Context, conf map[string]interface{}) (scaffold.Submitter, error) {
		nested, err := repo.Nested(ctx, conf, "nested")
		if err != nil {
			return nil, err
		}
		return New(nested), nil
	})
}
