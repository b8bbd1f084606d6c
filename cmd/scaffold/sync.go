package main

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/bobg/scaffold/config"
	"github.com/bobg/scaffold/dsync"
)

func (c maincmd) sync(ctx context.Context, args []string) error {
	conf, dir, err := c.target(args)
	if err != nil {
		return err
	}
	r, err := c.repo(ctx, conf, 0)
	if err != nil {
		return err
	}

	coord := &dsync.Coordinator{R: r, Root: dir}
	n, err := coord.Cycle(ctx, dir)
	if err != nil {
		return errors.Wrapf(err, "syncing %s (%d files imported)", dir, n)
	}
	log.Printf("synced %s, %d files imported", dir, n)
	return nil
}

func (c maincmd) watch(ctx context.Context, once bool, wait time.Duration, leading bool, cacheSize int, args []string) error {
	conf, dir, err := c.target(args)
	if err != nil {
		return err
	}
	r, err := c.repo(ctx, conf, cacheSize)
	if err != nil {
		return err
	}

	coord := &dsync.Coordinator{
		R:       r,
		Root:    dir,
		Wait:    wait,
		Leading: leading,
	}
	if once {
		coord.Policy = dsync.OneShot
	}
	return coord.Watch(ctx)
}

// target reads the project settings
// and picks the directory to sync:
// the first of args if there is one,
// otherwise the project's content root.
func (c maincmd) target(args []string) (*config.Config, string, error) {
	conf, err := config.Read(c.dir)
	if err != nil {
		return nil, "", err
	}
	switch len(args) {
	case 0:
		return conf, config.ContentRoot(c.dir), nil
	case 1:
		return conf, args[0], nil
	}
	return nil, "", errors.New("too many arguments")
}
