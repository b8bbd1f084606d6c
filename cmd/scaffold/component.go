package main

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bobg/scaffold/config"
	"github.com/bobg/scaffold/dsync"
	"github.com/bobg/scaffold/materialize"
	"github.com/bobg/scaffold/templates"
)

func (c maincmd) component(
	ctx context.Context,
	typ, title, group, superType, category, tmplDir string,
	doSync, once bool,
	wait time.Duration,
	leading bool,
	cacheSize int,
	_ []string,
) error {
	if title == "" {
		return errors.New("must supply -title")
	}

	conf, err := config.Read(c.dir)
	if err != nil {
		return err
	}

	var coord *dsync.Coordinator
	if doSync {
		// Fail before copying anything if there is nowhere to sync to.
		r, err := c.repo(ctx, conf, cacheSize)
		if err != nil {
			return err
		}
		coord = &dsync.Coordinator{R: r, Wait: wait, Leading: leading}
		if once {
			coord.Policy = dsync.OneShot
		}
	}

	tmpl, err := loadTemplate(tmplDir, typ)
	if err != nil {
		return err
	}

	tc := materialize.Context{
		Title:     title,
		Project:   conf.Project,
		Group:     group,
		SuperType: superType,
		Category:  category,
	}
	dest := conf.ComponentDir(c.dir, typ, materialize.Normalize(title))

	n, err := materializeTemplate(ctx, tmpl, dest, tc)
	if err != nil {
		return err
	}
	log.Printf("created %s (%d files)", dest, n)

	if coord == nil {
		return nil
	}

	coord.Root = dest
	n, err = coord.Cycle(ctx, dest)
	if err != nil {
		return errors.Wrapf(err, "syncing %s", dest)
	}
	log.Printf("synced %s, %d files imported", dest, n)

	return coord.Watch(ctx)
}

// loadTemplate returns the template for the given component type,
// from dir if that is not empty
// and from the built-in templates otherwise.
func loadTemplate(dir, typ string) (fs.FS, error) {
	if dir == "" {
		return templates.For(typ)
	}
	return os.DirFS(filepath.Join(dir, typ)), nil
}

// materializeTemplate copies tmpl to dest, logging progress,
// and reports the number of files copied.
// Files that cannot be copied are logged and skipped.
func materializeTemplate(ctx context.Context, tmpl fs.FS, dest string, tc materialize.Context) (int, error) {
	ch, wait, err := materialize.Run(ctx, tmpl, dest, tc)
	if err != nil {
		return 0, err
	}

	var (
		eg     errgroup.Group
		n      int
		failed int
	)
	eg.Go(func() error {
		for p := range ch {
			switch p.Kind {
			case materialize.CopyStart:
				log.Printf("copying file %s...", p.Src)
			case materialize.CopyComplete:
				log.Printf("copied to %s", p.Dest)
			case materialize.CopyError:
				log.Printf("ERROR unable to copy %s: %s", p.Dest, p.Err)
				failed++
			}
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		n, err = wait()
		return err
	})
	if err := eg.Wait(); err != nil {
		return n, err
	}
	if failed > 0 {
		log.Printf("%d files could not be copied", failed)
	}
	return n, nil
}
