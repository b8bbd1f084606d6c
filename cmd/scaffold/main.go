// Command scaffold creates AEM components from templates
// and keeps a running AEM instance in step with them as they are edited.
//
// Usage:
//
//	scaffold [-dir PROJECT] [-v] init
//	scaffold [-dir PROJECT] [-v] component -type TYPE -title TITLE [-group G] [-superType S] [-category C] [-sync [-once] [-wait D] [-leading] [-cache N]] [-templates DIR]
//	scaffold [-dir PROJECT] [-v] sync [DIR]
//	scaffold [-dir PROJECT] [-v] watch [-once] [-wait D] [-leading] [-cache N] [DIR]
//	scaffold help
package main

import (
	"context"
	stderrs "errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/bobg/subcmd"
	"github.com/pkg/errors"

	"github.com/bobg/scaffold"
	"github.com/bobg/scaffold/config"
	_ "github.com/bobg/scaffold/repo/dir"
	_ "github.com/bobg/scaffold/repo/gcs"
	"github.com/bobg/scaffold/repo/logging"
	"github.com/bobg/scaffold/repo/lru"
	_ "github.com/bobg/scaffold/repo/mem"
	_ "github.com/bobg/scaffold/repo/multi"
	_ "github.com/bobg/scaffold/repo/pg"
	_ "github.com/bobg/scaffold/repo/sling"
	_ "github.com/bobg/scaffold/repo/sqlite3"
	"github.com/bobg/scaffold/watch"
)

type maincmd struct {
	dir     string
	verbose bool
}

func main() {
	var (
		dir     = flag.String("dir", ".", "project directory")
		verbose = flag.Bool("v", false, "log every submission")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		sig := <-sigCh
		log.Printf("got signal %s", sig)
		cancel()
	}()

	err := subcmd.Run(ctx, maincmd{dir: *dir, verbose: *verbose}, flag.Args())
	if stderrs.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}
}

// Skipping unchanged files is opt-in:
// without it every cycle resubmits everything it crawls.
const defaultCacheSize = 0

func (c maincmd) Subcmds() subcmd.Map {
	return subcmd.Commands(
		"init", c.doInit, nil,
		"component", c.component, subcmd.Params(
			"type", subcmd.String, "content", "component type (template name)",
			"title", subcmd.String, "", "component title",
			"group", subcmd.String, "", "component group",
			"superType", subcmd.String, "", "resource super type",
			"category", subcmd.String, "components", "client library category",
			"templates", subcmd.String, "", "directory of templates to use instead of the built-in ones",
			"sync", subcmd.Bool, false, "import the component into the repository and keep it in sync",
			"once", subcmd.Bool, false, "with -sync, stop after the first change is synced",
			"wait", subcmd.Duration, watch.DefaultWait, "with -sync, debounce window for changes",
			"leading", subcmd.Bool, false, "with -sync, sync on the first change of a burst instead of the last",
			"cache", subcmd.Int, defaultCacheSize, "with -sync, number of unchanged files to skip resubmitting (0 disables)",
		),
		"sync", c.sync, nil,
		"watch", c.watch, subcmd.Params(
			"once", subcmd.Bool, false, "stop after the first change is synced",
			"wait", subcmd.Duration, watch.DefaultWait, "debounce window for changes",
			"leading", subcmd.Bool, false, "sync on the first change of a burst instead of the last",
			"cache", subcmd.Int, defaultCacheSize, "number of unchanged files to skip resubmitting (0 disables)",
		),
		"help", c.help, nil,
	)
}

func (c maincmd) doInit(ctx context.Context, _ []string) error {
	conf, err := config.Wizard(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	err = conf.Write(c.dir)
	if err != nil {
		return err
	}
	log.Printf("All set: %s has been created", config.FileName)
	return nil
}

// repo creates the configured repository,
// with a cache of cacheSize unchanged files in front of it
// (if cacheSize > 0)
// and logging if requested.
func (c maincmd) repo(ctx context.Context, conf *config.Config, cacheSize int) (scaffold.Submitter, error) {
	r, err := conf.Repo(ctx)
	if err != nil {
		return nil, err
	}
	if c.verbose {
		r = logging.New(r)
	}
	if cacheSize > 0 {
		r, err = lru.New(r, cacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "creating cache")
		}
	}
	return r, nil
}

func (c maincmd) help(_ context.Context, _ []string) error {
	fmt.Print(usage)
	return nil
}

const usage = `Usage: scaffold [-dir PROJECT] [-v] SUBCOMMAND ...

Subcommands:
  init       ask for the project settings and write them to ` + config.FileName + `
  component  create a component from a template, optionally syncing it
  sync       import a directory into the repository once
  watch      import a directory into the repository each time it changes
  help       show this message

Run "scaffold SUBCOMMAND -h" for a subcommand's flags.
`
