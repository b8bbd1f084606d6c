// Package config reads, writes, and interactively builds
// the per-project settings file.
package config

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/bobg/scaffold"
	"github.com/bobg/scaffold/repo"
)

// FileName is the name of the settings file in a project directory.
const FileName = "scaffolder-config.json"

// ErrNoConfig means a project directory has no settings file.
var ErrNoConfig = errors.New("no " + FileName + " found; run the init subcommand first")

// Config holds a project's settings.
type Config struct {
	// Project is the project's name.
	Project string `json:"project"`

	// Directory is the project's folder beneath /apps.
	Directory string `json:"directory"`

	// Host, Port, Username, and Password locate the AEM instance.
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`

	// Repository, if present, selects a repository backend by its "type"
	// and supplies that backend's settings.
	// It takes precedence over Host etc.
	Repository map[string]interface{} `json:"repository,omitempty"`
}

// Read reads the settings file in dir.
// If there is none the error is ErrNoConfig.
func Read(dir string) (*Config, error) {
	filename := filepath.Join(dir, FileName)
	f, err := os.Open(filename)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening config file %s", filename)
	}
	defer f.Close()

	var c Config
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return nil, errors.Wrapf(err, "decoding config file %s", filename)
	}
	return &c, nil
}

// Write writes c to the settings file in dir, replacing any that is there.
func (c *Config) Write(dir string) error {
	data, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	filename := filepath.Join(dir, FileName)
	err = os.WriteFile(filename, append(data, '\n'), 0644)
	return errors.Wrapf(err, "writing config file %s", filename)
}

// ContentRoot is the jcr_root directory of the ui.apps module of the project in dir.
func ContentRoot(dir string) string {
	return filepath.Join(dir, "ui.apps", "src", "main", "content", "jcr_root")
}

// ComponentDir is where a component of the given type and name goes
// in the project in dir.
func (c *Config) ComponentDir(dir, typ, name string) string {
	return filepath.Join(ContentRoot(dir), "apps", c.Directory, "components", typ, name)
}

// RepoConf produces the backend type and settings for the project's repository.
// Without a Repository setting this is the "sling" backend at Host and Port.
// If there is not enough to go on the error has kind scaffold.MissingServerConfig.
func (c *Config) RepoConf() (string, map[string]interface{}, error) {
	if c.Repository != nil {
		typ, ok := c.Repository["type"].(string)
		if !ok || typ == "" {
			return "", nil, scaffold.E(scaffold.MissingServerConfig, "", errors.New(`repository setting missing "type"`))
		}
		return typ, c.Repository, nil
	}
	if c.Host == "" {
		return "", nil, scaffold.E(scaffold.MissingServerConfig, "", errors.New("no host configured"))
	}
	return "sling", map[string]interface{}{
		"type":     "sling",
		"host":     c.Host,
		"port":     c.Port,
		"username": c.Username,
		"password": c.Password,
	}, nil
}

// Repo creates the project's repository (see RepoConf).
func (c *Config) Repo(ctx context.Context) (scaffold.Submitter, error) {
	typ, conf, err := c.RepoConf()
	if err != nil {
		return nil, err
	}
	r, err := repo.Create(ctx, typ, conf)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s repository", typ)
	}
	return r, nil
}

type question struct {
	field    *string
	name     string
	prompt   string
	fallback string
}

// Wizard asks for each setting on out and reads the answers from in, one per line.
// An empty answer takes the default shown in the prompt.
// Project and directory have no default
// and leaving either empty is an error.
func Wizard(in io.Reader, out io.Writer) (*Config, error) {
	c := new(Config)
	questions := []question{
		{field: &c.Project, name: "project", prompt: "Project Name"},
		{field: &c.Directory, name: "directory", prompt: "Project Directory"},
		{field: &c.Host, name: "host", prompt: "AEM Host", fallback: "localhost"},
		{field: &c.Port, name: "port", prompt: "AEM Port", fallback: "4502"},
		{field: &c.Username, name: "username", prompt: "AEM Username", fallback: "admin"},
		{field: &c.Password, name: "password", prompt: "AEM Password", fallback: "admin"},
	}

	sc := bufio.NewScanner(in)
	for _, q := range questions {
		if q.fallback != "" {
			fmt.Fprintf(out, "%s: (%s) ", q.prompt, q.fallback)
		} else {
			fmt.Fprintf(out, "%s: ", q.prompt)
		}

		var answer string
		if sc.Scan() {
			answer = strings.TrimSpace(sc.Text())
		} else if err := sc.Err(); err != nil {
			return nil, errors.Wrap(err, "reading answer")
		}
		if answer == "" {
			answer = q.fallback
		}
		*q.field = answer
	}

	for _, q := range questions {
		if *q.field == "" {
			return nil, errors.Errorf("missing required configuration: %s", q.name)
		}
	}
	return c, nil
}
