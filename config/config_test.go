package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/scaffold"
	_ "github.com/bobg/scaffold/repo/mem"
	"github.com/bobg/scaffold/repo/sling"
)

func TestWizard(t *testing.T) {
	var (
		in  = strings.NewReader("We Retail\nweretail\n\n\nauthor\n\n")
		out = new(strings.Builder)
	)
	got, err := Wizard(in, out)
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		Project:   "We Retail",
		Directory: "weretail",
		Host:      "localhost",
		Port:      "4502",
		Username:  "author",
		Password:  "admin",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.String(), "AEM Port: (4502)") {
		t.Errorf("prompts missing default port: %q", out)
	}
}

func TestWizardMissing(t *testing.T) {
	cases := []struct {
		input, missing string
	}{
		{input: "\nweretail\n", missing: "project"},
		{input: "We Retail\n", missing: "directory"},
		{input: "", missing: "project"},
	}
	for _, c := range cases {
		_, err := Wizard(strings.NewReader(c.input), new(strings.Builder))
		if err == nil {
			t.Errorf("input %q: got no error", c.input)
			continue
		}
		if want := "missing required configuration: " + c.missing; err.Error() != want {
			t.Errorf("input %q: got error %q, want %q", c.input, err, want)
		}
	}
}

func TestReadWrite(t *testing.T) {
	dir := t.TempDir()

	if _, err := Read(dir); err != ErrNoConfig {
		t.Fatalf("got error %v, want ErrNoConfig", err)
	}

	c := &Config{
		Project:    "We Retail",
		Directory:  "weretail",
		Host:       "localhost",
		Port:       "4502",
		Username:   "admin",
		Password:   "admin",
		Repository: map[string]interface{}{"type": "mem"},
	}
	if err := c.Write(dir); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n\t\"project\": \"We Retail\"") {
		t.Errorf("config file not tab-indented:\n%s", data)
	}

	got, err := Read(dir)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(c, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestComponentDir(t *testing.T) {
	c := &Config{Directory: "weretail"}
	got := c.ComponentDir("/p", "content", "hero")
	want := filepath.FromSlash("/p/ui.apps/src/main/content/jcr_root/apps/weretail/components/content/hero")
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRepo(t *testing.T) {
	ctx := context.Background()

	c := &Config{Host: "localhost", Port: "4502", Username: "admin", Password: "pw"}
	r, err := c.Repo(ctx)
	if err != nil {
		t.Fatal(err)
	}
	cl, ok := r.(*sling.Client)
	if !ok {
		t.Fatalf("got a %T, want *sling.Client", r)
	}
	if cl.BaseURL != "http://localhost:4502" {
		t.Errorf("got base URL %s, want http://localhost:4502", cl.BaseURL)
	}

	c.Repository = map[string]interface{}{"type": "mem"}
	if _, err := c.Repo(ctx); err != nil {
		t.Fatal(err)
	}

	for _, bad := range []*Config{
		{},
		{Host: "localhost", Repository: map[string]interface{}{"conn": "x"}},
	} {
		_, err := bad.Repo(ctx)
		if !scaffold.Is(err, scaffold.MissingServerConfig) {
			t.Errorf("got error %v, want kind %v", err, scaffold.MissingServerConfig)
		}
	}
}
