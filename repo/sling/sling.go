// Package sling implements a content repository client
// for the Sling POST servlet of an AEM instance.
package sling

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"

	"github.com/bobg/scaffold"
	"github.com/bobg/scaffold/repo"
)

var _ scaffold.Submitter = &Client{}

// Client posts content-package files to a Sling instance.
//
// A descriptor file is imported as the properties of its directory's node
// (":operation=import" with ":contentType=jcr.xml")
// posted to the parent node.
// Any other file is uploaded as a child of its directory's node.
type Client struct {
	// BaseURL is the scheme, host, and port of the instance,
	// e.g. http://localhost:4502.
	BaseURL  string
	Username string
	Password string

	// HTTP is the client used for requests.
	// If nil, http.DefaultClient is used.
	HTTP *http.Client
}

// New produces a new Client.
func New(baseURL, username, password string) *Client {
	return &Client{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		Username: username,
		Password: password,
	}
}

// Submit implements scaffold.Submitter.
// A response other than 2xx is an error of kind scaffold.SubmissionFailure.
func (c *Client) Submit(ctx context.Context, path string) error {
	node, err := repo.Locate(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)

	if node.Descriptor {
		if node.Parent == "" {
			log.Printf("not importing root descriptor %s", path)
			return nil
		}
		fields := [][2]string{
			{":operation", "import"},
			{":contentType", "jcr.xml"},
			{":name", node.Name},
			{":replace", "true"},
			{":replaceProperties", "true"},
		}
		for _, f := range fields {
			if err := w.WriteField(f[0], f[1]); err != nil {
				return errors.Wrapf(err, "writing field %s", f[0])
			}
		}
		if err := writeFile(w, ":contentFile", repo.Descriptor, data); err != nil {
			return err
		}
	} else {
		if err := writeFile(w, "*", node.Name, data); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "finishing request body")
	}

	// Both kinds of post go to the node's parent.
	url := c.BaseURL + node.Parent
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return errors.Wrapf(err, "building request for %s", url)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.Username, c.Password)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return scaffold.E(scaffold.SubmissionFailure, path, errors.Wrapf(err, "posting to %s", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return scaffold.E(scaffold.SubmissionFailure, path, errors.Errorf("posting to %s: %s: %s", url, resp.Status, bytes.TrimSpace(body)))
	}
	return nil
}

// writeFile adds a file part to w.
func writeFile(w *multipart.Writer, field, name string, data []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, name))
	h.Set("Content-Type", ContentType(name, data))

	part, err := w.CreatePart(h)
	if err != nil {
		return errors.Wrapf(err, "creating part for %s", name)
	}
	_, err = part.Write(data)
	return errors.Wrapf(err, "writing part for %s", name)
}

// ContentType is the media type to send for a file named name holding data.
func ContentType(name string, data []byte) string {
	switch filepath.Ext(name) {
	case ".xml":
		return "text/xml"
	case ".html":
		return "text/html"
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	}
	return mimetype.Detect(data).String()
}

func init() {
	repo.Register("sling", func(_ context.Context, conf map[string]interface{}) (scaffold.Submitter, error) {
		host, ok := conf["host"].(string)
		if !ok || host == "" {
			return nil, errors.New(`missing "host" parameter`)
		}
		var port string
		switch p := conf["port"].(type) {
		case string:
			port = p
		case float64:
			port = strconv.Itoa(int(p))
		case int:
			port = strconv.Itoa(p)
		}
		username, _ := conf["username"].(string)
		password, _ := conf["password"].(string)

		base := host
		if !strings.Contains(base, "://") {
			base = "http://" + base
		}
		if port != "" {
			base += ":" + port
		}
		return New(base, username, password), nil
	})
}
