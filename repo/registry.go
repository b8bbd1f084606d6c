// Package repo holds the registry of content-repository backends
// and the mapping from local content-package paths to repository nodes.
//
// Backends live in subpackages and register themselves in init,
// so a program selects the ones it wants with blank imports.
package repo

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/bobg/scaffold"
)

// Factory produces a Submitter from a configuration object.
type Factory func(context.Context, map[string]interface{}) (scaffold.Submitter, error)

var registry = make(map[string]Factory)

// Register makes a backend available to Create under the given key.
func Register(key string, f Factory) {
	registry[key] = f
}

// Create produces the Submitter registered under key.
func Create(ctx context.Context, key string, conf map[string]interface{}) (scaffold.Submitter, error) {
	f, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("key %s not found in registry", key)
	}
	return f(ctx, conf)
}

// Keys lists the registered backends in sorted order.
func Keys() []string {
	result := make([]string, 0, len(registry))
	for k := range registry {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// Nested creates the Submitter described by conf[param],
// which must be a configuration object with a "type" field.
// Decorating backends use it for the repository they wrap.
func Nested(ctx context.Context, conf map[string]interface{}, param string) (scaffold.Submitter, error) {
	nested, ok := conf[param].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf(`missing "%s" parameter`, param)
	}
	nestedType, ok := nested["type"].(string)
	if !ok {
		return nil, fmt.Errorf(`"%s" parameter missing "type"`, param)
	}
	s, err := Create(ctx, nestedType, nested)
	return s, errors.Wrapf(err, "creating %s repository", param)
}
