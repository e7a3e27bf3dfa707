package uidef

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "https://actionroute.local/schemas/uidef.schema.json"

// DefaultCacheSize is the number of decoded definitions kept in memory.
const DefaultCacheSize = 128

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]*$`)

// extensions are tried in order when resolving a name to a file.
var extensions = []string{".json", ".yaml", ".yml"}

var (
	// ErrNotFound is returned when no file exists for a definition name.
	ErrNotFound = errors.New("ui definition not found")

	// ErrInvalidName is returned for names that cannot map to a file.
	ErrInvalidName = errors.New("invalid ui definition name")
)

// LoadError describes a failed definition load.
type LoadError struct {
	Name string
	Op   string // "resolve", "read", "decode", "validate"
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("ui definition %q: %s: %v", e.Name, e.Op, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader loads UI definitions by name.
type Loader interface {
	Load(name string) (*Definition, error)
}

// StaticLoader serves definitions from memory.
type StaticLoader map[string]*Definition

// Load implements Loader.
func (s StaticLoader) Load(name string) (*Definition, error) {
	if d, ok := s[name]; ok && d != nil {
		return d, nil
	}
	return nil, &LoadError{Name: name, Op: "resolve", Err: ErrNotFound}
}

// DirLoader loads definitions from <dir>/<name>.{json,yaml,yml}.
// Decoded definitions are cached; Invalidate drops entries after edits.
// DirLoader is safe for concurrent use.
type DirLoader struct {
	dir    string
	schema *jsonschema.Schema
	cache  *lru.Cache[string, *Definition]
}

// NewDirLoader creates a loader rooted at dir. cacheSize <= 0 uses
// DefaultCacheSize.
func NewDirLoader(dir string, cacheSize int) (*DirLoader, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[string, *Definition](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("ui definition cache: %w", err)
	}
	return &DirLoader{dir: dir, schema: schema, cache: cache}, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("ui definition schema load failed: %w", err)
	}
	schema, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("ui definition schema compile failed: %w", err)
	}
	return schema, nil
}

// Dir returns the directory the loader reads from.
func (l *DirLoader) Dir() string {
	return l.dir
}

// Load returns the named definition, reading and validating it on a cache
// miss.
func (l *DirLoader) Load(name string) (*Definition, error) {
	if !namePattern.MatchString(name) {
		return nil, &LoadError{Name: name, Op: "resolve", Err: ErrInvalidName}
	}
	if d, ok := l.cache.Get(name); ok {
		return d, nil
	}

	path, err := l.resolve(name)
	if err != nil {
		return nil, &LoadError{Name: name, Op: "resolve", Err: err}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Name: name, Op: "read", Err: err}
	}

	d, err := l.Decode(name, raw, filepath.Ext(path) != ".json")
	if err != nil {
		return nil, err
	}
	l.cache.Add(name, d)
	slog.Debug("ui definition loaded", "name", name, "path", path, "components", len(d.Components))
	return d, nil
}

// Decode validates and decodes one definition document. YAML input is
// converted to its JSON form before validation so both formats see the
// same schema.
func (l *DirLoader) Decode(name string, raw []byte, isYAML bool) (*Definition, error) {
	if isYAML {
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, &LoadError{Name: name, Op: "decode", Err: err}
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, &LoadError{Name: name, Op: "decode", Err: err}
		}
		raw = converted
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, &LoadError{Name: name, Op: "decode", Err: err}
	}
	if err := l.schema.Validate(doc); err != nil {
		return nil, &LoadError{Name: name, Op: "validate", Err: err}
	}

	var d Definition
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, &LoadError{Name: name, Op: "decode", Err: err}
	}
	if d.Name != name {
		return nil, &LoadError{Name: name, Op: "validate", Err: fmt.Errorf("document name %q does not match file name", d.Name)}
	}
	return &d, nil
}

func (l *DirLoader) resolve(name string) (string, error) {
	for _, ext := range extensions {
		path := filepath.Join(l.dir, name+ext)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", ErrNotFound
}

// Invalidate drops the named entries from the cache, or every entry when no
// names are given.
func (l *DirLoader) Invalidate(names ...string) {
	if len(names) == 0 {
		l.cache.Purge()
		return
	}
	for _, n := range names {
		l.cache.Remove(n)
	}
}

// Names lists the definition names available in the directory, sorted.
func (l *DirLoader) Names() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read ui definition directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !slices.Contains(extensions, ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if namePattern.MatchString(name) && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}
