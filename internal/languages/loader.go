package languages

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	// ErrTableInvalid indicates a language table document failed schema validation.
	ErrTableInvalid = errors.New("languages: table document invalid")
	// ErrLoaderPathRequired indicates the loader was built without a file path.
	ErrLoaderPathRequired = errors.New("languages: loader path cannot be empty")
)

//go:embed data/languages.json data/schema.json
var builtinData embed.FS

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

type tableDocument struct {
	Languages map[string]Info `json:"languages"`
}

// Default returns the built-in language table.
func Default() (*Table, error) {
	data, err := builtinData.ReadFile("data/languages.json")
	if err != nil {
		return nil, fmt.Errorf("languages: read embedded table: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// MustDefault is Default for package initialisation paths.
func MustDefault() *Table {
	table, err := Default()
	if err != nil {
		panic(err)
	}
	return table
}

// Parse validates and decodes a language table document.
func Parse(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("languages: read table: %w", err)
	}

	schema, err := tableSchema()
	if err != nil {
		return nil, err
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTableInvalid, err)
	}
	if err := schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTableInvalid, describeValidation(err))
	}

	var doc tableDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTableInvalid, err)
	}
	return NewTable(doc.Languages), nil
}

// Loader reads language tables from disk.
type Loader struct {
	path string
}

// NewLoader constructs a loader that reads the provided file path.
func NewLoader(path string) *Loader {
	return &Loader{path: strings.TrimSpace(path)}
}

// Load parses the configured table file and layers it over the built-in table.
func (l *Loader) Load(ctx context.Context) (*Table, error) {
	if l == nil || l.path == "" {
		return nil, ErrLoaderPathRequired
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("languages: open table %q: %w", l.path, err)
	}
	defer file.Close()

	custom, err := Parse(file)
	if err != nil {
		return nil, err
	}
	builtin, err := Default()
	if err != nil {
		return nil, err
	}
	return builtin.Merge(custom), nil
}

func tableSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		data, err := builtinData.ReadFile("data/schema.json")
		if err != nil {
			schemaErr = fmt.Errorf("languages: read embedded schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("schema.json", bytes.NewReader(data)); err != nil {
			schemaErr = fmt.Errorf("languages: add schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("schema.json")
	})
	return compiledSchema, schemaErr
}

func describeValidation(err error) string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return err.Error()
	}
	parts := []string{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			location := strings.TrimSpace(node.InstanceLocation)
			if location == "" {
				location = "#"
			}
			parts = append(parts, fmt.Sprintf("%s: %s", location, strings.TrimSpace(node.Message)))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return strings.Join(parts, "; ")
}
