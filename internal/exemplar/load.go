package exemplar

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docbrief/internal/document"
)

//go:embed schema.json
var schemaJSON []byte

var compiledSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("exemplar.json", bytes.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("add exemplar schema: %v", err))
	}
	schema, err := compiler.Compile("exemplar.json")
	if err != nil {
		panic(fmt.Sprintf("compile exemplar schema: %v", err))
	}
	compiledSchema = schema
}

type rawExemplar struct {
	Name     string            `json:"name"`
	Sections map[string]string `json:"sections"`
	Order    []string          `json:"order"`
}

// LoadJSON reads an exemplar from JSON. Section keys must name members of
// set; case and surrounding punctuation are ignored.
func LoadJSON(r io.Reader, set *document.CategorySet) (*document.ExemplarDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read exemplar: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode exemplar json: %w", err)
	}
	return decode(v, set)
}

// LoadYAML reads an exemplar from YAML, validated by the same schema as JSON.
func LoadYAML(r io.Reader, set *document.CategorySet) (*document.ExemplarDocument, error) {
	var v any
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode exemplar yaml: %w", err)
	}
	return decode(v, set)
}

// Read picks the decoder from name's extension.
func Read(r io.Reader, name string, set *document.CategorySet) (*document.ExemplarDocument, error) {
	var (
		doc *document.ExemplarDocument
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
		doc, err = LoadJSON(r, set)
	case ".yaml", ".yml":
		doc, err = LoadYAML(r, set)
	default:
		return nil, fmt.Errorf("unsupported exemplar format: %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return doc, nil
}

// LoadFile reads an exemplar file, choosing the decoder by extension.
func LoadFile(path string, set *document.CategorySet) (*document.ExemplarDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, path, set)
}

func decode(v any, set *document.CategorySet) (*document.ExemplarDocument, error) {
	if set == nil {
		set = document.DefaultCategories
	}
	if err := compiledSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("exemplar does not match schema: %w", err)
	}
	// Round-trip through JSON so YAML and JSON share one decode path.
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode exemplar: %w", err)
	}
	var raw rawExemplar
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode exemplar: %w", err)
	}

	doc := &document.ExemplarDocument{
		Name:     raw.Name,
		Sections: make(map[document.Category]string, len(raw.Sections)),
	}
	for key, text := range raw.Sections {
		cat, ok := set.Lookup(key)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", key)
		}
		if _, dup := doc.Sections[cat]; dup {
			return nil, fmt.Errorf("category %q given more than once", cat)
		}
		doc.Sections[cat] = strings.TrimSpace(text)
	}
	for _, key := range raw.Order {
		cat, ok := set.Lookup(key)
		if !ok {
			return nil, fmt.Errorf("unknown category %q in order", key)
		}
		doc.Order = append(doc.Order, cat)
	}
	return doc, nil
}
