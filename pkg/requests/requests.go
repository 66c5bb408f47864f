package requests

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Package requests loads named request definitions from YAML/JSON files.

const defaultMethod = "GET"

// Definition describes one request to execute.
type Definition struct {
	ID      string            `json:"id" yaml:"id"`
	Method  string            `json:"method" yaml:"method"`
	URI     string            `json:"uri" yaml:"uri"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	Data    *string           `json:"data" yaml:"data"`
	Form    map[string]any    `json:"form" yaml:"form"`
	Select  string            `json:"select" yaml:"select"`
	Enabled *bool             `json:"enabled" yaml:"enabled"`
}

// configFile represents the structure of a requests file.
type configFile struct {
	Requests []Definition `json:"requests" yaml:"requests"`
}

// Registry holds the definitions loaded from one file, in file order.
type Registry struct {
	mu          sync.RWMutex
	definitions []Definition
	idx         map[string]Definition
}

// LoadFile loads request definitions from a YAML or JSON file.
func LoadFile(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("requests file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open requests file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read requests file: %w", err)
	}

	return Parse(raw, filepath.Ext(path))
}

// Parse decodes request definitions. ext selects the decoder (".yaml", ".yml",
// ".json"); an empty or unknown ext tries every decoder.
func Parse(data []byte, ext string) (*Registry, error) {
	file, err := parseConfigFile(data, ext)
	if err != nil {
		return nil, err
	}
	if len(file.Requests) == 0 {
		return nil, errors.New("requests file contains no requests entries")
	}

	reg := &Registry{
		definitions: make([]Definition, len(file.Requests)),
		idx:         make(map[string]Definition, len(file.Requests)),
	}
	for i := range file.Requests {
		def := sanitizeDefinition(file.Requests[i])
		if err := validateDefinition(def); err != nil {
			return nil, fmt.Errorf("requests[%d]: %w", i, err)
		}
		if _, exists := reg.idx[def.ID]; exists {
			return nil, fmt.Errorf("duplicate request id %q", def.ID)
		}
		reg.definitions[i] = def
		reg.idx[def.ID] = def
	}
	return reg, nil
}

type unmarshalFn func([]byte, any) error

func parseConfigFile(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	known := false
	for _, d := range decoders {
		if ext == d.ext {
			known = true
		}
	}

	var lastErr error
	for _, d := range decoders {
		if known && ext != d.ext {
			continue
		}
		var file configFile
		if err := d.fn(data, &file); err != nil {
			lastErr = fmt.Errorf("decode %s requests: %w", d.name, err)
			continue
		}
		return file, nil
	}
	if lastErr != nil {
		return configFile{}, lastErr
	}
	return configFile{}, errors.New("requests file format not recognized (expected YAML or JSON)")
}

func sanitizeDefinition(def Definition) Definition {
	def.ID = strings.TrimSpace(def.ID)
	def.URI = strings.TrimSpace(def.URI)
	def.Select = strings.TrimSpace(def.Select)
	def.Method = strings.ToUpper(strings.TrimSpace(def.Method))
	if def.Method == "" {
		def.Method = defaultMethod
	}
	def.Headers = sanitizeHeaders(def.Headers)
	if def.Enabled == nil {
		enabled := true
		def.Enabled = &enabled
	}
	return def
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func validateDefinition(def Definition) error {
	if def.ID == "" {
		return errors.New("id is required")
	}
	if def.URI == "" {
		return fmt.Errorf("uri is required for request %q", def.ID)
	}
	if def.Data != nil && def.Form != nil {
		return fmt.Errorf("request %q sets both data and form", def.ID)
	}
	return nil
}

// ByID returns the definition with the given id.
func (r *Registry) ByID(id string) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Definition{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.idx[id]
	return def, ok
}

// All returns every definition in file order.
func (r *Registry) All() []Definition {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, len(r.definitions))
	copy(out, r.definitions)
	return out
}

// Enabled returns the definitions that are not switched off.
func (r *Registry) Enabled() []Definition {
	all := r.All()
	if len(all) == 0 {
		return nil
	}
	out := make([]Definition, 0, len(all))
	for _, def := range all {
		if def.EnabledValue() {
			out = append(out, def)
		}
	}
	return out
}

// EnabledValue returns the enabled flag, defaulting to true.
func (def Definition) EnabledValue() bool {
	if def.Enabled == nil {
		return true
	}
	return *def.Enabled
}

// HasForm reports whether the definition carries key/value form data.
func (def Definition) HasForm() bool { return def.Form != nil }

// DataArgs returns the raw string data as the variadic argument list the client expects.
func (def Definition) DataArgs() []string {
	if def.Data == nil {
		return nil
	}
	return []string{*def.Data}
}
