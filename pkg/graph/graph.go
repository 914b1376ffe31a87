package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/growtree/pkg/errors"
)

// Input formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// =============================================================================
// Input Serialization API
// =============================================================================

// FormatFor returns the input format implied by a file name: YAML for .yaml
// and .yml, JSON otherwise.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// DetectFormat guesses the format of data: JSON when the first non-space
// byte opens an object, YAML otherwise.
func DetectFormat(data []byte) string {
	if t := bytes.TrimSpace(data); len(t) > 0 && t[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

// UnmarshalInput decodes an input document. An empty format is detected
// from the data.
func UnmarshalInput(data []byte, format string) (Input, error) {
	if format == "" {
		format = DetectFormat(data)
	}
	var in Input
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&in); err != nil {
			return Input{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json input")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&in); err != nil && err != io.EOF {
			return Input{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml input")
		}
	default:
		return Input{}, errors.New(errors.ErrCodeUnsupported, "unsupported input format %q", format)
	}
	return in, nil
}

// ReadInput decodes an input document from r.
func ReadInput(r io.Reader, format string) (Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Input{}, fmt.Errorf("read input: %w", err)
	}
	return UnmarshalInput(data, format)
}

// ReadInputFile reads an input document, choosing the format by extension.
func ReadInputFile(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Input{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", path)
		}
		return Input{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalInput(data, FormatFor(path))
}

// MarshalInput encodes in as indented JSON. The encoding is stable, so it
// doubles as the cache key source.
func MarshalInput(in Input) ([]byte, error) {
	return json.MarshalIndent(in, "", "  ")
}

// WriteInputFile writes in to path in the format implied by its extension.
func WriteInputFile(in Input, path string) error {
	var (
		data []byte
		err  error
	)
	if FormatFor(path) == FormatYAML {
		data, err = yaml.Marshal(in)
	} else {
		data, err = MarshalInput(in)
	}
	if err != nil {
		return fmt.Errorf("encode input: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
