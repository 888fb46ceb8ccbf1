package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/schema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a form definition document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var valueType = reflect.TypeOf(domain.Value{})

// DecodeDescriptors validates and decodes an untyped descriptor list
// (e.g. the "fields" array of a JSON request body).
func DecodeDescriptors(raw []any) ([]domain.FieldDescriptor, error) {
	if err := schema.ValidateDescriptors(raw); err != nil {
		return nil, err
	}

	var out []domain.FieldDescriptor
	if err := decode(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode descriptors: %w", err)
	}
	return out, nil
}

// DecodeDefinition validates and decodes an untyped form definition document.
func DecodeDefinition(raw map[string]any) (domain.FormDefinition, error) {
	if err := schema.ValidateDefinition(raw); err != nil {
		return domain.FormDefinition{}, err
	}

	var def domain.FormDefinition
	if err := decode(raw, &def); err != nil {
		return domain.FormDefinition{}, fmt.Errorf("failed to decode definition: %w", err)
	}
	return def, nil
}

// ParseDefinition parses a YAML or JSON document into a validated form definition.
func ParseDefinition(data []byte, format Format) (domain.FormDefinition, error) {
	raw := make(map[string]any)

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return domain.FormDefinition{}, fmt.Errorf("invalid json: %w", err)
		}
	case FormatYAML, "":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return domain.FormDefinition{}, fmt.Errorf("invalid yaml: %w", err)
		}
	default:
		return domain.FormDefinition{}, fmt.Errorf("unsupported format %q", format)
	}

	return DecodeDefinition(raw)
}

// LoadDefinition reads a form definition from disk. The format is taken from
// the file extension (.json, otherwise YAML). A missing name defaults to the
// file's base name.
func LoadDefinition(path string) (domain.FormDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.FormDefinition{}, fmt.Errorf("failed to read form definition: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	format := FormatYAML
	if ext == ".json" {
		format = FormatJSON
	}

	def, err := ParseDefinition(data, format)
	if err != nil {
		return domain.FormDefinition{}, fmt.Errorf("%s: %w", path, err)
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), ext)
	}
	return def, nil
}

func decode(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.DecodeHookFuncType(valueHook),
		ErrorUnused: true,
		Result:      output,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func valueHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != valueType {
		return data, nil
	}
	return domain.ValueOf(data)
}
