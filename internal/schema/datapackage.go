package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrCompositeKey is returned for foreign keys spanning more than one field.
var ErrCompositeKey = errors.New("composite foreign keys are not supported")

// descriptor mirrors the parts of a data package descriptor we read.
// Foreign keys may sit on the resource itself or under its table schema.
type descriptor struct {
	Resources []resourceDescriptor `json:"resources" yaml:"resources"`
}

type resourceDescriptor struct {
	Name        string                 `json:"name" yaml:"name"`
	Schema      tableSchema            `json:"schema" yaml:"schema"`
	ForeignKeys []foreignKeyDescriptor `json:"foreignKeys" yaml:"foreignKeys"`
}

type tableSchema struct {
	Fields      []fieldDescriptor      `json:"fields" yaml:"fields"`
	ForeignKeys []foreignKeyDescriptor `json:"foreignKeys" yaml:"foreignKeys"`
}

type fieldDescriptor struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

type foreignKeyDescriptor struct {
	Fields    fieldList `json:"fields" yaml:"fields"`
	Reference struct {
		Resource string    `json:"resource" yaml:"resource"`
		Fields   fieldList `json:"fields" yaml:"fields"`
	} `json:"reference" yaml:"reference"`
}

// fieldList accepts either a single field name or a list of names.
type fieldList []string

func (l *fieldList) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*l = fieldList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("fields must be a string or a list of strings: %w", err)
	}
	*l = many
	return nil
}

func (l *fieldList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*l = fieldList{n.Value}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := n.Decode(&many); err != nil {
			return err
		}
		*l = many
		return nil
	default:
		return fmt.Errorf("line %d: fields must be a string or a list of strings", n.Line)
	}
}

// LoadFile reads a data package descriptor. Files ending in .json are
// decoded as JSON, anything else as YAML.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	var s *Schema
	if strings.EqualFold(filepath.Ext(path), ".json") {
		s, err = ParseJSON(data)
	} else {
		s, err = ParseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

// ParseJSON decodes a JSON data package descriptor.
func ParseJSON(data []byte) (*Schema, error) {
	var d descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d.normalize()
}

// ParseYAML decodes a YAML data package descriptor.
func ParseYAML(data []byte) (*Schema, error) {
	var d descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d.normalize()
}

func (d *descriptor) normalize() (*Schema, error) {
	s := &Schema{Resources: make([]Resource, 0, len(d.Resources))}
	seen := make(map[string]bool, len(d.Resources))

	for i, rd := range d.Resources {
		if rd.Name == "" {
			return nil, fmt.Errorf("resources[%d].name is required", i)
		}
		if seen[rd.Name] {
			return nil, fmt.Errorf("duplicate resource name %q", rd.Name)
		}
		seen[rd.Name] = true

		res := Resource{Name: rd.Name}
		fieldSeen := make(map[string]bool, len(rd.Schema.Fields))
		for _, fd := range rd.Schema.Fields {
			if fieldSeen[fd.Name] {
				return nil, fmt.Errorf("resource %q: duplicate field %q", rd.Name, fd.Name)
			}
			fieldSeen[fd.Name] = true
			res.Fields = append(res.Fields, Field{Name: fd.Name, DataType: fd.Type})
		}

		fks := append(append([]foreignKeyDescriptor(nil), rd.ForeignKeys...), rd.Schema.ForeignKeys...)
		for j, fkd := range fks {
			fk, err := fkd.toRef(rd.Name)
			if err != nil {
				return nil, fmt.Errorf("resource %q: foreignKeys[%d]: %w", rd.Name, j, err)
			}
			res.ForeignKeys = append(res.ForeignKeys, fk)
		}

		s.Resources = append(s.Resources, res)
	}

	return s, nil
}

func (fkd foreignKeyDescriptor) toRef(owner string) (ForeignKeyRef, error) {
	if len(fkd.Fields) > 1 || len(fkd.Reference.Fields) > 1 {
		return ForeignKeyRef{}, ErrCompositeKey
	}
	if len(fkd.Fields) == 0 || len(fkd.Reference.Fields) == 0 {
		return ForeignKeyRef{}, fmt.Errorf("fields and reference.fields are required")
	}

	ref := fkd.Reference.Resource
	if ref == "" {
		// an empty reference resource points at the declaring resource
		ref = owner
	}

	return ForeignKeyRef{
		LocalField:  fkd.Fields[0],
		RefResource: ref,
		RefField:    fkd.Reference.Fields[0],
	}, nil
}
