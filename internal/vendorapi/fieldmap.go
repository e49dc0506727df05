package vendorapi

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"leadportal_backend/internal/leads/domain"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed vendor_fields.yaml
var defaultFieldMap []byte

// FieldSpec binds one vendor payload key to a question.
type FieldSpec struct {
	Key        string             `yaml:"key"`
	Tag        domain.QuestionTag `yaml:"tag,omitempty"`
	QuestionID uuid.UUID          `yaml:"-"`
	RawID      string             `yaml:"question_id,omitempty"`
}

// FieldMap is the parsed key to question table.
type FieldMap struct {
	Fields []FieldSpec `yaml:"fields"`
	byKey  map[string]FieldSpec
}

// LoadFieldMap reads the table from path, or the built-in table when path is empty.
func LoadFieldMap(path string) (*FieldMap, error) {
	if path == "" {
		return ParseFieldMap(defaultFieldMap)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vendor field map: %w", err)
	}
	return ParseFieldMap(data)
}

// ParseFieldMap decodes and checks a YAML field table.
func ParseFieldMap(data []byte) (*FieldMap, error) {
	var m FieldMap
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse vendor field map: %w", err)
	}

	m.byKey = make(map[string]FieldSpec, len(m.Fields))
	for i, f := range m.Fields {
		f.Key = strings.TrimSpace(f.Key)
		if f.Key == "" {
			return nil, fmt.Errorf("vendor field %d: key is required", i)
		}
		if _, dup := m.byKey[f.Key]; dup {
			return nil, fmt.Errorf("vendor field %q: duplicate key", f.Key)
		}
		switch {
		case f.Tag != "" && f.RawID != "":
			return nil, fmt.Errorf("vendor field %q: set tag or question_id, not both", f.Key)
		case f.RawID != "":
			id, err := uuid.Parse(f.RawID)
			if err != nil {
				return nil, fmt.Errorf("vendor field %q: %w", f.Key, err)
			}
			f.QuestionID = id
		case f.Tag == "":
			return nil, fmt.Errorf("vendor field %q: tag or question_id is required", f.Key)
		}
		m.Fields[i] = f
		m.byKey[f.Key] = f
	}
	return &m, nil
}

// Lookup returns the question binding of a payload key.
func (m *FieldMap) Lookup(key string) (FieldSpec, bool) {
	f, ok := m.byKey[strings.TrimSpace(key)]
	return f, ok
}
