package domain

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Config is a client's outbound forwarding configuration.
type Config struct {
	Path        string            `json:"path" validate:"required,url,max=2048"`
	Method      string            `json:"method" validate:"required,oneof=POST PUT PATCH"`
	Headers     map[string]string `json:"headers,omitempty" validate:"max=50,dive,keys,required,max=256,endkeys,max=4096"`
	RequestBody []FieldMapping    `json:"requestBody" validate:"max=200,dive"`
}

// FieldMapping binds one payload key to a question answer or a fixed default.
type FieldMapping struct {
	Key        string     `json:"key" validate:"required,max=128"`
	QuestionID *uuid.UUID `json:"question_id,omitempty"`
	Default    *Value     `json:"default,omitempty"`
	DateFormat DateFormat `json:"date_format,omitempty" validate:"max=64"`
}

// Ready reports whether the configuration can be sent at all.
func (c Config) Ready() bool {
	return strings.TrimSpace(c.Path) != "" && strings.TrimSpace(c.Method) != ""
}

// Normalize trims the endpoint and upper-cases the method.
func (c Config) Normalize() Config {
	c.Path = strings.TrimSpace(c.Path)
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	c.RequestBody = slices.Clone(c.RequestBody)
	if c.RequestBody == nil {
		c.RequestBody = []FieldMapping{}
	}
	for i := range c.RequestBody {
		c.RequestBody[i].Key = strings.TrimSpace(c.RequestBody[i].Key)
	}
	return c
}

// HTTPMethod returns the method constant to send with.
func (c Config) HTTPMethod() string {
	switch strings.ToUpper(c.Method) {
	case http.MethodPut:
		return http.MethodPut
	case http.MethodPatch:
		return http.MethodPatch
	default:
		return http.MethodPost
	}
}

// MappingProblem describes one rejected field mapping.
type MappingProblem struct {
	Index  int    `json:"index"`
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// Problems runs the checks the struct tags cannot express. An empty result
// means the mappings are usable.
func (c Config) Problems() []MappingProblem {
	var problems []MappingProblem
	seen := make(map[string]int, len(c.RequestBody))
	for i, m := range c.RequestBody {
		if m.QuestionID == nil && (m.Default == nil || m.Default.IsNull()) {
			problems = append(problems, MappingProblem{Index: i, Key: m.Key, Reason: "mapping needs a question_id or a default"})
		}
		if first, dup := seen[m.Key]; dup && m.Key != "" {
			problems = append(problems, MappingProblem{Index: i, Key: m.Key, Reason: fmt.Sprintf("key already used by mapping %d", first)})
		} else {
			seen[m.Key] = i
		}
		if m.DateFormat != "" {
			if err := m.DateFormat.Validate(); err != nil {
				problems = append(problems, MappingProblem{Index: i, Key: m.Key, Reason: err.Error()})
			}
		}
	}
	return problems
}
