package mapping

import (
	"bytes"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/validation"
)

// Rule maps one or more source fields onto a target field.
type Rule struct {
	Target  string   `yaml:"target" json:"target"`
	Source  string   `yaml:"source,omitempty" json:"source,omitempty"`
	Sources []string `yaml:"sources,omitempty" json:"sources,omitempty"`
	Pipe    string   `yaml:"pipe,omitempty" json:"pipe,omitempty"`
}

// Multi reports whether the rule reads several sources.
func (r Rule) Multi() bool {
	return len(r.Sources) > 0
}

// Mapping is an ordered list of rules.
type Mapping struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

// Load reads and validates a mapping file.
func Load(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.InvalidConfig("reading mapping " + path).WithCause(err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML mapping. Unknown keys are rejected.
func Parse(data []byte) (*Mapping, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Mapping
	if err := dec.Decode(&m); err != nil {
		return nil, errors.InvalidConfig("invalid mapping").WithCause(err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that every rule has a unique target and exactly one of
// source or sources.
func (m *Mapping) Validate() error {
	v := validation.New()
	v.Check(len(m.Rules) > 0, "rules", "at least one rule is required")

	seen := make(map[string]bool, len(m.Rules))
	for i, r := range m.Rules {
		field := fmt.Sprintf("rules[%d]", i)
		v.Required(field+".target", r.Target)
		v.Check(!seen[r.Target], field+".target", "duplicate target "+r.Target)
		v.Check((r.Source == "") != (len(r.Sources) == 0), field, "exactly one of source or sources is required")
		seen[r.Target] = true
	}

	if err := v.Validate(); err != nil {
		return errors.InvalidConfig("invalid mapping").WithCause(err)
	}
	return nil
}

// Marshal encodes the mapping as YAML.
func (m *Mapping) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
