package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jask/malla/internal/curriculum"
)

// RawID accepts course ids written either as numbers or as strings.
type RawID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *RawID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RawID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("course id must be a string or number: %s", data)
	}
	*id = RawID(n.String())
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (id *RawID) UnmarshalTOML(v any) error {
	switch t := v.(type) {
	case string:
		*id = RawID(strings.TrimSpace(t))
	case int64:
		*id = RawID(strconv.FormatInt(t, 10))
	case float64:
		*id = RawID(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		return fmt.Errorf("course id must be a string or number, got %T", v)
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (id *RawID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: course id must be a scalar", node.Line)
	}
	*id = RawID(strings.TrimSpace(node.Value))
	return nil
}

// LooseInt is an integer field that also accepts numeric strings, as
// hand-edited catalogs often quote numbers. Nulls and empty strings read as
// zero.
type LooseInt int

func (n *LooseInt) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*n = 0
		return nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		*n = LooseInt(i)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	*n = LooseInt(int(f))
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *LooseInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return n.parse(s)
	}
	return n.parse(string(data))
}

// UnmarshalTOML implements toml.Unmarshaler.
func (n *LooseInt) UnmarshalTOML(v any) error {
	switch t := v.(type) {
	case int64:
		*n = LooseInt(t)
	case float64:
		*n = LooseInt(int(t))
	case string:
		return n.parse(t)
	default:
		return fmt.Errorf("expected a number, got %T", v)
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *LooseInt) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", node.Line)
	}
	if node.Tag == "!!null" {
		*n = 0
		return nil
	}
	return n.parse(node.Value)
}

// Record is one course as written in the catalog file. Field names follow
// the materias.json layout.
type Record struct {
	ID          RawID    `json:"id" toml:"id" yaml:"id"`
	Name        string   `json:"nombre" toml:"nombre" yaml:"nombre"`
	Year        LooseInt `json:"anio" toml:"anio" yaml:"anio"`
	Term        string   `json:"cuatrimestre" toml:"cuatrimestre" yaml:"cuatrimestre"`
	Description string   `json:"descripcion" toml:"descripcion" yaml:"descripcion"`
	Credits     LooseInt `json:"creditos" toml:"creditos" yaml:"creditos"`
	Before      []RawID  `json:"correlativas_previas" toml:"correlativas_previas" yaml:"correlativas_previas"`
	After       []RawID  `json:"correlativas_posteriores" toml:"correlativas_posteriores" yaml:"correlativas_posteriores"`
}

// Courses converts records to registry courses. The reverse prerequisite
// list of each course is completed from the other records' Before lists:
// declared ids keep their order and derived ones are appended.
func Courses(records []Record) []curriculum.Course {
	derived := map[curriculum.ID][]curriculum.ID{}
	for _, rec := range records {
		for _, pre := range rec.Before {
			p := curriculum.ID(pre)
			derived[p] = append(derived[p], curriculum.ID(rec.ID))
		}
	}

	out := make([]curriculum.Course, 0, len(records))
	for _, rec := range records {
		id := curriculum.ID(rec.ID)
		c := curriculum.Course{
			ID:          id,
			Name:        strings.TrimSpace(rec.Name),
			Year:        int(rec.Year),
			Term:        strings.TrimSpace(rec.Term),
			Description: strings.TrimSpace(rec.Description),
			Credits:     int(rec.Credits),
			Before:      toIDs(rec.Before),
			After:       toIDs(rec.After),
			State:       curriculum.Pending,
		}
		if c.Name == "" {
			c.Name = string(id)
		}
		seen := make(map[curriculum.ID]bool, len(c.After))
		for _, a := range c.After {
			seen[a] = true
		}
		for _, a := range derived[id] {
			if !seen[a] {
				seen[a] = true
				c.After = append(c.After, a)
			}
		}
		out = append(out, c)
	}
	return out
}

func toIDs(raw []RawID) []curriculum.ID {
	if len(raw) == 0 {
		return nil
	}
	out := make([]curriculum.ID, 0, len(raw))
	for _, r := range raw {
		if r == "" {
			continue
		}
		out = append(out, curriculum.ID(r))
	}
	return out
}
