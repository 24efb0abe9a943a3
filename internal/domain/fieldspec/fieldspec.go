package fieldspec

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/similar/internal/domain"
)

// Shape is the form the fields option was given in.
type Shape int

const (
	// Single is one field name with weight 1.
	Single Shape = iota + 1
	// List is an ordered sequence of field names, each with weight 1.
	List
	// Weighted maps field names to weights.
	Weighted
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case Single:
		return "single"
	case List:
		return "list"
	case Weighted:
		return "weighted"
	default:
		return "unknown"
	}
}

var (
	fieldNameRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.\-]*$`)
	digitsRegex    = regexp.MustCompile(`^[0-9]+$`)
)

// Field is one field to compare and its weight.
type Field struct {
	Name   string
	Weight float64
}

// Spec is a validated fields option.
type Spec struct {
	shape  Shape
	fields []Field
}

// NewSingle creates a single-field spec.
func NewSingle(name string) (Spec, error) {
	if err := validateName(name); err != nil {
		return Spec{}, err
	}
	return Spec{shape: Single, fields: []Field{{Name: name, Weight: 1}}}, nil
}

// NewList creates an ordered multi-field spec. Repeated names keep their first position.
func NewList(names ...string) (Spec, error) {
	fields := make([]Field, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if err := validateName(n); err != nil {
			return Spec{}, err
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		fields = append(fields, Field{Name: n, Weight: 1})
	}
	return Spec{shape: List, fields: fields}, nil
}

// NewWeighted creates a weighted spec. Fields are ordered by name.
func NewWeighted(weights map[string]float64) (Spec, error) {
	names := make([]string, 0, len(weights))
	for n := range weights {
		names = append(names, n)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, n := range names {
		if err := validateName(n); err != nil {
			return Spec{}, err
		}
		w := weights[n]
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return Spec{}, fmt.Errorf("%w: weight for field %q must be a positive number, got %v",
				domain.ErrInvalidConfiguration, n, w)
		}
		fields = append(fields, Field{Name: n, Weight: w})
	}
	return Spec{shape: Weighted, fields: fields}, nil
}

// MustSingle is NewSingle for compile-time constants.
func MustSingle(name string) Spec {
	s, err := NewSingle(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse builds a spec from a decoded JSON or YAML value: a string, a sequence of strings,
// or a mapping of field name to weight. A mapping keyed "0".."n-1" is read as a sequence.
func Parse(v any) (Spec, error) {
	switch t := v.(type) {
	case string:
		return NewSingle(t)
	case []string:
		return NewList(t...)
	case []any:
		names := make([]string, len(t))
		for i, e := range t {
			s, ok := e.(string)
			if !ok {
				return Spec{}, fmt.Errorf("%w: fields[%d] must be a string, got %T", domain.ErrInvalidConfiguration, i, e)
			}
			names[i] = s
		}
		return NewList(names...)
	case map[string]float64:
		return NewWeighted(t)
	case map[string]any:
		return parseMapping(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return Spec{}, fmt.Errorf("%w: field key %v is not a field name", domain.ErrInvalidConfiguration, k)
			}
			m[ks] = e
		}
		return parseMapping(m)
	case nil:
		return Spec{}, fmt.Errorf("%w: fields is required", domain.ErrInvalidConfiguration)
	default:
		return Spec{}, fmt.Errorf("%w: fields must be a string, a list or a weighted mapping, got %T",
			domain.ErrInvalidConfiguration, v)
	}
}

// ParseEntries builds a spec from command-line style entries: "tags" is a single field,
// "tags","category" a list, and "tags:2","category:1" a weighted mapping.
func ParseEntries(entries []string) (Spec, error) {
	weighted := false
	for _, e := range entries {
		if strings.Contains(e, ":") {
			weighted = true
			break
		}
	}

	switch {
	case weighted:
		weights := make(map[string]float64, len(entries))
		for _, e := range entries {
			name, w, ok := strings.Cut(e, ":")
			if !ok {
				return Spec{}, fmt.Errorf("%w: field %q has no weight", domain.ErrInvalidConfiguration, e)
			}
			v, err := strconv.ParseFloat(w, 64)
			if err != nil {
				return Spec{}, fmt.Errorf("%w: weight of %q: %w", domain.ErrInvalidConfiguration, name, err)
			}
			weights[name] = v
		}
		return NewWeighted(weights)
	case len(entries) == 1:
		return NewSingle(entries[0])
	default:
		return NewList(entries...)
	}
}

func parseMapping(m map[string]any) (Spec, error) {
	if isSequential(m) {
		names := make([]string, len(m))
		for i := range names {
			s, ok := m[strconv.Itoa(i)].(string)
			if !ok {
				return Spec{}, fmt.Errorf("%w: fields[%d] must be a string", domain.ErrInvalidConfiguration, i)
			}
			names[i] = s
		}
		return NewList(names...)
	}

	weights := make(map[string]float64, len(m))
	for k, e := range m {
		w, err := toWeight(e)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: weight for field %q: %w", domain.ErrInvalidConfiguration, k, err)
		}
		weights[k] = w
	}
	return NewWeighted(weights)
}

// isSequential reports whether the keys are exactly "0".."len-1".
func isSequential(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for i := range len(m) {
		if _, ok := m[strconv.Itoa(i)]; !ok {
			return false
		}
	}
	return true
}

func toWeight(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("parse number: %w", err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func validateName(name string) error {
	if !fieldNameRegex.MatchString(name) || digitsRegex.MatchString(name) {
		return fmt.Errorf("%w: %q is not a valid field name", domain.ErrInvalidConfiguration, name)
	}
	return nil
}

// Shape returns the form the spec was given in.
func (s Spec) Shape() Shape { return s.shape }

// Fields returns the fields in comparison order.
func (s Spec) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// IsZero reports whether the spec was never set.
func (s Spec) IsZero() bool { return s.shape == 0 }

// Value returns the plain form of the spec: string, []string or map[string]float64.
func (s Spec) Value() any {
	switch s.shape {
	case Single:
		return s.fields[0].Name
	case List:
		names := make([]string, len(s.fields))
		for i, f := range s.fields {
			names[i] = f.Name
		}
		return names
	case Weighted:
		m := make(map[string]float64, len(s.fields))
		for _, f := range s.fields {
			m[f.Name] = f.Weight
		}
		return m
	default:
		return nil
	}
}

// MarshalJSON encodes the spec in its plain form. Weighted keys are sorted, so equal specs
// always encode to equal bytes.
func (s Spec) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(s.Value())
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	return b, nil
}

// UnmarshalJSON decodes any accepted fields shape.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: decode fields: %w", domain.ErrInvalidConfiguration, err)
	}
	parsed, err := Parse(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UnmarshalYAML decodes any accepted fields shape.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("%w: decode fields: %w", domain.ErrInvalidConfiguration, err)
	}
	parsed, err := Parse(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
