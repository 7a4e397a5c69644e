package parameters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrMalformedHeaderField is returned (wrapped) by ParseHeader when a field isn't a "key=<number>" pair.
var ErrMalformedHeaderField = errors.New("malformed header field")

// Hyperparameters are the numeric parameters of one run, in the order they were given.
//
// It marshals to JSON and YAML as a mapping, keeping that order.
type Hyperparameters struct {
	keys   []string
	values map[string]float64
}

// NewHyperparameters returns an empty set of hyperparameters.
func NewHyperparameters() *Hyperparameters {
	return &Hyperparameters{values: make(map[string]float64)}
}

// ParseHeader parses a run header line, "key=value,key=value,...", where every value
// is a number.
func ParseHeader(header string) (*Hyperparameters, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, errors.Wrap(ErrMalformedHeaderField, "empty header")
	}
	h := NewHyperparameters()
	for fieldIdx, field := range strings.Split(header, ",") {
		key, value, found := strings.Cut(field, "=")
		if !found {
			return nil, errors.Wrapf(ErrMalformedHeaderField, "field #%d %q has no \"=\"", fieldIdx, field)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, errors.Wrapf(ErrMalformedHeaderField, "field #%d %q has an empty key", fieldIdx, field)
		}
		if _, exists := h.values[key]; exists {
			return nil, errors.Wrapf(ErrMalformedHeaderField, "key %q is repeated", key)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Wrapf(ErrMalformedHeaderField, "%s=%q is not a finite number", key, value)
		}
		h.Set(key, v)
	}
	return h, nil
}

// Set the value of key, appending it to the order of keys if it is new.
func (h *Hyperparameters) Set(key string, value float64) {
	if _, exists := h.values[key]; !exists {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

// Get returns the value of key, and whether it is set.
func (h *Hyperparameters) Get(key string) (value float64, found bool) {
	value, found = h.values[key]
	return
}

// Len returns the number of hyperparameters.
func (h *Hyperparameters) Len() int {
	return len(h.keys)
}

// Keys returns the keys in order.
func (h *Hyperparameters) Keys() []string {
	return slices.Clone(h.keys)
}

// All iterates over keys and values, in order.
func (h *Hyperparameters) All() iter.Seq2[string, float64] {
	return func(yield func(string, float64) bool) {
		for _, key := range h.keys {
			if !yield(key, h.values[key]) {
				return
			}
		}
	}
}

// String prints the hyperparameters as "{key: value, ...}".
func (h *Hyperparameters) String() string {
	parts := make([]string, 0, len(h.keys))
	for key, value := range h.All() {
		parts = append(parts, fmt.Sprintf("%s: %s", key, strconv.FormatFloat(value, 'g', -1, 64)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MarshalJSON implements json.Marshaler.
func (h *Hyperparameters) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for ii, key := range h.keys {
		if ii > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		valueJSON, err := json.Marshal(h.values[key])
		if err != nil {
			return nil, errors.Wrapf(err, "hyperparameter %q", key)
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping the order of the keys.
func (h *Hyperparameters) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.Errorf("hyperparameters must be a JSON object, got %v", tok)
	}
	*h = *NewHyperparameters()
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string) // Object keys are always strings.
		var value float64
		if err = dec.Decode(&value); err != nil {
			return errors.Wrapf(err, "hyperparameter %q", key)
		}
		h.Set(key, value)
	}
	_, err = dec.Token() // Closing '}'.
	return err
}

// MarshalYAML implements yaml.Marshaler.
func (h *Hyperparameters) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for key, value := range h.All() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(value, 'g', -1, 64)},
		)
	}
	return node, nil
}

// UnmarshalYAML implements yaml.Unmarshaler, keeping the order of the keys.
func (h *Hyperparameters) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Errorf("hyperparameters must be a YAML mapping (line %d)", node.Line)
	}
	*h = *NewHyperparameters()
	for ii := 0; ii+1 < len(node.Content); ii += 2 {
		var value float64
		if err := node.Content[ii+1].Decode(&value); err != nil {
			return errors.Wrapf(err, "hyperparameter %q", node.Content[ii].Value)
		}
		h.Set(node.Content[ii].Value, value)
	}
	return nil
}
