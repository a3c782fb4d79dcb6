package docsettings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Nested names a key whose object value is merged one level deep instead of replaced.
type Nested struct {
	Key string
	// Defaults receives the top-level merge result so defaults can depend on sibling keys.
	Defaults func(merged map[string]any) map[string]any
}

// Overlay returns a copy of defaults with every key present in stored written over it.
// Presence decides: stored zero values and nulls win.
func Overlay(defaults, stored map[string]any) map[string]any {
	out := make(map[string]any, len(defaults)+len(stored))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range stored {
		out[k] = v
	}
	return out
}

// Merge resolves stored settings against the descriptor's defaults. A nil or empty
// stored map yields a value deep-equal to the defaults.
func (d *Descriptor) Merge(stored map[string]any) map[string]any {
	out := Overlay(d.defaults(), stored)
	for _, n := range d.nested {
		def := n.Defaults(out)
		// Any other shape stays as stored so Validate can report it.
		switch v := stored[n.Key].(type) {
		case nil:
			out[n.Key] = def
		case map[string]any:
			out[n.Key] = Overlay(def, v)
		}
	}
	return out
}

// Resolve decodes raw JSON settings, merges them and checks the result against the
// kind's typed shape. Empty input and JSON null resolve to the defaults.
func (d *Descriptor) Resolve(raw []byte) (map[string]any, error) {
	stored, err := parseStored(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedSettings, d.Kind, err)
	}
	merged := d.Merge(stored)
	if err := d.Validate(merged); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedSettings, d.Kind, err)
	}
	return merged, nil
}

// ResolveLenient merges raw stored settings without checking their types. Stored
// values of the wrong shape pass through as stored; input that is not a JSON
// object resolves to the defaults.
func (d *Descriptor) ResolveLenient(raw []byte) map[string]any {
	stored, err := parseStored(raw)
	if err != nil {
		stored = nil
	}
	return d.Merge(stored)
}

// Validate checks that every known key of the merged map fits the kind's typed shape.
func (d *Descriptor) Validate(merged map[string]any) error {
	return d.check(merged)
}

// ValidatePayload checks a partial settings payload as it would resolve on read.
func (d *Descriptor) ValidatePayload(raw []byte) error {
	stored, err := parseStored(raw)
	if err != nil {
		return &ValidationError{Field: "settings", Reason: "must be a JSON object"}
	}
	return d.Validate(d.Merge(stored))
}

// Resolve merges raw stored settings for desc and decodes them into T.
func Resolve[T any](desc *Descriptor, raw []byte) (T, error) {
	var zero T
	merged, err := desc.Resolve(raw)
	if err != nil {
		return zero, err
	}
	out, err := Decode[T](merged)
	if err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrMalformedSettings, desc.Kind, err)
	}
	return out, nil
}

// Decode converts a merged settings map into its typed form.
func Decode[T any](m map[string]any) (T, error) {
	var out T
	data, err := json.Marshal(m)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return out, &ValidationError{
				Field:  typeErr.Field,
				Reason: fmt.Sprintf("expected %s, got %s", jsonTypeName(typeErr.Type), jsonValueName(typeErr.Value)),
			}
		}
		return out, err
	}
	return out, nil
}

// jsonTypeName names the JSON type a Go destination type accepts.
func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return "value"
}

// jsonValueName normalizes the value description encoding/json reports.
func jsonValueName(v string) string {
	switch {
	case v == "bool":
		return "boolean"
	case strings.HasPrefix(v, "number"):
		return "number"
	}
	return v
}

func parseStored(raw []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var stored map[string]any
	if err := json.Unmarshal(trimmed, &stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// toMap turns a typed defaults value into its generic JSON form.
func toMap(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("docsettings: marshal defaults: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		panic(fmt.Sprintf("docsettings: unmarshal defaults: %v", err))
	}
	return m
}
