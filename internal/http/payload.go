package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/docsettings"
)

// payload is a decoded JSON request body. Keeping the raw values lets update
// handlers tell an absent field from an explicit zero value.
type payload map[string]json.RawMessage

func (p payload) has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p payload) isNull(key string) bool {
	return bytes.Equal(bytes.TrimSpace(p[key]), []byte("null"))
}

func (p payload) string(key string) (string, *FieldError) {
	var s string
	if err := json.Unmarshal(p[key], &s); err != nil {
		return "", &FieldError{Field: key, Reason: "must be a string"}
	}
	return s, nil
}

// optionalString decodes a nullable string. An empty string becomes nil.
func (p payload) optionalString(key string) (*string, *FieldError) {
	if p.isNull(key) {
		return nil, nil
	}
	s, ferr := p.string(key)
	if ferr != nil {
		return nil, ferr
	}
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

func (p payload) bool(key string) (bool, *FieldError) {
	var b bool
	if err := json.Unmarshal(p[key], &b); err != nil {
		return false, &FieldError{Field: key, Reason: "must be a boolean"}
	}
	return b, nil
}

// array returns the raw JSON array stored under key.
func (p payload) array(key string) (datatypes.JSON, *FieldError) {
	raw := bytes.TrimSpace(p[key])
	if p.isNull(key) {
		return datatypes.JSON("[]"), nil
	}
	var probe []json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &FieldError{Field: key, Reason: "must be an array"}
	}
	return datatypes.JSON(raw), nil
}

// settings returns the raw settings object under key after checking it
// against the defaults of kind.
func (p payload) settings(key string, kind docsettings.Kind) (datatypes.JSON, *FieldError) {
	raw := bytes.TrimSpace(p[key])
	if p.isNull(key) {
		return datatypes.JSON("{}"), nil
	}
	desc, err := docsettings.For(kind)
	if err != nil {
		return nil, &FieldError{Field: key, Reason: err.Error()}
	}
	if err := desc.ValidatePayload(raw); err != nil {
		var verr *docsettings.ValidationError
		if errors.As(err, &verr) {
			field := key
			if verr.Field != "" && verr.Field != "settings" {
				field = key + "." + verr.Field
			}
			return nil, &FieldError{Field: field, Reason: verr.Reason}
		}
		return nil, &FieldError{Field: key, Reason: err.Error()}
	}
	return datatypes.JSON(raw), nil
}

// patchField maps one payload key onto a column.
type patchField struct {
	key    string
	column string
	decode func(p payload, key string) (any, *FieldError)
}

func textField(key, column string) patchField {
	return patchField{key: key, column: column, decode: func(p payload, key string) (any, *FieldError) {
		return p.string(key)
	}}
}

func optionalTextField(key, column string) patchField {
	return patchField{key: key, column: column, decode: func(p payload, key string) (any, *FieldError) {
		return p.optionalString(key)
	}}
}

func boolField(key, column string) patchField {
	return patchField{key: key, column: column, decode: func(p payload, key string) (any, *FieldError) {
		return p.bool(key)
	}}
}

func arrayField(key, column string, check func(datatypes.JSON) error) patchField {
	return patchField{key: key, column: column, decode: func(p payload, key string) (any, *FieldError) {
		v, ferr := p.array(key)
		if ferr != nil {
			return nil, ferr
		}
		if check != nil {
			if err := check(v); err != nil {
				return nil, &FieldError{Field: key, Reason: err.Error()}
			}
		}
		return v, nil
	}}
}

func settingsField(key, column string, kind docsettings.Kind) patchField {
	return patchField{key: key, column: column, decode: func(p payload, key string) (any, *FieldError) {
		return p.settings(key, kind)
	}}
}

// buildPatch converts the fields present in p into column updates. All field
// errors are collected so the client sees every problem at once.
func buildPatch(p payload, fields ...patchField) (database.Patch, []FieldError) {
	patch := database.Patch{}
	var errs []FieldError
	for _, f := range fields {
		if !p.has(f.key) {
			continue
		}
		v, ferr := f.decode(p, f.key)
		if ferr != nil {
			errs = append(errs, *ferr)
			continue
		}
		patch.Set(f.column, v)
	}
	return patch, errs
}

// defaultSettings returns the stored defaults of kind overlaid with the
// payload's settings object, if any.
func defaultSettings(p payload, key string, kind docsettings.Kind) (datatypes.JSON, *FieldError) {
	desc, err := docsettings.For(kind)
	if err != nil {
		return nil, &FieldError{Field: key, Reason: err.Error()}
	}
	stored := map[string]any{}
	if p.has(key) && !p.isNull(key) {
		raw, ferr := p.settings(key, kind)
		if ferr != nil {
			return nil, ferr
		}
		if err := json.Unmarshal(raw, &stored); err != nil {
			return nil, &FieldError{Field: key, Reason: "must be a JSON object"}
		}
	}
	data, err := json.Marshal(desc.Merge(stored))
	if err != nil {
		return nil, &FieldError{Field: key, Reason: fmt.Sprintf("cannot encode: %v", err)}
	}
	return datatypes.JSON(data), nil
}
