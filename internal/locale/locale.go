// Package locale implements the Swiss German (CH) variant of worksheet content:
// automatic ß replacement plus manual per-field overrides.
package locale

import (
	"strconv"
	"strings"

	"github.com/edoomio/studio/internal/blocks"
)

// Mode selects the rendered variant.
type Mode string

const (
	ModeDE Mode = "DE"
	ModeCH Mode = "CH"
)

// Overrides maps block id -> dot field path -> replacement text.
type Overrides map[string]map[string]string

// ReplaceEszett returns a copy of v with every ß replaced by ss in all strings,
// recursing into slices and maps.
func ReplaceEszett(v any) any {
	switch t := v.(type) {
	case string:
		return strings.ReplaceAll(t, "ß", "ss")
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = ReplaceEszett(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = ReplaceEszett(item)
		}
		return out
	case blocks.Block:
		return blocks.Block(ReplaceEszett(map[string]any(t)).(map[string]any))
	case []blocks.Block:
		out := make([]blocks.Block, len(t))
		for i, b := range t {
			out[i] = ReplaceEszett(b).(blocks.Block)
		}
		return out
	default:
		return v
	}
}

// GetByPath reads a dot separated path such as "options.1.text". Numeric
// segments index arrays. It returns nil, false when the path does not resolve.
func GetByPath(v any, path string) (any, bool) {
	cur := v
	for _, part := range strings.Split(path, ".") {
		switch t := cur.(type) {
		case map[string]any:
			next, ok := t[part]
			if !ok {
				return nil, false
			}
			cur = next
		case blocks.Block:
			next, ok := t[part]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(t) {
				return nil, false
			}
			cur = t[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// SetByPath returns a copy of v with value written at path. Containers along
// the path are copied; missing objects are created.
func SetByPath(v any, path string, value any) any {
	return setAt(v, strings.Split(path, "."), value)
}

func setAt(cur any, parts []string, value any) any {
	key := parts[0]
	last := len(parts) == 1

	if list, ok := cur.([]any); ok {
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 {
			return cur
		}
		out := make([]any, max(len(list), i+1))
		copy(out, list)
		if last {
			out[i] = value
		} else {
			out[i] = setAt(out[i], parts[1:], value)
		}
		return out
	}

	var src map[string]any
	switch t := cur.(type) {
	case map[string]any:
		src = t
	case blocks.Block:
		src = t
	}
	out := make(map[string]any, len(src)+1)
	for k, item := range src {
		out[k] = item
	}
	if last {
		out[key] = value
	} else {
		out[key] = setAt(out[key], parts[1:], value)
	}
	if _, isBlock := cur.(blocks.Block); isBlock {
		return blocks.Block(out)
	}
	return out
}

// ApplyCHOverrides returns blocks with manual overrides written over them,
// descending into columns. The input is not modified.
func ApplyCHOverrides(list []blocks.Block, overrides Overrides) []blocks.Block {
	out := make([]blocks.Block, len(list))
	for i, b := range list {
		out[i] = applyBlock(b, overrides)
	}
	return out
}

func applyBlock(b blocks.Block, overrides Overrides) blocks.Block {
	if b.Type() == blocks.TypeColumns {
		cols := b.Columns()
		children := make([]any, len(cols))
		for i, col := range cols {
			applied := ApplyCHOverrides(col, overrides)
			items := make([]any, len(applied))
			for j, child := range applied {
				items[j] = map[string]any(child)
			}
			children[i] = items
		}
		return SetByPath(b, "children", children).(blocks.Block)
	}

	fields := overrides[b.ID()]
	if len(fields) == 0 {
		return b
	}
	updated := any(b)
	for path, text := range fields {
		updated = SetByPath(updated, path, text)
	}
	return updated.(blocks.Block)
}

// Transform produces the content shown for mode: unchanged for DE, ß replaced
// and overrides applied for CH.
func Transform(list []blocks.Block, mode Mode, overrides Overrides) []blocks.Block {
	if mode != ModeCH {
		return list
	}
	replaced := ReplaceEszett(list).([]blocks.Block)
	return ApplyCHOverrides(replaced, overrides)
}

// EffectiveValue returns the text shown for a field: the base value in DE mode,
// otherwise the manual override or the ß-replaced base value.
func EffectiveValue(base, blockID, fieldPath string, mode Mode, overrides Overrides) string {
	if mode != ModeCH {
		return base
	}
	if v, ok := overrides[blockID][fieldPath]; ok {
		return v
	}
	return strings.ReplaceAll(base, "ß", "ss")
}

// HasOverride reports whether a manual override is set for a field.
func HasOverride(blockID, fieldPath string, overrides Overrides) bool {
	_, ok := overrides[blockID][fieldPath]
	return ok
}

// CountOverrides returns the total number of field overrides.
func CountOverrides(overrides Overrides) int {
	n := 0
	for _, fields := range overrides {
		n += len(fields)
	}
	return n
}
