// Package blocks holds the generic representation of document content blocks.
//
// Blocks are heterogeneous JSON objects identified by "id" and discriminated by
// "type". They are kept as maps so unknown block types and fields survive a
// read-modify-write cycle untouched.
package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	TypeColumns      = "columns"
	TypeLinkedBlocks = "linked-blocks"
)

// Block is a single content block.
type Block map[string]any

// ID returns the block id or "" when missing.
func (b Block) ID() string {
	return b.String("id")
}

// Type returns the block type discriminator.
func (b Block) Type() string {
	return b.String("type")
}

// String returns the string value stored under key, or "".
func (b Block) String(key string) string {
	s, _ := b[key].(string)
	return s
}

// Columns returns the child block lists of a columns block. The returned blocks
// share storage with b.
func (b Block) Columns() [][]Block {
	if b.Type() != TypeColumns {
		return nil
	}
	cols, ok := b["children"].([]any)
	if !ok {
		return nil
	}
	out := make([][]Block, 0, len(cols))
	for _, col := range cols {
		out = append(out, FromAny(col))
	}
	return out
}

// FromAny converts a decoded JSON array into blocks, skipping non-object entries.
func FromAny(v any) []Block {
	switch list := v.(type) {
	case []Block:
		return list
	case []any:
		out := make([]Block, 0, len(list))
		for _, item := range list {
			switch m := item.(type) {
			case map[string]any:
				out = append(out, Block(m))
			case Block:
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// Decode parses a JSON block list. Empty input and null decode to an empty list.
func Decode(raw []byte) ([]Block, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Block{}, nil
	}
	var out []Block
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}
	if out == nil {
		out = []Block{}
	}
	return out, nil
}

// Walk visits every block depth first, descending into columns.
func Walk(list []Block, fn func(Block)) {
	for _, b := range list {
		fn(b)
		for _, col := range b.Columns() {
			Walk(col, fn)
		}
	}
}

// Clone deep copies a block list.
func Clone(list []Block) []Block {
	if list == nil {
		return nil
	}
	out := make([]Block, len(list))
	for i, b := range list {
		out[i] = Block(CloneValue(map[string]any(b)).(map[string]any))
	}
	return out
}

// CloneValue deep copies a decoded JSON value.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = CloneValue(val)
		}
		return out
	case Block:
		return Block(CloneValue(map[string]any(t)).(map[string]any))
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = CloneValue(val)
		}
		return out
	case []Block:
		return Clone(t)
	default:
		return v
	}
}
