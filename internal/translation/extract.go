// Package translation turns course documents into flat string tables for the
// translation service and folds translated tables back into course copies.
package translation

import (
	"strings"

	"github.com/edoomio/studio/internal/blocks"
	"github.com/edoomio/studio/internal/course"
)

// Document is the translatable part of a course.
type Document struct {
	Structure     course.Structure
	CoverSettings map[string]any
	Settings      map[string]any
}

// Bundle is the translated copy of a Document stored per language.
type Bundle struct {
	Structure     course.Structure `json:"structure"`
	CoverSettings map[string]any   `json:"coverSettings"`
	Settings      map[string]any   `json:"settings"`
}

// Strings is an extracted string table. Keys keeps traversal order.
type Strings struct {
	Keys   []string
	Values map[string]string
}

// Len returns the number of extracted strings.
func (s Strings) Len() int {
	return len(s.Keys)
}

// Extract collects every non-blank translatable string of doc keyed by its stable path.
func Extract(doc Document) Strings {
	out := Strings{Values: make(map[string]string)}
	walkDocument(doc, func(s slot) {
		v, ok := s.get()
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		if _, dup := out.Values[s.key]; !dup {
			out.Keys = append(out.Keys, s.key)
		}
		out.Values[s.key] = v
	})
	return out
}

func (d Document) clone() Document {
	return Document{
		Structure:     d.Structure.Clone(),
		CoverSettings: cloneMap(d.CoverSettings),
		Settings:      cloneMap(d.Settings),
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return blocks.CloneValue(m).(map[string]any)
}
