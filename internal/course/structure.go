// Package course models the module/topic/lesson tree of a course and the
// worksheet references held inside it.
package course

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/edoomio/studio/internal/blocks"
)

type Lesson struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Blocks []blocks.Block `json:"blocks"`
	// WorksheetID is the legacy single-worksheet link, migrated by NormalizeStructure.
	WorksheetID string `json:"worksheetId,omitempty"`
}

type Topic struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

type Module struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Topics []Topic `json:"topics"`
}

// Structure is the ordered module list stored on a course.
type Structure []Module

// Parse decodes a stored structure. Empty input and null yield an empty structure.
func Parse(raw []byte) (Structure, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Structure{}, nil
	}
	var s Structure
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, fmt.Errorf("decode course structure: %w", err)
	}
	if s == nil {
		s = Structure{}
	}
	return s, nil
}

// Marshal encodes the structure for storage.
func (s Structure) Marshal() ([]byte, error) {
	if s == nil {
		s = Structure{}
	}
	return json.Marshal(s)
}

// Clone deep copies the structure.
func (s Structure) Clone() Structure {
	if s == nil {
		return nil
	}
	out := make(Structure, len(s))
	for i, m := range s {
		out[i] = m
		out[i].Topics = make([]Topic, len(m.Topics))
		for j, t := range m.Topics {
			out[i].Topics[j] = t
			out[i].Topics[j].Lessons = make([]Lesson, len(t.Lessons))
			for k, l := range t.Lessons {
				l.Blocks = blocks.Clone(l.Blocks)
				out[i].Topics[j].Lessons[k] = l
			}
		}
	}
	return out
}

// EachLesson calls fn with a pointer to every lesson in document order.
func (s Structure) EachLesson(fn func(*Lesson)) {
	for i := range s {
		for j := range s[i].Topics {
			for k := range s[i].Topics[j].Lessons {
				fn(&s[i].Topics[j].Lessons[k])
			}
		}
	}
}

// CountLessons returns the total number of lessons.
func (s Structure) CountLessons() int {
	n := 0
	for _, m := range s {
		for _, t := range m.Topics {
			n += len(t.Lessons)
		}
	}
	return n
}

// CountTopics returns the total number of topics.
func (s Structure) CountTopics() int {
	n := 0
	for _, m := range s {
		n += len(m.Topics)
	}
	return n
}

// NormalizeStructure migrates legacy lesson worksheet links into linked-blocks
// blocks and makes sure every lesson has a block list. It reports whether s changed.
func NormalizeStructure(s Structure) bool {
	changed := false
	s.EachLesson(func(l *Lesson) {
		if l.Blocks == nil {
			l.Blocks = []blocks.Block{}
			changed = true
		}
		if l.WorksheetID == "" {
			return
		}
		if !linksWorksheet(l.Blocks, l.WorksheetID) {
			l.Blocks = append(l.Blocks, linkedBlock(l.WorksheetID))
		}
		l.WorksheetID = ""
		changed = true
	})
	return changed
}

func linksWorksheet(list []blocks.Block, worksheetID string) bool {
	found := false
	blocks.Walk(list, func(b blocks.Block) {
		if b.Type() == blocks.TypeLinkedBlocks && b.String("worksheetId") == worksheetID {
			found = true
		}
	})
	return found
}

func linkedBlock(worksheetID string) blocks.Block {
	return blocks.Block{
		"id":             uuid.NewString(),
		"type":           blocks.TypeLinkedBlocks,
		"visibility":     "both",
		"worksheetId":    worksheetID,
		"worksheetTitle": "",
		"worksheetSlug":  "",
	}
}
