package documents

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/edoomio/studio/internal/entities"
)

// Chapter groups worksheets inside an e-book.
type Chapter struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	WorksheetIDs []string `json:"worksheetIds"`
}

// ChapterItem is a resolved chapter entry. Missing marks a deleted worksheet.
type ChapterItem struct {
	ID      string                 `json:"id"`
	Type    entities.WorksheetType `json:"type,omitempty"`
	Title   string                 `json:"title,omitempty"`
	Slug    string                 `json:"slug,omitempty"`
	Missing bool                   `json:"missing,omitempty"`
}

type PopulatedChapter struct {
	ID    string        `json:"id"`
	Title string        `json:"title"`
	Items []ChapterItem `json:"items"`
}

// ParseChapters decodes stored chapters. Empty input yields no chapters.
func ParseChapters(raw []byte) ([]Chapter, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Chapter{}, nil
	}
	var out []Chapter
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("decode chapters: %w", err)
	}
	if out == nil {
		out = []Chapter{}
	}
	return out, nil
}

// ChapterWorksheetIDs returns each referenced worksheet id once.
func ChapterWorksheetIDs(chapters []Chapter) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, ch := range chapters {
		for _, id := range ch.WorksheetIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// PopulateChapters attaches worksheet summaries to chapter entries. Ids not in
// found produce a Missing item in place.
func PopulateChapters(chapters []Chapter, found map[string]entities.Worksheet) []PopulatedChapter {
	out := make([]PopulatedChapter, 0, len(chapters))
	for _, ch := range chapters {
		pc := PopulatedChapter{ID: ch.ID, Title: ch.Title, Items: make([]ChapterItem, 0, len(ch.WorksheetIDs))}
		for _, id := range ch.WorksheetIDs {
			w, ok := found[id]
			if !ok {
				pc.Items = append(pc.Items, ChapterItem{ID: id, Missing: true})
				continue
			}
			pc.Items = append(pc.Items, ChapterItem{ID: w.ID, Type: w.Type, Title: w.Title, Slug: w.Slug})
		}
		out = append(out, pc)
	}
	return out
}
