package course

import "github.com/edoomio/studio/internal/blocks"

// WorksheetSummary is what a lookup returns for an existing worksheet.
type WorksheetSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// WorksheetRef is a resolved lesson reference. Missing marks a dangling id.
type WorksheetRef struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Slug    string `json:"slug,omitempty"`
	Missing bool   `json:"missing,omitempty"`
}

type LessonView struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Blocks     []blocks.Block `json:"blocks"`
	Worksheets []WorksheetRef `json:"worksheets"`
}

type TopicView struct {
	ID      string       `json:"id"`
	Title   string       `json:"title"`
	Lessons []LessonView `json:"lessons"`
}

type ModuleView struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Topics []TopicView `json:"topics"`
}

// Populate mirrors the structure and attaches the referenced worksheets of each
// lesson. Ids absent from found resolve to a Missing ref; no lesson is dropped.
// Linked-blocks blocks in the returned views carry the current title and slug.
func Populate(s Structure, found map[string]WorksheetSummary) []ModuleView {
	modules := make([]ModuleView, 0, len(s))
	for _, m := range s {
		mv := ModuleView{ID: m.ID, Title: m.Title, Topics: make([]TopicView, 0, len(m.Topics))}
		for _, t := range m.Topics {
			tv := TopicView{ID: t.ID, Title: t.Title, Lessons: make([]LessonView, 0, len(t.Lessons))}
			for _, l := range t.Lessons {
				tv.Lessons = append(tv.Lessons, populateLesson(l, found))
			}
			mv.Topics = append(mv.Topics, tv)
		}
		modules = append(modules, mv)
	}
	return modules
}

func populateLesson(l Lesson, found map[string]WorksheetSummary) LessonView {
	lv := LessonView{
		ID:         l.ID,
		Title:      l.Title,
		Blocks:     blocks.Clone(l.Blocks),
		Worksheets: []WorksheetRef{},
	}
	if lv.Blocks == nil {
		lv.Blocks = []blocks.Block{}
	}

	ids := lessonWorksheetIDs(l.Blocks)
	if l.WorksheetID != "" {
		ids = append([]string{l.WorksheetID}, ids...)
	}
	for _, id := range ids {
		lv.Worksheets = append(lv.Worksheets, resolve(id, found))
	}

	blocks.Walk(lv.Blocks, func(b blocks.Block) {
		if b.Type() != blocks.TypeLinkedBlocks {
			return
		}
		if ws, ok := found[b.String("worksheetId")]; ok {
			b["worksheetTitle"] = ws.Title
			b["worksheetSlug"] = ws.Slug
		}
	})
	return lv
}

func resolve(id string, found map[string]WorksheetSummary) WorksheetRef {
	ws, ok := found[id]
	if !ok {
		return WorksheetRef{ID: id, Missing: true}
	}
	return WorksheetRef{ID: ws.ID, Title: ws.Title, Slug: ws.Slug}
}
