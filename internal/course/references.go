package course

import "github.com/edoomio/studio/internal/blocks"

// CollectWorksheetIDs returns every worksheet referenced by the structure exactly
// once, in first-seen order.
func CollectWorksheetIDs(s Structure) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	s.EachLesson(func(l *Lesson) {
		add(l.WorksheetID)
		for _, id := range lessonWorksheetIDs(l.Blocks) {
			add(id)
		}
	})
	return ids
}

func lessonWorksheetIDs(list []blocks.Block) []string {
	var ids []string
	blocks.Walk(list, func(b blocks.Block) {
		if b.Type() == blocks.TypeLinkedBlocks {
			if id := b.String("worksheetId"); id != "" {
				ids = append(ids, id)
			}
		}
	})
	return ids
}
