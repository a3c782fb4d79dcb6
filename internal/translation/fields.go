package translation

import (
	"strconv"

	"github.com/edoomio/studio/internal/blocks"
)

// collection is a list of objects with their own ids inside a block.
type collection struct {
	key    string
	fields []string
}

// blockFields lists the translatable fields of one block type. Types missing from
// blockTable carry no translatable text.
type blockFields struct {
	fields      []string
	collections []collection
	// indexed names a plain string list addressed by position.
	indexed string
}

var verbRowFields = []string{"person", "detail", "pronoun", "conjugation", "conjugation2"}

var blockTable = map[string]blockFields{
	"heading":             {fields: []string{"content"}},
	"image":               {fields: []string{"alt", "caption"}},
	"image-cards":         {collections: []collection{{"items", []string{"text"}}}},
	"text-cards":          {collections: []collection{{"items", []string{"text", "caption"}}}},
	"multiple-choice":     {fields: []string{"question"}, collections: []collection{{"options", []string{"text"}}}},
	"fill-in-blank":       {fields: []string{"content"}},
	"fill-in-blank-items": {collections: []collection{{"items", []string{"content"}}}},
	"matching":            {fields: []string{"instruction"}, collections: []collection{{"pairs", []string{"left", "right"}}}},
	"two-column-fill":     {fields: []string{"instruction"}, collections: []collection{{"items", []string{"left", "right"}}}},
	"glossary":            {fields: []string{"instruction"}, collections: []collection{{"pairs", []string{"definition"}}}},
	"open-response":       {fields: []string{"question"}},
	"word-bank":           {indexed: "words"},
	"true-false-matrix": {
		fields:      []string{"instruction", "statementColumnHeader", "trueLabel", "falseLabel"},
		collections: []collection{{"statements", []string{"text"}}},
	},
	"order-items":    {fields: []string{"instruction"}, collections: []collection{{"items", []string{"text"}}}},
	"inline-choices": {collections: []collection{{"items", []string{"content"}}}},
	"sorting-categories": {
		fields:      []string{"instruction"},
		collections: []collection{{"categories", []string{"label"}}, {"items", []string{"text"}}},
	},
	"unscramble-words":   {fields: []string{"instruction"}, collections: []collection{{"words", []string{"word"}}}},
	"fix-sentences":      {fields: []string{"instruction"}, collections: []collection{{"sentences", []string{"sentence"}}}},
	"complete-sentences": {fields: []string{"instruction"}, collections: []collection{{"sentences", []string{"beginning"}}}},
	"verb-table": {
		fields:      []string{"verb"},
		collections: []collection{{"singularRows", verbRowFields}, {"pluralRows", verbRowFields}},
	},
	"dialogue":         {fields: []string{"instruction"}, collections: []collection{{"items", []string{"speaker", "text"}}}},
	"article-training": {fields: []string{"instruction"}, collections: []collection{{"items", []string{"text"}}}},
	"chart": {
		fields:      []string{"title", "xAxisLabel", "yAxisLabel"},
		collections: []collection{{"data", []string{"label"}}},
	},
	"email-skeleton": {fields: []string{"comment"}},
	"dos-and-donts": {
		fields:      []string{"dosTitle", "dontsTitle"},
		collections: []collection{{"dos", []string{"text"}}, {"donts", []string{"text"}}},
	},
	"numbered-items": {collections: []collection{{"items", []string{"content"}}}},
}

// Text block content is only translated for plain and callout styles.
var translatableTextStyles = map[string]bool{
	"":                true,
	"standard":        true,
	"hinweis":         true,
	"hinweis-wichtig": true,
	"hinweis-alarm":   true,
}

// slot is one translatable location.
type slot struct {
	key string
	get func() (string, bool)
	set func(string)
}

func fieldSlot(key string, obj map[string]any, field string) slot {
	return slot{
		key: key,
		get: func() (string, bool) {
			v, ok := obj[field].(string)
			return v, ok
		},
		set: func(v string) { obj[field] = v },
	}
}

func indexSlot(key string, list []any, i int) slot {
	return slot{
		key: key,
		get: func() (string, bool) {
			v, ok := list[i].(string)
			return v, ok
		},
		set: func(v string) { list[i] = v },
	}
}

func stringSlot(key string, target *string) slot {
	return slot{
		key: key,
		get: func() (string, bool) { return *target, true },
		set: func(v string) { *target = v },
	}
}

// walkDocument visits every translatable slot in a fixed order: cover, settings,
// then modules, topics, lessons and their blocks in structure order.
func walkDocument(doc Document, visit func(slot)) {
	if doc.CoverSettings != nil {
		for _, f := range []string{"title", "subtitle", "author"} {
			visit(fieldSlot("cover."+f, doc.CoverSettings, f))
		}
	}
	if doc.Settings != nil {
		visit(fieldSlot("settings.description", doc.Settings, "description"))
	}
	for i := range doc.Structure {
		m := &doc.Structure[i]
		visit(stringSlot("module."+m.ID+".title", &m.Title))
		for j := range m.Topics {
			t := &m.Topics[j]
			visit(stringSlot("topic."+t.ID+".title", &t.Title))
			for k := range t.Lessons {
				l := &t.Lessons[k]
				visit(stringSlot("lesson."+l.ID+".title", &l.Title))
				walkBlocks(l.Blocks, visit)
			}
		}
	}
}

func walkBlocks(list []blocks.Block, visit func(slot)) {
	for _, b := range list {
		walkBlock(b, visit)
	}
}

func walkBlock(b blocks.Block, visit func(slot)) {
	prefix := "block." + b.ID()

	switch b.Type() {
	case "text":
		if translatableTextStyles[b.String("textStyle")] {
			visit(fieldSlot(prefix+".content", b, "content"))
		}
		visit(fieldSlot(prefix+".comment", b, "comment"))
		return
	case blocks.TypeColumns:
		for _, col := range b.Columns() {
			walkBlocks(col, visit)
		}
		return
	}

	spec, ok := blockTable[b.Type()]
	if !ok {
		return
	}
	for _, f := range spec.fields {
		visit(fieldSlot(prefix+"."+f, b, f))
	}
	for _, c := range spec.collections {
		items, _ := b[c.key].([]any)
		for _, raw := range items {
			item, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			id, _ := item["id"].(string)
			for _, f := range c.fields {
				visit(fieldSlot(prefix+"."+c.key+"."+id+"."+f, item, f))
			}
		}
	}
	if spec.indexed != "" {
		words, _ := b[spec.indexed].([]any)
		for i := range words {
			visit(indexSlot(prefix+"."+spec.indexed+"."+strconv.Itoa(i), words, i))
		}
	}
}
