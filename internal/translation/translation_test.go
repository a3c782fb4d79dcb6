package translation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edoomio/studio/internal/course"
)

const sampleStructure = `[
	{"id":"m1","title":"Grundlagen","topics":[
		{"id":"t1","title":"Begrüßung","lessons":[
			{"id":"l1","title":"Hallo sagen","blocks":[
				{"id":"h1","type":"heading","content":"Guten Tag"},
				{"id":"x1","type":"text","content":"<p>Lies den Text.</p>","comment":"Hinweis"},
				{"id":"x2","type":"text","textStyle":"example","content":"Beispiel","comment":""},
				{"id":"mc","type":"multiple-choice","question":"Wie geht's?","options":[
					{"id":"o1","text":"Gut","isCorrect":true},
					{"id":"o2","text":"  ","isCorrect":false}
				]},
				{"id":"wb","type":"word-bank","words":["Haus","Baum"]},
				{"id":"sp","type":"spacer","height":20},
				{"id":"lb","type":"linked-blocks","worksheetId":"ws-1","worksheetTitle":"Blatt"},
				{"id":"col","type":"columns","columns":2,"children":[
					[{"id":"g1","type":"glossary","instruction":"Ordne zu","pairs":[{"id":"p1","term":"Hund","definition":"ein Tier"}]}],
					[{"id":"fs","type":"fix-sentences","instruction":"","sentences":[{"id":"s1","sentence":"ich | bin | hier"}]}]
				]}
			]}
		]}
	]}
]`

func sampleDocument(t *testing.T) Document {
	t.Helper()
	s, err := course.Parse([]byte(sampleStructure))
	require.NoError(t, err)
	return Document{
		Structure:     s,
		CoverSettings: map[string]any{"title": "Deutsch A1", "subtitle": "", "author": "Team", "showLogo": true},
		Settings:      map[string]any{"description": "Ein Kurs", "languageLevel": "A1"},
	}
}

func TestExtract_KeysAndOrder(t *testing.T) {
	got := Extract(sampleDocument(t))

	want := []string{
		"cover.title",
		"cover.author",
		"settings.description",
		"module.m1.title",
		"topic.t1.title",
		"lesson.l1.title",
		"block.h1.content",
		"block.x1.content",
		"block.x1.comment",
		"block.mc.question",
		"block.mc.options.o1.text",
		"block.wb.words.0",
		"block.wb.words.1",
		"block.g1.instruction",
		"block.g1.pairs.p1.definition",
		"block.fs.sentences.s1.sentence",
	}
	if diff := cmp.Diff(want, got.Keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Baum", got.Values["block.wb.words.1"])
	assert.NotContains(t, got.Values, "block.x2.content", "styled text is not translated")
	assert.NotContains(t, got.Values, "block.g1.pairs.p1.term")
}

func TestExtract_Deterministic(t *testing.T) {
	doc := sampleDocument(t)
	assert.Equal(t, Extract(doc).Keys, Extract(doc).Keys)
}

func TestApply_EmptyMappingIsIdentity(t *testing.T) {
	doc := sampleDocument(t)

	got := Apply(doc, nil)

	if diff := cmp.Diff(doc.Structure, got.Structure); diff != "" {
		t.Errorf("structure changed (-want +got):\n%s", diff)
	}
	assert.Equal(t, doc.CoverSettings, got.CoverSettings)
	assert.Equal(t, doc.Settings, got.Settings)
}

func TestApply_RoundTrip(t *testing.T) {
	doc := sampleDocument(t)
	strs := Extract(doc)

	bundle := Apply(doc, strs.Values)
	again := Extract(Document{Structure: bundle.Structure, CoverSettings: bundle.CoverSettings, Settings: bundle.Settings})

	assert.Equal(t, strs.Values, again.Values)
	assert.Equal(t, strs.Keys, again.Keys)
}

func TestApply_PartialAndPure(t *testing.T) {
	doc := sampleDocument(t)
	mapping := map[string]string{
		"module.m1.title":              "Basics",
		"block.wb.words.0":             "house",
		"block.g1.pairs.p1.definition": "an animal",
		"cover.title":                  "German A1",
		"block.h1.content":             "",
		"block.unknown.content":        "ignored",
	}

	got := Apply(doc, mapping)

	assert.Equal(t, "Basics", got.Structure[0].Title)
	assert.Equal(t, "Begrüßung", got.Structure[0].Topics[0].Title)
	lesson := got.Structure[0].Topics[0].Lessons[0]
	assert.Equal(t, "Guten Tag", lesson.Blocks[0]["content"], "empty translation keeps original")
	assert.Equal(t, []any{"house", "Baum"}, lesson.Blocks[4]["words"])
	glossary := lesson.Blocks[7].Columns()[0][0]
	assert.Equal(t, "an animal", glossary["pairs"].([]any)[0].(map[string]any)["definition"])
	assert.Equal(t, "German A1", got.CoverSettings["title"])

	// input untouched
	assert.Equal(t, "Grundlagen", doc.Structure[0].Title)
	assert.Equal(t, "Deutsch A1", doc.CoverSettings["title"])
	assert.Equal(t, []any{"Haus", "Baum"}, doc.Structure[0].Topics[0].Lessons[0].Blocks[4]["words"])

	// idempotent
	twice := Apply(Document{Structure: got.Structure, CoverSettings: got.CoverSettings, Settings: got.Settings}, mapping)
	if diff := cmp.Diff(got, twice); diff != "" {
		t.Errorf("second application changed the bundle (-first +second):\n%s", diff)
	}
}

func TestAIInstructions(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"html", "block.x.content", "<p>Hallo</p>", htmlInstructions},
		{"blank", "block.x.content", "Ich {{blank:bin}} hier", blankInstructions},
		{"inline choice", "block.x.items.1.content", "Ich {{bin|bist}} hier", inlineChoiceInstructions},
		{"fix sentence", "block.x.sentences.s1.sentence", "ich | bin", fixSentenceInstructions},
		{"separator outside sentences", "block.x.instruction", "a | b", ""},
		{"german marker", "block.x.content", "Say {{de:Hallo}}", germanMarkerInstructions},
		{"plain", "lesson.l1.title", "Hallo", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AIInstructions(tt.key, tt.value))
		})
	}
}
