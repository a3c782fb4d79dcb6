package course

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const referencingStructure = `[
	{"id":"m1","title":"M1","topics":[
		{"id":"t1","title":"T1","lessons":[
			{"id":"l1","title":"L1","blocks":[{"id":"b1","type":"linked-blocks","worksheetId":"ws-1"}]},
			{"id":"l2","title":"L2","blocks":[
				{"id":"c","type":"columns","children":[
					[{"id":"b2","type":"linked-blocks","worksheetId":"ws-1"}],
					[{"id":"b3","type":"linked-blocks","worksheetId":"ws-gone"}]
				]}
			]}
		]}
	]},
	{"id":"m2","title":"M2","topics":[
		{"id":"t2","title":"T2","lessons":[
			{"id":"l3","title":"L3","worksheetId":"ws-2","blocks":[]}
		]}
	]}
]`

func TestCollectWorksheetIDs_Dedup(t *testing.T) {
	s, err := Parse([]byte(referencingStructure))
	require.NoError(t, err)

	ids := CollectWorksheetIDs(s)
	assert.ElementsMatch(t, []string{"ws-1", "ws-gone", "ws-2"}, ids)
}

func TestCollectWorksheetIDs_Empty(t *testing.T) {
	assert.Empty(t, CollectWorksheetIDs(nil))
}

func TestPopulate_DanglingReference(t *testing.T) {
	s, err := Parse([]byte(referencingStructure))
	require.NoError(t, err)

	found := map[string]WorksheetSummary{
		"ws-1": {ID: "ws-1", Title: "Verben", Slug: "abc123defg"},
		"ws-2": {ID: "ws-2", Title: "Nomen", Slug: "zzz"},
	}
	views := Populate(s, found)

	lessons := 0
	for _, m := range views {
		for _, tv := range m.Topics {
			lessons += len(tv.Lessons)
		}
	}
	assert.Equal(t, s.CountLessons(), lessons)

	l2 := views[0].Topics[0].Lessons[1]
	want := []WorksheetRef{
		{ID: "ws-1", Title: "Verben", Slug: "abc123defg"},
		{ID: "ws-gone", Missing: true},
	}
	if diff := cmp.Diff(want, l2.Worksheets); diff != "" {
		t.Errorf("worksheets mismatch (-want +got):\n%s", diff)
	}

	l1 := views[0].Topics[0].Lessons[0]
	assert.Equal(t, "Verben", l1.Blocks[0]["worksheetTitle"])
	assert.Equal(t, "abc123defg", l1.Blocks[0]["worksheetSlug"])

	l3 := views[1].Topics[0].Lessons[0]
	require.Len(t, l3.Worksheets, 1)
	assert.Equal(t, "Nomen", l3.Worksheets[0].Title)
}

func TestPopulate_DoesNotMutateInput(t *testing.T) {
	s, err := Parse([]byte(referencingStructure))
	require.NoError(t, err)

	Populate(s, map[string]WorksheetSummary{"ws-1": {ID: "ws-1", Title: "X", Slug: "y"}})

	_, ok := s[0].Topics[0].Lessons[0].Blocks[0]["worksheetTitle"]
	assert.False(t, ok)
}
