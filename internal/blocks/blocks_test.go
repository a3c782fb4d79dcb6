package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nestedJSON = `[
	{"id":"a","type":"heading","content":"Hallo"},
	{"id":"c","type":"columns","columns":2,"children":[
		[{"id":"c1","type":"text","content":"links"}],
		[{"id":"c2","type":"linked-blocks","worksheetId":"ws-1"}]
	]}
]`

func TestDecode(t *testing.T) {
	list, err := Decode([]byte(nestedJSON))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID())
	assert.Equal(t, "heading", list[0].Type())

	empty, err := Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	empty, err = Decode([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, empty)

	_, err = Decode([]byte(`{"id":"x"}`))
	assert.Error(t, err)
}

func TestWalk_DescendsIntoColumns(t *testing.T) {
	list, err := Decode([]byte(nestedJSON))
	require.NoError(t, err)

	var ids []string
	Walk(list, func(b Block) { ids = append(ids, b.ID()) })

	assert.Equal(t, []string{"a", "c", "c1", "c2"}, ids)
}

func TestClone_IsDeep(t *testing.T) {
	list, err := Decode([]byte(nestedJSON))
	require.NoError(t, err)

	cp := Clone(list)
	cp[0]["content"] = "changed"
	cp[1].Columns()[0][0]["content"] = "changed"

	assert.Equal(t, "Hallo", list[0]["content"])
	assert.Equal(t, "links", list[1].Columns()[0][0]["content"])
}

func TestColumns_NonColumnsBlock(t *testing.T) {
	b := Block{"id": "x", "type": "text", "children": []any{}}
	assert.Nil(t, b.Columns())
}
