package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/edoomio/studio/internal/course"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/logger"
)

type fakeStructureStore struct {
	courses []entities.Course
	saved   map[string][]byte
	listErr error
	saveErr error
}

func (f *fakeStructureStore) ListAll() ([]entities.Course, error) {
	return f.courses, f.listErr
}

func (f *fakeStructureStore) SaveStructure(id string, structure []byte) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[id] = structure
	return nil
}

const (
	legacyStructure = `[{"id":"m1","title":"Modul","topics":[{"id":"t1","title":"Thema","lessons":[
		{"id":"l1","title":"Lektion","worksheetId":"ws-1"}]}]}]`
	currentStructure = `[{"id":"m1","title":"Modul","topics":[{"id":"t1","title":"Thema","lessons":[
		{"id":"l1","title":"Lektion","blocks":[]}]}]}]`
)

func TestMigrateStructures(t *testing.T) {
	store := &fakeStructureStore{courses: []entities.Course{
		{ID: "legacy", Structure: datatypes.JSON(legacyStructure)},
		{ID: "current", Structure: datatypes.JSON(currentStructure)},
		{ID: "broken", Structure: datatypes.JSON(`{"not":"a list"}`)},
	}}

	report, err := MigrateStructures(store, false, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, []string{"legacy"}, report.Migrated)
	assert.Equal(t, []string{"broken"}, report.Unreadable)
	require.Contains(t, store.saved, "legacy")
	assert.NotContains(t, store.saved, "current")

	s, err := course.Parse(store.saved["legacy"])
	require.NoError(t, err)
	lesson := s[0].Topics[0].Lessons[0]
	assert.Empty(t, lesson.WorksheetID)
	require.Len(t, lesson.Blocks, 1)
	assert.Equal(t, "ws-1", lesson.Blocks[0].String("worksheetId"))
}

func TestMigrateStructuresDryRun(t *testing.T) {
	store := &fakeStructureStore{courses: []entities.Course{
		{ID: "legacy", Structure: datatypes.JSON(legacyStructure)},
	}}

	report, err := MigrateStructures(store, true, logger.Nop())
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, []string{"legacy"}, report.Migrated)
	assert.Empty(t, store.saved)
}

func TestMigrateStructuresErrors(t *testing.T) {
	_, err := MigrateStructures(&fakeStructureStore{listErr: errors.New("db gone")}, false, logger.Nop())
	assert.ErrorContains(t, err, "db gone")

	store := &fakeStructureStore{
		courses: []entities.Course{{ID: "legacy", Structure: datatypes.JSON(legacyStructure)}},
		saveErr: errors.New("read-only"),
	}
	report, err := MigrateStructures(store, false, logger.Nop())
	assert.ErrorContains(t, err, "save structure of legacy")
	require.NotNil(t, report)
	assert.Equal(t, []string{"legacy"}, report.Migrated)
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in      string
		want    entities.RenderLocale
		wantErr bool
	}{
		{"", entities.RenderLocaleDE, false},
		{"de", entities.RenderLocaleDE, false},
		{" CH ", entities.RenderLocaleCH, false},
		{"neutral", entities.RenderLocaleNeutral, false},
		{"fr", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocale(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandTree(t *testing.T) {
	root := NewRootCommand("1.2.3")
	assert.Equal(t, "1.2.3", root.Version)

	for _, path := range [][]string{
		{"serve"},
		{"migrate-structures"},
		{"translations", "push"},
		{"translations", "pull"},
		{"translations", "status"},
		{"render"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	render, _, err := root.Find([]string{"render"})
	require.NoError(t, err)
	for _, flag := range []string{"locale", "solutions", "out"} {
		assert.NotNil(t, render.Flags().Lookup(flag), flag)
	}
}
