package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/edoomio/studio/internal/entities"
)

func TestPublicWorksheet(t *testing.T) {
	env := newTestEnv(t)
	pub := env.worksheet(t, strangerID, func(w *entities.Worksheet) {
		w.Title = "Große Straße"
		w.Published = true
	})
	draft := env.worksheet(t, ownerID)

	t.Run("published worksheets are visible to anyone", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/public/worksheets/"+pub.Slug, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		view := decode[map[string]any](t, w)
		assert.Equal(t, "Große Straße", view["title"])
	})

	t.Run("swiss variant replaces eszett", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/public/worksheets/"+pub.Slug+"?ch=1", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		view := decode[map[string]any](t, w)
		assert.Equal(t, "Grosse Strasse", view["title"])
		block := view["blocks"].([]any)[0].(map[string]any)
		assert.Equal(t, "Die Strasse", block["text"])
	})

	t.Run("drafts and unknown slugs look the same", func(t *testing.T) {
		hidden := env.do(t, http.MethodGet, "/api/public/worksheets/"+draft.Slug, nil)
		missing := env.do(t, http.MethodGet, "/api/public/worksheets/no-such-slug", nil)
		assert.Equal(t, http.StatusNotFound, hidden.Code)
		assert.Equal(t, missing.Code, hidden.Code)
		assert.Equal(t, missing.Body.String(), hidden.Body.String())
	})
}

func TestPublicCourse_Translated(t *testing.T) {
	env := newTestEnv(t)
	ws := env.worksheet(t, ownerID)
	crs := env.course(t, ownerID, func(c *entities.Course) {
		c.Published = true
		c.Structure = courseStructure(`[{"id":"k1","type":"linked-blocks","worksheetId":"` + ws.ID + `"}]`)
		c.Translations = datatypes.JSON(`{"en":{"structure":[{"id":"m1","title":"Module 1","topics":[
			{"id":"t1","title":"Topic 1","lessons":[{"id":"l1","title":"Lesson 1","blocks":[
				{"id":"k1","type":"linked-blocks","worksheetId":"` + ws.ID + `"}]}]}]}],"coverSettings":null,"settings":null}}`)
	})

	type publicCourse struct {
		Language string `json:"language"`
		Modules  []struct {
			Title  string `json:"title"`
			Topics []struct {
				Lessons []struct {
					Title      string           `json:"title"`
					Worksheets []map[string]any `json:"worksheets"`
				} `json:"lessons"`
			} `json:"topics"`
		} `json:"modules"`
	}

	w := env.do(t, http.MethodGet, "/api/public/courses/"+crs.Slug, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	base := decode[publicCourse](t, w)
	assert.Empty(t, base.Language)
	assert.Equal(t, "Modul 1", base.Modules[0].Title)

	w = env.do(t, http.MethodGet, "/api/public/courses/"+crs.Slug+"?lang=EN", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	translated := decode[publicCourse](t, w)
	assert.Equal(t, "en", translated.Language)
	assert.Equal(t, "Module 1", translated.Modules[0].Title)
	lesson := translated.Modules[0].Topics[0].Lessons[0]
	assert.Equal(t, "Lesson 1", lesson.Title)
	require.Len(t, lesson.Worksheets, 1)
	assert.Equal(t, ws.Slug, lesson.Worksheets[0]["slug"])

	w = env.do(t, http.MethodGet, "/api/public/courses/"+crs.Slug+"?lang=ja", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Modul 1", decode[publicCourse](t, w).Modules[0].Title)
}

func TestPublicCourse_RegionalLanguageCode(t *testing.T) {
	env := newTestEnv(t)
	crs := env.course(t, ownerID, func(c *entities.Course) {
		c.Published = true
		c.Translations = datatypes.JSON(`{"pt-BR":{"structure":[{"id":"m1","title":"Modulo 1","topics":[]}],"coverSettings":null,"settings":null}}`)
	})

	type publicCourse struct {
		Language string `json:"language"`
		Modules  []struct {
			Title string `json:"title"`
		} `json:"modules"`
	}

	for _, lang := range []string{"pt-BR", "pt-br", "PT-BR"} {
		t.Run(lang, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/public/courses/"+crs.Slug+"?lang="+lang, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			view := decode[publicCourse](t, w)
			assert.Equal(t, "pt-BR", view.Language)
			require.Len(t, view.Modules, 1)
			assert.Equal(t, "Modulo 1", view.Modules[0].Title)
		})
	}
}

func TestPublicEBook(t *testing.T) {
	env := newTestEnv(t)
	pub := env.ebook(t, ownerID, func(e *entities.EBook) { e.Published = true })
	draft := env.ebook(t, ownerID)

	w := env.do(t, http.MethodGet, "/api/public/ebooks/"+pub.Slug, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/public/ebooks/"+draft.Slug, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
}
