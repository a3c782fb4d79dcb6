package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/edoomio/studio/internal/database"
	"github.com/edoomio/studio/internal/docsettings"
	"github.com/edoomio/studio/internal/documents"
	"github.com/edoomio/studio/internal/logger"
)

func parsePayload(t *testing.T, raw string) payload {
	t.Helper()
	var p payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func TestBuildPatch_OnlyPresentFields(t *testing.T) {
	p := parsePayload(t, `{"title":"Neu","published":false}`)

	patch, errs := buildPatch(p,
		textField("title", "title"),
		boolField("published", "published"),
		optionalTextField("folderId", "folder_id"),
		arrayField("blocks", "blocks", nil),
	)

	assert.Empty(t, errs)
	assert.Equal(t, database.Patch{"title": "Neu", "published": false}, patch)
}

func TestBuildPatch_NullsAndEmptyStrings(t *testing.T) {
	p := parsePayload(t, `{"folderId":"","description":null,"blocks":null,"settings":null}`)

	patch, errs := buildPatch(p,
		optionalTextField("folderId", "folder_id"),
		optionalTextField("description", "description"),
		arrayField("blocks", "blocks", nil),
		settingsField("settings", "settings", docsettings.KindWorksheet),
	)

	require.Empty(t, errs)
	assert.Nil(t, patch["folder_id"])
	assert.True(t, patch.Has("folder_id"))
	assert.Nil(t, patch["description"])
	assert.Equal(t, datatypes.JSON("[]"), patch["blocks"])
	assert.Equal(t, datatypes.JSON("{}"), patch["settings"])
}

func TestBuildPatch_CollectsEveryError(t *testing.T) {
	p := parsePayload(t, `{"title":1,"published":"yes","blocks":{},"settings":{"margins":"wide"}}`)

	_, errs := buildPatch(p,
		textField("title", "title"),
		boolField("published", "published"),
		arrayField("blocks", "blocks", nil),
		settingsField("settings", "settings", docsettings.KindWorksheet),
	)

	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"title", "published", "blocks", "settings.margins"}, fields)
}

func TestDefaultSettings(t *testing.T) {
	raw, ferr := defaultSettings(parsePayload(t, `{"settings":{"fontSize":14}}`), "settings", docsettings.KindWorksheet)
	require.Nil(t, ferr)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, float64(14), got["fontSize"])
	assert.Equal(t, "portrait", got["orientation"])

	raw, ferr = defaultSettings(payload{}, "settings", docsettings.KindFlashcards)
	require.Nil(t, ferr)
	assert.JSONEq(t, `{"cardsPerPage":8}`, string(raw))
}

func TestRespondDocumentError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"documents not found", documents.ErrNotFound, http.StatusNotFound},
		{"repository not found", fmt.Errorf("load: %w", database.ErrNotFound), http.StatusNotFound},
		{"validation", &docsettings.ValidationError{Field: "fontSize", Reason: "expected number, got string"}, http.StatusUnprocessableEntity},
		{"malformed stored settings", fmt.Errorf("%w: worksheet: bad", docsettings.ErrMalformedSettings), http.StatusUnprocessableEntity},
		{"anything else", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondDocumentError(c, logger.Nop(), tt.err, "test")

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "disk on fire")
			}
		})
	}
}

func TestQueryFlag(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"", false},
		{"?ch=1", true},
		{"?ch=true", true},
		{"?ch=YES", true},
		{"?ch=0", false},
		{"?ch=no", false},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
		assert.Equal(t, tt.want, queryFlag(c, "ch"), tt.query)
	}
}
