package translation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/edoomio/studio/internal/course"
	"github.com/edoomio/studio/internal/docsettings"
	"github.com/edoomio/studio/internal/entities"
)

// FromCourse builds the translatable document of a stored course with its
// structure normalized and settings resolved against their defaults.
func FromCourse(c *entities.Course) (Document, error) {
	structure, err := course.Parse(c.Structure)
	if err != nil {
		return Document{}, err
	}
	course.NormalizeStructure(structure)

	cover, err := docsettings.MustFor(docsettings.KindCourseCover).Resolve(c.CoverSettings)
	if err != nil {
		return Document{}, err
	}
	settings, err := docsettings.MustFor(docsettings.KindCourse).Resolve(c.Settings)
	if err != nil {
		return Document{}, err
	}
	return Document{Structure: structure, CoverSettings: cover, Settings: settings}, nil
}

// DecodeBundles parses a stored translation bundle map. Empty input yields an empty map.
func DecodeBundles(raw []byte) (map[string]Bundle, error) {
	trimmed := bytes.TrimSpace(raw)
	out := map[string]Bundle{}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("decode translations: %w", err)
	}
	return out, nil
}

// Languages returns the bundle languages in sorted order.
func Languages(bundles map[string]Bundle) []string {
	langs := make([]string, 0, len(bundles))
	for lang := range bundles {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
