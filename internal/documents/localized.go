package documents

import (
	"github.com/edoomio/studio/internal/locale"
	"github.com/edoomio/studio/internal/translation"
)

// Localized returns a copy of the worksheet as shown in mode. CH replaces ß and
// applies the manual overrides stored in the settings.
func (v *WorksheetView) Localized(mode locale.Mode) *WorksheetView {
	if mode != locale.ModeCH {
		return v
	}
	out := *v
	out.Title = locale.ReplaceEszett(v.Title).(string)
	out.Blocks = locale.Transform(v.Blocks, mode, CHOverrides(v.Settings))
	return &out
}

// Translated returns a copy of the course with the bundle's structure and
// settings in place of the base language content.
func (v *CourseView) Translated(language string, bundle translation.Bundle) *CourseView {
	out := *v
	out.Language = language
	if bundle.Structure != nil {
		out.Structure = bundle.Structure
	}
	if bundle.CoverSettings != nil {
		out.CoverSettings = bundle.CoverSettings
	}
	if bundle.Settings != nil {
		out.Settings = bundle.Settings
	}
	return &out
}
