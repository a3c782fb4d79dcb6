package documents

import (
	"encoding/json"
	"errors"

	"github.com/edoomio/studio/internal/blocks"
	"github.com/edoomio/studio/internal/course"
	"github.com/edoomio/studio/internal/docsettings"
	"github.com/edoomio/studio/internal/entities"
)

type WorksheetView struct {
	Header
	Type         entities.WorksheetType `json:"type"`
	Description  *string                `json:"description"`
	Blocks       []blocks.Block         `json:"blocks"`
	Settings     map[string]any         `json:"settings"`
	HasThumbnail bool                   `json:"hasThumbnail"`
}

type CourseView struct {
	Header
	Structure     course.Structure `json:"structure"`
	CoverSettings map[string]any   `json:"coverSettings"`
	Settings      map[string]any   `json:"settings"`
	I18nNamespace *string          `json:"i18nNamespace"`
	TranslatedAt  *string          `json:"translatedAt"`
	Language      string           `json:"language,omitempty"`
	HasThumbnail  bool             `json:"hasThumbnail"`
}

type EBookView struct {
	Header
	Chapters      []Chapter      `json:"chapters"`
	CoverSettings map[string]any `json:"coverSettings"`
	Settings      map[string]any `json:"settings"`
}

// WorksheetKind maps a worksheet variant onto its settings kind.
func WorksheetKind(t entities.WorksheetType) docsettings.Kind {
	if t == "" {
		return docsettings.KindWorksheet
	}
	return docsettings.Kind(t)
}

var worksheetDescriptor = Descriptor[entities.Worksheet, *WorksheetView]{
	Header: func(w *entities.Worksheet) Header {
		return Header{
			ID: w.ID, Title: w.Title, Slug: w.Slug, Published: w.Published,
			FolderID: w.FolderID, UserID: w.UserID,
			CreatedAt: Timestamp(w.CreatedAt), UpdatedAt: Timestamp(w.UpdatedAt),
		}
	},
	Settings: []SettingsField[entities.Worksheet]{{
		Name: "settings",
		Kind: func(w *entities.Worksheet) docsettings.Kind { return WorksheetKind(w.Type) },
		Raw:  func(w *entities.Worksheet) []byte { return w.Settings },
	}},
	Build: func(w *entities.Worksheet, h Header, s Resolved) (*WorksheetView, error) {
		list, err := blocks.Decode(w.Blocks)
		if err != nil {
			return nil, err
		}
		t := w.Type
		if t == "" {
			t = entities.WorksheetTypeWorksheet
		}
		return &WorksheetView{
			Header:       h,
			Type:         t,
			Description:  w.Description,
			Blocks:       list,
			Settings:     s["settings"],
			HasThumbnail: w.ThumbnailKey != nil,
		}, nil
	},
}

var courseDescriptor = Descriptor[entities.Course, *CourseView]{
	Header: func(c *entities.Course) Header {
		return Header{
			ID: c.ID, Title: c.Title, Slug: c.Slug, Published: c.Published,
			FolderID: c.FolderID, UserID: c.UserID,
			CreatedAt: Timestamp(c.CreatedAt), UpdatedAt: Timestamp(c.UpdatedAt),
		}
	},
	Settings: []SettingsField[entities.Course]{
		{
			Name: "coverSettings",
			Kind: fixedKind[entities.Course](docsettings.KindCourseCover),
			Raw:  func(c *entities.Course) []byte { return c.CoverSettings },
		},
		{
			Name: "settings",
			Kind: fixedKind[entities.Course](docsettings.KindCourse),
			Raw:  func(c *entities.Course) []byte { return c.Settings },
		},
	},
	Build: func(c *entities.Course, h Header, s Resolved) (*CourseView, error) {
		structure, err := course.Parse(c.Structure)
		if err != nil {
			return nil, err
		}
		course.NormalizeStructure(structure)
		return &CourseView{
			Header:        h,
			Structure:     structure,
			CoverSettings: s["coverSettings"],
			Settings:      s["settings"],
			I18nNamespace: c.I18nNamespace,
			TranslatedAt:  TimestampPtr(c.TranslatedAt),
			HasThumbnail:  c.ThumbnailKey != nil,
		}, nil
	},
}

var ebookDescriptor = Descriptor[entities.EBook, *EBookView]{
	Header: func(e *entities.EBook) Header {
		return Header{
			ID: e.ID, Title: e.Title, Slug: e.Slug, Published: e.Published,
			FolderID: e.FolderID, UserID: e.UserID,
			CreatedAt: Timestamp(e.CreatedAt), UpdatedAt: Timestamp(e.UpdatedAt),
		}
	},
	Settings: []SettingsField[entities.EBook]{
		{
			Name: "coverSettings",
			Kind: fixedKind[entities.EBook](docsettings.KindEBookCover),
			Raw:  func(e *entities.EBook) []byte { return e.CoverSettings },
		},
		{
			Name: "settings",
			Kind: fixedKind[entities.EBook](docsettings.KindEBook),
			Raw:  func(e *entities.EBook) []byte { return e.Settings },
		},
	},
	Build: func(e *entities.EBook, h Header, s Resolved) (*EBookView, error) {
		chapters, err := ParseChapters(e.Chapters)
		if err != nil {
			return nil, err
		}
		return &EBookView{
			Header:        h,
			Chapters:      chapters,
			CoverSettings: s["coverSettings"],
			Settings:      s["settings"],
		}, nil
	},
}

// NormalizeWorksheet resolves a stored worksheet variant into its view.
func NormalizeWorksheet(w *entities.Worksheet) (*WorksheetView, error) {
	return Normalize(worksheetDescriptor, w)
}

// NormalizeCourse resolves a stored course into its view with the structure normalized.
func NormalizeCourse(c *entities.Course) (*CourseView, error) {
	return Normalize(courseDescriptor, c)
}

// NormalizeEBook resolves a stored e-book into its view.
func NormalizeEBook(e *entities.EBook) (*EBookView, error) {
	return Normalize(ebookDescriptor, e)
}

// ListedWorksheet normalizes w for a listing. Settings that fail the type check
// are passed through as stored instead of failing the row.
func ListedWorksheet(w *entities.Worksheet) (*WorksheetView, error) {
	return listed(worksheetDescriptor, w)
}

// ListedCourse is ListedWorksheet for courses.
func ListedCourse(c *entities.Course) (*CourseView, error) {
	return listed(courseDescriptor, c)
}

// ListedEBook is ListedWorksheet for e-books.
func ListedEBook(e *entities.EBook) (*EBookView, error) {
	return listed(ebookDescriptor, e)
}

func listed[R any, V any](d Descriptor[R, V], r *R) (V, error) {
	v, err := Normalize(d, r)
	if errors.Is(err, docsettings.ErrMalformedSettings) {
		return NormalizeLenient(d, r)
	}
	return v, err
}

// CHOverrides reads the Swiss German overrides from resolved worksheet settings.
func CHOverrides(settings map[string]any) map[string]map[string]string {
	raw, ok := settings["chOverrides"]
	if !ok || raw == nil {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var out map[string]map[string]string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
