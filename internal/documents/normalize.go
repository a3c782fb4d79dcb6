package documents

import (
	"time"

	"github.com/edoomio/studio/internal/docsettings"
)

// Header carries the fields every document view shares.
type Header struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Slug      string  `json:"slug"`
	Published bool    `json:"published"`
	FolderID  *string `json:"folderId"`
	UserID    *string `json:"userId"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// Timestamp formats storage times at the normalization boundary.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// TimestampPtr is Timestamp for optional times.
func TimestampPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := Timestamp(*t)
	return &s
}

// SettingsField names one settings column of a record and its defaults kind.
type SettingsField[R any] struct {
	Name string
	Kind func(*R) docsettings.Kind
	Raw  func(*R) []byte
}

// Resolved holds fully merged settings by field name.
type Resolved map[string]map[string]any

// Descriptor drives Normalize for one record type.
type Descriptor[R any, V any] struct {
	Header   func(*R) Header
	Settings []SettingsField[R]
	Build    func(r *R, h Header, settings Resolved) (V, error)
}

// Normalize resolves every settings field of r against its defaults and builds
// the view. A malformed settings column yields docsettings.ErrMalformedSettings.
func Normalize[R any, V any](d Descriptor[R, V], r *R) (V, error) {
	return normalize(d, r, func(desc *docsettings.Descriptor, raw []byte) (map[string]any, error) {
		return desc.Resolve(raw)
	})
}

// NormalizeLenient is Normalize without the settings type check: stored values of
// the wrong shape are passed through as stored. Listings use it so one old row
// cannot hide the others.
func NormalizeLenient[R any, V any](d Descriptor[R, V], r *R) (V, error) {
	return normalize(d, r, func(desc *docsettings.Descriptor, raw []byte) (map[string]any, error) {
		return desc.ResolveLenient(raw), nil
	})
}

func normalize[R any, V any](d Descriptor[R, V], r *R, resolve func(*docsettings.Descriptor, []byte) (map[string]any, error)) (V, error) {
	var zero V
	resolved := make(Resolved, len(d.Settings))
	for _, f := range d.Settings {
		desc, err := docsettings.For(f.Kind(r))
		if err != nil {
			return zero, err
		}
		m, err := resolve(desc, f.Raw(r))
		if err != nil {
			return zero, err
		}
		resolved[f.Name] = m
	}
	return d.Build(r, d.Header(r), resolved)
}

func fixedKind[R any](k docsettings.Kind) func(*R) docsettings.Kind {
	return func(*R) docsettings.Kind { return k }
}
