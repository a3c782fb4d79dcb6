package docsettings

import "fmt"

// Kind identifies a settings shape.
type Kind string

const (
	KindWorksheet    Kind = "worksheet"
	KindCards        Kind = "cards"
	KindFlashcards   Kind = "flashcards"
	KindCovers       Kind = "covers"
	KindGrammarTable Kind = "grammar-table"
	KindEBook        Kind = "ebook"
	KindEBookCover   Kind = "ebook-cover"
	KindCourseCover  Kind = "course-cover"
	KindCourse       Kind = "course"
)

// Descriptor holds everything needed to resolve one kind of settings.
type Descriptor struct {
	Kind     Kind
	defaults func() map[string]any
	nested   []Nested
	check    func(map[string]any) error
}

// Defaults returns a fresh copy of the kind's defaults.
func (d *Descriptor) Defaults() map[string]any {
	return d.defaults()
}

func describe[T any](kind Kind, defaults func() T, nested ...Nested) *Descriptor {
	return &Descriptor{
		Kind:     kind,
		defaults: func() map[string]any { return toMap(defaults()) },
		nested:   nested,
		check: func(m map[string]any) error {
			_, err := Decode[T](m)
			return err
		},
	}
}

func fixedNested(key string, defaults func() any) Nested {
	return Nested{
		Key:      key,
		Defaults: func(map[string]any) map[string]any { return toMap(defaults()) },
	}
}

var (
	marginsNested = fixedNested("margins", func() any { return defaultMargins() })
	tensesNested  = fixedNested("simplifiedTenses", func() any { return DefaultGrammarTableSettings().SimplifiedTenses })
)

var registry = map[Kind]*Descriptor{
	KindWorksheet:    describe(KindWorksheet, DefaultWorksheetSettings, marginsNested, brandNested),
	KindCards:        describe(KindCards, DefaultCardSettings, brandNested),
	KindFlashcards:   describe(KindFlashcards, DefaultFlashcardSettings),
	KindCovers:       describe(KindCovers, DefaultCoverSettings, brandNested),
	KindGrammarTable: describe(KindGrammarTable, DefaultGrammarTableSettings, tensesNested, brandNested),
	KindEBook:        describe(KindEBook, DefaultEBookSettings, marginsNested, brandNested),
	KindEBookCover:   describe(KindEBookCover, DefaultBookCoverSettings),
	KindCourseCover:  describe(KindCourseCover, DefaultBookCoverSettings),
	KindCourse:       describe(KindCourse, DefaultCourseSettings),
}

// For returns the descriptor registered for kind.
func For(kind Kind) (*Descriptor, error) {
	d, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return d, nil
}

// MustFor is For for kinds known at compile time.
func MustFor(kind Kind) *Descriptor {
	d, err := For(kind)
	if err != nil {
		panic(err)
	}
	return d
}

// Defaults returns the generic defaults for kind.
func Defaults(kind Kind) (map[string]any, error) {
	d, err := For(kind)
	if err != nil {
		return nil, err
	}
	return d.Defaults(), nil
}

// Kinds lists every registered kind.
func Kinds() []Kind {
	return []Kind{
		KindWorksheet, KindCards, KindFlashcards, KindCovers, KindGrammarTable,
		KindEBook, KindEBookCover, KindCourseCover, KindCourse,
	}
}
