package docsettings

// Margins in millimetres.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// CHOverrides maps blockId -> dot field path -> Swiss German replacement text.
type CHOverrides map[string]map[string]string

type WorksheetSettings struct {
	PageSize         string        `json:"pageSize"`
	Orientation      string        `json:"orientation"`
	Margins          Margins       `json:"margins"`
	ShowHeader       bool          `json:"showHeader"`
	ShowFooter       bool          `json:"showFooter"`
	HeaderText       string        `json:"headerText"`
	FooterText       string        `json:"footerText"`
	FontSize         float64       `json:"fontSize"`
	FontFamily       string        `json:"fontFamily"`
	Brand            Brand         `json:"brand"`
	BrandSettings    BrandSettings `json:"brandSettings"`
	CHOverrides      CHOverrides   `json:"chOverrides,omitempty"`
	CoverSubtitle    string        `json:"coverSubtitle"`
	CoverInfoText    string        `json:"coverInfoText"`
	CoverImages      []string      `json:"coverImages"`
	CoverImageBorder bool          `json:"coverImageBorder"`
}

type CardSettings struct {
	ShowCuttingLines bool          `json:"showCuttingLines"`
	CuttingLineStyle string        `json:"cuttingLineStyle"`
	CardPadding      float64       `json:"cardPadding"`
	Brand            Brand         `json:"brand"`
	BrandSettings    BrandSettings `json:"brandSettings"`
}

type FlashcardSettings struct {
	CardsPerPage int `json:"cardsPerPage"`
}

type CoverSettings struct {
	BackgroundColor string        `json:"backgroundColor"`
	ShowLogo        bool          `json:"showLogo"`
	ShowFooter      bool          `json:"showFooter"`
	Brand           Brand         `json:"brand"`
	BrandSettings   BrandSettings `json:"brandSettings"`
}

type SimplifiedTenses struct {
	Praesens    bool `json:"praesens"`
	Perfekt     bool `json:"perfekt"`
	Praeteritum bool `json:"praeteritum"`
}

type GrammarTableSettings struct {
	ShowNotes               bool             `json:"showNotes"`
	ShowPrepositions        bool             `json:"showPrepositions"`
	HighlightEndings        bool             `json:"highlightEndings"`
	Simplified              bool             `json:"simplified"`
	SimplifiedTenses        SimplifiedTenses `json:"simplifiedTenses"`
	ShowIrregularHighlights bool             `json:"showIrregularHighlights"`
	Brand                   Brand            `json:"brand"`
	BrandSettings           BrandSettings    `json:"brandSettings"`
	ContentTitle            string           `json:"contentTitle"`
	CoverImages             []string         `json:"coverImages"`
	CoverImageBorder        bool             `json:"coverImageBorder"`
}

type EBookSettings struct {
	PageSize           string        `json:"pageSize"`
	Orientation        string        `json:"orientation"`
	Margins            Margins       `json:"margins"`
	ShowHeader         bool          `json:"showHeader"`
	ShowFooter         bool          `json:"showFooter"`
	HeaderText         string        `json:"headerText"`
	FooterText         string        `json:"footerText"`
	ShowPageNumbers    bool          `json:"showPageNumbers"`
	PageNumberPosition string        `json:"pageNumberPosition"`
	PageNumberFormat   string        `json:"pageNumberFormat"`
	StartPageNumber    int           `json:"startPageNumber"`
	FontSize           float64       `json:"fontSize"`
	FontFamily         string        `json:"fontFamily"`
	Brand              Brand         `json:"brand"`
	BrandSettings      BrandSettings `json:"brandSettings"`
	TOCTitle           string        `json:"tocTitle"`
	ShowTOC            bool          `json:"showToc"`
}

// BookCoverSettings is shared by e-book and course covers.
type BookCoverSettings struct {
	Title           string  `json:"title"`
	Subtitle        string  `json:"subtitle"`
	Author          string  `json:"author"`
	CoverImage      *string `json:"coverImage"`
	ShowLogo        bool    `json:"showLogo"`
	BackgroundColor string  `json:"backgroundColor"`
	TextColor       string  `json:"textColor"`
}

type CourseSettings struct {
	LanguageLevel string `json:"languageLevel"`
	Description   string `json:"description"`
}

const defaultFontFamily = "Asap Condensed, sans-serif"

func defaultMargins() Margins {
	return Margins{Top: 20, Right: 20, Bottom: 20, Left: 20}
}

func DefaultWorksheetSettings() WorksheetSettings {
	return WorksheetSettings{
		PageSize:      "a4",
		Orientation:   "portrait",
		Margins:       defaultMargins(),
		ShowHeader:    true,
		ShowFooter:    true,
		FontSize:      14,
		FontFamily:    defaultFontFamily,
		Brand:         BrandEdoomio,
		BrandSettings: BrandDefaults(BrandEdoomio),
		CoverSubtitle: "Arbeitsblatt",
		CoverImages:   []string{},
	}
}

func DefaultCardSettings() CardSettings {
	return CardSettings{
		ShowCuttingLines: true,
		CuttingLineStyle: "dashed",
		CardPadding:      4,
		Brand:            BrandEdoomio,
		BrandSettings:    BrandDefaults(BrandEdoomio),
	}
}

func DefaultFlashcardSettings() FlashcardSettings {
	return FlashcardSettings{CardsPerPage: 8}
}

func DefaultCoverSettings() CoverSettings {
	return CoverSettings{
		BackgroundColor: "#FFFFFF",
		ShowLogo:        true,
		ShowFooter:      true,
		Brand:           BrandEdoomio,
		BrandSettings:   BrandDefaults(BrandEdoomio),
	}
}

func DefaultGrammarTableSettings() GrammarTableSettings {
	return GrammarTableSettings{
		ShowNotes:        true,
		ShowPrepositions: true,
		SimplifiedTenses: SimplifiedTenses{Praesens: true},
		Brand:            BrandEdoomio,
		BrandSettings:    BrandDefaults(BrandEdoomio),
		CoverImages:      []string{},
	}
}

func DefaultEBookSettings() EBookSettings {
	return EBookSettings{
		PageSize:           "a4",
		Orientation:        "portrait",
		Margins:            defaultMargins(),
		ShowFooter:         true,
		ShowPageNumbers:    true,
		PageNumberPosition: "footer-center",
		PageNumberFormat:   "numeric",
		StartPageNumber:    1,
		FontSize:           14,
		FontFamily:         defaultFontFamily,
		Brand:              BrandEdoomio,
		BrandSettings:      BrandDefaults(BrandEdoomio),
		TOCTitle:           "Table of Contents",
		ShowTOC:            true,
	}
}

func DefaultBookCoverSettings() BookCoverSettings {
	return BookCoverSettings{
		ShowLogo:        true,
		BackgroundColor: "#ffffff",
		TextColor:       "#1a1a1a",
	}
}

func DefaultCourseSettings() CourseSettings {
	return CourseSettings{}
}
