package docsettings

// Brand selects logos and footer defaults.
type Brand string

const (
	BrandEdoomio   Brand = "edoomio"
	BrandLingostar Brand = "lingostar"
)

// BrandSettings is the per-brand block embedded in most document settings.
type BrandSettings struct {
	Logo         string `json:"logo"`
	Organization string `json:"organization"`
	Teacher      string `json:"teacher"`
	HeaderRight  string `json:"headerRight"`
	FooterLeft   string `json:"footerLeft"`
	FooterCenter string `json:"footerCenter"`
	FooterRight  string `json:"footerRight"`
}

var brandDefaults = map[Brand]BrandSettings{
	BrandEdoomio:   {Logo: "/logo/arbeitsblatt_logo_full_brand.svg"},
	BrandLingostar: {Logo: "/logo/lingostar_logo_icon_flat.svg"},
}

// BrandDefaults returns the default brand settings. Unknown brands fall back to edoomio.
func BrandDefaults(b Brand) BrandSettings {
	if bs, ok := brandDefaults[b]; ok {
		return bs
	}
	return brandDefaults[BrandEdoomio]
}

// brandNested resolves brandSettings against the brand chosen after the top-level merge.
var brandNested = Nested{
	Key: "brandSettings",
	Defaults: func(merged map[string]any) map[string]any {
		b, _ := merged["brand"].(string)
		return toMap(BrandDefaults(Brand(b)))
	},
}
