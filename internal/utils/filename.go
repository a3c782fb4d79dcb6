package utils

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

var (
	// rejected by Windows, macOS or browsers in a download name
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	runsOfSpace          = regexp.MustCompile(`\s+`)
)

const maxFilenameBytes = 200

// SanitizeFilename makes a document title usable as a download filename.
func SanitizeFilename(title string) string {
	name := invalidFilenameChars.ReplaceAllStringFunc(title, func(s string) string {
		if unicode.IsSpace(rune(s[0])) {
			return " "
		}
		return ""
	})
	name = strings.TrimSpace(runsOfSpace.ReplaceAllString(name, " "))
	// a trailing dot is dropped silently by Windows
	name = strings.TrimRight(name, ". ")

	if len(name) > maxFilenameBytes {
		cut := maxFilenameBytes
		for cut > 0 && !isRuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimSpace(name[:cut])
	}
	if name == "" {
		return "Untitled"
	}
	return name
}

// PDFFilename builds the download name of a rendered worksheet, e.g.
// "Verben im Präsens (CH) - Lösungen.pdf". Swiss renders spell ß as ss in
// the name too.
func PDFFilename(title, locale string, solutions bool) string {
	name := SanitizeFilename(title)
	if strings.EqualFold(locale, "CH") {
		name = strings.ReplaceAll(name, "ß", "ss") + " (CH)"
	}
	if solutions {
		name += " - Lösungen"
	}
	return name + ".pdf"
}

// ContentDisposition returns an attachment header value carrying an ASCII
// fallback name and the UTF-8 name (RFC 6266).
func ContentDisposition(filename string) string {
	fallback := strings.Map(func(r rune) rune {
		switch {
		case r == '"' || r == '\\':
			return '_'
		case r > unicode.MaxASCII:
			return asciiFold(r)
		}
		return r
	}, filename)
	return `attachment; filename="` + fallback + `"; filename*=UTF-8''` + url.PathEscape(filename)
}

func asciiFold(r rune) rune {
	switch r {
	case 'ä', 'à', 'á', 'â':
		return 'a'
	case 'ö', 'ò', 'ó', 'ô':
		return 'o'
	case 'ü', 'ù', 'ú', 'û':
		return 'u'
	case 'é', 'è', 'ê', 'ë':
		return 'e'
	case 'Ä':
		return 'A'
	case 'Ö':
		return 'O'
	case 'Ü':
		return 'U'
	}
	return '_'
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
