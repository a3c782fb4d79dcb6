package pdf

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PrintURL builds the frontend print view address for a worksheet.
func PrintURL(base, slug, locale string, solutions bool) string {
	q := url.Values{}
	if strings.EqualFold(locale, "CH") {
		q.Set("ch", "1")
	}
	if solutions {
		q.Set("solutions", "1")
	}
	u := strings.TrimRight(base, "/") + "/de/worksheet/" + url.PathEscape(slug) + "/print"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// Version fingerprints a document revision. Any save changes updatedAt and so the version.
func Version(documentID string, updatedAt time.Time) string {
	sum := sha256.Sum256([]byte(documentID + ":" + strconv.FormatInt(updatedAt.UTC().UnixNano(), 10)))
	return hex.EncodeToString(sum[:])[:16]
}
