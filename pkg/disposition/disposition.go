// Package disposition builds and parses Content-Disposition attachment headers.
package disposition

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// Attachment builds a Content-Disposition header for filename, using RFC 5987
// encoding when the name has non-ASCII or special characters.
func Attachment(filename string) string {
	needsEncoding := false
	for _, r := range filename {
		if r > 127 || r == '"' || r == '\\' || r == ';' || r == ',' {
			needsEncoding = true
			break
		}
	}
	if strings.ContainsAny(filename, " \t\n\r") {
		needsEncoding = true
	}

	if !needsEncoding {
		return fmt.Sprintf(`attachment; filename="%s"`, filename)
	}
	return fmt.Sprintf(`attachment; filename*=UTF-8''%s`, encodeExtValue(filename))
}

// encodeExtValue percent-encodes every byte outside the RFC 5987 attr-char set.
func encodeExtValue(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}

// Filename extracts the base filename from a Content-Disposition header,
// returning fallback when none is present. mime decodes RFC 5987 filename*
// parameters into "filename".
func Filename(cd, fallback string) string {
	if cd == "" {
		return fallback
	}
	if _, params, err := mime.ParseMediaType(cd); err == nil {
		if fn := params["filename"]; fn != "" {
			return filepath.Base(fn)
		}
		return fallback
	}
	// legacy split for headers mime rejects
	parts := strings.SplitN(cd, "filename=", 2)
	if len(parts) == 2 {
		if fn := strings.Trim(strings.TrimSpace(parts[1]), `"`); fn != "" {
			return filepath.Base(fn)
		}
	}
	return fallback
}
