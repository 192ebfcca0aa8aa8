package storage

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultAlbumDir names the directory of an album whose title has no
// usable characters
const DefaultAlbumDir = "album"

// Slugify keeps ASCII letters and digits, turns every other character into
// a dash, collapses dash runs and trims dashes from both ends
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastDash := true
	for _, r := range strings.TrimSpace(title) {
		if isASCIIAlnum(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}

	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return DefaultAlbumDir
	}
	return slug
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// IdentityFilename names a picture after its identity
func IdentityFilename(id, ext string) string {
	return "id-" + safeComponent(id) + ext
}

// FallbackFilename names a picture without identity by its position and a
// digest of its URL
func FallbackFilename(index int, rawURL string) string {
	return fmt.Sprintf("image-%04d-%s.jpg", index, Digest(rawURL))
}

// Digest returns the first 10 hex characters of a fast hash of s
func Digest(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))[:10]
}

// safeComponent keeps an identity from escaping the album directory
func safeComponent(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '-'
		}
		return r
	}, s)
}
