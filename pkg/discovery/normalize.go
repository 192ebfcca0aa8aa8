package discovery

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
)

const (
	// ImageHostSuffix is the host suffix of the album picture CDN
	ImageHostSuffix = "img.kidplan.com"

	// AlbumPicturePrefix is the path prefix of album pictures on the CDN
	AlbumPicturePrefix = "/albumpicture/"

	// DefaultExtension is used when a picture URL carries no file suffix
	DefaultExtension = ".jpg"

	sizeParam = "size"
	idParam   = "id"
)

// Normalize turns a raw attribute value into an absolute URL.
// It never fails: unresolvable input is returned trimmed.
func Normalize(raw, base string) string {
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		return ""
	case strings.HasPrefix(trimmed, "//"):
		return "https:" + trimmed
	case strings.HasPrefix(trimmed, "http://"), strings.HasPrefix(trimmed, "https://"):
		return trimmed
	}

	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() {
		return trimmed
	}
	ref, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	return baseURL.ResolveReference(ref).String()
}

// IsImageURL reports whether rawURL points at an album picture
func IsImageURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return isPictureURL(u)
}

func isPictureURL(u *url.URL) bool {
	if u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return strings.HasSuffix(host, ImageHostSuffix) && strings.HasPrefix(u.Path, AlbumPicturePrefix)
}

// Upgrade decodes HTML entities and strips the size parameter from album
// picture URLs. Other parameters keep their order. Non-picture URLs are
// returned decoded but otherwise unchanged.
func Upgrade(rawURL string) string {
	decoded := html.UnescapeString(rawURL)

	u, err := url.Parse(decoded)
	if err != nil || !isPictureURL(u) {
		return decoded
	}

	u.RawQuery = dropParam(u.RawQuery, sizeParam)
	u.ForceQuery = false
	return u.String()
}

// dropParam removes every pair named key from a raw query, leaving the
// remaining pairs byte-for-byte in their original order
func dropParam(rawQuery, key string) string {
	if rawQuery == "" {
		return ""
	}

	kept := make([]string, 0, 4)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		name, _, _ := strings.Cut(pair, "=")
		if decoded, err := url.QueryUnescape(name); err == nil {
			name = decoded
		}
		if name == key {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

// ExtractIdentity returns the id parameter of an album picture URL
func ExtractIdentity(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || !isPictureURL(u) {
		return "", false
	}

	values, err := url.ParseQuery(u.RawQuery)
	if err != nil && len(values) == 0 {
		return "", false
	}
	ids, ok := values[idParam]
	if !ok || len(ids) == 0 || ids[0] == "" {
		return "", false
	}
	return ids[0], true
}

// ExtensionOf returns the lower-cased file suffix of the URL path
func ExtensionOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DefaultExtension
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" || ext == "." {
		return DefaultExtension
	}
	return ext
}
