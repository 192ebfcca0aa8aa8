package kidplan

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// AlbumPageSize is the number of albums requested per catalog page
	AlbumPageSize = 50

	// KindergartenIDsEndpoint lists the kindergartens of an account
	KindergartenIDsEndpoint = "/Account/GetKinderGartenIds"

	// LogOnEndpoint accepts the sign-in form
	LogOnEndpoint = "/LogOn"

	// AlbumsJSONEndpoint returns one page of the album catalog
	AlbumsJSONEndpoint = "/bilder/GetAlbumsAsJson"

	// AlbumBasePath is the root relative album URLs are joined onto
	AlbumBasePath = "/bilder"
)

// GetKindergartenIDsURL constructs the kindergarten lookup URL
func GetKindergartenIDsURL(base, username, password string) string {
	return fmt.Sprintf("%s%s?username=%s&password=%s",
		base, KindergartenIDsEndpoint, url.QueryEscape(username), url.QueryEscape(password))
}

// GetLogOnURL constructs the sign-in URL for a kindergarten
func GetLogOnURL(base string, kid int64) string {
	return fmt.Sprintf("%s%s?kid=%d", base, LogOnEndpoint, kid)
}

// GetAlbumsURL constructs the URL of the catalog page starting at skip.
// noCache defeats intermediate caches the way the web app does.
func GetAlbumsURL(base string, skip int, now time.Time) string {
	params := []string{
		"take=" + strconv.Itoa(AlbumPageSize),
		"skip=" + strconv.Itoa(skip),
		"noCache=" + strconv.FormatInt(now.UnixMilli(), 10),
	}
	return base + AlbumsJSONEndpoint + "?" + strings.Join(params, "&")
}

// ResolveAlbumURL returns raw unchanged when absolute, otherwise joins it
// onto the album base path
func ResolveAlbumURL(base, raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	root := base + AlbumBasePath
	if raw == "" || strings.HasPrefix(raw, "/") {
		return root + raw
	}
	return root + "/" + raw
}
