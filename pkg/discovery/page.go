package discovery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var loginMarkers = []string{
	"log in kidplan",
	`id="loginform"`,
}

// IsLoginPage reports whether markup is the Kidplan sign-in form, which
// the site serves instead of an album when the session has expired
func IsLoginPage(markup string) bool {
	lower := strings.ToLower(markup)
	for _, marker := range loginMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ExtractTitle returns the first h1 to h4 heading text of an album page
func ExtractTitle(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}

	var title string
	doc.Find("h1, h2, h3, h4").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return true
		}
		title = text
		return false
	})
	return title
}
