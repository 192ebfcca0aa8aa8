package discovery

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// URLSet is a set of discovered picture URLs
type URLSet map[string]struct{}

func (s URLSet) add(u string) {
	s[u] = struct{}{}
}

// Merge adds every URL of other to s
func (s URLSet) Merge(other URLSet) {
	for u := range other {
		s[u] = struct{}{}
	}
}

// Sorted returns the URLs in lexicographic order
func (s URLSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Strategy extracts candidate picture URLs from a parsed page
type Strategy func(doc *goquery.Document, markup, base string) URLSet

// mediaAttributes are inspected on img and source elements
var mediaAttributes = []string{
	"src",
	"data-src",
	"data-original",
	"data-full",
	"data-large",
	"data-url",
}

var srcsetAttributes = []string{"srcset", "data-srcset"}

var absoluteURLPattern = regexp.MustCompile(`https?://[^"'\s>]+`)

// Strategies lists every extraction strategy in the order they run
var Strategies = []Strategy{
	FromMediaAttributes,
	FromSrcsets,
	FromLinks,
	FromRawText,
}

// ExtractImageURLs returns the sorted, deduplicated set of full-resolution
// picture URLs found in markup. Relative references resolve against base.
func ExtractImageURLs(markup, base string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		// the raw-text scan still applies to unparsable markup
		return FromRawText(nil, markup, base).Sorted()
	}

	found := make(URLSet)
	for _, strategy := range Strategies {
		found.Merge(strategy(doc, markup, base))
	}
	return found.Sorted()
}

// consider runs one raw candidate through the decode, normalize, classify
// and upgrade pipeline
func consider(set URLSet, raw, base string) {
	full := Normalize(html.UnescapeString(raw), base)
	if full == "" || !IsImageURL(full) {
		return
	}
	set.add(Upgrade(full))
}

// FromMediaAttributes inspects the source and lazy-load attributes of
// img and source elements
func FromMediaAttributes(doc *goquery.Document, _ string, base string) URLSet {
	found := make(URLSet)
	if doc == nil {
		return found
	}
	doc.Find("img, source").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range mediaAttributes {
			if val, ok := s.Attr(attr); ok {
				consider(found, val, base)
			}
		}
	})
	return found
}

// FromSrcsets takes the leading URL of every responsive source set entry
func FromSrcsets(doc *goquery.Document, _ string, base string) URLSet {
	found := make(URLSet)
	if doc == nil {
		return found
	}
	doc.Find("[srcset], [data-srcset]").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range srcsetAttributes {
			val, ok := s.Attr(attr)
			if !ok {
				continue
			}
			for _, entry := range strings.Split(val, ",") {
				fields := strings.Fields(entry)
				if len(fields) == 0 {
					continue
				}
				consider(found, fields[0], base)
			}
		}
	})
	return found
}

// FromLinks inspects hyperlink targets, which sometimes point straight
// at the full picture
func FromLinks(doc *goquery.Document, _ string, base string) URLSet {
	found := make(URLSet)
	if doc == nil {
		return found
	}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		consider(found, href, base)
	})
	return found
}

// FromRawText scans the unparsed markup for absolute URLs. It catches
// pictures referenced from scripts or broken markup.
func FromRawText(_ *goquery.Document, markup string, _ string) URLSet {
	found := make(URLSet)
	for _, match := range absoluteURLPattern.FindAllString(markup, -1) {
		candidate := html.UnescapeString(match)
		if IsImageURL(candidate) {
			found.add(Upgrade(candidate))
		}
	}
	return found
}
