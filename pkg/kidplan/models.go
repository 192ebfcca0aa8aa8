package kidplan

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"kidplan-downloader/pkg/models"
)

// UntitledAlbum is the title given to albums without one
const UntitledAlbum = "Untitled"

// flexString accepts a JSON string or number
type flexString struct {
	value string
	set   bool
}

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.value, f.set = s, true
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return nil
	}
	f.value, f.set = n.String(), true
	return nil
}

// flexInt accepts a JSON number or a numeric string
type flexInt struct {
	value int
	set   bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil || !s.set {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s.value))
	if err != nil {
		return nil
	}
	f.value, f.set = n, true
	return nil
}

// albumRecord is one entry of the catalog JSON. The endpoint has used
// both PascalCase and snake_case field names.
type albumRecord struct {
	AlbumID             flexString `json:"AlbumId"`
	AlbumIDSnake        flexString `json:"album_id"`
	Title               flexString `json:"Title"`
	TitleSnake          flexString `json:"title"`
	AlbumURL            flexString `json:"AlbumUrl"`
	AlbumURLSnake       flexString `json:"album_url"`
	NumberOfImages      flexInt    `json:"NumberOfImages"`
	NumberOfImagesSnake flexInt    `json:"number_of_images"`
}

func pick(a, b flexString) (string, bool) {
	if a.set {
		return a.value, true
	}
	return b.value, b.set
}

func (r albumRecord) id() string {
	id, _ := pick(r.AlbumID, r.AlbumIDSnake)
	return strings.TrimSpace(id)
}

func (r albumRecord) title() string {
	if title, ok := pick(r.Title, r.TitleSnake); ok {
		return title
	}
	return UntitledAlbum
}

func (r albumRecord) url() string {
	u, _ := pick(r.AlbumURL, r.AlbumURLSnake)
	return strings.TrimSpace(u)
}

func (r albumRecord) imageCount() *int {
	switch {
	case r.NumberOfImages.set:
		n := r.NumberOfImages.value
		return &n
	case r.NumberOfImagesSnake.set:
		n := r.NumberOfImagesSnake.value
		return &n
	}
	return nil
}

func (r albumRecord) toAlbum(base string) models.Album {
	return models.Album{
		ID:         r.id(),
		Title:      r.title(),
		URL:        ResolveAlbumURL(base, r.url()),
		ImageCount: r.imageCount(),
	}
}
