package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	base := "https://app.kidplan.com/bilder/album/12"

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "   ", want: ""},
		{name: "protocol relative", raw: "//img.kidplan.com/albumpicture/?id=1", want: "https://img.kidplan.com/albumpicture/?id=1"},
		{name: "absolute unchanged", raw: " http://example.com/a.jpg ", want: "http://example.com/a.jpg"},
		{name: "root relative", raw: "/bilder/x", want: "https://app.kidplan.com/bilder/x"},
		{name: "path relative", raw: "pic.jpg", want: "https://app.kidplan.com/bilder/album/pic.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw, base))
		})
	}
}

func TestNormalizeBadBaseReturnsTrimmedInput(t *testing.T) {
	assert.Equal(t, "pic.jpg", Normalize("  pic.jpg ", "::not a url"))
	assert.Equal(t, "pic.jpg", Normalize("pic.jpg", ""))
}

func TestIsImageURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://img.kidplan.com/albumpicture/?id=7", true},
		{"https://eu.img.kidplan.com/albumpicture/full/1.jpg", true},
		{"https://IMG.KIDPLAN.COM/albumpicture/?id=7", true},
		{"https://img.kidplan.com/profile/?id=7", false},
		{"https://img.kidplan.com.evil.net/albumpicture/?id=7", false},
		{"https://app.kidplan.com/albumpicture/?id=7", false},
		{"/albumpicture/?id=7", false},
		{"%zz", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsImageURL(tt.url), tt.url)
	}
}

func TestUpgrade(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "size dropped id kept",
			in:   "https://img.kidplan.com/albumpicture/?size=200&id=42",
			want: "https://img.kidplan.com/albumpicture/?id=42",
		},
		{
			name: "order of remaining params preserved",
			in:   "https://img.kidplan.com/albumpicture/?token=z&size=400&id=9&a=1",
			want: "https://img.kidplan.com/albumpicture/?token=z&id=9&a=1",
		},
		{
			name: "only size yields no query",
			in:   "https://img.kidplan.com/albumpicture/?size=400",
			want: "https://img.kidplan.com/albumpicture/",
		},
		{
			name: "html entities decoded",
			in:   "https://img.kidplan.com/albumpicture/?id=7&amp;size=400",
			want: "https://img.kidplan.com/albumpicture/?id=7",
		},
		{
			name: "other hosts only decoded",
			in:   "https://example.com/albumpicture/?id=7&amp;size=400",
			want: "https://example.com/albumpicture/?id=7&size=400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Upgrade(tt.in))
		})
	}
}

func TestUpgradeIsIdempotent(t *testing.T) {
	inputs := []string{
		"https://img.kidplan.com/albumpicture/?size=200&id=42",
		"https://img.kidplan.com/albumpicture/?id=1&size=1&size=2&b=%20x",
		"https://img.kidplan.com/albumpicture/photo.PNG",
		"https://example.com/?size=1",
		"not a url",
	}
	for _, in := range inputs {
		once := Upgrade(in)
		assert.Equal(t, once, Upgrade(once), in)
	}
}

func TestExtractIdentity(t *testing.T) {
	id, ok := ExtractIdentity(Upgrade("https://img.kidplan.com/albumpicture/?size=200&id=42"))
	assert.True(t, ok)
	assert.Equal(t, "42", id)

	_, ok = ExtractIdentity("https://img.kidplan.com/albumpicture/?size=200")
	assert.False(t, ok)

	_, ok = ExtractIdentity("https://example.com/albumpicture/?id=42")
	assert.False(t, ok)
}

func TestExtensionOf(t *testing.T) {
	assert.Equal(t, ".png", ExtensionOf("https://img.kidplan.com/albumpicture/a/b.PNG?id=1"))
	assert.Equal(t, ".jpeg", ExtensionOf("https://img.kidplan.com/albumpicture/b.jpeg"))
	assert.Equal(t, ".jpg", ExtensionOf("https://img.kidplan.com/albumpicture/?id=1"))
	assert.Equal(t, ".jpg", ExtensionOf("%zz"))
}
