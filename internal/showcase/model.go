package showcase

import (
	"strings"
	"time"

	"github.com/kanellos-me/console/internal/normalize"
)

// Type is the kind of showcase entry.
type Type string

const (
	TypeSite    Type = "site"
	TypeGallery Type = "gallery"
)

// ParseType maps the stored type; the legacy "photo" is a gallery and anything
// unknown a site.
func ParseType(s string) Type {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gallery", "photo":
		return TypeGallery
	default:
		return TypeSite
	}
}

var listKeys = []string{"items", "showcase", "data", "demos", "results"}

// Item is one showcase entry.
type Item struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	HTMLContent string    `json:"htmlContent,omitempty"`
	// ImageURL is the legacy single image, kept as received.
	ImageURL    string    `json:"imageUrl,omitempty"`
	ImageURLs   []string  `json:"imageUrls"`
	UserIDs     []string  `json:"userIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewItem is the create payload before the slug is settled.
type NewItem struct {
	Type        Type
	Title       string
	Slug        string
	HTMLContent string
	ImageURLs   []string
	UserIDs     []string
}

type createBody struct {
	Type        Type     `json:"type"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug,omitempty"`
	UserIDs     []string `json:"userIds"`
	HTMLContent *string  `json:"htmlContent,omitempty"`
	ImageURLs   []string `json:"imageUrls,omitempty"`
}

func normalizeItem(r normalize.Record) Item {
	// the array wins; a legacy single image only fills an empty list
	var urls []string
	for _, u := range r.Strings("imageUrls") {
		if u != "" {
			urls = append(urls, u)
		}
	}
	legacy := r.String("imageUrl")
	if len(urls) == 0 && strings.TrimSpace(legacy) != "" {
		urls = []string{legacy}
	}
	if urls == nil {
		urls = []string{}
	}
	userIDs := r.Strings("userIds")
	if userIDs == nil {
		userIDs = []string{}
	}

	return Item{
		ID:          r.String("id"),
		Type:        ParseType(r.String("type")),
		Title:       r.String("title"),
		Slug:        r.String("slug"),
		HTMLContent: r.String("htmlContent"),
		ImageURL:    legacy,
		ImageURLs:   urls,
		UserIDs:     userIDs,
		CreatedAt:   r.Time("createdAt"),
	}
}
