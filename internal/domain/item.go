package domain

import (
	"net/url"
	"strings"
	"time"
)

// Item - единица выдачи, общая для всех провайдеров
type Item struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Snippet     string     `json:"snippet,omitempty"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Source      string     `json:"source,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

func (it *Item) Validate() error {
	if it.Link == "" {
		return ErrMissingLink
	}

	u, err := url.Parse(it.Link)
	if err != nil {
		return ErrInvalidURL
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}

	if u.Host == "" {
		return ErrInvalidURL
	}

	return nil
}

// EnsureTitle подставляет хост (или ссылку целиком) если провайдер не отдал заголовок
func (it *Item) EnsureTitle() {
	if strings.TrimSpace(it.Title) != "" {
		return
	}
	if host := it.Host(); host != "" {
		it.Title = host
		return
	}
	it.Title = it.Link
}

func (it *Item) Host() string {
	u, err := url.Parse(it.Link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
