package channels

import (
	"strings"
	"time"
)

// Channel is a tracked YouTube channel with its last scraped statistics.
type Channel struct {
	ID          string    `db:"id" json:"id"`
	Handle      string    `db:"handle" json:"handle"`
	Name        string    `db:"name" json:"name"`
	Category    string    `db:"category" json:"category"`
	Subscribers int64     `db:"subscribers" json:"subscribers"`
	Videos      int64     `db:"videos" json:"videos"`
	ScrapedAt   time.Time `db:"scraped_at" json:"scraped_at"`
}

// PageURL returns the public channel page address.
func (c Channel) PageURL() string {
	if strings.HasPrefix(c.ID, "UC") {
		return "https://www.youtube.com/channel/" + c.ID
	}
	return "https://www.youtube.com/" + normalizeHandle(c.Handle)
}

// FeedURL returns the uploads feed address for channels with a canonical id.
func (c Channel) FeedURL() string {
	if !strings.HasPrefix(c.ID, "UC") {
		return ""
	}
	return "https://www.youtube.com/feeds/videos.xml?channel_id=" + c.ID
}

// normalizeHandle returns the handle in @name form.
func normalizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return ""
	}
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}
	return handle
}
