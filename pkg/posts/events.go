package posts

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Event is a post scheduled on the content calendar
type Event struct {
	ID    string   `json:"id" yaml:"id"`
	Title string   `json:"title" yaml:"title"`
	Date  string   `json:"date" yaml:"date"`
	Type  PostType `json:"type" yaml:"type"`
	Tags  string   `json:"tags" yaml:"tags"`
}

// Day returns the event date at midnight UTC
func (e Event) Day() (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(e.Date))
}

// TagList splits the space separated hashtag string
func (e Event) TagList() []string {
	return strings.Fields(e.Tags)
}

type eventFile struct {
	Posts []Event `yaml:"posts"`
}

// ParseEvents decodes events from YAML (JSON is accepted as a YAML subset).
// The document is either a list of events or a mapping with a "posts" list.
func ParseEvents(data []byte) ([]Event, error) {
	var events []Event
	if err := yaml.Unmarshal(data, &events); err != nil {
		var file eventFile
		if err2 := yaml.Unmarshal(data, &file); err2 != nil {
			return nil, fmt.Errorf("failed to parse events: %w", err)
		}
		events = file.Posts
	}

	for i, e := range events {
		if _, err := e.Day(); err != nil {
			return nil, fmt.Errorf("event %d (%q): date %q is not YYYY-MM-DD", i, e.ID, e.Date)
		}
	}

	SortEvents(events)
	return events, nil
}

// LoadEvents reads and parses an events file
func LoadEvents(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read events file: %w", err)
	}
	return ParseEvents(data)
}

// SortEvents orders events by date, then ID
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		di, dj := strings.TrimSpace(events[i].Date), strings.TrimSpace(events[j].Date)
		if di != dj {
			return di < dj
		}
		return events[i].ID < events[j].ID
	})
}
