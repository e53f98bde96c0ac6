// Package posts models marketing post records: the submission form, its
// validation, the API client that forwards it and the calendar entries built
// from stored posts.
package posts

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of post dates
const DateLayout = "2006-01-02"

var (
	// ErrInvalidPost is returned by Validate; the message names the field.
	ErrInvalidPost = errors.New("invalid post")
	// ErrInvalidPostType is returned for unknown post type tags.
	ErrInvalidPostType = errors.New("invalid post type")
)

// PostType tags the kind of event a post is about
type PostType int

const (
	Regular PostType = iota
	ILP
	Messe
)

var postTypeNames = map[PostType]string{
	Regular: "regular",
	ILP:     "ILP",
	Messe:   "messe",
}

// PostTypes returns every known post type
func PostTypes() []PostType {
	return []PostType{ILP, Messe, Regular}
}

func (t PostType) String() string {
	if s, ok := postTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("PostType(%d)", int(t))
}

// Label is the human readable name shown in tables
func (t PostType) Label() string {
	switch t {
	case ILP:
		return "ILP"
	case Messe:
		return "Messe"
	case Regular:
		return "Regular"
	}
	return t.String()
}

// Valid reports whether t is one of the known variants
func (t PostType) Valid() bool {
	_, ok := postTypeNames[t]
	return ok
}

// ParsePostType maps a wire value onto a PostType, ignoring case
func ParsePostType(s string) (PostType, error) {
	s = strings.TrimSpace(s)
	for t, name := range postTypeNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return Regular, fmt.Errorf("%w: %q (want ILP, messe or regular)", ErrInvalidPostType, s)
}

// MarshalText implements encoding.TextMarshaler
func (t PostType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPostType, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *PostType) UnmarshalText(text []byte) error {
	v, err := ParsePostType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Post is the record submitted through the new-post form
type Post struct {
	EventTitle   string   `json:"event_title" yaml:"event_title"`
	Date         string   `json:"date" yaml:"date"`
	Description  string   `json:"description" yaml:"description"`
	Good         string   `json:"good" yaml:"good"`
	Bad          string   `json:"bad" yaml:"bad"`
	Goal         string   `json:"goal" yaml:"goal"`
	Instructions string   `json:"instructions" yaml:"instructions"`
	PostType     PostType `json:"posttype" yaml:"posttype"`
}

// NewPost returns an empty form dated on now's day as a regular post
func NewPost(now time.Time) Post {
	return Post{
		Date:     now.Format(DateLayout),
		PostType: Regular,
	}
}

// ParsedDate returns Date as a time in UTC
func (p Post) ParsedDate() (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(p.Date))
}

// Validate checks the fields the form requires
func (p Post) Validate() error {
	if strings.TrimSpace(p.EventTitle) == "" {
		return fmt.Errorf("%w: event_title must not be empty", ErrInvalidPost)
	}
	if _, err := p.ParsedDate(); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidPost, p.Date)
	}
	if !p.PostType.Valid() {
		return fmt.Errorf("%w: posttype %d", ErrInvalidPost, int(p.PostType))
	}
	return nil
}
