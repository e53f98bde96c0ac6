// Package drafting turns a post record into a LinkedIn draft using a text model.
package drafting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inecosys/utilitytool/pkg/client"
	"github.com/inecosys/utilitytool/pkg/posts"
)

// ErrEmptyDraft is returned when the model produced nothing after the Post: marker
var ErrEmptyDraft = errors.New("model returned an empty draft")

// PostMarker ends the prompt; the draft is whatever the model writes after it
const PostMarker = "Post:"

// MaxHashtags is how many hashtags the prompt asks for
const MaxHashtags = 3

const promptTemplate = `
Write a LinkedIn post about my company Inecosys participation in an event.  And you are a 
social media manager in company called "Inecosys", do not mention anywhere in the post that you are the manager.
the Post SHOULD NOT exceed 200 words. Parameter called "Instructions" are extra comments from
a manager, follow it when constructing new Post as well. include 3 hashtags at the very bottom as well. Do not include
any placeholders. DO NOT include any other information that haven't been given explicitly in this prompt. Write the post
in "we" form or passive. Compare parameters "Today" & "Event Date" to determine whether the event has already
conducted or not. Following are parameters you should consider:

Today: %s
Title: %s
Event Date: %s
Description: %s
Positive Impressions: %s
Possible improvements: %s
Goal of Participation: %s

Instructions: %s

` + PostMarker + "\n"

// Draft is the cleaned model output
type Draft struct {
	Text     string
	Hashtags []string
}

// BuildPrompt renders the drafting instructions for p as of today
func BuildPrompt(p posts.Post, today time.Time) string {
	return fmt.Sprintf(promptTemplate,
		today.Format("2006-01-02 15:04:05"),
		p.EventTitle,
		p.Date,
		p.Description,
		p.Good,
		p.Bad,
		p.Goal,
		p.Instructions,
	)
}

// Drafter asks a text model for post drafts
type Drafter struct {
	client client.TextClient
	now    func() time.Time
}

// NewDrafter creates a drafter backed by the given client
func NewDrafter(c client.TextClient) *Drafter {
	return &Drafter{client: c, now: time.Now}
}

// Draft validates p, prompts the model and extracts the post text
func (d *Drafter) Draft(ctx context.Context, model string, p posts.Post) (*Draft, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	raw, err := d.client.Generate(ctx, model, BuildPrompt(p, d.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to generate draft: %w", err)
	}

	text := ExtractPost(raw)
	if text == "" {
		return nil, ErrEmptyDraft
	}

	return &Draft{
		Text:     text,
		Hashtags: hashtags(text),
	}, nil
}

// ExtractPost keeps the text after the last Post: marker. Models that echo the
// prompt back are handled the same as models that answer directly.
func ExtractPost(raw string) string {
	if i := strings.LastIndex(raw, PostMarker); i >= 0 {
		raw = raw[i+len(PostMarker):]
	}
	return strings.TrimSpace(raw)
}

// hashtags collects distinct #tags in order of appearance, at most MaxHashtags
func hashtags(text string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, MaxHashtags)
	for _, f := range strings.Fields(text) {
		f = strings.TrimRight(f, ".,;:!?")
		if len(f) < 2 || !strings.HasPrefix(f, "#") {
			continue
		}
		key := strings.ToLower(f)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
		if len(out) == MaxHashtags {
			break
		}
	}
	return out
}
