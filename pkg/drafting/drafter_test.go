package drafting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inecosys/utilitytool/pkg/posts"
)

type fakeClient struct {
	reply      string
	err        error
	gotModel   string
	gotPrompt  string
	callsCount int
}

func (f *fakeClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	f.callsCount++
	f.gotModel = model
	f.gotPrompt = prompt
	return f.reply, f.err
}

func samplePost() posts.Post {
	return posts.Post{
		EventTitle:   "bauma 2025",
		Date:         "2025-04-07",
		Description:  "Trade fair in Munich",
		Good:         "Many visitors",
		Bad:          "Booth too small",
		Goal:         "Find partners",
		Instructions: "Mention the demo",
		PostType:     posts.Messe,
	}
}

func TestBuildPrompt(t *testing.T) {
	today := time.Date(2025, 7, 30, 9, 15, 0, 0, time.UTC)
	prompt := BuildPrompt(samplePost(), today)

	for _, want := range []string{
		"Inecosys",
		"200 words",
		"3 hashtags",
		`"we" form`,
		"Today: 2025-07-30 09:15:00",
		"Title: bauma 2025",
		"Event Date: 2025-04-07",
		"Description: Trade fair in Munich",
		"Positive Impressions: Many visitors",
		"Possible improvements: Booth too small",
		"Goal of Participation: Find partners",
		"Instructions: Mention the demo",
	} {
		assert.Contains(t, prompt, want)
	}
	assert.True(t, strings.HasSuffix(strings.TrimSpace(prompt), PostMarker))
}

func TestExtractPost(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"  We were there.  ", "We were there."},
		{"prompt echo\nPost:\nWe were there.", "We were there."},
		{"Post: first\nPost: second", "second"},
		{"Post:   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractPost(tt.raw), tt.raw)
	}
}

func TestDraft(t *testing.T) {
	fc := &fakeClient{reply: "...\nPost:\nWe met great partners at bauma.\n\n#bauma #Inecosys #bauma, #innovation #extra"}
	d := NewDrafter(fc)
	d.now = func() time.Time { return time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC) }

	draft, err := d.Draft(context.Background(), "tinyllama", samplePost())
	require.NoError(t, err)

	assert.Equal(t, "tinyllama", fc.gotModel)
	assert.Contains(t, fc.gotPrompt, "Today: 2025-08-01")
	assert.True(t, strings.HasPrefix(draft.Text, "We met great partners"))
	assert.Equal(t, []string{"#bauma", "#Inecosys", "#innovation"}, draft.Hashtags)
}

func TestDraftRejectsInvalidPost(t *testing.T) {
	fc := &fakeClient{reply: "x"}
	_, err := NewDrafter(fc).Draft(context.Background(), "m", posts.Post{Date: "2025-01-01"})
	assert.ErrorIs(t, err, posts.ErrInvalidPost)
	assert.Zero(t, fc.callsCount)
}

func TestDraftErrors(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := NewDrafter(&fakeClient{err: boom}).Draft(context.Background(), "m", samplePost())
	assert.ErrorIs(t, err, boom)

	_, err = NewDrafter(&fakeClient{reply: "Post:\n  "}).Draft(context.Background(), "m", samplePost())
	assert.ErrorIs(t, err, ErrEmptyDraft)
}
