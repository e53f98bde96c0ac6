package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inecosys/utilitytool/pkg/posts"
)

func demoEvents() []posts.Event {
	return []posts.Event{
		{ID: "2006", Title: "Trade fair", Date: "2025-07-23", Type: posts.Messe, Tags: "#hello"},
		{ID: "2003", Title: "Kickoff", Date: "2025-07-30", Type: posts.Regular},
		{ID: "2004", Title: "ILP day", Date: "2025-07-30", Type: posts.ILP, Tags: "#hello #hi"},
		{ID: "2010", Title: "Summer break", Date: "2025-08-02", Type: posts.Regular},
		{ID: "bad", Title: "Broken", Date: "soon", Type: posts.Regular},
	}
}

func TestParseMonth(t *testing.T) {
	y, m, err := ParseMonth("2025-07")
	require.NoError(t, err)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.July, m)

	_, _, err = ParseMonth("07/2025")
	assert.Error(t, err)
}

func TestMonthStartsOnMonday(t *testing.T) {
	weeks := Month(2025, time.July, demoEvents())
	require.Len(t, weeks, 5)

	// July 1st 2025 is a Tuesday
	first := weeks[0][0]
	assert.Equal(t, time.Monday, first.Date.Weekday())
	assert.Equal(t, "2025-06-30", first.Date.Format(posts.DateLayout))
	assert.False(t, first.InMonth)
	assert.True(t, weeks[0][1].InMonth)

	last := weeks[4][6]
	assert.Equal(t, time.Sunday, last.Date.Weekday())
	assert.Equal(t, "2025-08-03", last.Date.Format(posts.DateLayout))
	assert.False(t, last.InMonth)

	for _, week := range weeks {
		for d := 1; d < 7; d++ {
			assert.Equal(t, week[d-1].Date.AddDate(0, 0, 1), week[d].Date)
		}
	}
}

func TestMonthExactFit(t *testing.T) {
	// February 2021 begins on a Monday and spans exactly four weeks
	weeks := Month(2021, time.February, nil)
	require.Len(t, weeks, 4)
	for _, week := range weeks {
		for _, day := range week {
			assert.True(t, day.InMonth)
		}
	}
}

func TestMonthAttachesEvents(t *testing.T) {
	weeks := Month(2025, time.July, demoEvents())

	titles := map[string][]string{}
	for _, week := range weeks {
		for _, day := range week {
			for _, e := range day.Events {
				key := day.Date.Format(posts.DateLayout)
				titles[key] = append(titles[key], e.Title)
			}
		}
	}

	want := map[string][]string{
		"2025-07-23": {"Trade fair"},
		"2025-07-30": {"Kickoff", "ILP day"},
		"2025-08-02": {"Summer break"},
	}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("events per day mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(demoEvents()[:3])

	for _, s := range []string{"Title", "Date", "Type", "Tags", "Trade fair", "2025-07-23", "Messe", "ILP", "#hello #hi"} {
		assert.Contains(t, out, s)
	}
	assert.Less(t, strings.Index(out, "Trade fair"), strings.Index(out, "Kickoff"))
}

func TestRenderTableEmpty(t *testing.T) {
	out := RenderTable(nil)
	assert.Contains(t, out, "Title")
}

func TestRenderMonth(t *testing.T) {
	out := RenderMonth(2025, time.July, demoEvents())

	assert.True(t, strings.HasPrefix(out, "July 2025"))
	for _, s := range []string{"Mon", "Sun", "31", "• Trade fair", "• Kickoff", "• ILP day"} {
		assert.Contains(t, out, s)
	}
	assert.NotContains(t, out, "Broken")
}
