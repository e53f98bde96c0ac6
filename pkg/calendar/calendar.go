// Package calendar lays out post events as a table or as a Monday-first month grid.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/inecosys/utilitytool/pkg/posts"
)

// MonthLayout is the accepted --month format
const MonthLayout = "2006-01"

// Day is one cell of the month grid
type Day struct {
	Date    time.Time
	InMonth bool
	Events  []posts.Event
}

// Week runs Monday through Sunday
type Week [7]Day

var weekdayHeaders = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	outsideStyle = cellStyle.Foreground(lipgloss.Color("241"))
	titleStyle   = lipgloss.NewStyle().Bold(true).MarginBottom(1)
)

// ParseMonth parses YYYY-MM
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

// Month builds the grid for the given month. Leading and trailing days from the
// neighbouring months fill the first and last week and are marked !InMonth.
func Month(year int, month time.Month, events []posts.Event) []Week {
	byDate := make(map[string][]posts.Event)
	for _, e := range events {
		day, err := e.Day()
		if err != nil {
			continue
		}
		key := day.Format(posts.DateLayout)
		byDate[key] = append(byDate[key], e)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7
	daysInMonth := first.AddDate(0, 1, -1).Day()
	numWeeks := (offset + daysInMonth + 6) / 7

	weeks := make([]Week, numWeeks)
	cur := first.AddDate(0, 0, -offset)
	for w := range weeks {
		for d := 0; d < 7; d++ {
			weeks[w][d] = Day{
				Date:    cur,
				InMonth: cur.Month() == month,
				Events:  byDate[cur.Format(posts.DateLayout)],
			}
			cur = cur.AddDate(0, 0, 1)
		}
	}
	return weeks
}

// RenderTable renders events as a bordered table with Title, Date, Type and Tags
func RenderTable(events []posts.Event) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Title", "Date", "Type", "Tags").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, e := range events {
		t.Row(e.Title, e.Date, e.Type.Label(), e.Tags)
	}
	return t.String()
}

// RenderMonth renders the month grid with event titles listed under each day
func RenderMonth(year int, month time.Month, events []posts.Event) string {
	weeks := Month(year, month, events)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(true).
		Headers(weekdayHeaders...)

	outside := make(map[[2]int]bool)
	for w, week := range weeks {
		row := make([]string, 7)
		for d, day := range week {
			row[d] = dayCell(day)
			if !day.InMonth {
				outside[[2]int{w, d}] = true
			}
		}
		t.Row(row...)
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case outside[[2]int{row, col}]:
			return outsideStyle
		default:
			return cellStyle
		}
	})

	title := titleStyle.Render(fmt.Sprintf("%s %d", month, year))
	return lipgloss.JoinVertical(lipgloss.Left, title, t.String())
}

func dayCell(day Day) string {
	lines := []string{strconv.Itoa(day.Date.Day())}
	for _, e := range day.Events {
		lines = append(lines, "• "+e.Title)
	}
	return strings.Join(lines, "\n")
}
