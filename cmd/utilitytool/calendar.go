package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/inecosys/utilitytool/pkg/calendar"
	"github.com/inecosys/utilitytool/pkg/posts"
)

var (
	calView  string
	calMonth string
)

var calendarCmd = &cobra.Command{
	Use:   "calendar [posts.yaml]",
	Short: "Show scheduled posts as a table or month grid",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCalendar,
}

func init() {
	calendarCmd.Flags().StringVar(&calView, "view", "table", "table or month")
	calendarCmd.Flags().StringVar(&calMonth, "month", "", "month to show as YYYY-MM (default current month)")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	path := "posts.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	events, err := posts.LoadEvents(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch calView {
	case "table":
		fmt.Fprintln(out, calendar.RenderTable(events))
	case "month":
		now := time.Now()
		year, month := now.Year(), now.Month()
		if calMonth != "" {
			if year, month, err = calendar.ParseMonth(calMonth); err != nil {
				return err
			}
		}
		fmt.Fprintln(out, calendar.RenderMonth(year, month, events))
	default:
		return fmt.Errorf("unknown view %q (use table or month)", calView)
	}
	return nil
}
