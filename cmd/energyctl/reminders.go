package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/yanqian/smart-energy/internal/domain/notification"
)

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "List the scheduled reminders, soonest first",
	Args:  cobra.NoArgs,
	RunE:  runReminders,
}

func init() {
	rootCmd.AddCommand(remindersCmd)
}

func runReminders(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	reminders, err := notification.DefaultReminders(e.table)
	if err != nil {
		return err
	}
	now := e.now()
	w := newTable(cmd)
	fmt.Fprintln(w, "NEXT\tIN\tSCHEDULE\tTITLE")
	for _, u := range notification.NextOccurrences(reminders, now) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.At.Format("Mon Jan 2 15:04"),
			humanize.RelTime(u.At, now, "ago", "from now"), u.Reminder.Spec, u.Reminder.Title)
	}
	return w.Flush()
}
