package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"skewcapture/internal/app"
	"skewcapture/internal/datapath"
)

var (
	showLimit int
	showDate  string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display recent signal log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Limit: showLimit,
		}

		if showDate != "" {
			date, err := datapath.ParseDate(showDate)
			if err != nil {
				return err
			}
			opts.Date = date
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of entries to display")
	showCmd.Flags().StringVar(&showDate, "date", "", "Only show entries captured on this date (YYYY-MM-DD)")
}
