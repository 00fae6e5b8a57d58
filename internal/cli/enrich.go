package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"skewcapture/internal/app"
	"skewcapture/internal/datapath"
)

var enrichDate string

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Merge realized-vol and momentum metrics into a day's signals",
	RunE: func(cmd *cobra.Command, args []string) error {
		if enrichDate == "" {
			return fmt.Errorf("--date must be provided")
		}

		date, err := datapath.ParseDate(enrichDate)
		if err != nil {
			return err
		}

		return getApp().Enrich(cmd.Context(), app.EnrichOptions{Date: date})
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichDate, "date", "", "Snapshot date (YYYY-MM-DD)")
}
