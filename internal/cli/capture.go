package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"skewcapture/internal/app"
	"skewcapture/internal/datapath"
)

var captureDate string

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture one day's screener signals into the signal log",
	RunE: func(cmd *cobra.Command, args []string) error {
		if captureDate == "" {
			return fmt.Errorf("--date must be provided")
		}

		date, err := datapath.ParseDate(captureDate)
		if err != nil {
			return err
		}

		return getApp().Capture(cmd.Context(), app.CaptureOptions{Date: date})
	},
}

func init() {
	captureCmd.Flags().StringVar(&captureDate, "date", "", "Capture date (YYYY-MM-DD)")
}
