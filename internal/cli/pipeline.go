package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"skewcapture/internal/app"
	"skewcapture/internal/datapath"
)

var pipelineDate string

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run capture then enrich for one date",
	RunE: func(cmd *cobra.Command, args []string) error {
		if pipelineDate == "" {
			return fmt.Errorf("--date must be provided")
		}

		date, err := datapath.ParseDate(pipelineDate)
		if err != nil {
			return err
		}

		return getApp().Pipeline(cmd.Context(), app.PipelineOptions{Date: date})
	},
}

func init() {
	pipelineCmd.Flags().StringVar(&pipelineDate, "date", "", "Snapshot date (YYYY-MM-DD)")
}
