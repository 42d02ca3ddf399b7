package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var journeyCmd = &cobra.Command{
	Use:   "journey <stop_code> <journey_id>",
	Short: "Lists the remaining stops of a journey",
	Args:  cobra.ExactArgs(2),
	RunE:  journey,
}

var journeyFormat string

func init() {
	journeyCmd.Flags().StringVarP(&journeyFormat, "format", "f", "text", "Output format: text, gtfsrt or debug")
}

func journey(cmd *cobra.Command, args []string) error {
	m, s, err := loadManager()
	if err != nil {
		return err
	}
	defer s.Close()

	j, err := m.LoadJourneyTimes(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch journeyFormat {
	case "text":
		return writeJourneyText(out, j)
	case "gtfsrt":
		return writeJourneyGTFSRT(out, j, time.Now())
	case "debug":
		return writeDebug(out, j)
	}

	return fmt.Errorf("unknown format %q", journeyFormat)
}
