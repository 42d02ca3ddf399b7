package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mybus.dev/livetimes"
)

var busTimesCmd = &cobra.Command{
	Use:   "bustimes <stop_code>...",
	Short: "Lists live departures from one or more stops",
	Args:  cobra.RangeArgs(1, livetimes.MaxStopCodes),
	RunE:  busTimes,
}

var (
	numDepartures int
	format        string
)

func init() {
	busTimesCmd.Flags().IntVarP(&numDepartures, "departures", "n", 0, "Departures per service (defaults to config)")
	busTimesCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, csv, gtfsrt or debug")
}

func busTimes(cmd *cobra.Command, args []string) error {
	m, s, err := loadManager()
	if err != nil {
		return err
	}
	defer s.Close()

	if numDepartures > 0 {
		m.NumDepartures = numDepartures
	}

	now := time.Now()
	times, err := m.LoadBusTimes(cmd.Context(), cliConsumer, args, now)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "text":
		return writeBusTimesText(out, times)
	case "csv":
		return writeBusTimesCSV(out, times)
	case "gtfsrt":
		return writeBusTimesGTFSRT(out, times, now)
	case "debug":
		return writeDebug(out, times)
	}

	return fmt.Errorf("unknown format %q", format)
}
