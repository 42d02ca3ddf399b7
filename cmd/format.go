package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	gtfsproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/gocarina/gocsv"
	"github.com/kr/pretty"

	"mybus.dev/livetimes/gtfsrt"
	"mybus.dev/livetimes/model"
)

type departureRow struct {
	StopCode      string `csv:"stop_code"`
	StopName      string `csv:"stop_name"`
	Service       string `csv:"service"`
	Destination   string `csv:"destination"`
	DepartureTime string `csv:"departure_time"`
	Minutes       int    `csv:"minutes"`
	JourneyID     string `csv:"journey_id"`
	Estimated     bool   `csv:"estimated"`
	Delayed       bool   `csv:"delayed"`
	Diverted      bool   `csv:"diverted"`
	Terminus      bool   `csv:"terminus"`
	PartRoute     bool   `csv:"part_route"`
}

func departureRows(times *model.LiveBusTimes) []*departureRow {
	rows := []*departureRow{}
	for _, code := range times.BusStopCodes() {
		stop := times.BusStop(code)
		for _, service := range stop.Services() {
			for _, bus := range service.Buses() {
				rows = append(rows, &departureRow{
					StopCode:      code,
					StopName:      stop.StopName(),
					Service:       service.ServiceName(),
					Destination:   bus.Destination(),
					DepartureTime: bus.DepartureTime().Format(time.RFC3339),
					Minutes:       bus.DepartureMinutes(),
					JourneyID:     bus.JourneyID(),
					Estimated:     bus.IsEstimatedTime(),
					Delayed:       bus.IsDelayed(),
					Diverted:      bus.IsDiverted(),
					Terminus:      bus.IsTerminus(),
					PartRoute:     bus.IsPartRoute(),
				})
			}
		}
	}
	return rows
}

func flagSuffix(estimated, delayed, diverted bool) string {
	flags := []string{}
	if estimated {
		flags = append(flags, "estimated")
	}
	if delayed {
		flags = append(flags, "delayed")
	}
	if diverted {
		flags = append(flags, "diverted")
	}
	if len(flags) == 0 {
		return ""
	}
	return " (" + strings.Join(flags, ", ") + ")"
}

func writeBusTimesText(w io.Writer, times *model.LiveBusTimes) error {
	if times.HasGlobalDisruption() {
		fmt.Fprintln(w, "! Disruption reported across the network")
	}

	for _, code := range times.BusStopCodes() {
		stop := times.BusStop(code)

		header := code
		if stop.StopName() != "" {
			header += " " + stop.StopName()
		}
		if stop.IsDisrupted() {
			header += " [disrupted]"
		}
		fmt.Fprintln(w, header)

		if len(stop.Services()) == 0 {
			fmt.Fprintln(w, "  no departures")
			continue
		}

		for _, service := range stop.Services() {
			for _, bus := range service.Buses() {
				fmt.Fprintf(
					w, "  %-5s %4d min  %s%s\n",
					service.ServiceName(),
					bus.DepartureMinutes(),
					bus.Destination(),
					flagSuffix(bus.IsEstimatedTime(), bus.IsDelayed(), bus.IsDiverted()),
				)
			}
		}
	}

	return nil
}

func writeBusTimesCSV(w io.Writer, times *model.LiveBusTimes) error {
	if err := gocsv.Marshal(departureRows(times), w); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func writeJourneyText(w io.Writer, journey *model.Journey) error {
	header := fmt.Sprintf("%s journey %s", journey.ServiceName(), journey.JourneyID())
	if journey.Destination() != "" {
		header += " to " + journey.Destination()
	}
	if journey.HasServiceDiversion() {
		header += " [diverted]"
	}
	if journey.HasServiceDisruption() || journey.HasGlobalDisruption() {
		header += " [disrupted]"
	}
	fmt.Fprintln(w, header)

	for _, d := range journey.Departures() {
		name := d.StopCode()
		if d.StopName() != "" {
			name += " " + d.StopName()
		}
		fmt.Fprintf(
			w, "  %4d min  %s%s\n",
			d.DepartureMinutes(),
			name,
			flagSuffix(d.IsEstimatedTime(), d.IsDelayed(), d.IsDiverted()),
		)
	}

	return nil
}

func writeBusTimesGTFSRT(w io.Writer, times *model.LiveBusTimes, now time.Time) error {
	feed, err := gtfsrt.FromBusTimes(times, now)
	if err != nil {
		return err
	}
	return writeFeed(w, feed)
}

func writeJourneyGTFSRT(w io.Writer, journey *model.Journey, now time.Time) error {
	feed, err := gtfsrt.FromJourney(journey, now)
	if err != nil {
		return err
	}
	return writeFeed(w, feed)
}

func writeFeed(w io.Writer, feed *gtfsproto.FeedMessage) error {
	buf, err := gtfsrt.Marshal(feed)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

func writeDebug(w io.Writer, v interface{}) error {
	_, err := pretty.Fprintf(w, "%# v\n", v)
	return err
}
