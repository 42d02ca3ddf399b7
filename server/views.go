package server

import (
	"time"

	"mybus.dev/livetimes/model"
)

type busView struct {
	Destination      string    `json:"destination"`
	DepartureTime    time.Time `json:"departure_time"`
	DepartureMinutes int       `json:"departure_minutes"`
	Terminus         string    `json:"terminus,omitempty"`
	JourneyID        string    `json:"journey_id,omitempty"`
	Estimated        bool      `json:"estimated"`
	Delayed          bool      `json:"delayed"`
	Diverted         bool      `json:"diverted"`
	IsTerminus       bool      `json:"is_terminus"`
	PartRoute        bool      `json:"part_route"`
}

type serviceView struct {
	Name      string    `json:"name"`
	Operator  string    `json:"operator,omitempty"`
	Route     string    `json:"route,omitempty"`
	Disrupted bool      `json:"disrupted"`
	Diverted  bool      `json:"diverted"`
	Buses     []busView `json:"buses"`
}

type stopView struct {
	StopCode  string        `json:"stop_code"`
	StopName  string        `json:"stop_name,omitempty"`
	Disrupted bool          `json:"disrupted"`
	Services  []serviceView `json:"services"`
}

type busTimesView struct {
	ReceiveTime      time.Time  `json:"receive_time"`
	GlobalDisruption bool       `json:"global_disruption"`
	Stops            []stopView `json:"stops"`
}

type departureView struct {
	StopCode          string    `json:"stop_code"`
	StopName          string    `json:"stop_name,omitempty"`
	DepartureTime     time.Time `json:"departure_time"`
	DepartureMinutes  int       `json:"departure_minutes"`
	Order             int       `json:"order"`
	Estimated         bool      `json:"estimated"`
	Delayed           bool      `json:"delayed"`
	Diverted          bool      `json:"diverted"`
	IsTerminus        bool      `json:"is_terminus"`
	PartRoute         bool      `json:"part_route"`
	BusStopDisruption bool      `json:"bus_stop_disruption"`
}

type journeyView struct {
	JourneyID         string          `json:"journey_id"`
	ServiceName       string          `json:"service_name"`
	Operator          string          `json:"operator,omitempty"`
	Route             string          `json:"route,omitempty"`
	Destination       string          `json:"destination,omitempty"`
	Terminus          string          `json:"terminus"`
	GlobalDisruption  bool            `json:"global_disruption"`
	ServiceDisruption bool            `json:"service_disruption"`
	ServiceDiversion  bool            `json:"service_diversion"`
	ReceiveTime       time.Time       `json:"receive_time"`
	Departures        []departureView `json:"departures"`
}

type errorView struct {
	Error string `json:"error"`
}

func newBusTimesView(times *model.LiveBusTimes) busTimesView {
	view := busTimesView{
		ReceiveTime:      times.ReceiveTime(),
		GlobalDisruption: times.HasGlobalDisruption(),
		Stops:            []stopView{},
	}

	for _, code := range times.BusStopCodes() {
		stop := times.BusStop(code)
		sv := stopView{
			StopCode:  stop.StopCode(),
			StopName:  stop.StopName(),
			Disrupted: stop.IsDisrupted(),
			Services:  []serviceView{},
		}

		for _, service := range stop.Services() {
			svc := serviceView{
				Name:      service.ServiceName(),
				Operator:  service.Operator(),
				Route:     service.Route(),
				Disrupted: service.IsDisrupted(),
				Diverted:  service.IsDiverted(),
				Buses:     []busView{},
			}
			for _, bus := range service.Buses() {
				svc.Buses = append(svc.Buses, busView{
					Destination:      bus.Destination(),
					DepartureTime:    bus.DepartureTime(),
					DepartureMinutes: bus.DepartureMinutes(),
					Terminus:         bus.TerminusStopCode(),
					JourneyID:        bus.JourneyID(),
					Estimated:        bus.IsEstimatedTime(),
					Delayed:          bus.IsDelayed(),
					Diverted:         bus.IsDiverted(),
					IsTerminus:       bus.IsTerminus(),
					PartRoute:        bus.IsPartRoute(),
				})
			}
			sv.Services = append(sv.Services, svc)
		}

		view.Stops = append(view.Stops, sv)
	}

	return view
}

func newJourneyView(journey *model.Journey) journeyView {
	view := journeyView{
		JourneyID:         journey.JourneyID(),
		ServiceName:       journey.ServiceName(),
		Operator:          journey.Operator(),
		Route:             journey.Route(),
		Destination:       journey.Destination(),
		Terminus:          journey.TerminusStopCode(),
		GlobalDisruption:  journey.HasGlobalDisruption(),
		ServiceDisruption: journey.HasServiceDisruption(),
		ServiceDiversion:  journey.HasServiceDiversion(),
		ReceiveTime:       journey.ReceiveTime(),
		Departures:        []departureView{},
	}

	for _, d := range journey.Departures() {
		view.Departures = append(view.Departures, departureView{
			StopCode:          d.StopCode(),
			StopName:          d.StopName(),
			DepartureTime:     d.DepartureTime(),
			DepartureMinutes:  d.DepartureMinutes(),
			Order:             d.Order(),
			Estimated:         d.IsEstimatedTime(),
			Delayed:           d.IsDelayed(),
			Diverted:          d.IsDiverted(),
			IsTerminus:        d.IsTerminus(),
			PartRoute:         d.IsPartRoute(),
			BusStopDisruption: d.IsBusStopDisrupted(),
		})
	}

	return view
}
