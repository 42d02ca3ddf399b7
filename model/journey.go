package model

import (
	"time"
)

// One calling point of a journey.
type JourneyDeparture struct {
	stopCode          string
	stopName          string
	departureTime     time.Time
	departureMinutes  int
	order             int
	estimatedTime     bool
	delayed           bool
	diverted          bool
	isTerminus        bool
	partRoute         bool
	busStopDisruption bool
}

func (d *JourneyDeparture) StopCode() string { return d.stopCode }
func (d *JourneyDeparture) StopName() string { return d.stopName }
func (d *JourneyDeparture) DepartureTime() time.Time { return d.departureTime }
func (d *JourneyDeparture) DepartureMinutes() int { return d.departureMinutes }
func (d *JourneyDeparture) Order() int { return d.order }
func (d *JourneyDeparture) IsEstimatedTime() bool { return d.estimatedTime }
func (d *JourneyDeparture) IsDelayed() bool { return d.delayed }
func (d *JourneyDeparture) IsDiverted() bool { return d.diverted }
func (d *JourneyDeparture) IsTerminus() bool { return d.isTerminus }
func (d *JourneyDeparture) IsPartRoute() bool { return d.partRoute }
func (d *JourneyDeparture) IsBusStopDisrupted() bool { return d.busStopDisruption }

// Orders departures by their position in the journey. Time plays no
// part: two departures with the same order compare equal. A nil
// other sorts after d.
func (d *JourneyDeparture) Compare(other *JourneyDeparture) int {
	if other == nil {
		return -1
	}
	switch {
	case d.order < other.order:
		return -1
	case d.order > other.order:
		return 1
	}
	return 0
}

type JourneyDepartureBuilder struct {
	departure JourneyDeparture
}

func NewJourneyDepartureBuilder() *JourneyDepartureBuilder {
	return &JourneyDepartureBuilder{}
}

func (b *JourneyDepartureBuilder) SetStopCode(stopCode string) *JourneyDepartureBuilder {
	b.departure.stopCode = stopCode
	return b
}

func (b *JourneyDepartureBuilder) SetStopName(stopName string) *JourneyDepartureBuilder {
	b.departure.stopName = stopName
	return b
}

func (b *JourneyDepartureBuilder) SetDepartureTime(t time.Time) *JourneyDepartureBuilder {
	b.departure.departureTime = t
	return b
}

func (b *JourneyDepartureBuilder) SetDepartureMinutes(minutes int) *JourneyDepartureBuilder {
	b.departure.departureMinutes = minutes
	return b
}

func (b *JourneyDepartureBuilder) SetOrder(order int) *JourneyDepartureBuilder {
	b.departure.order = order
	return b
}

func (b *JourneyDepartureBuilder) SetEstimatedTime(estimated bool) *JourneyDepartureBuilder {
	b.departure.estimatedTime = estimated
	return b
}

func (b *JourneyDepartureBuilder) SetDelayed(delayed bool) *JourneyDepartureBuilder {
	b.departure.delayed = delayed
	return b
}

func (b *JourneyDepartureBuilder) SetDiverted(diverted bool) *JourneyDepartureBuilder {
	b.departure.diverted = diverted
	return b
}

func (b *JourneyDepartureBuilder) SetIsTerminus(isTerminus bool) *JourneyDepartureBuilder {
	b.departure.isTerminus = isTerminus
	return b
}

func (b *JourneyDepartureBuilder) SetPartRoute(partRoute bool) *JourneyDepartureBuilder {
	b.departure.partRoute = partRoute
	return b
}

func (b *JourneyDepartureBuilder) SetBusStopDisruption(disrupted bool) *JourneyDepartureBuilder {
	b.departure.busStopDisruption = disrupted
	return b
}

func (b *JourneyDepartureBuilder) Build() (*JourneyDeparture, error) {
	if b.departure.stopCode == "" {
		return nil, requiredField("stopCode")
	}
	if b.departure.departureTime.IsZero() {
		return nil, requiredField("departureTime")
	}

	departure := b.departure
	return &departure, nil
}

// A single trip of one vehicle along a route, with one departure per
// calling point.
type Journey struct {
	journeyID         string
	serviceName       string
	departures        []*JourneyDeparture
	operator          string
	route             string
	destination       string
	terminus          string
	globalDisruption  bool
	serviceDisruption bool
	serviceDiversion  bool
	receiveTime       time.Time
}

func (j *Journey) JourneyID() string { return j.journeyID }
func (j *Journey) ServiceName() string { return j.serviceName }
func (j *Journey) Operator() string { return j.operator }
func (j *Journey) Route() string { return j.route }
func (j *Journey) Destination() string { return j.destination }
func (j *Journey) TerminusStopCode() string { return j.terminus }
func (j *Journey) HasGlobalDisruption() bool { return j.globalDisruption }
func (j *Journey) HasServiceDisruption() bool { return j.serviceDisruption }
func (j *Journey) HasServiceDiversion() bool { return j.serviceDiversion }
func (j *Journey) ReceiveTime() time.Time { return j.receiveTime }

func (j *Journey) Departures() []*JourneyDeparture {
	return append([]*JourneyDeparture{}, j.departures...)
}

type JourneyBuilder struct {
	journey    Journey
	departures []*JourneyDeparture
}

func NewJourneyBuilder() *JourneyBuilder {
	return &JourneyBuilder{}
}

func (b *JourneyBuilder) SetJourneyID(journeyID string) *JourneyBuilder {
	b.journey.journeyID = journeyID
	return b
}

func (b *JourneyBuilder) SetServiceName(name string) *JourneyBuilder {
	b.journey.serviceName = name
	return b
}

func (b *JourneyBuilder) SetDepartures(departures []*JourneyDeparture) *JourneyBuilder {
	b.departures = departures
	return b
}

func (b *JourneyBuilder) SetOperator(operator string) *JourneyBuilder {
	b.journey.operator = operator
	return b
}

func (b *JourneyBuilder) SetRoute(route string) *JourneyBuilder {
	b.journey.route = route
	return b
}

func (b *JourneyBuilder) SetDestination(destination string) *JourneyBuilder {
	b.journey.destination = destination
	return b
}

func (b *JourneyBuilder) SetTerminus(stopCode string) *JourneyBuilder {
	b.journey.terminus = stopCode
	return b
}

func (b *JourneyBuilder) SetGlobalDisruption(disrupted bool) *JourneyBuilder {
	b.journey.globalDisruption = disrupted
	return b
}

func (b *JourneyBuilder) SetServiceDisruption(disrupted bool) *JourneyBuilder {
	b.journey.serviceDisruption = disrupted
	return b
}

func (b *JourneyBuilder) SetServiceDiversion(diverted bool) *JourneyBuilder {
	b.journey.serviceDiversion = diverted
	return b
}

func (b *JourneyBuilder) SetReceiveTime(t time.Time) *JourneyBuilder {
	b.journey.receiveTime = t
	return b
}

func (b *JourneyBuilder) Build() (*Journey, error) {
	if b.journey.journeyID == "" {
		return nil, requiredField("journeyID")
	}
	if b.journey.serviceName == "" {
		return nil, requiredField("serviceName")
	}
	if b.departures == nil {
		return nil, requiredField("departures")
	}
	if b.journey.terminus == "" {
		return nil, requiredField("terminus")
	}

	journey := b.journey
	journey.departures = append([]*JourneyDeparture{}, b.departures...)
	return &journey, nil
}
