package model

import (
	"time"
)

// A single predicted departure of a bus from a stop.
type LiveBus struct {
	destination      string
	departureTime    time.Time
	departureMinutes int
	terminus         string
	journeyID        string
	estimatedTime    bool
	delayed          bool
	diverted         bool
	isTerminus       bool
	partRoute        bool
}

func (b *LiveBus) Destination() string { return b.destination }
func (b *LiveBus) DepartureTime() time.Time { return b.departureTime }
func (b *LiveBus) DepartureMinutes() int { return b.departureMinutes }
func (b *LiveBus) TerminusStopCode() string { return b.terminus }
func (b *LiveBus) JourneyID() string { return b.journeyID }
func (b *LiveBus) IsEstimatedTime() bool { return b.estimatedTime }
func (b *LiveBus) IsDelayed() bool { return b.delayed }
func (b *LiveBus) IsDiverted() bool { return b.diverted }
func (b *LiveBus) IsTerminus() bool { return b.isTerminus }
func (b *LiveBus) IsPartRoute() bool { return b.partRoute }

// Orders buses by departure time. A nil other sorts after b.
func (b *LiveBus) Compare(other *LiveBus) int {
	if other == nil {
		return -1
	}
	return b.departureTime.Compare(other.departureTime)
}

type LiveBusBuilder struct {
	bus LiveBus
}

func NewLiveBusBuilder() *LiveBusBuilder {
	return &LiveBusBuilder{}
}

func (b *LiveBusBuilder) SetDestination(destination string) *LiveBusBuilder {
	b.bus.destination = destination
	return b
}

func (b *LiveBusBuilder) SetDepartureTime(t time.Time) *LiveBusBuilder {
	b.bus.departureTime = t
	return b
}

func (b *LiveBusBuilder) SetDepartureMinutes(minutes int) *LiveBusBuilder {
	b.bus.departureMinutes = minutes
	return b
}

func (b *LiveBusBuilder) SetTerminus(stopCode string) *LiveBusBuilder {
	b.bus.terminus = stopCode
	return b
}

func (b *LiveBusBuilder) SetJourneyID(journeyID string) *LiveBusBuilder {
	b.bus.journeyID = journeyID
	return b
}

func (b *LiveBusBuilder) SetEstimatedTime(estimated bool) *LiveBusBuilder {
	b.bus.estimatedTime = estimated
	return b
}

func (b *LiveBusBuilder) SetDelayed(delayed bool) *LiveBusBuilder {
	b.bus.delayed = delayed
	return b
}

func (b *LiveBusBuilder) SetDiverted(diverted bool) *LiveBusBuilder {
	b.bus.diverted = diverted
	return b
}

func (b *LiveBusBuilder) SetIsTerminus(isTerminus bool) *LiveBusBuilder {
	b.bus.isTerminus = isTerminus
	return b
}

func (b *LiveBusBuilder) SetPartRoute(partRoute bool) *LiveBusBuilder {
	b.bus.partRoute = partRoute
	return b
}

func (b *LiveBusBuilder) Build() (*LiveBus, error) {
	if b.bus.destination == "" {
		return nil, requiredField("destination")
	}
	if b.bus.departureTime.IsZero() {
		return nil, requiredField("departureTime")
	}

	bus := b.bus
	return &bus, nil
}
