package model

import (
	"fmt"
	"sort"
	"time"
)

// The result of one live times request: every stop asked about, keyed
// by stop code.
type LiveBusTimes struct {
	stops            map[string]*LiveBusStop
	receiveTime      time.Time
	globalDisruption bool
}

// When the data was received. Carries a monotonic clock reading when
// taken from time.Now(), so use time.Since() to get its age.
func (t *LiveBusTimes) ReceiveTime() time.Time { return t.receiveTime }
func (t *LiveBusTimes) HasGlobalDisruption() bool { return t.globalDisruption }
func (t *LiveBusTimes) Size() int { return len(t.stops) }
func (t *LiveBusTimes) IsEmpty() bool { return len(t.stops) == 0 }

// Returns the stop with the given code, or nil.
func (t *LiveBusTimes) BusStop(stopCode string) *LiveBusStop {
	return t.stops[stopCode]
}

func (t *LiveBusTimes) BusStops() map[string]*LiveBusStop {
	stops := make(map[string]*LiveBusStop, len(t.stops))
	for code, stop := range t.stops {
		stops[code] = stop
	}
	return stops
}

// Stop codes in ascending order.
func (t *LiveBusTimes) BusStopCodes() []string {
	codes := make([]string, 0, len(t.stops))
	for code := range t.stops {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

type LiveBusTimesBuilder struct {
	times LiveBusTimes
	stops map[string]*LiveBusStop
}

func NewLiveBusTimesBuilder() *LiveBusTimesBuilder {
	return &LiveBusTimesBuilder{}
}

func (b *LiveBusTimesBuilder) SetBusStops(stops map[string]*LiveBusStop) *LiveBusTimesBuilder {
	b.stops = stops
	return b
}

func (b *LiveBusTimesBuilder) SetReceiveTime(t time.Time) *LiveBusTimesBuilder {
	b.times.receiveTime = t
	return b
}

func (b *LiveBusTimesBuilder) SetGlobalDisruption(disrupted bool) *LiveBusTimesBuilder {
	b.times.globalDisruption = disrupted
	return b
}

func (b *LiveBusTimesBuilder) Build() (*LiveBusTimes, error) {
	if b.stops == nil {
		return nil, requiredField("busStops")
	}

	times := b.times
	times.stops = make(map[string]*LiveBusStop, len(b.stops))
	for code, stop := range b.stops {
		if stop == nil {
			return nil, requiredField("busStops[" + code + "]")
		}
		if stop.StopCode() != code {
			return nil, fmt.Errorf("%w: busStops key %q holds stop %q", ErrInvalidArgument, code, stop.StopCode())
		}
		times.stops[code] = stop
	}
	return &times, nil
}
