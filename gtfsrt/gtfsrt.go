// Package gtfsrt exports live times as GTFS-realtime trip updates.
//
// Only what the Bus Tracker reports survives the conversion. Delays,
// diversions and disruptions have no equivalent in a TripUpdate and
// are dropped.
package gtfsrt

import (
	"errors"
	"fmt"
	"sort"
	"time"

	gtfsproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	proto "google.golang.org/protobuf/proto"

	"mybus.dev/livetimes/model"
)

const Version = "2.0"

type tripStop struct {
	stopCode      string
	departureTime time.Time
	sequence      int
	hasSequence   bool
}

type trip struct {
	id      string
	routeID string
	stops   []tripStop
}

func header(now time.Time) *gtfsproto.FeedHeader {
	return &gtfsproto.FeedHeader{
		GtfsRealtimeVersion: proto.String(Version),
		Incrementality:      gtfsproto.FeedHeader_FULL_DATASET.Enum(),
		Timestamp:           proto.Uint64(uint64(now.Unix())),
	}
}

// Builds a feed with one TripUpdate per journey found in the bus
// times. Buses without a journey ID get a trip of their own.
func FromBusTimes(times *model.LiveBusTimes, now time.Time) (*gtfsproto.FeedMessage, error) {
	if times == nil {
		return nil, errors.New("no bus times")
	}

	trips := []*trip{}
	tripByID := map[string]*trip{}

	for _, stopCode := range times.BusStopCodes() {
		stop := times.BusStop(stopCode)
		for _, service := range stop.Services() {
			for i, bus := range service.Buses() {
				id := bus.JourneyID()
				if id == "" {
					id = fmt.Sprintf("%s:%s:%d", stopCode, service.ServiceName(), i)
				}

				t, found := tripByID[id]
				if !found {
					t = &trip{id: id, routeID: service.ServiceName()}
					tripByID[id] = t
					trips = append(trips, t)
				}
				t.stops = append(t.stops, tripStop{
					stopCode:      stopCode,
					departureTime: bus.DepartureTime(),
				})
			}
		}
	}

	for _, t := range trips {
		sort.SliceStable(t.stops, func(i, j int) bool {
			return t.stops[i].departureTime.Before(t.stops[j].departureTime)
		})
	}

	return &gtfsproto.FeedMessage{
		Header: header(now),
		Entity: entities(trips),
	}, nil
}

// Builds a feed holding a single TripUpdate for the journey.
func FromJourney(journey *model.Journey, now time.Time) (*gtfsproto.FeedMessage, error) {
	if journey == nil {
		return nil, errors.New("no journey")
	}

	t := &trip{id: journey.JourneyID(), routeID: journey.ServiceName()}
	for _, departure := range journey.Departures() {
		t.stops = append(t.stops, tripStop{
			stopCode:      departure.StopCode(),
			departureTime: departure.DepartureTime(),
			sequence:      departure.Order(),
			hasSequence:   departure.Order() >= 0,
		})
	}

	return &gtfsproto.FeedMessage{
		Header: header(now),
		Entity: entities([]*trip{t}),
	}, nil
}

func entities(trips []*trip) []*gtfsproto.FeedEntity {
	entities := make([]*gtfsproto.FeedEntity, 0, len(trips))
	for _, t := range trips {
		updates := make([]*gtfsproto.TripUpdate_StopTimeUpdate, 0, len(t.stops))
		for _, s := range t.stops {
			update := &gtfsproto.TripUpdate_StopTimeUpdate{
				StopId: proto.String(s.stopCode),
				Departure: &gtfsproto.TripUpdate_StopTimeEvent{
					Time: proto.Int64(s.departureTime.Unix()),
				},
				ScheduleRelationship: gtfsproto.TripUpdate_StopTimeUpdate_SCHEDULED.Enum(),
			}
			if s.hasSequence {
				update.StopSequence = proto.Uint32(uint32(s.sequence))
			}
			updates = append(updates, update)
		}

		entities = append(entities, &gtfsproto.FeedEntity{
			Id: proto.String(t.id),
			TripUpdate: &gtfsproto.TripUpdate{
				Trip: &gtfsproto.TripDescriptor{
					TripId:               proto.String(t.id),
					RouteId:              proto.String(t.routeID),
					ScheduleRelationship: gtfsproto.TripDescriptor_SCHEDULED.Enum(),
				},
				StopTimeUpdate: updates,
			},
		})
	}
	return entities
}

// Serializes a feed to the protobuf wire format.
func Marshal(feed *gtfsproto.FeedMessage) ([]byte, error) {
	buf, err := proto.Marshal(feed)
	if err != nil {
		return nil, fmt.Errorf("marshaling feed: %w", err)
	}
	return buf, nil
}

// Parses a serialized feed. Only full datasets of supported versions
// are accepted.
func Unmarshal(buf []byte) (*gtfsproto.FeedMessage, error) {
	feed := &gtfsproto.FeedMessage{}
	if err := proto.Unmarshal(buf, feed); err != nil {
		return nil, fmt.Errorf("unmarshaling protobuf: %w", err)
	}

	header := feed.GetHeader()

	version := header.GetGtfsRealtimeVersion()
	if version != "2.0" && version != "1.0" {
		return nil, fmt.Errorf("version %s not supported", version)
	}

	if header.GetIncrementality() != gtfsproto.FeedHeader_FULL_DATASET {
		return nil, fmt.Errorf("feed incrementality %s not supported", header.GetIncrementality())
	}

	return feed, nil
}
