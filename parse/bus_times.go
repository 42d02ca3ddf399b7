package parse

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"mybus.dev/livetimes/model"
)

type busTimeJSON struct {
	StopID            optString         `json:"stopId"`
	StopName          optString         `json:"stopName"`
	MnemoService      optString         `json:"mnemoService"`
	NameService       optString         `json:"nameService"`
	OperatorID        optString         `json:"operatorId"`
	ServiceDisruption optBool           `json:"serviceDisruption"`
	ServiceDiversion  optBool           `json:"serviceDiversion"`
	BusStopDisruption optBool           `json:"busStopDisruption"`
	GlobalDisruption  optBool           `json:"globalDisruption"`
	TimeDatas         []json.RawMessage `json:"timeDatas"`
}

type timeDataJSON struct {
	departureFields
	NameDest  optString `json:"nameDest"`
	Terminus  optString `json:"terminus"`
	JourneyID optString `json:"journeyId"`
}

// Per stop accumulator used while grouping records.
type stopAccumulator struct {
	name      string
	disrupted bool
	services  []*model.LiveBusService
}

// Parses a bus times response using the default parser.
func ParseBusTimes(doc Document) (*model.LiveBusTimes, error) {
	return defaultParser.ParseBusTimes(doc)
}

// Parses a bus times response.
//
// Server faults and a missing or broken busTimes array fail the whole
// parse. Anything wrong with an individual record, service or bus
// only drops that item: one stop's bad data shouldn't hide the rest.
func (p *Parser) ParseBusTimes(doc Document) (*model.LiveBusTimes, error) {
	now := p.now()

	if err := CheckForError(doc); err != nil {
		return nil, err
	}

	raw, found := doc["busTimes"]
	if !found {
		return nil, fmt.Errorf("%w: missing busTimes", ErrMalformedResponse)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil || records == nil {
		return nil, fmt.Errorf("%w: busTimes is not an array", ErrMalformedResponse)
	}

	stops := map[string]*stopAccumulator{}
	globalDisruption := false

	for i, buf := range records {
		record := busTimeJSON{}
		if err := json.Unmarshal(buf, &record); err != nil {
			log.Debug().Err(err).Int("record", i).Msg("Skipping undecodable bus times record")
			continue
		}

		// Every record carries the same global flag in
		// practice. Should they ever disagree, any one of them
		// reporting disruption is enough.
		globalDisruption = globalDisruption || bool(record.GlobalDisruption)

		stopCode := string(record.StopID)
		if stopCode == "" {
			log.Debug().Int("record", i).Msg("Skipping bus times record without stopId")
			continue
		}

		acc, found := stops[stopCode]
		if !found {
			acc = &stopAccumulator{services: []*model.LiveBusService{}}
			stops[stopCode] = acc
		}
		if acc.name == "" {
			acc.name = string(record.StopName)
		}
		acc.disrupted = acc.disrupted || bool(record.BusStopDisruption)

		service := parseBusService(&record, now)
		if service == nil {
			continue
		}
		acc.services = append(acc.services, service)
	}

	busStops := make(map[string]*model.LiveBusStop, len(stops))
	for stopCode, acc := range stops {
		sort.SliceStable(acc.services, func(i, j int) bool {
			return acc.services[i].Compare(acc.services[j]) < 0
		})

		stop, err := model.NewLiveBusStopBuilder().
			SetStopCode(stopCode).
			SetStopName(acc.name).
			SetServices(acc.services).
			SetDisrupted(acc.disrupted).
			Build()
		if err != nil {
			return nil, fmt.Errorf("%w: building stop %s: %w", ErrMalformedResponse, stopCode, err)
		}
		busStops[stopCode] = stop
	}

	times, err := model.NewLiveBusTimesBuilder().
		SetBusStops(busStops).
		SetReceiveTime(now).
		SetGlobalDisruption(globalDisruption).
		Build()
	if err != nil {
		return nil, fmt.Errorf("%w: building bus times: %w", ErrMalformedResponse, err)
	}

	return times, nil
}

// Builds the service described by a record, or returns nil if it has
// no usable departures or lacks a name.
func parseBusService(record *busTimeJSON, now time.Time) *model.LiveBusService {
	buses := make([]*model.LiveBus, 0, len(record.TimeDatas))
	for _, buf := range record.TimeDatas {
		bus := parseLiveBus(buf, now)
		if bus != nil {
			buses = append(buses, bus)
		}
	}

	if len(buses) == 0 {
		return nil
	}

	sort.SliceStable(buses, func(i, j int) bool {
		return buses[i].Compare(buses[j]) < 0
	})

	service, err := model.NewLiveBusServiceBuilder().
		SetServiceName(DisplayServiceName(string(record.MnemoService))).
		SetBuses(buses).
		SetOperator(string(record.OperatorID)).
		SetRoute(string(record.NameService)).
		SetDisrupted(bool(record.ServiceDisruption)).
		SetDiverted(bool(record.ServiceDiversion)).
		Build()
	if err != nil {
		log.Debug().Err(err).Str("stop", string(record.StopID)).Msg("Skipping service")
		return nil
	}

	return service
}

func parseLiveBus(buf json.RawMessage, now time.Time) *model.LiveBus {
	data := timeDataJSON{}
	if err := json.Unmarshal(buf, &data); err != nil {
		return nil
	}

	flags, ok := data.flags(now)
	if !ok {
		return nil
	}

	bus, err := model.NewLiveBusBuilder().
		SetDestination(string(data.NameDest)).
		SetDepartureTime(flags.departureTime).
		SetDepartureMinutes(flags.minutes).
		SetTerminus(string(data.Terminus)).
		SetJourneyID(string(data.JourneyID)).
		SetEstimatedTime(flags.estimated).
		SetDelayed(flags.delayed).
		SetDiverted(flags.diverted).
		SetIsTerminus(flags.terminus).
		SetPartRoute(flags.partRoute).
		Build()
	if err != nil {
		return nil
	}

	return bus
}
