package parse

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"mybus.dev/livetimes/model"
)

type journeyTimeJSON struct {
	JourneyID         optString         `json:"journeyId"`
	MnemoService      optString         `json:"mnemoService"`
	Terminus          optString         `json:"terminus"`
	OperatorID        optString         `json:"operatorId"`
	NameService       optString         `json:"nameService"`
	NameDest          optString         `json:"nameDest"`
	GlobalDisruption  optBool           `json:"globalDisruption"`
	ServiceDisruption optBool           `json:"serviceDisruption"`
	ServiceDiversion  optBool           `json:"serviceDiversion"`
	JourneyTimeDatas  []json.RawMessage `json:"journeyTimeDatas"`
}

type journeyTimeDataJSON struct {
	departureFields
	StopID            optString `json:"stopId"`
	StopName          optString `json:"stopName"`
	BusStopDisruption optBool   `json:"busStopDisruption"`
	Order             *int      `json:"order"`
}

// Parses a journey times response using the default parser.
func ParseJourneyTimes(doc Document) (*model.Journey, error) {
	return defaultParser.ParseJourneyTimes(doc)
}

// Parses a journey times response. The journey of interest is the
// first element of journeyTimes, and it must parse: unlike bus times
// there's nothing else to show if it doesn't. Individual departures
// that don't parse are still dropped.
func (p *Parser) ParseJourneyTimes(doc Document) (*model.Journey, error) {
	now := p.now()

	if err := CheckForError(doc); err != nil {
		return nil, err
	}

	raw, found := doc["journeyTimes"]
	if !found {
		return nil, fmt.Errorf("%w: missing journeyTimes", ErrMalformedResponse)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: journeyTimes is not an array", ErrMalformedResponse)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: journeyTimes is empty", ErrMalformedResponse)
	}

	journey, err := parseJourney(records[0], now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return journey, nil
}

func parseJourney(buf json.RawMessage, now time.Time) (*model.Journey, error) {
	record := journeyTimeJSON{}
	if err := json.Unmarshal(buf, &record); err != nil {
		return nil, errors.Wrap(err, "decoding journey")
	}

	// Checked up front so the error names the response field.
	for _, required := range []struct {
		field string
		value optString
	}{
		{"journeyId", record.JourneyID},
		{"mnemoService", record.MnemoService},
		{"terminus", record.Terminus},
	} {
		if required.value == "" {
			return nil, errors.Errorf("journey has no %s", required.field)
		}
	}

	departures := make([]*model.JourneyDeparture, 0, len(record.JourneyTimeDatas))
	for i, data := range record.JourneyTimeDatas {
		departure := parseJourneyDeparture(data, now)
		if departure == nil {
			log.Debug().Str("journey", string(record.JourneyID)).Int("departure", i).Msg("Skipping journey departure")
			continue
		}
		departures = append(departures, departure)
	}

	sort.SliceStable(departures, func(i, j int) bool {
		return departures[i].Compare(departures[j]) < 0
	})

	journey, err := model.NewJourneyBuilder().
		SetJourneyID(string(record.JourneyID)).
		SetServiceName(DisplayServiceName(string(record.MnemoService))).
		SetDepartures(departures).
		SetOperator(string(record.OperatorID)).
		SetRoute(string(record.NameService)).
		SetDestination(string(record.NameDest)).
		SetTerminus(string(record.Terminus)).
		SetGlobalDisruption(bool(record.GlobalDisruption)).
		SetServiceDisruption(bool(record.ServiceDisruption)).
		SetServiceDiversion(bool(record.ServiceDiversion)).
		SetReceiveTime(now).
		Build()
	if err != nil {
		return nil, errors.Wrap(err, "building journey")
	}

	return journey, nil
}

func parseJourneyDeparture(buf json.RawMessage, now time.Time) *model.JourneyDeparture {
	data := journeyTimeDataJSON{}
	if err := json.Unmarshal(buf, &data); err != nil {
		return nil
	}

	flags, ok := data.flags(now)
	if !ok {
		return nil
	}

	order := 0
	if data.Order != nil {
		order = *data.Order
	}

	departure, err := model.NewJourneyDepartureBuilder().
		SetStopCode(string(data.StopID)).
		SetStopName(string(data.StopName)).
		SetDepartureTime(flags.departureTime).
		SetDepartureMinutes(flags.minutes).
		SetOrder(order).
		SetEstimatedTime(flags.estimated).
		SetDelayed(flags.delayed).
		SetDiverted(flags.diverted).
		SetIsTerminus(flags.terminus).
		SetPartRoute(flags.partRoute).
		SetBusStopDisruption(bool(data.BusStopDisruption)).
		Build()
	if err != nil {
		return nil
	}

	return departure
}
