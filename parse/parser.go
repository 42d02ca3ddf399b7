package parse

import (
	"time"
)

// Reliability codes of a departure.
const (
	reliabilityEstimated = 'T'
	reliabilityDelayed   = 'B'
	reliabilityDiverted  = 'V'
)

// Type codes of a departure.
const (
	typeTerminus  = 'T'
	typePartRoute = 'P'
)

// Services shown to the public under another name.
var displayNames = map[string]string{
	"50":  "TRAM",
	"T50": "TRAM",
}

// Returns the name a service is displayed as.
func DisplayServiceName(name string) string {
	if display, found := displayNames[name]; found {
		return display
	}
	return name
}

// Parses live times responses into model values. The zero value is
// ready to use.
type Parser struct {
	// Clock used for receive times and to turn minutes into
	// departure times. Defaults to time.Now.
	TimeNow func() time.Time
}

func NewParser() *Parser {
	return &Parser{TimeNow: time.Now}
}

var defaultParser = NewParser()

func (p *Parser) now() time.Time {
	if p == nil || p.TimeNow == nil {
		return time.Now()
	}
	return p.TimeNow()
}

// Fields shared by everything describing a bus leaving a stop.
type departureFields struct {
	Reliability optString `json:"reliability"`
	Type        optString `json:"type"`
	Minutes     *int      `json:"minutes"`
}

// Classification of a departure derived from its reliability and type
// codes. Each group of flags has at most one set.
type departureFlags struct {
	departureTime time.Time
	minutes       int
	estimated     bool
	delayed       bool
	diverted      bool
	terminus      bool
	partRoute     bool
}

func (f *departureFields) flags(now time.Time) (departureFlags, bool) {
	if f.Reliability == "" || f.Type == "" || f.Minutes == nil {
		return departureFlags{}, false
	}

	flags := departureFlags{
		departureTime: now.Add(time.Duration(*f.Minutes) * time.Minute),
		minutes:       *f.Minutes,
	}

	switch f.Reliability[0] {
	case reliabilityEstimated:
		flags.estimated = true
	case reliabilityDelayed:
		flags.delayed = true
	case reliabilityDiverted:
		flags.diverted = true
	}

	switch f.Type[0] {
	case typeTerminus:
		flags.terminus = true
	case typePartRoute:
		flags.partRoute = true
	}

	return flags, true
}
