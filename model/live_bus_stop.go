package model

// A bus stop and the services with live departures from it.
type LiveBusStop struct {
	stopCode  string
	stopName  string
	services  []*LiveBusService
	disrupted bool
}

func (s *LiveBusStop) StopCode() string { return s.stopCode }
func (s *LiveBusStop) StopName() string { return s.stopName }
func (s *LiveBusStop) IsDisrupted() bool { return s.disrupted }

func (s *LiveBusStop) Services() []*LiveBusService {
	return append([]*LiveBusService{}, s.services...)
}

type LiveBusStopBuilder struct {
	stop     LiveBusStop
	services []*LiveBusService
}

func NewLiveBusStopBuilder() *LiveBusStopBuilder {
	return &LiveBusStopBuilder{}
}

func (b *LiveBusStopBuilder) SetStopCode(stopCode string) *LiveBusStopBuilder {
	b.stop.stopCode = stopCode
	return b
}

func (b *LiveBusStopBuilder) SetStopName(stopName string) *LiveBusStopBuilder {
	b.stop.stopName = stopName
	return b
}

func (b *LiveBusStopBuilder) SetServices(services []*LiveBusService) *LiveBusStopBuilder {
	b.services = services
	return b
}

func (b *LiveBusStopBuilder) SetDisrupted(disrupted bool) *LiveBusStopBuilder {
	b.stop.disrupted = disrupted
	return b
}

func (b *LiveBusStopBuilder) Build() (*LiveBusStop, error) {
	if b.stop.stopCode == "" {
		return nil, requiredField("stopCode")
	}
	if b.services == nil {
		return nil, requiredField("services")
	}

	stop := b.stop
	stop.services = append([]*LiveBusService{}, b.services...)
	return &stop, nil
}
