package model

// A service (route) calling at a stop, with its upcoming buses.
type LiveBusService struct {
	serviceName string
	buses       []*LiveBus
	operator    string
	route       string
	disrupted   bool
	diverted    bool
}

func (s *LiveBusService) ServiceName() string { return s.serviceName }
func (s *LiveBusService) Operator() string { return s.operator }
func (s *LiveBusService) Route() string { return s.route }
func (s *LiveBusService) IsDisrupted() bool { return s.disrupted }
func (s *LiveBusService) IsDiverted() bool { return s.diverted }

// Buses in the order they were given to the builder.
func (s *LiveBusService) Buses() []*LiveBus {
	return append([]*LiveBus{}, s.buses...)
}

// Orders services by name, alphanumerically. A nil other sorts
// after s.
func (s *LiveBusService) Compare(other *LiveBusService) int {
	if other == nil {
		return -1
	}
	return CompareAlphanumeric(s.serviceName, other.serviceName)
}

type LiveBusServiceBuilder struct {
	service LiveBusService
	buses   []*LiveBus
}

func NewLiveBusServiceBuilder() *LiveBusServiceBuilder {
	return &LiveBusServiceBuilder{}
}

func (b *LiveBusServiceBuilder) SetServiceName(name string) *LiveBusServiceBuilder {
	b.service.serviceName = name
	return b
}

func (b *LiveBusServiceBuilder) SetBuses(buses []*LiveBus) *LiveBusServiceBuilder {
	b.buses = buses
	return b
}

func (b *LiveBusServiceBuilder) SetOperator(operator string) *LiveBusServiceBuilder {
	b.service.operator = operator
	return b
}

func (b *LiveBusServiceBuilder) SetRoute(route string) *LiveBusServiceBuilder {
	b.service.route = route
	return b
}

func (b *LiveBusServiceBuilder) SetDisrupted(disrupted bool) *LiveBusServiceBuilder {
	b.service.disrupted = disrupted
	return b
}

func (b *LiveBusServiceBuilder) SetDiverted(diverted bool) *LiveBusServiceBuilder {
	b.service.diverted = diverted
	return b
}

func (b *LiveBusServiceBuilder) Build() (*LiveBusService, error) {
	if b.service.serviceName == "" {
		return nil, requiredField("serviceName")
	}
	if b.buses == nil {
		return nil, requiredField("buses")
	}

	service := b.service
	service.buses = append([]*LiveBus{}, b.buses...)
	return &service, nil
}
