package storage

import (
	"sort"
	"sync"
	"time"
)

// In memory implementation of Storage below

type memoryRequestKey struct {
	Request  string
	Consumer string
}

// Requests are keyed by their joined stop codes.
type MemoryStorage struct {
	mutex       sync.Mutex
	RefreshedAt map[string]time.Time
	Consumers   map[memoryRequestKey]StopConsumer
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		RefreshedAt: map[string]time.Time{},
		Consumers:   map[memoryRequestKey]StopConsumer{},
	}
}

func (s *MemoryStorage) ListStopRequests(stopCode string) ([]StopRequest, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	requests := map[string]*StopRequest{}
	for key, refreshedAt := range s.RefreshedAt {
		requests[key] = &StopRequest{
			StopCodes:   splitRequestKey(key),
			RefreshedAt: refreshedAt,
		}
	}

	for key, con := range s.Consumers {
		if req, found := requests[key.Request]; found {
			req.Consumers = append(req.Consumers, con)
		}
	}

	keys := make([]string, 0, len(requests))
	for key := range requests {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	reqs := []StopRequest{}
	for _, key := range keys {
		req := requests[key]
		sort.Slice(req.Consumers, func(i, j int) bool {
			return req.Consumers[i].Name < req.Consumers[j].Name
		})
		reqs = append(reqs, *req)
	}

	return filterStopRequests(reqs, stopCode), nil
}

func (s *MemoryStorage) WriteStopRequest(req StopRequest) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	reqKey := requestKey(req.StopCodes)

	if _, found := s.RefreshedAt[reqKey]; !found || !req.RefreshedAt.IsZero() {
		s.RefreshedAt[reqKey] = req.RefreshedAt
	}

	for _, con := range req.Consumers {
		key := memoryRequestKey{reqKey, con.Name}
		if existing, found := s.Consumers[key]; found {
			// Only the first write sets created_at.
			con.CreatedAt = existing.CreatedAt
		}
		s.Consumers[key] = con
	}

	return nil
}

func (s *MemoryStorage) DeleteStopRequest(stopCodes []string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	reqKey := requestKey(stopCodes)
	delete(s.RefreshedAt, reqKey)
	for key := range s.Consumers {
		if key.Request == reqKey {
			delete(s.Consumers, key)
		}
	}

	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
