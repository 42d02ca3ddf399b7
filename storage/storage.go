package storage

import (
	"slices"
	"strings"
	"time"
)

// Keeps track of which stops are being watched, and by whom. Live
// times themselves are never stored.
type Storage interface {
	// Retrieves all stop requests that include the given stop
	// code. If the stop code is blank, all requests are returned.
	ListStopRequests(stopCode string) ([]StopRequest, error)

	// Writes a StopRequest record. If a record with the same stop
	// codes exists, it is updated, except that a zero RefreshedAt
	// never overwrites an existing one. All consumers included in
	// the request will be created/updated. Missing consumers will
	// _not_ be removed.
	WriteStopRequest(req StopRequest) error

	// Deletes the request for exactly these stop codes, along
	// with its consumers. Deleting a missing request is not an
	// error.
	DeleteStopRequest(stopCodes []string) error

	Close() error
}

// A request for live times at a set of stops. Requests are
// identified by their stop codes, in order, so the same set asked
// for in a different order is a different request. The same request
// can be made by multiple consumers.
type StopRequest struct {
	StopCodes   []string
	RefreshedAt time.Time
	Consumers   []StopConsumer
}

type StopConsumer struct {
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stop codes are alphanumeric, so a comma separated list makes an
// unambiguous key.
func requestKey(stopCodes []string) string {
	return strings.Join(stopCodes, ",")
}

func splitRequestKey(key string) []string {
	return strings.Split(key, ",")
}

// Keeps the requests including stopCode, or all of them if blank.
func filterStopRequests(reqs []StopRequest, stopCode string) []StopRequest {
	if stopCode == "" {
		return reqs
	}
	filtered := []StopRequest{}
	for _, req := range reqs {
		if slices.Contains(req.StopCodes, stopCode) {
			filtered = append(filtered, req)
		}
	}
	return filtered
}
