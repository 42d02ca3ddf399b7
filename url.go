package livetimes

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"
)

const (
	DefaultBaseURL = "http://ws.mybustracker.co.uk/"

	// The API accepts up to 6 stops per bus times request.
	MaxStopCodes = 6
)

var (
	ErrInvalidStopCode  = errors.New("invalid stop code")
	ErrTooManyStopCodes = fmt.Errorf("more than %d stop codes", MaxStopCodes)
	ErrInvalidJourneyID = errors.New("invalid journey id")
	errMissingBaseURL   = errors.New("base URL not set")
)

// The API key is never sent as is. Instead, every request carries
// the MD5 of the key followed by the current UTC hour.
func apiKeyHash(apiKey string, now time.Time) string {
	sum := md5.Sum([]byte(apiKey + now.UTC().Format("2006010215")))
	return hex.EncodeToString(sum[:])
}

func validateStopCodes(stopCodes []string) error {
	if len(stopCodes) == 0 {
		return fmt.Errorf("%w: no stop codes", ErrInvalidStopCode)
	}
	if len(stopCodes) > MaxStopCodes {
		return ErrTooManyStopCodes
	}
	for _, code := range stopCodes {
		if err := validateStopCode(code); err != nil {
			return err
		}
	}
	return nil
}

// Sorted, without duplicates. Leaves the argument alone.
func canonicalStopCodes(stopCodes []string) []string {
	sorted := slices.Clone(stopCodes)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

func validateStopCode(code string) error {
	if code == "" {
		return fmt.Errorf("%w: empty", ErrInvalidStopCode)
	}
	for _, r := range code {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return fmt.Errorf("%w: '%s'", ErrInvalidStopCode, code)
		}
	}
	return nil
}

// A request URL, along with the key its response is cached
// under. The cache key leaves out the hourly key hash.
type apiRequest struct {
	url      string
	cacheKey string
}

func (m *Manager) apiRequest(function string, params url.Values, now time.Time) (apiRequest, error) {
	if m.BaseURL == "" {
		return apiRequest{}, errMissingBaseURL
	}

	base, err := url.Parse(m.BaseURL)
	if err != nil {
		return apiRequest{}, fmt.Errorf("parsing base URL: %w", err)
	}

	params.Set("module", "json")
	params.Set("function", function)
	base.RawQuery = params.Encode()
	cacheKey := base.String()

	params.Set("key", apiKeyHash(m.apiKey, now))
	base.RawQuery = params.Encode()

	return apiRequest{url: base.String(), cacheKey: cacheKey}, nil
}

func (m *Manager) busTimesRequest(stopCodes []string, now time.Time) (apiRequest, error) {
	params := url.Values{}
	for i, code := range stopCodes {
		params.Set("stopId"+strconv.Itoa(i+1), code)
	}
	if m.NumDepartures > 0 {
		params.Set("nb", strconv.Itoa(m.NumDepartures))
	}
	return m.apiRequest("getBusTimes", params, now)
}

func (m *Manager) journeyTimesRequest(stopCode string, journeyID string, now time.Time) (apiRequest, error) {
	params := url.Values{}
	params.Set("stopId", stopCode)
	params.Set("journeyId", journeyID)
	return m.apiRequest("getJourneyTimes", params, now)
}
