package livetimes

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyHash(t *testing.T) {
	t1 := time.Date(2024, 3, 1, 12, 34, 56, 0, time.UTC)
	h1 := apiKeyHash("secret", t1)
	assert.Len(t, h1, 32)

	// Same hour, same hash. Regardless of time zone.
	edinburgh := time.FixedZone("BST", 3600)
	assert.Equal(t, h1, apiKeyHash("secret", t1.Add(20*time.Minute)))
	assert.Equal(t, h1, apiKeyHash("secret", t1.In(edinburgh)))

	assert.NotEqual(t, h1, apiKeyHash("secret", t1.Add(time.Hour)))
	assert.NotEqual(t, h1, apiKeyHash("other", t1))
}

func TestBusTimesRequest(t *testing.T) {
	m := NewManager(nil, "secret")
	m.BaseURL = "http://example.com/api/"
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	req, err := m.busTimesRequest([]string{"a", "b"}, now)
	require.NoError(t, err)

	u, err := url.Parse(req.url)
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Host)
	assert.Equal(t, "/api/", u.Path)
	assert.Equal(t, url.Values{
		"module":   {"json"},
		"function": {"getBusTimes"},
		"stopId1":  {"a"},
		"stopId2":  {"b"},
		"nb":       {"4"},
		"key":      {apiKeyHash("secret", now)},
	}, u.Query())

	// Cache key is the URL sans key.
	assert.Equal(t, "http://example.com/api/?function=getBusTimes&module=json&nb=4&stopId1=a&stopId2=b", req.cacheKey)

	later, err := m.busTimesRequest([]string{"a", "b"}, now.Add(time.Hour))
	require.NoError(t, err)
	assert.NotEqual(t, req.url, later.url)
	assert.Equal(t, req.cacheKey, later.cacheKey)

	// No departure count if not configured.
	m.NumDepartures = 0
	req, err = m.busTimesRequest([]string{"a"}, now)
	require.NoError(t, err)
	assert.NotContains(t, req.cacheKey, "nb=")
}

func TestJourneyTimesRequest(t *testing.T) {
	m := NewManager(nil, "secret")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	req, err := m.journeyTimesRequest("36232896", "5318", now)
	require.NoError(t, err)
	assert.Equal(t, "http://ws.mybustracker.co.uk/?function=getJourneyTimes&journeyId=5318&module=json&stopId=36232896", req.cacheKey)

	m.BaseURL = ""
	_, err = m.journeyTimesRequest("36232896", "5318", now)
	assert.Error(t, err)
}

func TestValidateStopCodes(t *testing.T) {
	for _, tc := range []struct {
		stopCodes []string
		expected  error
	}{
		{[]string{"36232896"}, nil},
		{[]string{"a", "B", "3"}, nil},
		{[]string{"1", "2", "3", "4", "5", "6"}, nil},
		{nil, ErrInvalidStopCode},
		{[]string{""}, ErrInvalidStopCode},
		{[]string{"a", "b c"}, ErrInvalidStopCode},
		{[]string{"å"}, ErrInvalidStopCode},
		{[]string{"1", "2", "3", "4", "5", "6", "7"}, ErrTooManyStopCodes},
	} {
		err := validateStopCodes(tc.stopCodes)
		if tc.expected == nil {
			assert.NoError(t, err, "%v", tc.stopCodes)
		} else {
			assert.ErrorIs(t, err, tc.expected, "%v", tc.stopCodes)
		}
	}
}

func TestCanonicalStopCodes(t *testing.T) {
	codes := []string{"b", "a", "b", "C"}
	assert.Equal(t, []string{"C", "a", "b"}, canonicalStopCodes(codes))
	assert.Equal(t, []string{"b", "a", "b", "C"}, codes)
}
