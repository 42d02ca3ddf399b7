package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mybus.dev/livetimes"
	"mybus.dev/livetimes/downloader"
	"mybus.dev/livetimes/gtfsrt"
	"mybus.dev/livetimes/model"
	"mybus.dev/livetimes/parse"
	"mybus.dev/livetimes/server"
	"mybus.dev/livetimes/testutil"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type stubLiveTimes struct {
	err       error
	consumer  string
	stopCodes []string
	journey   [2]string
}

func (s *stubLiveTimes) LoadBusTimes(ctx context.Context, consumer string, stopCodes []string, when time.Time) (*model.LiveBusTimes, error) {
	s.consumer = consumer
	s.stopCodes = stopCodes
	return nil, s.err
}

func (s *stubLiveTimes) LoadJourneyTimes(ctx context.Context, stopCode string, journeyID string) (*model.Journey, error) {
	s.journey = [2]string{stopCode, journeyID}
	return nil, s.err
}

func get(t *testing.T, handler http.Handler, path string) (*http.Response, []byte) {
	ts := httptest.NewServer(handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func TestErrorStatus(t *testing.T) {
	for _, tc := range []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: empty", livetimes.ErrInvalidStopCode), http.StatusBadRequest},
		{livetimes.ErrTooManyStopCodes, http.StatusBadRequest},
		{livetimes.ErrInvalidJourneyID, http.StatusBadRequest},
		{parse.ErrAuthentication, http.StatusBadGateway},
		{parse.ErrServer, http.StatusBadGateway},
		{parse.ErrUnknown, http.StatusBadGateway},
		{fmt.Errorf("%w: missing busTimes", parse.ErrMalformedResponse), http.StatusBadGateway},
		{fmt.Errorf("%w: timeout", parse.ErrIO), http.StatusBadGateway},
		{parse.ErrMaintenance, http.StatusServiceUnavailable},
		{parse.ErrSystemOverloaded, http.StatusServiceUnavailable},
		{fmt.Errorf("writing stop request: disk full"), http.StatusInternalServerError},
	} {
		t.Run(tc.err.Error(), func(t *testing.T) {
			live := &stubLiveTimes{err: tc.err}
			resp, body := get(t, server.New(live).Routes(), "/v1/stops/a/departures")
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			view := map[string]string{}
			require.NoError(t, json.Unmarshal(body, &view))
			assert.Equal(t, tc.err.Error(), view["error"])

			resp, _ = get(t, server.New(live).Routes(), "/v1/stops/a/journeys/1234")
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRequestParameters(t *testing.T) {
	live := &stubLiveTimes{err: parse.ErrIO}
	handler := server.New(live).Routes()

	get(t, handler, "/v1/stops/36232896,36232897/departures")
	assert.Equal(t, []string{"36232896", "36232897"}, live.stopCodes)
	assert.Equal(t, server.DefaultConsumer, live.consumer)

	get(t, handler, "/v1/stops/36232896/departures?consumer=kiosk")
	assert.Equal(t, []string{"36232896"}, live.stopCodes)
	assert.Equal(t, "kiosk", live.consumer)

	get(t, handler, "/v1/stops/36232896/journeys/5318")
	assert.Equal(t, [2]string{"36232896", "5318"}, live.journey)

	resp, _ := get(t, handler, "/v1/stops")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// Runs the server on top of a real manager and a mock API.
func newTestServer(t *testing.T) (*testutil.MockAPI, http.Handler) {
	api := testutil.NewMockAPI(t)
	clock := func() time.Time { return now }

	dl := downloader.NewMemoryDownloader()
	dl.TimeNow = clock

	m := livetimes.NewManager(testutil.BuildStorage(t, "memory"), "secret")
	m.BaseURL = api.URL()
	m.Downloader = dl
	m.Parser = &parse.Parser{TimeNow: clock}
	m.TimeNow = clock

	s := server.New(m)
	s.TimeNow = clock

	return api, s.Routes()
}

func TestDepartures(t *testing.T) {
	api, handler := newTestServer(t)
	api.Serve("getBusTimes", testutil.BusTimesJSON(t, testutil.BusTime{
		StopID:            "36232896",
		StopName:          "Princes Street",
		MnemoService:      "22",
		OperatorID:        "LB",
		BusStopDisruption: true,
		TimeDatas: []testutil.TimeData{
			{Minutes: 3, Reliability: "T", Type: "N", NameDest: "Leith", JourneyID: "1001"},
			{Minutes: 12, Reliability: "B", Type: "P", NameDest: "Ocean Terminal"},
		},
	}))

	resp, body := get(t, handler, "/v1/stops/36232896/departures")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	expected := fmt.Sprintf(`{
		"receive_time": "2024-03-01T12:00:00Z",
		"global_disruption": false,
		"stops": [{
			"stop_code": "36232896",
			"stop_name": "Princes Street",
			"disrupted": true,
			"services": [{
				"name": "22",
				"operator": "LB",
				"disrupted": false,
				"diverted": false,
				"buses": [{
					"destination": "Leith",
					"departure_time": %q,
					"departure_minutes": 3,
					"journey_id": "1001",
					"estimated": true,
					"delayed": false,
					"diverted": false,
					"is_terminus": false,
					"part_route": false
				}, {
					"destination": "Ocean Terminal",
					"departure_time": %q,
					"departure_minutes": 12,
					"estimated": false,
					"delayed": true,
					"diverted": false,
					"is_terminus": false,
					"part_route": true
				}]
			}]
		}]
	}`,
		now.Add(3*time.Minute).Format(time.RFC3339),
		now.Add(12*time.Minute).Format(time.RFC3339),
	)
	assert.JSONEq(t, expected, string(body))
}

func TestDeparturesGTFSRealtime(t *testing.T) {
	api, handler := newTestServer(t)
	api.Serve("getBusTimes", testutil.BusTimesJSON(t, testutil.BusTime{
		StopID:       "36232896",
		MnemoService: "22",
		TimeDatas: []testutil.TimeData{
			{Minutes: 3, Reliability: "T", Type: "N", NameDest: "Leith", JourneyID: "1001"},
		},
	}))

	resp, body := get(t, handler, "/v1/stops/36232896/departures?format=gtfsrt")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-protobuf", resp.Header.Get("Content-Type"))

	feed, err := gtfsrt.Unmarshal(body)
	require.NoError(t, err)
	require.Equal(t, 1, len(feed.GetEntity()))
	assert.Equal(t, "1001", feed.GetEntity()[0].GetId())
}

func TestJourney(t *testing.T) {
	api, handler := newTestServer(t)
	api.Serve("getJourneyTimes", testutil.JourneyTimesJSON(t, testutil.JourneyTime{
		JourneyID:    "5318",
		MnemoService: "50",
		Terminus:     "36290001",
		NameDest:     "Airport",
		JourneyTimeDatas: []testutil.TimeData{
			{StopID: "36232896", StopName: "Princes Street", Order: testutil.IntPtr(1), Minutes: 2, Reliability: "T", Type: "N"},
		},
	}))

	resp, body := get(t, handler, "/v1/stops/36232896/journeys/5318")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	expected := fmt.Sprintf(`{
		"journey_id": "5318",
		"service_name": "TRAM",
		"destination": "Airport",
		"terminus": "36290001",
		"global_disruption": false,
		"service_disruption": false,
		"service_diversion": false,
		"receive_time": "2024-03-01T12:00:00Z",
		"departures": [{
			"stop_code": "36232896",
			"stop_name": "Princes Street",
			"departure_time": %q,
			"departure_minutes": 2,
			"order": 1,
			"estimated": true,
			"delayed": false,
			"diverted": false,
			"is_terminus": false,
			"part_route": false,
			"bus_stop_disruption": false
		}]
	}`, now.Add(2*time.Minute).Format(time.RFC3339))
	assert.JSONEq(t, expected, string(body))

	resp, body = get(t, handler, "/v1/stops/36232896/journeys/5318?format=gtfsrt")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	feed, err := gtfsrt.Unmarshal(body)
	require.NoError(t, err)
	require.Equal(t, 1, len(feed.GetEntity()))
	assert.Equal(t, "TRAM", feed.GetEntity()[0].GetTripUpdate().GetTrip().GetRouteId())
}

func TestUpstreamFault(t *testing.T) {
	api, handler := newTestServer(t)
	api.Serve("getBusTimes", testutil.FaultJSON(t, "SYSTEM_MAINTENANCE"))

	resp, _ := get(t, handler, "/v1/stops/36232896/departures")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	// Nothing served for journeys, the mock API 404s.
	resp, _ = get(t, handler, "/v1/stops/36232896/journeys/5318")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp, _ = get(t, handler, "/v1/stops/a,,b/departures")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
