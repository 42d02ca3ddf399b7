package testutil

// Helpers and configuration for tests.

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"mybus.dev/livetimes/storage"
)

// Connection string for the postgres tests. They are skipped unless
// set.
const PostgresEnv = "MYBUS_TEST_POSTGRES"

func BuildStorage(t testing.TB, backend string) storage.Storage {
	var s storage.Storage
	var err error
	switch backend {
	case "memory":
		s = storage.NewMemoryStorage()
	case "sqlite":
		s, err = storage.NewSQLiteStorage()
		require.NoError(t, err)
	case "postgres":
		connStr := os.Getenv(PostgresEnv)
		if connStr == "" {
			t.Skipf("%s not set", PostgresEnv)
		}
		s, err = storage.NewPSQLStorage(connStr, true)
		require.NoError(t, err)
	}
	require.NotNil(t, s, "unknown backend %q", backend)

	t.Cleanup(func() { s.Close() })

	return s
}

// A departure, as found in timeDatas and journeyTimeDatas.
type TimeData struct {
	StopID            string `json:"stopId,omitempty"`
	StopName          string `json:"stopName,omitempty"`
	BusStopDisruption bool   `json:"busStopDisruption,omitempty"`
	Order             *int   `json:"order,omitempty"`
	Minutes           int    `json:"minutes"`
	Reliability       string `json:"reliability"`
	Type              string `json:"type"`
	NameDest          string `json:"nameDest,omitempty"`
	Terminus          string `json:"terminus,omitempty"`
	JourneyID         string `json:"journeyId,omitempty"`
}

// A record of a getBusTimes response.
type BusTime struct {
	StopID            string     `json:"stopId"`
	StopName          string     `json:"stopName,omitempty"`
	MnemoService      string     `json:"mnemoService"`
	NameService       string     `json:"nameService,omitempty"`
	OperatorID        string     `json:"operatorId,omitempty"`
	ServiceDisruption bool       `json:"serviceDisruption,omitempty"`
	ServiceDiversion  bool       `json:"serviceDiversion,omitempty"`
	BusStopDisruption bool       `json:"busStopDisruption,omitempty"`
	GlobalDisruption  bool       `json:"globalDisruption,omitempty"`
	TimeDatas         []TimeData `json:"timeDatas"`
}

// A record of a getJourneyTimes response.
type JourneyTime struct {
	JourneyID         string     `json:"journeyId"`
	MnemoService      string     `json:"mnemoService"`
	Terminus          string     `json:"terminus"`
	OperatorID        string     `json:"operatorId,omitempty"`
	NameService       string     `json:"nameService,omitempty"`
	NameDest          string     `json:"nameDest,omitempty"`
	GlobalDisruption  bool       `json:"globalDisruption,omitempty"`
	ServiceDisruption bool       `json:"serviceDisruption,omitempty"`
	ServiceDiversion  bool       `json:"serviceDiversion,omitempty"`
	JourneyTimeDatas  []TimeData `json:"journeyTimeDatas"`
}

func BusTimesJSON(t testing.TB, records ...BusTime) []byte {
	if records == nil {
		records = []BusTime{}
	}
	buf, err := json.Marshal(map[string]interface{}{"busTimes": records})
	require.NoError(t, err)
	return buf
}

func JourneyTimesJSON(t testing.TB, records ...JourneyTime) []byte {
	if records == nil {
		records = []JourneyTime{}
	}
	buf, err := json.Marshal(map[string]interface{}{"journeyTimes": records})
	require.NoError(t, err)
	return buf
}

func FaultJSON(t testing.TB, code string) []byte {
	buf, err := json.Marshal(map[string]string{"faultcode": code})
	require.NoError(t, err)
	return buf
}

// Stands in for the Bus Tracker API. Responses are looked up by the
// function query parameter.
type MockAPI struct {
	Server *httptest.Server

	mutex     sync.Mutex
	responses map[string][]byte
	requests  []url.Values
}

func NewMockAPI(t testing.TB) *MockAPI {
	m := &MockAPI{
		responses: map[string][]byte{},
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handler))
	t.Cleanup(m.Server.Close)
	return m
}

func (m *MockAPI) handler(w http.ResponseWriter, r *http.Request) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	query := r.URL.Query()
	m.requests = append(m.requests, query)

	body, found := m.responses[query.Get("function")]
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// Sets the body served for an API function, e.g. getBusTimes.
func (m *MockAPI) Serve(function string, body []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.responses[function] = body
}

// Query parameters of all requests received so far.
func (m *MockAPI) Requests() []url.Values {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]url.Values{}, m.requests...)
}

func (m *MockAPI) URL() string {
	return m.Server.URL + "/"
}

func IntPtr(i int) *int {
	return &i
}
