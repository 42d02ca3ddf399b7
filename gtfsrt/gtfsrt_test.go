package gtfsrt_test

import (
	"testing"
	"time"

	gtfsproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	proto "google.golang.org/protobuf/proto"

	"mybus.dev/livetimes/gtfsrt"
	"mybus.dev/livetimes/model"
	"mybus.dev/livetimes/parse"
	"mybus.dev/livetimes/testutil"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func parser() *parse.Parser {
	return &parse.Parser{TimeNow: func() time.Time { return now }}
}

func busTimes(t *testing.T, records ...testutil.BusTime) *model.LiveBusTimes {
	doc, err := parse.DecodeDocument(testutil.BusTimesJSON(t, records...))
	require.NoError(t, err)
	times, err := parser().ParseBusTimes(doc)
	require.NoError(t, err)
	return times
}

func departure(minutes int, journeyID string) testutil.TimeData {
	return testutil.TimeData{
		Minutes:     minutes,
		Reliability: "F",
		Type:        "N",
		NameDest:    "Leith",
		JourneyID:   journeyID,
	}
}

type stopTime struct {
	StopID string
	Time   int64
}

func stopTimes(entity *gtfsproto.FeedEntity) []stopTime {
	out := []stopTime{}
	for _, stu := range entity.GetTripUpdate().GetStopTimeUpdate() {
		out = append(out, stopTime{stu.GetStopId(), stu.GetDeparture().GetTime()})
	}
	return out
}

func TestFromBusTimesGroupsByJourney(t *testing.T) {
	times := busTimes(t,
		testutil.BusTime{
			StopID:       "b",
			MnemoService: "22",
			TimeDatas:    []testutil.TimeData{departure(8, "1001"), departure(20, "1002")},
		},
		testutil.BusTime{
			StopID:       "a",
			MnemoService: "22",
			TimeDatas:    []testutil.TimeData{departure(3, "1001")},
		},
		testutil.BusTime{
			StopID:       "a",
			MnemoService: "X1",
			TimeDatas:    []testutil.TimeData{departure(5, ""), departure(15, "")},
		},
	)

	feed, err := gtfsrt.FromBusTimes(times, now)
	require.NoError(t, err)

	assert.Equal(t, "2.0", feed.GetHeader().GetGtfsRealtimeVersion())
	assert.Equal(t, gtfsproto.FeedHeader_FULL_DATASET, feed.GetHeader().GetIncrementality())
	assert.Equal(t, uint64(now.Unix()), feed.GetHeader().GetTimestamp())

	ids := []string{}
	for _, e := range feed.GetEntity() {
		ids = append(ids, e.GetId())
	}
	assert.Equal(t, []string{"1001", "a:X1:0", "a:X1:1", "1002"}, ids)

	// Journey 1001 calls at both stops, in departure order.
	journey := feed.GetEntity()[0]
	assert.Equal(t, "1001", journey.GetTripUpdate().GetTrip().GetTripId())
	assert.Equal(t, "22", journey.GetTripUpdate().GetTrip().GetRouteId())
	assert.Equal(t, []stopTime{
		{"a", now.Add(3 * time.Minute).Unix()},
		{"b", now.Add(8 * time.Minute).Unix()},
	}, stopTimes(journey))

	assert.Equal(t, "X1", feed.GetEntity()[1].GetTripUpdate().GetTrip().GetRouteId())
	assert.Equal(t, []stopTime{
		{"a", now.Add(15 * time.Minute).Unix()},
	}, stopTimes(feed.GetEntity()[2]))
}

func TestFromBusTimesEmpty(t *testing.T) {
	feed, err := gtfsrt.FromBusTimes(busTimes(t), now)
	require.NoError(t, err)
	assert.Equal(t, 0, len(feed.GetEntity()))

	_, err = gtfsrt.FromBusTimes(nil, now)
	assert.Error(t, err)
}

func TestFromJourney(t *testing.T) {
	doc, err := parse.DecodeDocument(testutil.JourneyTimesJSON(t, testutil.JourneyTime{
		JourneyID:    "1001",
		MnemoService: "T50",
		Terminus:     "z",
		JourneyTimeDatas: []testutil.TimeData{
			{StopID: "b", Order: testutil.IntPtr(2), Minutes: 6, Reliability: "F", Type: "N"},
			{StopID: "a", Order: testutil.IntPtr(1), Minutes: 2, Reliability: "F", Type: "N"},
		},
	}))
	require.NoError(t, err)
	journey, err := parser().ParseJourneyTimes(doc)
	require.NoError(t, err)

	feed, err := gtfsrt.FromJourney(journey, now)
	require.NoError(t, err)

	require.Equal(t, 1, len(feed.GetEntity()))
	update := feed.GetEntity()[0].GetTripUpdate()
	assert.Equal(t, "1001", update.GetTrip().GetTripId())
	assert.Equal(t, "TRAM", update.GetTrip().GetRouteId())
	assert.Equal(t, []stopTime{
		{"a", now.Add(2 * time.Minute).Unix()},
		{"b", now.Add(6 * time.Minute).Unix()},
	}, stopTimes(feed.GetEntity()[0]))
	assert.Equal(t, uint32(1), update.GetStopTimeUpdate()[0].GetStopSequence())
	assert.Equal(t, uint32(2), update.GetStopTimeUpdate()[1].GetStopSequence())

	_, err = gtfsrt.FromJourney(nil, now)
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	times := busTimes(t, testutil.BusTime{
		StopID:       "a",
		MnemoService: "22",
		TimeDatas:    []testutil.TimeData{departure(3, "1001")},
	})
	feed, err := gtfsrt.FromBusTimes(times, now)
	require.NoError(t, err)

	buf, err := gtfsrt.Marshal(feed)
	require.NoError(t, err)

	parsed, err := gtfsrt.Unmarshal(buf)
	require.NoError(t, err)
	assert.True(t, proto.Equal(feed, parsed))
}

func TestUnmarshalRejectsUnsupportedFeeds(t *testing.T) {
	_, err := gtfsrt.Unmarshal([]byte("not a feed"))
	assert.Error(t, err)

	buf, err := proto.Marshal(&gtfsproto.FeedMessage{
		Header: &gtfsproto.FeedHeader{
			GtfsRealtimeVersion: proto.String("3.0"),
			Incrementality:      gtfsproto.FeedHeader_FULL_DATASET.Enum(),
		},
	})
	require.NoError(t, err)
	_, err = gtfsrt.Unmarshal(buf)
	assert.Error(t, err)

	buf, err = proto.Marshal(&gtfsproto.FeedMessage{
		Header: &gtfsproto.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfsproto.FeedHeader_DIFFERENTIAL.Enum(),
		},
	})
	require.NoError(t, err)
	_, err = gtfsrt.Unmarshal(buf)
	assert.Error(t, err)
}
