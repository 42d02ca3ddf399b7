// Package server exposes live times over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	gtfsproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	"mybus.dev/livetimes"
	"mybus.dev/livetimes/gtfsrt"
	"mybus.dev/livetimes/model"
	"mybus.dev/livetimes/parse"
)

// Consumer name recorded for stops requested without one.
const DefaultConsumer = "http"

// LiveTimes is what the server needs from a *livetimes.Manager.
type LiveTimes interface {
	LoadBusTimes(ctx context.Context, consumer string, stopCodes []string, when time.Time) (*model.LiveBusTimes, error)
	LoadJourneyTimes(ctx context.Context, stopCode string, journeyID string) (*model.Journey, error)
}

type Server struct {
	TimeNow func() time.Time

	live LiveTimes
}

func New(live LiveTimes) *Server {
	return &Server{
		TimeNow: time.Now,
		live:    live,
	}
}

func (s *Server) Routes() http.Handler {
	router := httprouter.New()
	router.GET("/v1/stops/:stopCodes/departures", s.departuresHandler)
	router.GET("/v1/stops/:stopCodes/journeys/:journeyID", s.journeyHandler)
	return logRequests(router)
}

func (s *Server) departuresHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	stopCodes := strings.Split(ps.ByName("stopCodes"), ",")

	consumer := r.URL.Query().Get("consumer")
	if consumer == "" {
		consumer = DefaultConsumer
	}

	now := s.TimeNow()
	times, err := s.live.LoadBusTimes(r.Context(), consumer, stopCodes, now)
	if err != nil {
		errorResponse(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "gtfsrt" {
		feed, err := gtfsrt.FromBusTimes(times, now)
		if err != nil {
			errorResponse(w, r, err)
			return
		}
		protoResponse(w, r, feed)
		return
	}

	jsonResponse(w, r, http.StatusOK, newBusTimesView(times))
}

func (s *Server) journeyHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	journey, err := s.live.LoadJourneyTimes(r.Context(), ps.ByName("stopCodes"), ps.ByName("journeyID"))
	if err != nil {
		errorResponse(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "gtfsrt" {
		feed, err := gtfsrt.FromJourney(journey, s.TimeNow())
		if err != nil {
			errorResponse(w, r, err)
			return
		}
		protoResponse(w, r, feed)
		return
	}

	jsonResponse(w, r, http.StatusOK, newJourneyView(journey))
}

// Maps an error to the status reported to clients. Anything the
// upstream API got wrong is a bad gateway, unless it said to come
// back later.
func statusForError(err error) int {
	switch {
	case errors.Is(err, livetimes.ErrInvalidStopCode),
		errors.Is(err, livetimes.ErrTooManyStopCodes),
		errors.Is(err, livetimes.ErrInvalidJourneyID):
		return http.StatusBadRequest
	case errors.Is(err, parse.ErrMaintenance),
		errors.Is(err, parse.ErrSystemOverloaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, parse.ErrLiveTimes):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		log.Warn().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("Request failed")
	}
	jsonResponse(w, r, status, errorView{Error: err.Error()})
}

func jsonResponse(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to encode response")
	}
}

func protoResponse(w http.ResponseWriter, r *http.Request, feed *gtfsproto.FeedMessage) {
	buf, err := gtfsrt.Marshal(feed)
	if err != nil {
		errorResponse(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to write response")
	}
}
