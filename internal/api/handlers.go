package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/owens3364/coe332midterm/internal/metrics"
	"github.com/owens3364/coe332midterm/internal/oem"
	"github.com/owens3364/coe332midterm/internal/transform"
)

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	ds, err := s.store.Current(r.Context())
	if err != nil {
		s.writeDataError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": ds.Comments})
}

func (s *Server) handleHeader(w http.ResponseWriter, r *http.Request) {
	ds, err := s.store.Current(r.Context())
	if err != nil {
		s.writeDataError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"header": ds.Header})
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	ds, err := s.store.Current(r.Context())
	if err != nil {
		s.writeDataError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"metadata": ds.Metadata})
}

// handleEpochs serves a contiguous slice of the epoch list. Optional limit
// and offset query parameters must be non-negative integers; limit defaults
// to the whole set, offset to zero.
func (s *Server) handleEpochs(w http.ResponseWriter, r *http.Request) {
	offset := 0
	limit := -1

	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		offset = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	ds, err := s.store.Current(r.Context())
	if err != nil {
		s.writeDataError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": ds.Slice(offset, limit)})
}

// resolveEpoch locates an epoch by the path token: a non-negative integer is
// a positional index, anything else must parse in the dataset's timestamp
// format for an exact match. ok=false with a nil err means a well-formed
// token that matched nothing; a non-nil err means a malformed token.
func resolveEpoch(ds *oem.Dataset, token string) (oem.Epoch, bool, error) {
	if n, convErr := strconv.Atoi(token); convErr == nil {
		if n < 0 {
			return oem.Epoch{}, false, errBadEpochToken
		}
		e, ok := ds.At(n)
		return e, ok, nil
	}

	ts, parseErr := time.Parse(oem.TimestampLayout, token)
	if parseErr != nil {
		return oem.Epoch{}, false, errBadEpochToken
	}
	e, ok := ds.ByTimestamp(ts.UTC())
	return e, ok, nil
}

var errBadEpochToken = &badEpochTokenError{}

type badEpochTokenError struct{}

func (*badEpochTokenError) Error() string {
	return "epoch must be a non-negative index or a timestamp like 2024-045T12:00:00.000Z"
}

func (s *Server) handleEpoch(w http.ResponseWriter, r *http.Request) {
	ds, err := s.store.Current(r.Context())
	if err != nil {
		s.writeDataError(w, err)
		return
	}

	e, ok, err := resolveEpoch(ds, r.PathValue("epoch"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"epoch": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"epoch": e})
}

func (s *Server) handleEpochSpeed(w http.ResponseWriter, r *http.Request) {
	ds, err := s.store.Current(r.Context())
	if err != nil {
		s.writeDataError(w, err)
		return
	}

	e, ok, err := resolveEpoch(ds, r.PathValue("epoch"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "epoch not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"speed": transform.Speed(e.DX, e.DY, e.DZ),
	})
}

func (s *Server) handleEpochLocation(w http.ResponseWriter, r *http.Request) {
	ds, err := s.store.Current(r.Context())
	if err != nil {
		s.writeDataError(w, err)
		return
	}

	e, ok, err := resolveEpoch(ds, r.PathValue("epoch"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "epoch not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"location": s.locationFor(r.Context(), e),
	})
}

// handleNow reports the epoch nearest the current time with its derived
// speed and location. Ties go to the earliest record in source order.
func (s *Server) handleNow(w http.ResponseWriter, r *http.Request) {
	ds, err := s.store.Current(r.Context())
	if err != nil {
		s.writeDataError(w, err)
		return
	}

	e, ok := ds.Nearest(s.store.Clock().Now().UTC())
	if !ok {
		writeError(w, http.StatusInternalServerError, "dataset contains no epochs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"epoch":    e,
		"speed":    transform.Speed(e.DX, e.DY, e.DZ),
		"location": s.locationFor(r.Context(), e),
	})
}

type locationPayload struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Altitude float64 `json:"altitude"`
	LocStr   string  `json:"locstr"`
}

// locationFor derives the geodetic position for an epoch and, when a
// geocoder is configured, annotates it with the nearest named place.
// Geocoding failures degrade to an empty locstr, never an error response.
func (s *Server) locationFor(ctx context.Context, e oem.Epoch) locationPayload {
	geo := transform.ECIToGeodetic(transform.StateVector{
		X: e.X, Y: e.Y, Z: e.Z,
		VX: e.DX, VY: e.DY, VZ: e.DZ,
	}, e.Timestamp)

	loc := locationPayload{
		Lat:      geo.LatDeg,
		Lon:      geo.LonDeg,
		Altitude: geo.AltKm,
	}

	if s.geocoder != nil {
		result, err := s.geocoder.Reverse(ctx, geo.LatDeg, geo.LonDeg)
		if err != nil {
			metrics.RecordGeocode("error")
			s.logger.Warn("reverse geocoding failed", "error", err)
		} else if result.Place == "" {
			metrics.RecordGeocode("empty")
		} else {
			metrics.RecordGeocode("success")
			loc.LocStr = result.Place
		}
	}

	return loc
}
