package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/openroads/corridor/internal/lib/matching"
	"github.com/openroads/corridor/internal/store"
)

// urlParam returns a path parameter with percent-escapes resolved. Corridor
// IDs contain a space, which arrives escaped.
func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListCorridors(w http.ResponseWriter, r *http.Request) {
	type summary struct {
		ID           string  `json:"id"`
		RouteRef     string  `json:"route_ref"`
		Direction    string  `json:"direction"`
		PointCount   int     `json:"point_count"`
		LengthMeters float64 `json:"length_meters"`
		GapCount     int     `json:"gap_count"`
	}

	var out []summary
	for _, c := range s.corridors.Corridors() {
		out = append(out, summary{
			ID:           c.ID,
			RouteRef:     c.RouteRef,
			Direction:    string(c.Direction),
			PointCount:   len(c.Points),
			LengthMeters: c.LengthMeters,
			GapCount:     len(c.Gaps),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"corridors": out})
}

func (s *Server) handleGetCorridor(w http.ResponseWriter, r *http.Request) {
	c, err := s.corridors.GetCorridor(urlParam(r, "corridorID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCorridorGaps(w http.ResponseWriter, r *http.Request) {
	c, err := s.corridors.GetCorridor(urlParam(r, "corridorID"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"corridor_id": c.ID,
		"gaps":        c.Gaps,
	})
}

func (s *Server) handleGapReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.corridors.GapReport())
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	ref := urlParam(r, "routeRef")
	route, ok := s.corridors.RouteByRef(ref)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("route not configured: "+ref))
		return
	}
	if err := s.corridors.RebuildRoute(r.Context(), route); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"route": route.Ref, "status": "rebuilt"})
}

func (s *Server) handleMatchEvent(w http.ResponseWriter, r *http.Request) {
	var ev matching.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	mg, err := s.corridors.MatchEvent(r.Context(), ev)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, mg)
}

func (s *Server) handleExportKML(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.corridors.WriteKML(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
