package api

import (
	"net/http"
	"strconv"

	"github.com/mariavieira99/Satellites/internal/connectivity"
	"github.com/mariavieira99/Satellites/internal/filter"
	"github.com/mariavieira99/Satellites/internal/query"
	"github.com/mariavieira99/Satellites/internal/satellite"
)

type selectionResponse struct {
	Sort         string `json:"sort"`
	Inclination  string `json:"inclination"`
	Eccentricity string `json:"eccentricity"`
}

type listResponse struct {
	Source     query.Source          `json:"source"`
	Selection  selectionResponse     `json:"selection"`
	Count      int                   `json:"count"`
	Satellites []satellite.Satellite `json:"satellites"`
	// Degraded is set when the source failed and the empty list stands in
	// for the real answer.
	Degraded bool `json:"degraded,omitempty"`
}

// listSatellitesHandler serves GET /api/v1/satellites?sort=&inclination=&eccentricity=.
func listSatellitesHandler(exec Executor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		sel, err := filter.ParseSelection(q.Get("sort"), q.Get("inclination"), q.Get("eccentricity"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		res := exec.ExecuteResult(r.Context(), sel)
		writeJSON(w, http.StatusOK, listResponse{
			Source: res.Source,
			Selection: selectionResponse{
				Sort:         sel.Sort.String(),
				Inclination:  sel.Inclination.String(),
				Eccentricity: sel.Eccentricity.String(),
			},
			Count:      len(res.Satellites),
			Satellites: res.Satellites,
			Degraded:   res.Err != nil,
		})
	}
}

// getSatelliteHandler serves GET /api/v1/satellites/{id}.
func getSatelliteHandler(exec Executor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil || id < 1 {
			writeError(w, http.StatusBadRequest, "satellite id must be a positive integer")
			return
		}

		res := exec.LookupResult(r.Context(), id)
		if len(res.Satellites) == 0 {
			writeError(w, http.StatusNotFound, "satellite not found")
			return
		}
		writeJSON(w, http.StatusOK, res.Satellites[0])
	}
}

// connectivityHandler serves GET /api/v1/connectivity.
func connectivityHandler(signal connectivity.Signal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"connected": signal.Connected()})
	}
}

type option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type filtersResponse struct {
	Sorts          []string `json:"sorts"`
	Inclinations   []option `json:"inclinations"`
	Eccentricities []option `json:"eccentricities"`
	PageSize       int      `json:"page_size"`
}

// filtersHandler serves GET /api/v1/filters: the fixed choices a client may
// offer.
func filtersHandler(w http.ResponseWriter, r *http.Request) {
	resp := filtersResponse{PageSize: filter.PageSize}
	for _, s := range filter.Sorts() {
		resp.Sorts = append(resp.Sorts, s.String())
	}
	for _, i := range filter.Inclinations() {
		resp.Inclinations = append(resp.Inclinations, option{Key: i.String(), Label: i.Label()})
	}
	for _, e := range filter.Eccentricities() {
		resp.Eccentricities = append(resp.Eccentricities, option{Key: e.String(), Label: e.Label()})
	}
	writeJSON(w, http.StatusOK, resp)
}
