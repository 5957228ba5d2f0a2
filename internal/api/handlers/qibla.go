package handlers

import (
	"errors"
	"net/http"

	"noor-service/internal/api/dto"
	"noor-service/internal/domain"
	"noor-service/internal/services"
)

const maxBatchLocations = 50

type QiblaHandler struct {
	Locator *services.QiblaLocator
}

// Get resolves ?lat=&lon=, ?place= or ?address= into a Qibla bearing.
func (h *QiblaHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	lat, err := optionalFloat(r, "lat")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	lon, err := optionalFloat(r, "lon")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	fix, err := h.Locator.Locate(r.Context(), services.LocateRequest{
		Lat:     lat,
		Lon:     lon,
		Place:   q.Get("place"),
		Address: q.Get("address"),
	})
	if err != nil {
		writeLocateError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toQiblaResponse(fix))
}

// Batch resolves several locations in one call, preserving order.
func (h *QiblaHandler) Batch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.BatchQiblaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Locations) == 0 || len(req.Locations) > maxBatchLocations {
		writeError(w, r, http.StatusBadRequest, "locations must contain between 1 and 50 entries")
		return
	}

	reqs := make([]services.LocateRequest, 0, len(req.Locations))
	for _, l := range req.Locations {
		reqs = append(reqs, services.LocateRequest{Lat: l.Lat, Lon: l.Lon, Place: l.Place, Address: l.Address})
	}

	fixes, err := h.Locator.LocateMany(r.Context(), reqs)
	if err != nil {
		writeLocateError(w, r, err)
		return
	}

	res := dto.BatchQiblaResponse{Results: make([]dto.QiblaResponse, 0, len(fixes))}
	for _, f := range fixes {
		res.Results = append(res.Results, toQiblaResponse(f))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func writeLocateError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCoordinate), errors.Is(err, services.ErrNoLocation):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrPlaceNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrGeocoderUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, services.ErrGeocodeFailed):
		writeError(w, r, http.StatusBadGateway, "address lookup failed")
	default:
		internalError(w, r, "locate failed", err)
	}
}

func toQiblaResponse(f domain.QiblaFix) dto.QiblaResponse {
	return dto.QiblaResponse{
		Observer:       dto.CoordinatesResponse{Lat: f.Observer.Lat, Lon: f.Observer.Lon},
		Source:         string(f.Source),
		Label:          f.Label,
		BearingDegrees: f.Result.BearingDegrees,
		DistanceKm:     f.Result.DistanceKm,
	}
}
