package handlers

import (
	"net/http"

	"noor-service/internal/api/dto"
	"noor-service/internal/ports"
)

// PlaceHandler exposes the saved places gazetteer.
type PlaceHandler struct {
	Repo ports.PlaceRepository
}

func (h *PlaceHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	places, err := h.Repo.ListPlaces(r.Context())
	if err != nil {
		internalError(w, r, "list places failed", err)
		return
	}

	res := dto.ListPlacesResponse{
		Places: make([]dto.PlaceResponse, 0, len(places)),
	}
	for _, p := range places {
		res.Places = append(res.Places, dto.PlaceResponse{
			Name:    p.Name,
			Country: p.Country,
			Lat:     p.Coordinates.Lat,
			Lon:     p.Coordinates.Lon,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
