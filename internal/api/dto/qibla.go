package dto

type CoordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type QiblaResponse struct {
	Observer       CoordinatesResponse `json:"observer"`
	Source         string              `json:"source"`
	Label          string              `json:"label,omitempty"`
	BearingDegrees float64             `json:"bearing_degrees"`
	DistanceKm     float64             `json:"distance_km"`
}

type LocateRequest struct {
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Place   string   `json:"place"`
	Address string   `json:"address"`
}

type BatchQiblaRequest struct {
	Locations []LocateRequest `json:"locations"`
}

type BatchQiblaResponse struct {
	Results []QiblaResponse `json:"results"`
}

type PlaceResponse struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type ListPlacesResponse struct {
	Places []PlaceResponse `json:"places"`
}
