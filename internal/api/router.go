package api

import (
	"net/http"

	"go.uber.org/zap"

	"noor-service/internal/api/handlers"
	"noor-service/internal/ports"
	"noor-service/internal/services"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Logger      *zap.SugaredLogger
	Places      ports.PlaceRepository
	Locator     *services.QiblaLocator
	Preferences *services.Preferences
	Prayers     *services.PrayerLog
	Compass     services.CompassOptions

	// Checks run on /health, keyed by dependency name.
	Checks map[string]handlers.HealthCheck
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Checks: d.Checks}
	qiblaHandler := &handlers.QiblaHandler{Locator: d.Locator}
	placeHandler := &handlers.PlaceHandler{Repo: d.Places}
	compassHandler := &handlers.CompassHandler{Defaults: d.Compass}
	prefHandler := &handlers.PreferencesHandler{Preferences: d.Preferences}
	prayerHandler := &handlers.PrayerHandler{Log: d.Prayers}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/qibla", qiblaHandler.Get)
	mux.HandleFunc("/qibla/batch", qiblaHandler.Batch)
	mux.HandleFunc("/places", placeHandler.List)
	mux.HandleFunc("/compass/smooth", compassHandler.Smooth)
	mux.HandleFunc("/compass/ws", compassHandler.Stream)
	mux.HandleFunc("/preferences/language", prefHandler.Language)
	mux.HandleFunc("/prayers/{day}", prayerHandler.Day)
	mux.HandleFunc("/prayers/{day}/{prayer}", prayerHandler.Prayer)

	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return requestMiddleware(logger, mux)
}
