package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"noor-service/internal/platform/logging"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// HealthHandler provides a liveness endpoint that also runs dependency checks.
type HealthHandler struct {
	Checks map[string]HealthCheck
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	res := map[string]string{"status": "ok"}
	for _, name := range names {
		if err := h.Checks[name](ctx); err != nil {
			status = http.StatusServiceUnavailable
			res["status"] = "degraded"
			res[name] = "unavailable"
			logging.FromContext(ctx).Warnw("health check failed", "check", name, "err", err)
			continue
		}
		res[name] = "ok"
	}

	writeJSON(w, r, status, res)
}
