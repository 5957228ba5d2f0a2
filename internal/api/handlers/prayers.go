package handlers

import (
	"net/http"
	"time"

	"noor-service/internal/api/dto"
	"noor-service/internal/domain"
	"noor-service/internal/services"
)

type PrayerHandler struct {
	Log *services.PrayerLog
}

// Day returns the prayers completed on /prayers/{day}.
func (h *PrayerHandler) Day(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	day, ok := parseDay(w, r)
	if !ok {
		return
	}

	completed, err := h.Log.Completed(r.Context(), day)
	if err != nil {
		internalError(w, r, "read prayer log failed", err)
		return
	}
	writeJSON(w, r, http.StatusOK, prayerDayResponse(day, completed))
}

// Prayer marks (PUT) or unmarks (DELETE) /prayers/{day}/{prayer}.
func (h *PrayerHandler) Prayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodPut, http.MethodDelete)
		return
	}

	day, ok := parseDay(w, r)
	if !ok {
		return
	}
	prayer, err := domain.ParsePrayer(r.PathValue("prayer"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var completed []domain.Prayer
	if r.Method == http.MethodPut {
		completed, err = h.Log.MarkCompleted(r.Context(), day, prayer)
	} else {
		completed, err = h.Log.Unmark(r.Context(), day, prayer)
	}
	if err != nil {
		internalError(w, r, "update prayer log failed", err)
		return
	}
	writeJSON(w, r, http.StatusOK, prayerDayResponse(day, completed))
}

func parseDay(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	day, err := time.Parse(services.DayLayout, r.PathValue("day"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "day must be formatted as YYYY-MM-DD")
		return time.Time{}, false
	}
	return day, true
}

func prayerDayResponse(day time.Time, completed []domain.Prayer) dto.PrayerDayResponse {
	names := make([]string, 0, len(completed))
	for _, p := range completed {
		names = append(names, string(p))
	}
	return dto.PrayerDayResponse{Day: day.Format(services.DayLayout), Completed: names}
}
