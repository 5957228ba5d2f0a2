package handlers

import (
	"errors"
	"net/http"

	"noor-service/internal/api/dto"
	"noor-service/internal/domain"
	"noor-service/internal/services"
)

type PreferencesHandler struct {
	Preferences *services.Preferences
}

// Language handles GET and PUT of the UI language preference.
func (h *PreferencesHandler) Language(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		lang, err := h.Preferences.Language(r.Context())
		if err != nil {
			internalError(w, r, "get language failed", err)
			return
		}
		writeJSON(w, r, http.StatusOK, languageResponse(lang))

	case http.MethodPut:
		var req dto.LanguageRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		lang, err := h.Preferences.SetLanguage(r.Context(), req.Language)
		if errors.Is(err, domain.ErrUnsupportedLanguage) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			internalError(w, r, "set language failed", err)
			return
		}
		writeJSON(w, r, http.StatusOK, languageResponse(lang))

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func languageResponse(lang domain.Language) dto.LanguageResponse {
	supported := make([]string, 0, len(domain.SupportedLanguages))
	for _, l := range domain.SupportedLanguages {
		supported = append(supported, string(l))
	}
	return dto.LanguageResponse{Language: string(lang), Supported: supported}
}
