package dto

type LanguageRequest struct {
	Language string `json:"language"`
}

type LanguageResponse struct {
	Language  string   `json:"language"`
	Supported []string `json:"supported"`
}

type PrayerDayResponse struct {
	Day       string   `json:"day"`
	Completed []string `json:"completed"`
}
