package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language is a UI language code stored as a user preference.
type Language string

const (
	English Language = "en"
	Arabic  Language = "ar"
	Urdu    Language = "ur"
)

const DefaultLanguage = English

var SupportedLanguages = []Language{English, Arabic, Urdu}

func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SupportedLanguages {
		if l == known {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
}
