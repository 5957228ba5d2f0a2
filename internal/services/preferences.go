package services

import (
	"context"
	"fmt"

	"noor-service/internal/domain"
	"noor-service/internal/ports"
)

const languageKey = "preferences:language"

// Preferences stores user settings in a key-value store.
type Preferences struct {
	store ports.KeyValueStore
}

func NewPreferences(store ports.KeyValueStore) *Preferences {
	return &Preferences{store: store}
}

// Language returns the saved language, or DefaultLanguage when none is saved
// or the saved value is no longer supported.
func (p *Preferences) Language(ctx context.Context) (domain.Language, error) {
	v, ok, err := p.store.Get(ctx, languageKey)
	if err != nil {
		return "", fmt.Errorf("preferences: get language: %w", err)
	}
	if !ok {
		return domain.DefaultLanguage, nil
	}

	lang, err := domain.ParseLanguage(v)
	if err != nil {
		return domain.DefaultLanguage, nil
	}
	return lang, nil
}

func (p *Preferences) SetLanguage(ctx context.Context, raw string) (domain.Language, error) {
	lang, err := domain.ParseLanguage(raw)
	if err != nil {
		return "", err
	}
	if err := p.store.Set(ctx, languageKey, string(lang)); err != nil {
		return "", fmt.Errorf("preferences: set language: %w", err)
	}
	return lang, nil
}
