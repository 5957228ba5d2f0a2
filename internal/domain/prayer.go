package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPrayer = errors.New("unknown prayer")

// Prayer is one of the five daily prayers.
type Prayer string

const (
	Fajr    Prayer = "fajr"
	Dhuhr   Prayer = "dhuhr"
	Asr     Prayer = "asr"
	Maghrib Prayer = "maghrib"
	Isha    Prayer = "isha"
)

// DailyPrayers lists the prayers in the order they occur during a day.
var DailyPrayers = []Prayer{Fajr, Dhuhr, Asr, Maghrib, Isha}

// ParsePrayer accepts a prayer name in any case.
func ParsePrayer(s string) (Prayer, error) {
	p := Prayer(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range DailyPrayers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPrayer, s)
}

// Order returns the position of p within the day, or -1.
func (p Prayer) Order() int {
	for i, known := range DailyPrayers {
		if p == known {
			return i
		}
	}
	return -1
}
