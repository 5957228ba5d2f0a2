package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"noor-service/internal/domain"
	"noor-service/internal/ports"
)

// DayLayout is the calendar-day format used in prayer log keys and URLs.
const DayLayout = "2006-01-02"

// PrayerLog records which prayers were completed on each calendar day.
type PrayerLog struct {
	store ports.KeyValueStore

	// mu serialises read-modify-write updates within this process.
	mu sync.Mutex
}

func NewPrayerLog(store ports.KeyValueStore) *PrayerLog {
	return &PrayerLog{store: store}
}

func prayerKey(day time.Time) string {
	return "prayers:" + day.Format(DayLayout)
}

// Completed returns the prayers marked on day in daily order.
func (l *PrayerLog) Completed(ctx context.Context, day time.Time) ([]domain.Prayer, error) {
	v, ok, err := l.store.Get(ctx, prayerKey(day))
	if err != nil {
		return nil, fmt.Errorf("prayer log: get %s: %w", day.Format(DayLayout), err)
	}
	if !ok {
		return []domain.Prayer{}, nil
	}
	return decodePrayers(v), nil
}

func (l *PrayerLog) MarkCompleted(ctx context.Context, day time.Time, p domain.Prayer) ([]domain.Prayer, error) {
	return l.update(ctx, day, p, true)
}

func (l *PrayerLog) Unmark(ctx context.Context, day time.Time, p domain.Prayer) ([]domain.Prayer, error) {
	return l.update(ctx, day, p, false)
}

func (l *PrayerLog) update(ctx context.Context, day time.Time, p domain.Prayer, done bool) ([]domain.Prayer, error) {
	if p.Order() < 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPrayer, p)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.Completed(ctx, day)
	if err != nil {
		return nil, err
	}

	set := make(map[domain.Prayer]struct{}, len(current)+1)
	for _, c := range current {
		set[c] = struct{}{}
	}
	if done {
		set[p] = struct{}{}
	} else {
		delete(set, p)
	}

	next := make([]domain.Prayer, 0, len(set))
	for c := range set {
		next = append(next, c)
	}
	sortPrayers(next)

	key := prayerKey(day)
	if len(next) == 0 {
		err = l.store.Delete(ctx, key)
	} else {
		err = l.store.Set(ctx, key, encodePrayers(next))
	}
	if err != nil {
		return nil, fmt.Errorf("prayer log: save %s: %w", day.Format(DayLayout), err)
	}

	return next, nil
}

func sortPrayers(ps []domain.Prayer) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Order() < ps[j].Order() })
}

func encodePrayers(ps []domain.Prayer) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = string(p)
	}
	return strings.Join(parts, ",")
}

// decodePrayers drops unknown and duplicate entries.
func decodePrayers(v string) []domain.Prayer {
	seen := make(map[domain.Prayer]struct{})
	out := make([]domain.Prayer, 0, len(domain.DailyPrayers))
	for _, part := range strings.Split(v, ",") {
		p, err := domain.ParsePrayer(part)
		if err != nil {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sortPrayers(out)
	return out
}
