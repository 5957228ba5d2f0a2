package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"noor-service/internal/domain"
	"noor-service/internal/platform/logging"
	"noor-service/internal/platform/obs"
	"noor-service/internal/ports"
)

const defaultBaseURL = "https://api.openrouteservice.org"

var ErrNoResults = errors.New("geocode: no results")

// ORSGeocoder implements ports.Geocoder using OpenRouteService.
//
// It coordinates:
//   - Address normalization
//   - Persistent geocode caching
//   - External API calls with retry/backoff
//
// The geocoder is safe for concurrent use.
type ORSGeocoder struct {
	session *http.Client
	apiKey  string
	baseURL string
	country string
	backoff time.Duration
	cache   ports.GeocodeCache
}

type Option func(*ORSGeocoder)

func WithBaseURL(u string) Option {
	return func(o *ORSGeocoder) { o.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *ORSGeocoder) { o.session = c }
}

// WithCountry restricts results to an ISO country code; empty searches worldwide.
func WithCountry(code string) Option {
	return func(o *ORSGeocoder) { o.country = code }
}

// WithInitialBackoff sets the delay before the first retry.
func WithInitialBackoff(d time.Duration) Option {
	return func(o *ORSGeocoder) { o.backoff = d }
}

// WithCache stores resolved coordinates between calls. A nil cache is ignored.
func WithCache(c ports.GeocodeCache) Option {
	return func(o *ORSGeocoder) { o.cache = c }
}

func NewORSGeocoder(apiKey string, opts ...Option) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	g := &ORSGeocoder{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		backoff: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Geocode resolves one address, consulting the cache first.
func (o *ORSGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode: address must be non-empty")
	}

	coords, err := o.GeocodeMany(ctx, []string{norm})
	if err != nil {
		return domain.Coordinates{}, err
	}

	c, ok := coords[norm]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("%w for %q", ErrNoResults, norm)
	}

	return c, nil
}

// GeocodeMany resolves addresses keyed by their normalized form. Cache hits
// skip the network; fresh results are written back.
func (o *ORSGeocoder) GeocodeMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.GeocodeMany")(&err)

	needed := make([]string, 0, len(addresses))
	seen := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		n := normalize(a)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		needed = append(needed, n)
	}

	if len(needed) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	hits := make(map[string]domain.Coordinates)
	if o.cache != nil {
		hits, err = o.cache.GetMany(ctx, needed)
		if err != nil {
			return nil, fmt.Errorf("ORS get geocode cache: %w", err)
		}
	}

	misses := make([]string, 0, len(needed))
	for _, a := range needed {
		if _, ok := hits[a]; !ok {
			misses = append(misses, a)
		}
	}

	fresh := make(map[string]domain.Coordinates, len(misses))
	for _, a := range misses {
		c, err := o.search(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("geocode %q: %w", a, err)
		}
		fresh[a] = c
	}

	if o.cache != nil && len(fresh) > 0 {
		if err := o.cache.PutMany(ctx, fresh); err != nil {
			logging.FromContext(ctx).Warnw("geocode cache write failed", "err", err)
		}
	}

	out := make(map[string]domain.Coordinates, len(hits)+len(fresh))
	for k, v := range hits {
		out[k] = v
	}
	for k, v := range fresh {
		out[k] = v
	}

	return out, nil
}

type searchResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// search calls /geocode/search for a single normalized address.
func (o *ORSGeocoder) search(ctx context.Context, address string) (domain.Coordinates, error) {
	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", address)
		q.Set("size", "1")
		if o.country != "" {
			q.Set("boundary.country", o.country)
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinates{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, ErrNoResults
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, errors.New("invalid coordinate format")
	}

	// GeoJSON order is [lon, lat].
	c := domain.Coordinates{Lon: coords[0], Lat: coords[1]}
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, err
	}

	return c, nil
}
