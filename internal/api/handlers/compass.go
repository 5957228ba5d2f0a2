package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"noor-service/internal/api/dto"
	"noor-service/internal/domain"
	"noor-service/internal/heading"
	"noor-service/internal/platform/logging"
	"noor-service/internal/services"
)

const (
	maxSmoothSamples = 10000

	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// CompassHandler smooths heading streams. Defaults come from configuration
// and may be overridden per request.
type CompassHandler struct {
	Defaults services.CompassOptions
}

func (h *CompassHandler) options(gain *float64, prime bool) services.CompassOptions {
	opts := h.Defaults
	if gain != nil {
		opts.Gain = *gain
	}
	if prime {
		opts.PrimeOnFirstSample = true
	}
	return opts
}

// Smooth runs a batch of raw headings through a fresh filter.
func (h *CompassHandler) Smooth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.SmoothRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := checkGain(req.Gain); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Samples) > maxSmoothSamples {
		writeError(w, r, http.StatusBadRequest, "too many samples")
		return
	}
	if (req.Lat == nil) != (req.Lon == nil) {
		writeError(w, r, http.StatusBadRequest, "lat and lon must be given together")
		return
	}

	opts := h.options(req.Gain, req.PrimeOnFirstSample)

	if req.Lat == nil {
		smoothed, err := services.SmoothHeadings(req.Samples, opts)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, r, http.StatusOK, dto.SmoothResponse{Gain: gainOf(opts), Smoothed: smoothed})
		return
	}

	session, err := services.NewCompassSession(domain.Coordinates{Lat: *req.Lat, Lon: *req.Lon}, opts)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	readings := session.Smooth(req.Samples)
	res := dto.SmoothResponse{
		Gain:           session.Gain(),
		Smoothed:       make([]float64, len(readings)),
		QiblaBearing:   &session.Qibla.BearingDegrees,
		QiblaRotations: make([]float64, len(readings)),
	}
	for i, rd := range readings {
		res.Smoothed[i] = rd.SmoothedDegrees
		res.QiblaRotations[i] = rd.QiblaRotation
	}
	writeJSON(w, r, http.StatusOK, res)
}

// checkGain rejects an explicit zero, which would otherwise select the default.
func checkGain(gain *float64) error {
	if gain != nil && *gain == 0 {
		return heading.ErrInvalidGain
	}
	return nil
}

func gainOf(opts services.CompassOptions) float64 {
	if opts.Gain == 0 {
		return heading.DefaultGain
	}
	return opts.Gain
}

// Stream upgrades to a websocket compass session for ?lat=&lon=[&gain=].
// Each {"heading": deg} frame from the client yields one reading.
func (h *CompassHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	lat, errLat := optionalFloat(r, "lat")
	lon, errLon := optionalFloat(r, "lon")
	gain, errGain := optionalFloat(r, "gain")
	if err := multierr.Combine(errLat, errLon, errGain, checkGain(gain)); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if lat == nil || lon == nil {
		writeError(w, r, http.StatusBadRequest, "lat and lon are required")
		return
	}

	session, err := services.NewCompassSession(domain.Coordinates{Lat: *lat, Lon: *lon}, h.options(gain, false))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		logging.FromContext(r.Context()).Warnw("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	if err := streamSession(r.Context(), conn, session); err != nil {
		logging.FromContext(r.Context()).Warnw("compass stream ended", "session_id", session.ID.String(), "err", err)
	}
}

// streamSession runs the read pump, the session and the write pump until the
// client disconnects or one of them fails.
func streamSession(ctx context.Context, conn *websocket.Conn, session *services.CompassSession) error {
	samples := make(chan domain.HeadingSample, wsBuffer)
	readings := make(chan domain.CompassReading, wsBuffer)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(samples)
		return readPump(gctx, conn, samples)
	})

	g.Go(func() error {
		defer close(readings)
		return session.Run(gctx, &wsSource{samples: samples}, func(rd domain.CompassReading) error {
			select {
			case readings <- rd:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	g.Go(func() error {
		// Closing the connection unblocks the read pump once writing stops.
		defer conn.Close()
		return writePump(conn, session, readings)
	})

	return g.Wait()
}

func readPump(ctx context.Context, conn *websocket.Conn, out chan<- domain.HeadingSample) error {
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read pump: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))

		var msg dto.HeadingMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Heading == nil {
			logging.FromContext(ctx).Debugw("ignoring malformed heading frame", "err", err)
			continue
		}

		select {
		case out <- domain.HeadingSample{Degrees: *msg.Heading, At: time.Now()}:
		case <-ctx.Done():
			return nil
		}
	}
}

func writePump(conn *websocket.Conn, session *services.CompassSession, readings <-chan domain.CompassReading) error {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	hello := dto.SessionMessage{
		Type:           "session",
		SessionID:      session.ID.String(),
		BearingDegrees: session.Qibla.BearingDegrees,
		DistanceKm:     session.Qibla.DistanceKm,
		Gain:           session.Gain(),
	}
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(hello); err != nil {
		return fmt.Errorf("write pump: %w", err)
	}

	for {
		select {
		case rd, ok := <-readings:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				_ = conn.WriteMessage(websocket.CloseMessage, msg)
				return nil
			}
			err := conn.WriteJSON(dto.ReadingMessage{
				Type:            "reading",
				RawDegrees:      rd.RawDegrees,
				SmoothedDegrees: rd.SmoothedDegrees,
				QiblaRotation:   rd.QiblaRotation,
				At:              rd.At,
			})
			if err != nil {
				return fmt.Errorf("write pump: %w", err)
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("write pump: ping: %w", err)
			}
		}
	}
}

// wsSource adapts the read pump channel to ports.HeadingSource.
type wsSource struct {
	samples <-chan domain.HeadingSample
}

func (s *wsSource) Next(ctx context.Context) (domain.HeadingSample, error) {
	select {
	case <-ctx.Done():
		return domain.HeadingSample{}, ctx.Err()
	case sample, ok := <-s.samples:
		if !ok {
			return domain.HeadingSample{}, io.EOF
		}
		return sample, nil
	}
}
