// Package main is the qibla command line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"noor-service/internal/adapters/sensors"
	"noor-service/internal/config"
	"noor-service/internal/domain"
	"noor-service/internal/geodesy"
	"noor-service/internal/platform/logging"
	"noor-service/internal/ports"
	"noor-service/internal/services"
)

const (
	// Flags.
	flagLat      = "lat"
	flagLon      = "lon"
	flagGain     = "gain"
	flagReplay   = "replay"
	flagPaced    = "paced"
	flagSimulate = "simulate"
	flagNoise    = "noise"
	flagSamples  = "samples"
	flagInterval = "interval"
	flagSeed     = "seed"
	flagDebug    = "debug"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	locationFlags := []cli.Flag{
		&cli.Float64Flag{Name: flagLat, Usage: "observer latitude in degrees", Required: true},
		&cli.Float64Flag{Name: flagLon, Usage: "observer longitude in degrees", Required: true},
	}

	return &cli.App{
		Name:      "qibla",
		Usage:     "compute the Qibla direction and run a smoothed compass",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: flagDebug, Usage: "enable debug logging"},
		},
		Before: func(c *cli.Context) error {
			if !c.Bool(flagDebug) {
				logging.ReplaceGlobal(zap.NewNop().Sugar())
				return nil
			}
			l, err := logging.New("qibla", "debug")
			if err != nil {
				return err
			}
			logging.ReplaceGlobal(l)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "bearing",
				Usage:  "print the Qibla bearing and distance for a location",
				Flags:  locationFlags,
				Action: bearingAction,
			},
			{
				Name:  "compass",
				Usage: "smooth a recorded or simulated heading stream",
				Flags: append(locationFlags,
					&cli.Float64Flag{Name: flagGain, Usage: "smoothing factor in (0, 1]; defaults to COMPASS_GAIN"},
					&cli.StringFlag{Name: flagReplay, Usage: "replay headings from CSV `FILE` (offset_ms,degrees)"},
					&cli.BoolFlag{Name: flagPaced, Usage: "replay at the recorded pace"},
					&cli.Float64Flag{Name: flagSimulate, Usage: "simulate a device pointing at `HEADING` degrees"},
					&cli.Float64Flag{Name: flagNoise, Value: 5, Usage: "simulated noise amplitude in degrees"},
					&cli.IntFlag{Name: flagSamples, Value: 100, Usage: "number of simulated samples"},
					&cli.DurationFlag{Name: flagInterval, Usage: "simulated sample interval; defaults to COMPASS_SAMPLE_INTERVAL"},
					&cli.Uint64Flag{Name: flagSeed, Value: 1, Usage: "simulation seed"},
				),
				Action: compassAction,
			},
		},
	}
}

func observerFrom(c *cli.Context) (domain.Coordinates, error) {
	return domain.ParseCoordinates(c.Float64(flagLat), c.Float64(flagLon))
}

func bearingAction(c *cli.Context) error {
	observer, err := observerFrom(c)
	if err != nil {
		return err
	}

	res := geodesy.Qibla(observer)
	fmt.Fprintf(c.App.Writer, "observer: %s\nbearing:  %.2f°\ndistance: %.1f km\n",
		observer, res.BearingDegrees, res.DistanceKm)
	return nil
}

func compassAction(c *cli.Context) error {
	observer, err := observerFrom(c)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	gain := cfg.Compass.Gain
	if c.IsSet(flagGain) {
		gain = c.Float64(flagGain)
	}

	src, closeSrc, err := sourceFrom(c, cfg.Compass.SampleInterval)
	if err != nil {
		return err
	}
	defer closeSrc()

	session, err := services.NewCompassSession(observer, services.CompassOptions{Gain: gain})
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "qibla bearing %.2f° (%.1f km), gain %.2f\n", session.Qibla.BearingDegrees, session.Qibla.DistanceKm, session.Gain())
	fmt.Fprintln(w, "raw\tsmoothed\trotate")

	return session.Run(c.Context, src, func(r domain.CompassReading) error {
		_, err := fmt.Fprintf(w, "%.2f\t%.2f\t%.2f\n", r.RawDegrees, r.SmoothedDegrees, r.QiblaRotation)
		return err
	})
}

func sourceFrom(c *cli.Context, defaultInterval time.Duration) (ports.HeadingSource, func(), error) {
	replay, simulate := c.IsSet(flagReplay), c.IsSet(flagSimulate)
	if replay == simulate {
		return nil, nil, errors.New("exactly one of --replay or --simulate is required")
	}

	if replay {
		f, err := os.Open(c.String(flagReplay))
		if err != nil {
			return nil, nil, fmt.Errorf("open replay: %w", err)
		}
		var opts []sensors.ReplayOption
		if c.Bool(flagPaced) {
			opts = append(opts, sensors.WithPacing())
		}
		return sensors.NewReplaySource(f, opts...), func() { _ = f.Close() }, nil
	}

	interval := defaultInterval
	if c.IsSet(flagInterval) {
		interval = c.Duration(flagInterval)
	}
	sim := sensors.NewSimulatedSource(c.Float64(flagSimulate), c.Float64(flagNoise), interval, c.Uint64(flagSeed))
	sim.Limit = c.Int(flagSamples)
	return sim, func() {}, nil
}
