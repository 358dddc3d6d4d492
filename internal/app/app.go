// Package app wires config, logging, the city and the optional sinks
// around a Simulator for the front-ends.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"city-flight-simulator/internal/city"
	"city-flight-simulator/internal/config"
	"city-flight-simulator/internal/geo"
	"city-flight-simulator/internal/logging"
	"city-flight-simulator/internal/recorder"
	"city-flight-simulator/internal/sim"
	"city-flight-simulator/internal/telemetry"

	"github.com/rs/zerolog"
)

type Options struct {
	ConfigDir string
	// Name prefixes the log file and names the recording session.
	Name string
	// Console receives console logs; nil logs to the file only.
	Console io.Writer
	// Record forces the flight recorder on regardless of config.
	Record bool
	// UPS overrides sim.ups when positive.
	UPS int
}

type App struct {
	Log      zerolog.Logger
	City     *city.City
	Origin   geo.Origin
	Sim      *sim.Simulator
	Recorder *recorder.Recorder
	Influx   *telemetry.Manager
	Metrics  *telemetry.Metrics

	closers []func() error
}

// New loads the config and builds everything the front-ends share.
func New(opts Options) (*App, error) {
	if err := config.Load(opts.ConfigDir); err != nil {
		return nil, err
	}

	a := &App{}
	start := time.Now()

	logFile, err := logging.OpenLogFile(config.GetString("logsDir"), opts.Name, start)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, logFile.Close)
	a.Log = logging.New(config.GetString("logLevel"), opts.Console, logFile)

	if err := a.loadCity(); err != nil {
		_ = a.Close()
		return nil, err
	}

	g := config.Geo()
	a.Origin, err = geo.NewOrigin(g.OriginLon, g.OriginLat)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("geo origin %v,%v: %w", g.OriginLon, g.OriginLat, err)
	}

	simOpts := config.SimOptions()
	if opts.UPS > 0 {
		simOpts.UPS = opts.UPS
	}
	simOpts.Buildings = a.City.Obstacles()
	simOpts.Logger = a.Log.With().Str("component", "sim").Logger()
	a.Sim = sim.NewSimulator(simOpts)

	a.Metrics, err = telemetry.NewMetrics(nil, simOpts.UPS)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Sim.AddSink(a.Metrics)

	rc := config.Recorder()
	if rc.Enabled || opts.Record {
		if err := a.startRecorder(rc, opts.Name, simOpts); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	if ic := config.Influx(); ic.Enabled {
		a.Influx = telemetry.NewManager(ic.URL, ic.Token, ic.Org, ic.Bucket, ic.BackupPath,
			a.Log.With().Str("component", "influx").Logger())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := a.Influx.Connect(ctx)
		cancel()
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, a.Influx.Close)
		a.Sim.AddSink(a.Influx)
	}

	return a, nil
}

func (a *App) loadCity() error {
	path := config.City().LayoutFile
	if path == "" {
		a.City = city.Generate()
		return nil
	}
	c, err := city.LoadLayout(path)
	if err != nil {
		return fmt.Errorf("loading city layout %s: %w", path, err)
	}
	a.Log.Info().Str("layout", path).Int("buildings", len(c.Buildings)).Msg("city layout loaded")
	a.City = c
	return nil
}

func (a *App) startRecorder(rc config.RecorderConfig, name string, simOpts sim.Options) error {
	m := recorder.NewManager(rc.Driver, rc.DSN, rc.SqlitePath, a.Log.With().Str("component", "db").Logger())
	if err := m.Connect(); err != nil {
		return err
	}
	a.closers = append(a.closers, m.Close)
	if err := m.Setup(); err != nil {
		return err
	}

	a.Recorder = recorder.New(m.DB, a.Origin, a.Log.With().Str("component", "recorder").Logger())
	sessionCfg := map[string]any{
		"physics":  simOpts.Physics,
		"controls": simOpts.Controller,
		"camera":   simOpts.Camera,
		"ups":      simOpts.UPS,
	}
	if _, err := a.Recorder.StartSession(name, sessionCfg); err != nil {
		return err
	}
	// closers run in reverse, so the recorder drains before the db closes
	a.closers = append(a.closers, a.Recorder.Close)
	a.Sim.AddSink(a.Recorder)
	return nil
}

// Close releases resources in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Summary is a one-line account of what the metrics sink observed.
func (a *App) Summary() string {
	c := a.Metrics.Counts()
	return fmt.Sprintf("ticks=%d elapsed=%s crashes=%d landings=%d camera_switches=%d",
		a.Sim.Ticks(), a.Sim.Elapsed().Round(time.Millisecond), c.Crashes, c.Landings, c.Switches)
}
