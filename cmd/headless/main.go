package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"city-flight-simulator/internal/app"
	"city-flight-simulator/internal/scenario"
)

func main() {
	steps := flag.Int("steps", 1200, "Number of fixed updates to run (ignored with -scenario)")
	ups := flag.Int("ups", 0, "Fixed updates per second (0 uses sim.ups from config)")
	scenarioPath := flag.String("scenario", "", "YAML key script to replay")
	record := flag.Bool("record", false, "Record the flight regardless of config")
	configDir := flag.String("config", ".", "Directory holding flightsim.cfg.json")
	flag.Parse()

	a, err := app.New(app.Options{
		ConfigDir: *configDir,
		Name:      "headless",
		Console:   os.Stdout,
		Record:    *record,
		UPS:       *ups,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "setup failed:", err)
		os.Exit(1)
	}

	var before func(time.Duration)
	var dur time.Duration
	n := *steps
	if *scenarioPath != "" {
		script, err := scenario.Load(*scenarioPath)
		if err != nil {
			a.Log.Error().Err(err).Str("path", *scenarioPath).Msg("failed to load scenario")
			_ = a.Close()
			os.Exit(1)
		}
		player, err := scenario.NewPlayer(script)
		if err != nil {
			a.Log.Error().Err(err).Str("path", *scenarioPath).Msg("invalid scenario")
			_ = a.Close()
			os.Exit(1)
		}
		before = player.Feed(a.Sim)
		dur = player.Duration()
		n = 0
		a.Log.Info().Str("path", *scenarioPath).Dur("duration", dur).Msg("replaying scenario")
	} else {
		a.Sim.StartFlight()
	}

	start := time.Now()
	performed := a.Sim.RunHeadless(n, dur, before)
	wall := time.Since(start)

	fmt.Println(a.Sim.Telemetry())
	fmt.Printf("Completed %d steps in %s. %s\n", performed, wall.Round(time.Millisecond), a.Summary())

	if err := a.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "shutdown:", err)
		os.Exit(1)
	}
}
