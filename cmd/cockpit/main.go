package main

import (
	"flag"
	"fmt"
	"os"

	"city-flight-simulator/internal/app"

	"github.com/gdamore/tcell/v2"
)

func main() {
	configDir := flag.String("config", ".", "Directory holding flightsim.cfg.json")
	record := flag.Bool("record", false, "Record the flight regardless of config")
	flag.Parse()

	// console logging would tear the terminal UI, so logs go to file only
	a, err := app.New(app.Options{ConfigDir: *configDir, Name: "cockpit", Record: *record})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		_ = a.Close()
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		_ = a.Close()
		os.Exit(1)
	}

	newCockpit(screen, a.Sim, a.City.Colors()).run()
	screen.Fini()

	fmt.Println(a.Sim.Telemetry())
	fmt.Println(a.Summary())
	if err := a.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "shutdown:", err)
		os.Exit(1)
	}
}
