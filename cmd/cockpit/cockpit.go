package main

import (
	"math"
	"time"

	"city-flight-simulator/internal/sim"

	"github.com/gdamore/tcell/v2"
)

const (
	// Terminals report key repeats but never key-up, so a key counts as
	// held until this long after its last event.
	holdTimeout = 150 * time.Millisecond
	frameRate   = 16 * time.Millisecond
	trailLength = 120

	metersPerColumn = 2.0
	metersPerRow    = 4.0
)

var runeKeys = map[rune]sim.KeyCode{
	'w': sim.KeyW,
	's': sim.KeyS,
	'a': sim.KeyA,
	'd': sim.KeyD,
	'q': sim.KeyQ,
	'e': sim.KeyE,
	'r': sim.KeyR,
	'f': sim.KeyF,
	'b': sim.KeyShiftLeft,
	' ': sim.KeySpace,
	'1': sim.KeyDigit1,
	'2': sim.KeyDigit2,
	'3': sim.KeyDigit3,
	'4': sim.KeyDigit4,
	'5': sim.KeyDigit5,
	'0': sim.KeyDigit0,
	'+': sim.KeyEqual,
	'=': sim.KeyEqual,
	'-': sim.KeyMinus,
}

var specialKeys = map[tcell.Key]sim.KeyCode{
	tcell.KeyUp:    sim.KeyArrowUp,
	tcell.KeyDown:  sim.KeyArrowDown,
	tcell.KeyLeft:  sim.KeyArrowLeft,
	tcell.KeyRight: sim.KeyArrowRight,
	tcell.KeyEnter: sim.KeyEnter,
}

// headingGlyphs are indexed by 45° sector, counterclockwise from east.
var headingGlyphs = []rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}

func translateKey(ev *tcell.EventKey) (sim.KeyCode, bool) {
	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		k, ok := runeKeys[r]
		return k, ok
	}
	k, ok := specialKeys[ev.Key()]
	return k, ok
}

type cockpit struct {
	screen        tcell.Screen
	sim           *sim.Simulator
	colors        []uint32
	width, height int

	held  map[sim.KeyCode]time.Time
	trail []sim.Vec3
	last  time.Time
}

func newCockpit(screen tcell.Screen, s *sim.Simulator, colors []uint32) *cockpit {
	c := &cockpit{
		screen: screen,
		sim:    s,
		colors: colors,
		held:   make(map[sim.KeyCode]time.Time),
		trail:  make([]sim.Vec3, 0, trailLength),
	}
	c.width, c.height = screen.Size()
	return c
}

// handleEvent returns false when the user asked to quit.
func (c *cockpit) handleEvent(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		code, ok := translateKey(ev)
		if !ok {
			return true
		}
		if _, down := c.held[code]; !down {
			c.sim.HandleKey(code, true)
		}
		c.held[code] = now.Add(holdTimeout)

	case *tcell.EventResize:
		c.width, c.height = c.screen.Size()
		c.screen.Sync()
	}
	return true
}

func (c *cockpit) releaseExpired(now time.Time) {
	for code, until := range c.held {
		if now.After(until) {
			delete(c.held, code)
			c.sim.HandleKey(code, false)
		}
	}
}

// tick advances the simulation by the wall time since the previous tick.
func (c *cockpit) tick(now time.Time) {
	c.releaseExpired(now)
	if !c.last.IsZero() {
		c.sim.Advance(now.Sub(c.last))
	}
	c.last = now

	snap := c.sim.Snapshot()
	if len(c.trail) == trailLength {
		copy(c.trail, c.trail[1:])
		c.trail = c.trail[:trailLength-1]
	}
	c.trail = append(c.trail, snap.Position)
}

// toScreen maps world X/Z to a cell, centered on center. North (-Z) is up.
func (c *cockpit) toScreen(center sim.Vec3, x, z float64) (int, int) {
	col := c.width/2 + int(math.Round((x-center.X)/metersPerColumn))
	row := (c.height-2)/2 + 1 + int(math.Round((z-center.Z)/metersPerRow))
	return col, row
}

func headingGlyph(forward sim.Vec3) rune {
	angle := math.Atan2(-forward.Z, forward.X)
	sector := int(math.Round(angle/(math.Pi/4))) % 8
	if sector < 0 {
		sector += 8
	}
	return headingGlyphs[sector]
}

func (c *cockpit) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		if x >= c.width {
			return
		}
		c.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (c *cockpit) draw() {
	c.screen.Clear()
	snap := c.sim.Snapshot()
	center := snap.Position

	ground := tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	for row := 1; row < c.height-1; row++ {
		for col := 0; col < c.width; col++ {
			c.screen.SetContent(col, row, '·', nil, ground)
		}
	}

	for i, b := range c.sim.Buildings() {
		style := tcell.StyleDefault.Foreground(tcell.ColorGray)
		if i < len(c.colors) {
			style = tcell.StyleDefault.Foreground(tcell.NewHexColor(int32(c.colors[i])))
		}
		glyph := '▒'
		if b.Max.Y <= snap.Altitude {
			glyph = '░'
		}
		x0, z0 := c.toScreen(center, b.Min.X, b.Min.Z)
		x1, z1 := c.toScreen(center, b.Max.X, b.Max.Z)
		for row := max(z0, 1); row <= min(z1, c.height-2); row++ {
			for col := max(x0, 0); col <= min(x1, c.width-1); col++ {
				c.screen.SetContent(col, row, glyph, nil, style)
			}
		}
	}

	trailStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	for _, p := range c.trail {
		col, row := c.toScreen(center, p.X, p.Z)
		if col >= 0 && col < c.width && row >= 1 && row < c.height-1 {
			c.screen.SetContent(col, row, '•', nil, trailStyle)
		}
	}

	planeStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	if !snap.IsFlying {
		planeStyle = planeStyle.Foreground(tcell.ColorRed)
	}
	col, row := c.toScreen(center, center.X, center.Z)
	c.screen.SetContent(col, row, headingGlyph(snap.Forward), nil, planeStyle)

	header := tcell.StyleDefault.Reverse(true)
	if c.sim.Started() {
		c.drawText(0, 0, " W/S throttle  A/D yaw  arrows pitch/roll  space brake  b boost  r reset  1-5 camera  f debug  esc quit ", header)
	} else {
		c.drawText(0, 0, " PRESS ENTER TO FLY   esc quit ", header)
	}
	c.drawText(0, c.height-1, c.sim.Telemetry(), tcell.StyleDefault.Foreground(tcell.ColorAqua))

	c.screen.Show()
}

func (c *cockpit) run() {
	ticker := time.NewTicker(frameRate)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !c.handleEvent(ev, time.Now()) {
				return
			}
		case now := <-ticker.C:
			c.tick(now)
			c.draw()
		}
	}
}
