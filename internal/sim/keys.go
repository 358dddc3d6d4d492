package sim

import "sort"

// KeyCode identifies a physical key independent of the windowing backend.
// Names follow the browser KeyboardEvent.code values.
type KeyCode int

const (
	KeyUnknown KeyCode = iota
	KeyW
	KeyS
	KeyA
	KeyD
	KeyQ
	KeyE
	KeyR
	KeyF
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeySpace
	KeyShiftLeft
	KeyDigit1
	KeyDigit2
	KeyDigit3
	KeyDigit4
	KeyDigit5
	KeyEqual
	KeyMinus
	KeyDigit0
	KeyEnter
)

var keyNames = map[KeyCode]string{
	KeyW:          "KeyW",
	KeyS:          "KeyS",
	KeyA:          "KeyA",
	KeyD:          "KeyD",
	KeyQ:          "KeyQ",
	KeyE:          "KeyE",
	KeyR:          "KeyR",
	KeyF:          "KeyF",
	KeyArrowUp:    "ArrowUp",
	KeyArrowDown:  "ArrowDown",
	KeyArrowLeft:  "ArrowLeft",
	KeyArrowRight: "ArrowRight",
	KeySpace:      "Space",
	KeyShiftLeft:  "ShiftLeft",
	KeyDigit1:     "Digit1",
	KeyDigit2:     "Digit2",
	KeyDigit3:     "Digit3",
	KeyDigit4:     "Digit4",
	KeyDigit5:     "Digit5",
	KeyEqual:      "Equal",
	KeyMinus:      "Minus",
	KeyDigit0:     "Digit0",
	KeyEnter:      "Enter",
}

var keysByName = func() map[string]KeyCode {
	m := make(map[string]KeyCode, len(keyNames))
	for k, name := range keyNames {
		m[name] = k
	}
	return m
}()

func (k KeyCode) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseKeyCode resolves a KeyboardEvent.code style name.
func ParseKeyCode(name string) (KeyCode, bool) {
	k, ok := keysByName[name]
	return k, ok
}

// KeyNames lists every known key name, sorted.
func KeyNames() []string {
	names := make([]string, 0, len(keysByName))
	for name := range keysByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Action is a logical flight control bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionThrottleUp
	ActionThrottleDown
	ActionYawLeft
	ActionYawRight
	ActionPitchUp
	ActionPitchDown
	ActionRollLeft
	ActionRollRight
	ActionReset
	ActionBrake
	ActionBoost
)

// DefaultBindings is the fixed key map of the flight controller.
var DefaultBindings = map[KeyCode]Action{
	KeyW:          ActionThrottleUp,
	KeyS:          ActionThrottleDown,
	KeyA:          ActionYawLeft,
	KeyD:          ActionYawRight,
	KeyArrowUp:    ActionPitchDown,
	KeyArrowDown:  ActionPitchUp,
	KeyArrowLeft:  ActionRollLeft,
	KeyArrowRight: ActionRollRight,
	KeyR:          ActionReset,
	KeySpace:      ActionBrake,
	KeyShiftLeft:  ActionBoost,
}
