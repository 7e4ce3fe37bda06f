// Package hw drives the physical devices: the LIS3DH accelerometer over
// I²C and the panel (LEDs, buzzer, buttons, mute switch) over the Linux
// GPIO character device. Everything here implements the capability
// interfaces defined in internal/logic; tests run against the in-logic
// fakes instead.
package hw

import "github.com/erickhammersmark/dogfoodtimer/internal/logic"

// Pins holds the BCM line numbers for the panel.
type Pins struct {
	LEDRed   int
	LEDGreen int
	Buzzer   int
	ButtonA  int
	ButtonB  int
	Mute     int
}

// DefaultPins matches the reference wiring.
var DefaultPins = Pins{
	LEDRed:   17,
	LEDGreen: 27,
	Buzzer:   22,
	ButtonA:  23,
	ButtonB:  24,
	Mute:     25,
}

// DefaultChip is the GPIO character device for the panel.
const DefaultChip = "gpiochip0"

// DefaultAccelAddr is the LIS3DH I²C address with SDO low.
const DefaultAccelAddr = 0x18

// ledBits maps an indicator color onto the two LED lines. The indicator
// is a red/green pair: both on renders amber.
func ledBits(c logic.Color) (red, green bool) {
	switch c {
	case logic.ColorOK:
		return false, true
	case logic.ColorWarn:
		return true, true
	case logic.ColorCritical, logic.ColorAlert:
		return true, false
	}
	return false, false
}

func boolValue(on bool) int {
	if on {
		return 1
	}
	return 0
}
