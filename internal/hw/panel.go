//go:build linux

package hw

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/erickhammersmark/dogfoodtimer/internal/logic"
)

// Panel drives the LEDs and buzzer and reads the buttons and mute switch
// through the GPIO character device. It implements logic.Indicator,
// logic.ToneOutput, logic.ButtonInput, and logic.MuteInput.
type Panel struct {
	chip     *gpiocdev.Chip
	ledRed   *gpiocdev.Line
	ledGreen *gpiocdev.Line
	buzzer   *gpiocdev.Line
	buttonA  *gpiocdev.Line
	buttonB  *gpiocdev.Line
	mute     *gpiocdev.Line
}

// NewPanel opens the GPIO chip and requests the panel lines. Outputs start
// low; inputs are pulled up and read active-low.
func NewPanel(chipName string, pins Pins) (*Panel, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	p := &Panel{chip: chip}
	lines := []struct {
		name   string
		pin    int
		dst    **gpiocdev.Line
		output bool
	}{
		{"red LED", pins.LEDRed, &p.ledRed, true},
		{"green LED", pins.LEDGreen, &p.ledGreen, true},
		{"buzzer", pins.Buzzer, &p.buzzer, true},
		{"button A", pins.ButtonA, &p.buttonA, false},
		{"button B", pins.ButtonB, &p.buttonB, false},
		{"mute switch", pins.Mute, &p.mute, false},
	}

	for _, l := range lines {
		var line *gpiocdev.Line
		var err error
		if l.output {
			line, err = chip.RequestLine(l.pin, gpiocdev.AsOutput(0))
		} else {
			line, err = chip.RequestLine(l.pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
		}
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", l.name, l.pin, err)
		}
		*l.dst = line
	}

	return p, nil
}

// SetColor renders c on the red/green LED pair.
func (p *Panel) SetColor(c logic.Color) error {
	red, green := ledBits(c)
	if err := p.ledRed.SetValue(boolValue(red)); err != nil {
		return fmt.Errorf("set red LED: %w", err)
	}
	if err := p.ledGreen.SetValue(boolValue(green)); err != nil {
		return fmt.Errorf("set green LED: %w", err)
	}
	return nil
}

// Off darkens both LEDs.
func (p *Panel) Off() error {
	return p.SetColor(logic.ColorOff)
}

// StartTone switches the buzzer on. The buzzer is a fixed-frequency active
// type, so freqHz is accepted for interface compatibility and ignored.
func (p *Panel) StartTone(freqHz uint) error {
	_ = freqHz
	if err := p.buzzer.SetValue(1); err != nil {
		return fmt.Errorf("buzzer on: %w", err)
	}
	return nil
}

// StopTone switches the buzzer off.
func (p *Panel) StopTone() error {
	if err := p.buzzer.SetValue(0); err != nil {
		return fmt.Errorf("buzzer off: %w", err)
	}
	return nil
}

// Pressed reads both buttons. Lines are pulled up, so a pressed button
// reads zero.
func (p *Panel) Pressed() (logic.Buttons, error) {
	var pressed logic.Buttons

	v, err := p.buttonA.Value()
	if err != nil {
		return 0, fmt.Errorf("read button A: %w", err)
	}
	if v == 0 {
		pressed |= logic.ButtonA
	}

	v, err = p.buttonB.Value()
	if err != nil {
		return 0, fmt.Errorf("read button B: %w", err)
	}
	if v == 0 {
		pressed |= logic.ButtonB
	}

	return pressed, nil
}

// Engaged reads the mute slide switch, active-low. A read failure reads as
// not muted; the alarm keeps sounding rather than going silent on a flaky
// switch.
func (p *Panel) Engaged() bool {
	v, err := p.mute.Value()
	if err != nil {
		return false
	}
	return v == 0
}

// Close darkens the outputs and releases all lines and the chip.
func (p *Panel) Close() error {
	var errs []error

	for _, out := range []*gpiocdev.Line{p.ledRed, p.ledGreen, p.buzzer} {
		if out == nil {
			continue
		}
		if err := out.SetValue(0); err != nil {
			errs = append(errs, err)
		}
		if err := out.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, in := range []*gpiocdev.Line{p.buttonA, p.buttonB, p.mute} {
		if in == nil {
			continue
		}
		if err := in.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
