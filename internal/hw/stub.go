//go:build !linux

package hw

import (
	"errors"

	"github.com/erickhammersmark/dogfoodtimer/internal/logic"
)

// Panel is not available on non-Linux platforms.
type Panel struct{}

// NewPanel returns an error on non-Linux platforms.
func NewPanel(chipName string, pins Pins) (*Panel, error) {
	return nil, errors.New("hw: gpio panel requires Linux")
}

// SetColor is not implemented on non-Linux platforms.
func (p *Panel) SetColor(c logic.Color) error {
	return errors.New("hw: not supported")
}

// Off is not implemented on non-Linux platforms.
func (p *Panel) Off() error {
	return errors.New("hw: not supported")
}

// StartTone is not implemented on non-Linux platforms.
func (p *Panel) StartTone(freqHz uint) error {
	return errors.New("hw: not supported")
}

// StopTone is not implemented on non-Linux platforms.
func (p *Panel) StopTone() error {
	return errors.New("hw: not supported")
}

// Pressed is not implemented on non-Linux platforms.
func (p *Panel) Pressed() (logic.Buttons, error) {
	return 0, errors.New("hw: not supported")
}

// Engaged is not implemented on non-Linux platforms.
func (p *Panel) Engaged() bool {
	return false
}

// Close is a no-op on non-Linux platforms.
func (p *Panel) Close() error {
	return nil
}
