package hw

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// LIS3DH registers.
const (
	regWhoAmI   = 0x0F
	regCtrl1    = 0x20
	regCtrl4    = 0x23
	regOutXLow  = 0x28
	autoIncr    = 0x80
	whoAmIValue = 0x33

	// 100 Hz data rate, all three axes enabled
	ctrl1Value = 0x57
	// Block data update + high-resolution mode, ±2g
	ctrl4Value = 0x88
)

// gravity converts g to m/s².
const gravity = 9.80665

// Accel reads the LIS3DH accelerometer over I²C. It implements
// logic.Accelerometer.
type Accel struct {
	bus i2c.BusCloser
	dev i2c.Dev
}

// NewAccel opens the named I²C bus (empty selects the first available) and
// configures the accelerometer at addr.
func NewAccel(busName string, addr uint16) (*Accel, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}

	a := &Accel{
		bus: bus,
		dev: i2c.Dev{Bus: bus, Addr: addr},
	}

	var id [1]byte
	if err := a.dev.Tx([]byte{regWhoAmI}, id[:]); err != nil {
		bus.Close()
		return nil, fmt.Errorf("read WHO_AM_I: %w", err)
	}
	if id[0] != whoAmIValue {
		bus.Close()
		return nil, fmt.Errorf("unexpected WHO_AM_I 0x%02x at 0x%02x (want 0x%02x)", id[0], addr, whoAmIValue)
	}

	if err := a.dev.Tx([]byte{regCtrl1, ctrl1Value}, nil); err != nil {
		bus.Close()
		return nil, fmt.Errorf("write CTRL_REG1: %w", err)
	}
	if err := a.dev.Tx([]byte{regCtrl4, ctrl4Value}, nil); err != nil {
		bus.Close()
		return nil, fmt.Errorf("write CTRL_REG4: %w", err)
	}

	return a, nil
}

// Read returns one acceleration sample in m/s² per axis.
func (a *Accel) Read() (float64, float64, float64, error) {
	var out [6]byte
	if err := a.dev.Tx([]byte{regOutXLow | autoIncr}, out[:]); err != nil {
		return 0, 0, 0, fmt.Errorf("read axes: %w", err)
	}
	x := scaleAxis(int16(binary.LittleEndian.Uint16(out[0:2])))
	y := scaleAxis(int16(binary.LittleEndian.Uint16(out[2:4])))
	z := scaleAxis(int16(binary.LittleEndian.Uint16(out[4:6])))
	return x, y, z, nil
}

// Close releases the I²C bus.
func (a *Accel) Close() error {
	return a.bus.Close()
}

// scaleAxis converts a left-aligned raw axis reading to m/s². At ±2g in
// high-resolution mode full scale is ±16384 counts.
func scaleAxis(raw int16) float64 {
	return float64(raw) / 16384.0 * gravity
}
