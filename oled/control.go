package oled

import (
	"fmt"
	"time"
)

// DisplayMode selects how the controller maps RAM to the panel.
type DisplayMode byte

const (
	// ModeAllOff blanks the panel without touching RAM.
	ModeAllOff DisplayMode = iota
	// ModeAllOn drives every pixel at full brightness.
	ModeAllOn
	// ModeNormal shows RAM contents.
	ModeNormal
	// ModeInverse shows RAM contents with grayscale levels flipped.
	ModeInverse
)

// SetDisplayMode switches between the normal, inverse and blanking
// display modes.
func (o *OLED) SetDisplayMode(m DisplayMode) error {
	if m > ModeInverse {
		return fmt.Errorf("oled: invalid display mode %d", m)
	}
	return o.sendCommand(cmdDisplayMode + byte(m))
}

// GPIOMode is a drive state for one of the controller's two GPIO
// pins.
type GPIOMode byte

const (
	GPIOHighImpedance GPIOMode = 0
	GPIOLow           GPIOMode = 2
	GPIOHigh          GPIOMode = 3
)

func gpioBits(g0, g1 GPIOMode) byte {
	return byte(g1)<<2 | byte(g0)
}

// SetGPIO1 drives the controller's GPIO1 pin, which is unconnected on
// the OLED128 board. GPIO0 switches the panel's high voltage supply
// and belongs to SetDisplayOn.
func (o *OLED) SetGPIO1(m GPIOMode) error {
	if err := o.sendCommand(cmdSetGPIO, gpioBits(o.gpio0, m)); err != nil {
		return err
	}
	o.gpio1 = m
	return nil
}

func (o *OLED) setGPIO0(m GPIOMode) error {
	if err := o.sendCommand(cmdSetGPIO, gpioBits(m, o.gpio1)); err != nil {
		return err
	}
	o.gpio0 = m
	return nil
}

// SetDisplayOn powers the panel up or down. On the OLED128 the
// controller's GPIO0 pin switches the panel supply, so power-up
// raises it, waits for the rail to settle and then leaves sleep mode.
// Display RAM is preserved while off.
func (o *OLED) SetDisplayOn(on bool) error {
	if on == o.powered {
		return nil
	}
	if on {
		if err := o.setGPIO0(GPIOHigh); err != nil {
			return err
		}
		time.Sleep(50 * time.Millisecond)
		if err := o.sendCommand(cmdWake); err != nil {
			return err
		}
	} else {
		if err := o.sendCommand(cmdSleep); err != nil {
			return err
		}
		if err := o.setGPIO0(GPIOLow); err != nil {
			return err
		}
	}
	o.powered = on
	return nil
}

// SetContrast sets the master contrast current, from 0 (dimmest) to
// 15 (full).
func (o *OLED) SetContrast(level byte) error {
	if level > 0x0F {
		return fmt.Errorf("oled: contrast %d out of range 0-15", level)
	}
	return o.sendCommand(cmdMasterContrast, level)
}

// SetColorContrasts sets the per-channel contrast currents. The
// channels are red, green and blue unless the panel is wired BGR.
func (o *OLED) SetColorContrasts(r, g, b byte) error {
	return o.sendCommand(cmdColorContrast, r, g, b)
}

// SetGrayscaleTable programs the panel's 64-level grayscale table.
// table holds the pulse widths for levels GS0 to GS63; values must
// not exceed 180 and must strictly increase. GS0 is fixed at zero in
// the panel and not transmitted.
func (o *OLED) SetGrayscaleTable(table []byte) error {
	if len(table) != 64 {
		return fmt.Errorf("oled: grayscale table has %d entries, want 64", len(table))
	}
	for i, v := range table {
		if v > 180 {
			return fmt.Errorf("oled: grayscale level %d is %d, max 180", i, v)
		}
		if i > 0 && v <= table[i-1] {
			return fmt.Errorf("oled: grayscale level %d is %d, not above level %d", i, v, i-1)
		}
	}
	return o.sendCommand(cmdGrayscaleLUT, table[1:]...)
}

// SetDefaultGrayscaleTable restores the controller's builtin linear
// grayscale table.
func (o *OLED) SetDefaultGrayscaleTable() error {
	return o.sendCommand(cmdDefaultLUT)
}

// SetBrightGrayscaleTable programs a linear table spanning the full
// pulse width range, brighter than the builtin default.
func (o *OLED) SetBrightGrayscaleTable() error {
	return o.sendCommand(cmdGrayscaleLUT, grayscaleRamp(180)...)
}

// SetDimGrayscaleTable programs a linear table at half the maximum
// pulse width.
func (o *OLED) SetDimGrayscaleTable() error {
	return o.sendCommand(cmdGrayscaleLUT, grayscaleRamp(90)...)
}

// grayscaleRamp returns the 63 transmitted levels GS1 to GS63 of a
// linear table topping out at max.
func grayscaleRamp(max int) []byte {
	t := make([]byte, 63)
	for i := range t {
		t[i] = byte((i + 1) * max / 63)
	}
	return t
}

// Lock makes the controller ignore all commands until Unlock.
func (o *OLED) Lock() error {
	return o.sendCommand(cmdCommandLock, lockLock)
}

// Unlock re-enables command processing after Lock.
func (o *OLED) Unlock() error {
	var cmdErr error
	sendCommand := func(cmd byte, data ...byte) {
		if cmdErr != nil {
			return
		}
		cmdErr = o.sendCommand(cmd, data...)
	}
	sendCommand(cmdCommandLock, lockUnlock)
	sendCommand(cmdCommandLock, lockAllowSpecial)
	return cmdErr
}

// SetDisplayClock sets the display clock divide ratio (0-10, dividing
// by 1<<divisor) and the oscillator frequency (0-15).
func (o *OLED) SetDisplayClock(divisor, frequency byte) error {
	if divisor > 10 {
		return fmt.Errorf("oled: clock divisor %d out of range 0-10", divisor)
	}
	if frequency > 15 {
		return fmt.Errorf("oled: clock frequency %d out of range 0-15", frequency)
	}
	return o.sendCommand(cmdDisplayClock, frequency<<4|divisor)
}

// SetStartRow sets the display RAM row shown at the top of the panel,
// shifting the image vertically without rewriting RAM.
func (o *OLED) SetStartRow(row int) error {
	if row < 0 || row >= Height {
		return fmt.Errorf("oled: start row %d out of range", row)
	}
	return o.sendCommand(cmdStartLine, byte(row))
}

// SetDisplayOffset sets the COM line driven by row 0, shifting the
// whole panel scan.
func (o *OLED) SetDisplayOffset(rows int) error {
	if rows < 0 || rows >= Height {
		return fmt.Errorf("oled: display offset %d out of range", rows)
	}
	return o.sendCommand(cmdDisplayOffset, byte(rows))
}

// Increment directions for SetIncrementDirection.
const (
	IncrementHorizontal = 0
	IncrementVertical   = remapVertical
)

// SetIncrementDirection selects whether the RAM address advances along
// rows or down columns during writes. The window protocol assumes
// horizontal; vertical is useful for raw column-major transfers.
func (o *OLED) SetIncrementDirection(dir byte) error {
	if dir != IncrementHorizontal && dir != IncrementVertical {
		return fmt.Errorf("oled: invalid increment direction %d", dir)
	}
	remap := o.remap&^remapVertical | dir
	if err := o.sendCommand(cmdSetRemap, remap); err != nil {
		return err
	}
	o.remap = remap
	return nil
}
